// Package extract turns documents of various formats into normalized plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/latexify/internal/models"
)

// Extractor pulls plain text out of one document format.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(content []byte) (string, error)

// Extract calls f(content).
func (f ExtractorFunc) Extract(content []byte) (string, error) {
	return f(content)
}

// Registry maps formats to extractors. It is safe for concurrent use; registering
// is expected at startup.
type Registry struct {
	mu         sync.RWMutex
	extractors map[models.Format]Extractor
}

// NewRegistry returns a registry with the built-in extractors for plain text, PDF,
// DOCX, PPTX, XLSX, ODP and ODS.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[models.Format]Extractor)}
	r.Register(models.FormatPlain, ExtractorFunc(extractPlain))
	r.Register(models.FormatPDF, ExtractorFunc(extractPDF))
	r.Register(models.FormatDOCX, ExtractorFunc(extractDOCX))
	r.Register(models.FormatPPTX, ExtractorFunc(extractPPTX))
	r.Register(models.FormatXLSX, ExtractorFunc(extractExcel))
	r.Register(models.FormatODP, ExtractorFunc(extractODP))
	r.Register(models.FormatODS, ExtractorFunc(extractODS))
	return r
}

// Register adds or replaces the extractor for format.
func (r *Registry) Register(format models.Format, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[format] = e
}

// Supports reports whether an extractor is registered for format.
func (r *Registry) Supports(format models.Format) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extractors[format]
	return ok
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []models.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Format, 0, len(r.extractors))
	for f := range r.extractors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract returns the normalized text of doc.
// Returns *UnsupportedFormatError when doc.Format has no extractor and
// *ExtractionError when the content cannot be parsed.
func (r *Registry) Extract(doc models.SourceDocument) (string, error) {
	r.mu.RLock()
	e, ok := r.extractors[doc.Format]
	r.mu.RUnlock()
	if !ok {
		return "", &UnsupportedFormatError{Format: doc.Format}
	}
	text, err := safeExtract(e, doc.Content)
	if err != nil {
		return "", &ExtractionError{Format: doc.Format, Err: err}
	}
	return Normalize(text), nil
}

// FormatFor resolves the format of path; a non-empty hint wins over the extension.
// The second result reports whether an extractor is registered for it.
func (r *Registry) FormatFor(path, hint string) (models.Format, bool) {
	format := models.NewSourceDocument(path, nil, hint).Format
	return format, r.Supports(format)
}

// Load reads the file at path into a SourceDocument. hint overrides the extension
// when non-empty. The format is checked before the file is read.
func (r *Registry) Load(path, hint string) (models.SourceDocument, error) {
	format, ok := r.FormatFor(path, hint)
	if !ok {
		return models.SourceDocument{}, &UnsupportedFormatError{Format: format}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("read file %s: %w", filepath.Base(path), err)
	}
	return models.NewSourceDocument(path, content, string(format)), nil
}

// ExtractFile loads the file at path and extracts it.
func (r *Registry) ExtractFile(path, hint string) (string, error) {
	doc, err := r.Load(path, hint)
	if err != nil {
		return "", err
	}
	return r.Extract(doc)
}

// safeExtract converts parser panics on malformed input into errors.
func safeExtract(e Extractor, content []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()
	return e.Extract(content)
}
