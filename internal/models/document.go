// Package models defines the request-scoped data passed through the conversion pipeline.
package models

import (
	"path/filepath"
	"strings"
)

// Format identifies how a source document's bytes are encoded.
type Format string

const (
	FormatPlain Format = "plain"
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatPPTX  Format = "pptx"
	FormatXLSX  Format = "xlsx"
	FormatODP   Format = "odp"
	FormatODS   Format = "ods"
)

// extensionFormats maps lowercase file extensions to formats.
var extensionFormats = map[string]Format{
	".txt":  FormatPlain,
	".md":   FormatPlain,
	".rst":  FormatPlain,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".xlsx": FormatXLSX,
	".odp":  FormatODP,
	".ods":  FormatODS,
}

// FormatFromExtension returns the format for a file extension (with or without the
// leading dot, any case). The second result is false for unknown extensions.
func FormatFromExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extensionFormats[ext]
	return f, ok
}

// ParseFormat normalizes a caller-supplied hint. It accepts format tags ("pdf")
// as well as extensions (".pdf", "PDF"). Unknown hints are returned lowercased
// so the registry can report them.
func ParseFormat(hint string) Format {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return ""
	}
	if f, ok := FormatFromExtension(h); ok {
		return f
	}
	if h == "text" || h == "txt" {
		return FormatPlain
	}
	return Format(strings.TrimPrefix(h, "."))
}

// SupportedExtensions returns the known extensions, used for watch filters.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".rst", ".pdf", ".docx", ".pptx", ".xlsx", ".odp", ".ods"}
}

// SourceDocument is an uploaded or on-disk document awaiting extraction.
// It must not be mutated after construction.
type SourceDocument struct {
	Name    string `json:"name"`
	Format  Format `json:"format"`
	Content []byte `json:"-"`
}

// NewSourceDocument builds a document, inferring the format from name when hint is empty.
// An unresolvable format is left as the raw extension so extraction can reject it.
func NewSourceDocument(name string, content []byte, hint string) SourceDocument {
	format := ParseFormat(hint)
	if format == "" {
		ext := filepath.Ext(name)
		if f, ok := FormatFromExtension(ext); ok {
			format = f
		} else {
			format = Format(strings.TrimPrefix(strings.ToLower(ext), "."))
		}
	}
	return SourceDocument{Name: name, Format: format, Content: content}
}

// Title derives a document title from its name (base name without extension).
func (d SourceDocument) Title() string {
	base := filepath.Base(d.Name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
