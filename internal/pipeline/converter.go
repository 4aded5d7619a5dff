// Package pipeline turns source documents into LaTeX: extract text, ask the
// model, and fall back to an escaped minimal document when the model fails.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/extract"
	"github.com/hyperjump/latexify/internal/latex"
	"github.com/hyperjump/latexify/internal/llm"
	"github.com/hyperjump/latexify/internal/models"
)

// Converter runs conversions and edits. It holds no per-request state and is
// safe for concurrent use.
type Converter struct {
	registry     *extract.Registry
	backend      llm.Backend // nil means always fall back
	strict       bool
	defaultTitle string
	uploadDir    string
	logger       *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for conversion events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithStrict makes the converter validate model output and reject malformed documents.
func WithStrict(strict bool) Option {
	return func(c *Converter) { c.strict = strict }
}

// WithDefaultTitle sets the title used when neither the request nor the document name gives one.
func WithDefaultTitle(title string) Option {
	return func(c *Converter) { c.defaultTitle = title }
}

// WithUploadDir sets where ConvertUpload spools uploads. Empty means the OS temp dir.
func WithUploadDir(dir string) Option {
	return func(c *Converter) { c.uploadDir = dir }
}

// NewConverter creates a converter. backend may be nil.
func NewConverter(registry *extract.Registry, backend llm.Backend, opts ...Option) *Converter {
	if registry == nil {
		registry = extract.NewRegistry()
	}
	c := &Converter{
		registry:     registry,
		backend:      backend,
		defaultTitle: latex.DefaultTitle,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Registry returns the extractor registry.
func (c *Converter) Registry() *extract.Registry { return c.registry }

// HasBackend reports whether a model is configured.
func (c *Converter) HasBackend() bool { return c.backend != nil }

type requestSettings struct {
	title        string
	instructions string
}

// RequestOption adjusts a single conversion.
type RequestOption func(*requestSettings)

// WithTitle sets the fallback document title for one conversion.
func WithTitle(title string) RequestOption {
	return func(s *requestSettings) { s.title = strings.TrimSpace(title) }
}

// WithInstructions passes extra instructions to the model for one conversion.
func WithInstructions(instructions string) RequestOption {
	return func(s *requestSettings) { s.instructions = instructions }
}

// ConvertDocument extracts doc and converts the text. Extraction errors are
// returned unchanged and the model is not called. Model failures never surface:
// the escaped fallback document is returned instead.
func (c *Converter) ConvertDocument(ctx context.Context, doc models.SourceDocument, opts ...RequestOption) (models.LatexDocument, error) {
	var s requestSettings
	for _, opt := range opts {
		opt(&s)
	}

	text, err := c.registry.Extract(doc)
	if err != nil {
		c.logger.Warn("extraction failed",
			zap.String("name", doc.Name),
			zap.String("format", string(doc.Format)),
			zap.Error(err))
		return models.LatexDocument{}, err
	}

	title := s.title
	if title == "" {
		title = doc.Title()
	}
	if title == "" {
		title = c.defaultTitle
	}

	out := c.convertText(ctx, text, title, s.instructions)
	c.logger.Info("document converted",
		zap.String("name", doc.Name),
		zap.String("format", string(doc.Format)),
		zap.String("path", string(out.Path)),
		zap.Int("text_bytes", len(text)),
		zap.Int("latex_bytes", len(out.Source)))
	return out, nil
}

func (c *Converter) convertText(ctx context.Context, text, title, instructions string) models.LatexDocument {
	if c.backend == nil || strings.TrimSpace(text) == "" {
		return c.fallback(text, title)
	}

	res := llm.Attempt(ctx, c.backend, models.ConversionRequest{Text: text, Instructions: instructions})
	if !res.OK() {
		c.logger.Warn("llm conversion failed, using fallback", zap.Error(res.Err))
		return c.fallback(text, title)
	}
	if !c.strict {
		return models.LatexDocument{Source: res.Latex, Path: models.PathLLM}
	}
	if err := latex.Validate(res.Latex); err != nil {
		c.logger.Warn("llm output rejected, using fallback", zap.Error(err))
		return c.fallback(text, title)
	}
	return models.LatexDocument{Source: res.Latex, Path: models.PathLLM, Validated: true}
}

func (c *Converter) fallback(text, title string) models.LatexDocument {
	return models.LatexDocument{
		Source:    latex.Fallback(text, title),
		Path:      models.PathFallback,
		Validated: true,
	}
}

// EditDocument applies instructions to currentLatex through the model. Any model
// failure is returned as *EditUnavailableError; there is no fallback.
func (c *Converter) EditDocument(ctx context.Context, currentLatex, instructions string) (models.LatexDocument, error) {
	if strings.TrimSpace(currentLatex) == "" {
		return models.LatexDocument{}, ErrEmptyLatex
	}
	req := models.ConversionRequest{PreviousLatex: currentLatex, Instructions: instructions}
	if err := req.Validate(); err != nil {
		return models.LatexDocument{}, err
	}
	if c.backend == nil {
		return models.LatexDocument{}, &EditUnavailableError{Cause: ErrNoBackend}
	}

	res := llm.Attempt(ctx, c.backend, req)
	if !res.OK() {
		c.logger.Warn("llm edit failed", zap.Error(res.Err))
		return models.LatexDocument{}, &EditUnavailableError{Cause: res.Err}
	}
	doc := models.LatexDocument{Source: res.Latex, Path: models.PathLLM}
	if c.strict {
		if err := latex.Validate(res.Latex); err != nil {
			c.logger.Warn("llm edit output rejected", zap.Error(err))
			return models.LatexDocument{}, &EditUnavailableError{Cause: err}
		}
		doc.Validated = true
	}
	c.logger.Info("document edited", zap.Int("latex_bytes", len(doc.Source)))
	return doc, nil
}

// ConvertUpload spools r into a temporary file named after name's extension,
// converts it, and removes the file on every path. The format is checked before
// anything is written.
func (c *Converter) ConvertUpload(ctx context.Context, name string, r io.Reader, hint string, opts ...RequestOption) (models.LatexDocument, error) {
	format, ok := c.registry.FormatFor(name, hint)
	if !ok {
		return models.LatexDocument{}, &extract.UnsupportedFormatError{Format: format}
	}

	tmp, err := os.CreateTemp(c.uploadDir, "latexify-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return models.LatexDocument{}, fmt.Errorf("create upload file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rerr := os.Remove(tmpPath); rerr != nil && !os.IsNotExist(rerr) {
			c.logger.Warn("remove upload file", zap.String("path", tmpPath), zap.Error(rerr))
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return models.LatexDocument{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return models.LatexDocument{}, fmt.Errorf("close upload file: %w", err)
	}

	content, err := os.ReadFile(tmpPath)
	if err != nil {
		return models.LatexDocument{}, fmt.Errorf("read upload file: %w", err)
	}
	return c.ConvertDocument(ctx, models.NewSourceDocument(name, content, string(format)), opts...)
}

// ConvertFile converts the file at inPath and writes the LaTeX to outPath,
// creating parent directories as needed.
func (c *Converter) ConvertFile(ctx context.Context, inPath, outPath, hint string, opts ...RequestOption) (models.LatexDocument, error) {
	src, err := c.registry.Load(inPath, hint)
	if err != nil {
		return models.LatexDocument{}, err
	}
	doc, err := c.ConvertDocument(ctx, src, opts...)
	if err != nil {
		return models.LatexDocument{}, err
	}
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return models.LatexDocument{}, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(doc.Source), 0644); err != nil {
		return models.LatexDocument{}, fmt.Errorf("write output: %w", err)
	}
	return doc, nil
}
