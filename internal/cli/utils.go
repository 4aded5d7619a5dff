// Package cli provides output and input helpers for the latexify commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/hyperjump/latexify/internal/models"
)

// OutputFormat is the format for command result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat returns the format for s; anything other than "json" is text.
func ParseOutputFormat(s string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(OutputJSON)) {
		return OutputJSON
	}
	return OutputText
}

// ConversionSummary describes a finished file conversion.
type ConversionSummary struct {
	Input     string                `json:"input"`
	Output    string                `json:"output"`
	Path      models.GenerationPath `json:"path"`
	Validated bool                  `json:"validated"`
	Bytes     int                   `json:"bytes"`
}

// NewConversionSummary builds a summary for doc written from input to output.
func NewConversionSummary(input, output string, doc models.LatexDocument) ConversionSummary {
	return ConversionSummary{
		Input:     input,
		Output:    output,
		Path:      doc.Path,
		Validated: doc.Validated,
		Bytes:     len(doc.Source),
	}
}

// WriteConversion writes the result of a file conversion to w.
func WriteConversion(w io.Writer, s ConversionSummary, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	if _, err := fmt.Fprintf(w, "Conversion successful. Output written to %s\n", s.Output); err != nil {
		return err
	}
	if s.Path == models.PathFallback {
		_, err := fmt.Fprintln(w, "Note: the model was unavailable; wrote the escaped fallback document.")
		return err
	}
	return nil
}

// WriteLatex writes LaTeX source to w, ending with exactly one newline.
func WriteLatex(w io.Writer, src string) error {
	_, err := io.WriteString(w, strings.TrimRight(src, "\n")+"\n")
	return err
}

// ReadSource reads path, or stdin when path is "-".
func ReadSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// ReadLatex resolves a --tex value: "-" reads stdin, an existing file is read,
// and anything else that looks like LaTeX (it has a newline or a backslash) is
// taken as the document itself.
func ReadLatex(value string, stdin io.Reader) (string, error) {
	if value == "-" {
		return ReadSource(value, stdin)
	}
	if strings.Contains(value, "\n") {
		return value, nil
	}
	if _, err := os.Stat(value); err != nil && errors.Is(err, fs.ErrNotExist) && strings.Contains(value, `\`) {
		return value, nil
	}
	return ReadSource(value, stdin)
}

// DefaultOutputPath replaces the extension of input with .tex.
func DefaultOutputPath(input string) string {
	ext := ""
	if i := strings.LastIndexByte(input, '.'); i > strings.LastIndexAny(input, `/\`) {
		ext = input[i:]
	}
	return strings.TrimSuffix(input, ext) + ".tex"
}
