package extract

import (
	"fmt"

	"github.com/hyperjump/latexify/internal/models"
)

// UnsupportedFormatError is returned when no extractor is registered for a format.
type UnsupportedFormatError struct {
	Format models.Format
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return "unsupported format: no extension or format hint"
	}
	return fmt.Sprintf("unsupported format %q", string(e.Format))
}

// ExtractionError wraps a parse failure for bytes that do not match their declared format.
type ExtractionError struct {
	Format models.Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
