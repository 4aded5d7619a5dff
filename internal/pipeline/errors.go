package pipeline

import (
	"errors"
	"fmt"

	"github.com/hyperjump/latexify/internal/llm"
)

var (
	// ErrEmptyLatex is returned when an edit is requested without a document.
	ErrEmptyLatex = errors.New("current latex cannot be empty")
	// ErrNoBackend is the cause of an edit failure when no model is configured.
	ErrNoBackend = errors.New("no llm backend configured")
)

// EditUnavailableError reports that an edit could not be applied. It matches
// llm.ErrEditUnavailable with errors.Is and exposes the underlying cause.
type EditUnavailableError struct {
	Cause error
}

func (e *EditUnavailableError) Error() string {
	if e.Cause == nil {
		return llm.ErrEditUnavailable.Error()
	}
	return fmt.Sprintf("%v: %v", llm.ErrEditUnavailable, e.Cause)
}

func (e *EditUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{llm.ErrEditUnavailable}
	}
	return []error{llm.ErrEditUnavailable, e.Cause}
}
