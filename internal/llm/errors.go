package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/latexify/pkg/utils"
)

// ErrEditUnavailable reports that an edit could not be produced. There is no
// model-free way to apply free-form instructions, so callers must surface it.
var ErrEditUnavailable = errors.New("latex edit unavailable")

// TransportError is any failed call to the model endpoint: a connection error,
// a non-2xx status, or a response that carries no usable text.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("llm transport: status %d: %s", e.StatusCode, utils.Truncate(e.Body, 200))
	case e.Err != nil:
		return fmt.Sprintf("llm transport: %v", e.Err)
	default:
		return "llm transport: unknown failure"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports that the model did not answer within After.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("llm request timed out after %s", e.After)
}
