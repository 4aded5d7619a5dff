package llm

import (
	"context"

	"github.com/hyperjump/latexify/internal/models"
)

// Result is the outcome of one backend call. Exactly one of Latex and Err is set.
type Result struct {
	Latex string
	Err   error
}

// OK reports whether the call produced LaTeX.
func (r Result) OK() bool {
	return r.Err == nil
}

// Attempt runs req against backend once. Edit requests go to Backend.Edit,
// everything else to Backend.Convert.
func Attempt(ctx context.Context, backend Backend, req models.ConversionRequest) Result {
	var (
		out string
		err error
	)
	if req.IsEdit() {
		out, err = backend.Edit(ctx, req.PreviousLatex, req.Instructions)
	} else {
		out, err = backend.Convert(ctx, req.Text, req.Instructions)
	}
	if err != nil {
		return Result{Err: err}
	}
	return Result{Latex: out}
}
