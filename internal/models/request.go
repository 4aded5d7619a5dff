package models

import (
	"errors"
	"strings"
)

// ErrEmptyInstructions is returned when an edit request carries no instructions.
var ErrEmptyInstructions = errors.New("edit instructions cannot be empty")

// ConversionRequest is what the LLM backend receives. A non-empty PreviousLatex
// selects edit mode.
type ConversionRequest struct {
	Text          string `json:"text,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	PreviousLatex string `json:"previous_latex,omitempty"`
}

// IsEdit reports whether the request transforms existing LaTeX.
func (r ConversionRequest) IsEdit() bool {
	return strings.TrimSpace(r.PreviousLatex) != ""
}

// Validate checks that an edit request has instructions.
func (r ConversionRequest) Validate() error {
	if r.IsEdit() && strings.TrimSpace(r.Instructions) == "" {
		return ErrEmptyInstructions
	}
	return nil
}
