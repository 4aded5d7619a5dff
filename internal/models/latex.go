package models

// GenerationPath records which strategy produced a LatexDocument.
type GenerationPath string

const (
	PathLLM      GenerationPath = "llm"
	PathFallback GenerationPath = "fallback"
)

// LatexDocument is the final output of a conversion or edit.
// Documents on PathFallback are always well-formed; PathLLM documents are only
// checked when Validated is true.
type LatexDocument struct {
	Source    string         `json:"latex"`
	Path      GenerationPath `json:"path"`
	Validated bool           `json:"validated"`
}
