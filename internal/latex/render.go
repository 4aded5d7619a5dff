package latex

import (
	"strings"
)

// DefaultTitle is used when Render is called without a title.
const DefaultTitle = "Converted Document"

const (
	// DocumentClass opens every rendered document.
	DocumentClass = `\documentclass{article}`
	// DocumentEnd closes every rendered document.
	DocumentEnd = `\end{document}`
)

const preamble = DocumentClass + `
\usepackage[utf8]{inputenc}
\usepackage{amsmath}
\usepackage{graphicx}

`

// Render wraps an escaped body in a complete article. The title is escaped and
// folded onto one line. Render never fails: for any input the result opens with
// \documentclass and closes with \end{document}.
func Render(escapedBody, title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.Grow(len(preamble) + len(escapedBody) + 128)
	b.WriteString(preamble)
	b.WriteString(`\title{` + Escape(title) + "}\n")
	b.WriteString(`\author{}` + "\n")
	b.WriteString(`\date{\today}` + "\n\n")
	b.WriteString(`\begin{document}` + "\n\n")
	b.WriteString(`\maketitle` + "\n\n")
	if body := strings.TrimSpace(escapedBody); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString(DocumentEnd + "\n")
	return b.String()
}

// Fallback escapes raw text and renders it; it is the model-free conversion path.
func Fallback(text, title string) string {
	return Render(Escape(text), title)
}
