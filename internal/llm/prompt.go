package llm

import (
	"bytes"
	"strings"
	"text/template"
)

var convertPromptTmpl = template.Must(template.New("convert").Parse(`Convert the following text into a complete, compilable LaTeX document.

Use the article class. Turn headings into \section and \subsection commands, bulleted and numbered lists into itemize and enumerate environments, formulas into math mode, and tabular data into tabular environments. Keep citations and references as they appear. Escape LaTeX special characters in ordinary text.
{{- if .Instructions}}

Additional instructions:
{{.Instructions}}
{{- end}}

Respond with the LaTeX source only, starting with \documentclass and ending with \end{document}. Do not add commentary or markdown.

Text:
{{.Text}}
`))

var editPromptTmpl = template.Must(template.New("edit").Parse(`Modify the following LaTeX document according to the instructions.

Instructions:
{{.Instructions}}

Return the full updated document, starting with \documentclass and ending with \end{document}. Respond with the LaTeX source only, without commentary or markdown.

Current document:
{{.Latex}}
`))

type promptData struct {
	Text         string
	Instructions string
	Latex        string
}

func renderConvertPrompt(text, instructions string) (string, error) {
	return execute(convertPromptTmpl, promptData{Text: text, Instructions: strings.TrimSpace(instructions)})
}

func renderEditPrompt(currentLatex, instructions string) (string, error) {
	return execute(editPromptTmpl, promptData{Latex: currentLatex, Instructions: strings.TrimSpace(instructions)})
}

func execute(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
