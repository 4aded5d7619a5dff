// Package latex builds LaTeX without a model: escaping raw text, wrapping it in a
// minimal document, and checking that a document is structurally sound.
package latex

import "strings"

// reserved maps each LaTeX-reserved character to its escaped form.
var reserved = map[rune]string{
	'&': `\&`,
	'%': `\%`,
	'$': `\$`,
	'#': `\#`,
	'_': `\_`,
	'{': `\{`,
	'}': `\}`,
}

// textSymbols maps characters that are not reserved but cannot be typeset raw in
// text mode to their text commands. The trailing space ends the control word and
// is consumed by LaTeX, so no input text can form a command.
var textSymbols = map[rune]string{
	'\\': `\textbackslash `,
	'^':  `\textasciicircum `,
	'~':  `\textasciitilde `,
}

// paragraphBreak replaces a blank line so paragraphs survive in the output.
const paragraphBreak = "\n\n\\par\n"

// Escape converts plain text into LaTeX body content. Reserved characters are
// escaped in a single pass over the input, so no escape sequence is ever escaped
// again. A literal backslash, caret or tilde becomes its text command
// (\textbackslash, \textasciicircum, \textasciitilde). A double newline becomes a
// double newline followed by \par; single newlines are kept as they are.
//
// Escape is not idempotent: call it once on raw extracted text and never on
// model output.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			b.WriteString(paragraphBreak)
			i++
			continue
		}
		if sym, ok := textSymbols[r]; ok {
			b.WriteString(sym)
			continue
		}
		if esc, ok := reserved[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isReserved reports whether r is one of the seven reserved characters.
func isReserved(r rune) bool {
	_, ok := reserved[r]
	return ok
}
