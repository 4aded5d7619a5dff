package latex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed is wrapped by every error Validate returns.
var ErrMalformed = errors.New("malformed LaTeX document")

var environment = regexp.MustCompile(`\\(begin|end)\s*\{([^}]*)\}`)

// Validate performs a structural check of a complete document: it must start with
// \documentclass (after blank and comment lines), contain exactly one document
// environment with nothing but whitespace after \end{document}, balance its braces
// (ignoring escaped braces and comments), and nest \begin/\end pairs correctly.
// It does not compile the document.
func Validate(src string) error {
	code := stripComments(src)
	trimmed := strings.TrimSpace(code)

	if !strings.HasPrefix(trimmed, `\documentclass`) {
		return fmt.Errorf("%w: does not start with \\documentclass", ErrMalformed)
	}
	if n := strings.Count(code, `\begin{document}`); n != 1 {
		return fmt.Errorf("%w: found %d \\begin{document}", ErrMalformed, n)
	}
	if n := strings.Count(code, DocumentEnd); n != 1 {
		return fmt.Errorf("%w: found %d \\end{document}", ErrMalformed, n)
	}
	if !strings.HasSuffix(trimmed, DocumentEnd) {
		return fmt.Errorf("%w: content after \\end{document}", ErrMalformed)
	}
	if err := checkBraces(code); err != nil {
		return err
	}
	return checkEnvironments(code)
}

// stripComments removes unescaped % comments up to the end of each line.
func stripComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if idx := commentStart(line); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

func commentStart(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return i
		}
	}
	return -1
}

func checkBraces(code string) error {
	depth := 0
	line := 1
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '\\':
			// Skip the escaped character, so \{ \} and \\ are not counted.
			i++
			if i < len(code) && code[i] == '\n' {
				line++
			}
		case '\n':
			line++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unmatched } on line %d", ErrMalformed, line)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed {", ErrMalformed, depth)
	}
	return nil
}

func checkEnvironments(code string) error {
	var stack []string
	for _, m := range environment.FindAllStringSubmatch(code, -1) {
		name := strings.TrimSpace(m[2])
		if m[1] == "begin" {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 {
			return fmt.Errorf("%w: \\end{%s} without \\begin", ErrMalformed, name)
		}
		if top := stack[len(stack)-1]; top != name {
			return fmt.Errorf("%w: \\begin{%s} ended by \\end{%s}", ErrMalformed, top, name)
		}
		stack = stack[:len(stack)-1]
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: \\begin{%s} never ended", ErrMalformed, stack[len(stack)-1])
	}
	return nil
}
