package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// pptxSlidePath matches slide XML files inside a .pptx zip and captures the slide number.
var pptxSlidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

var (
	// aParagraph matches a DrawingML paragraph (<a:p>), not <a:pPr> or <a:p/>.
	aParagraph = regexp.MustCompile(`(?s)<a:p(?:\s[^>]*[^/])?>(.*?)</a:p>`)
	// aRun matches <a:t>text</a:t> (group 1) or the opening of an <a:br> line break (group 2).
	aRun = regexp.MustCompile(`(?s)<a:t(?:\s[^>]*)?>(.*?)</a:t>|<a:(br)\b[^>]*>`)
)

type pptxSlide struct {
	number int
	name   string
}

// extractPPTX extracts text from .pptx bytes. Slides are read in slide-number order
// (zip order is not reliable); within a slide, shapes and paragraphs keep document
// order, one paragraph per line. Slides are separated by a blank line.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}

	var slides []pptxSlide
	for _, f := range zr.File {
		m := pptxSlidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, pptxSlide{number: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	blocks := make([]string, 0, len(slides))
	for _, s := range slides {
		data, err := readZipEntry(zr, s.name)
		if err != nil {
			return "", fmt.Errorf("PPTX: %w", err)
		}
		var lines []string
		for _, p := range aParagraph.FindAllStringSubmatch(string(data), -1) {
			if text := strings.TrimSpace(slideParagraphText(p[1])); text != "" {
				lines = append(lines, text)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

// slideParagraphText joins the text runs of one paragraph, turning <a:br/> into a newline.
func slideParagraphText(body string) string {
	var b strings.Builder
	for _, m := range aRun.FindAllStringSubmatch(body, -1) {
		if m[2] == "br" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(xmlText(m[1]))
	}
	return b.String()
}
