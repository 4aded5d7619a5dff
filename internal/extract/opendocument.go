package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// odfContentPath is the path to the main content inside OpenDocument zips.
const odfContentPath = "content.xml"

// odfParagraph matches text:p and text:h elements in document order.
var odfParagraph = regexp.MustCompile(`(?s)<text:(p|h)(?:\s[^>]*[^/])?>(.*?)</text:(?:p|h)>`)

// extractODP extracts presentation text; each draw:page becomes one block.
func extractODP(content []byte) (string, error) {
	return extractOpenDocument(content, "ODP", "</draw:page>")
}

// extractODS extracts spreadsheet text; each table:table becomes one block.
func extractODS(content []byte) (string, error) {
	return extractOpenDocument(content, "ODS", "</table:table>")
}

// extractOpenDocument reads content.xml and emits one line per text:p/text:h,
// with a blank line between the blocks delimited by blockEnd.
func extractOpenDocument(content []byte, kind, blockEnd string) (string, error) {
	zr, err := openZip(content, kind)
	if err != nil {
		return "", err
	}
	data, err := readZipEntry(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	if data == nil {
		return "", fmt.Errorf("%s: %s not found", kind, odfContentPath)
	}

	var blocks []string
	for _, block := range strings.Split(string(data), blockEnd) {
		var lines []string
		for _, m := range odfParagraph.FindAllStringSubmatch(block, -1) {
			if text := strings.TrimSpace(xmlText(m[2])); text != "" {
				lines = append(lines, text)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}
