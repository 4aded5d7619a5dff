package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
)

// innerTag matches any XML tag, used to strip markup left inside a run.
var innerTag = regexp.MustCompile(`<[^>]+>`)

// openZip opens content as a zip archive. kind names the format in errors.
func openZip(content []byte, kind string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: not a zip: %w", kind, err)
	}
	return zr, nil
}

// readZipEntry returns the bytes of the named entry, or nil when it is absent.
func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		_ = rc.Close()
		return buf.Bytes(), nil
	}
	return nil, nil
}

// xmlText decodes entities in raw XML character data.
func xmlText(s string) string {
	return html.UnescapeString(innerTag.ReplaceAllString(s, ""))
}
