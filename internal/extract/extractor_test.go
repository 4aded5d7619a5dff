package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/latexify/internal/models"
	"github.com/xuri/excelize/v2"
)

func extractBytes(t *testing.T, content []byte, format models.Format) string {
	t.Helper()
	got, err := NewRegistry().Extract(models.SourceDocument{Name: "doc", Format: format, Content: content})
	if err != nil {
		t.Fatalf("Extract(%s): %v", format, err)
	}
	return got
}

func TestExtract_plain(t *testing.T) {
	got := extractBytes(t, []byte("Hello world\nLine 2"), models.FormatPlain)
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainUTF8(t *testing.T) {
	got := extractBytes(t, []byte("caf\xc3\xa9"), models.FormatPlain)
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainInvalidUTF8(t *testing.T) {
	got := extractBytes(t, []byte("hello\x80world"), models.FormatPlain)
	if got != "hello\uFFFDworld" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainNormalizesParagraphs(t *testing.T) {
	got := extractBytes(t, []byte("\xef\xbb\xbfFirst\r\n\r\n\r\n\r\nSecond\x00 \x07line  \r\n"), models.FormatPlain)
	if got != "First\n\nSecond line" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got := extractBytes(t, buf.Bytes(), models.FormatXLSX)
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractFile_plain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.TXT")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := NewRegistry().ExtractFile(path, "")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtractFile_hintOverridesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.bin")
	if err := os.WriteFile(path, []byte("hinted"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewRegistry().ExtractFile(path, "plain")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if got != "hinted" {
		t.Errorf("got %q", got)
	}
}

func TestRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")
	if err := os.WriteFile(path, []byte("# Report"), 0600); err != nil {
		t.Fatal(err)
	}
	doc, err := NewRegistry().Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Name != path || doc.Format != models.FormatPlain || string(doc.Content) != "# Report" {
		t.Errorf("got %+v", doc)
	}

	_, err = NewRegistry().Load(filepath.Join(dir, "missing.pptx"), "")
	var unsupported *UnsupportedFormatError
	if err == nil || errors.As(err, &unsupported) {
		t.Errorf("missing supported file: got %v, want read error", err)
	}
}

func TestExtractFile_excel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Searchable text")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	got, err := NewRegistry().ExtractFile(path, "")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if got != "Searchable text" {
		t.Errorf("got %q", got)
	}
}

func TestExtractFile_nonexistent(t *testing.T) {
	_, err := NewRegistry().ExtractFile("/nonexistent/path/file.txt", "")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		t.Errorf("read failure should not be an ExtractionError: %v", err)
	}
}

func TestExtract_unsupportedFormat(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"notes.xyz", "noext"} {
		_, err := r.Extract(models.NewSourceDocument(name, []byte("raw content"), ""))
		var unsupported *UnsupportedFormatError
		if !errors.As(err, &unsupported) {
			t.Errorf("%s: got %v, want UnsupportedFormatError", name, err)
		}
	}
}

func TestExtractFile_unsupportedBeforeRead(t *testing.T) {
	_, err := NewRegistry().ExtractFile("/nonexistent/file.odt", "")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want UnsupportedFormatError", err)
	}
	if unsupported.Format != "odt" {
		t.Errorf("format: got %q", unsupported.Format)
	}
}

// minimalDocx returns a minimal .docx zip whose word/document.xml holds one paragraph per text.
func minimalDocx(texts ...string) []byte {
	var body string
	for _, text := range texts {
		body += `<w:p w:rsidR="00A1"><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

// minimalDocxWithContentTypes returns a .docx zip with [Content_Types].xml pointing to a custom document path.
func minimalDocxWithContentTypes(text, docPath string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/` + docPath + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtract_docx(t *testing.T) {
	got := extractBytes(t, minimalDocx("Converted docx content"), models.FormatDOCX)
	if got != "Converted docx content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxParagraphOrder(t *testing.T) {
	got := extractBytes(t, minimalDocx("Introduction", "Tom &amp; Jerry &lt;3", "Conclusion"), models.FormatDOCX)
	want := "Introduction\n\nTom & Jerry <3\n\nConclusion"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_docxRunsTabsAndBreaks(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Na</w:t></w:r><w:r><w:t>me</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Next line</w:t></w:r></w:p><w:p/></w:body></w:document>`))
	_ = w.Close()

	got := extractBytes(t, buf.Bytes(), models.FormatDOCX)
	if got != "Name\tValue\nNext line" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxWithDocument2(t *testing.T) {
	got := extractBytes(t, minimalDocxWithContentTypes("Content from document2", "word/document2.xml"), models.FormatDOCX)
	if got != "Content from document2" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxContentTypesReversedOrder(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document3.xml"/>
</Types>`))
	fw, _ := w.Create("word/document3.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Reversed order test</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	got := extractBytes(t, buf.Bytes(), models.FormatDOCX)
	if got != "Reversed order test" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxNotZip(t *testing.T) {
	_, err := NewRegistry().Extract(models.NewSourceDocument("broken.docx", []byte("definitely not a zip"), ""))
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("got %v, want ExtractionError", err)
	}
	if extractErr.Format != models.FormatDOCX {
		t.Errorf("format: got %q", extractErr.Format)
	}
}

func TestExtract_docxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("word/styles.xml")
	_ = w.Close()
	_, err := NewRegistry().Extract(models.SourceDocument{Format: models.FormatDOCX, Content: buf.Bytes()})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Errorf("got %v, want ExtractionError", err)
	}
}

func slideXML(paragraphs ...string) string {
	var body string
	for _, p := range paragraphs {
		body += `<a:p><a:pPr lvl="0"/><a:r><a:rPr lang="en-US"/><a:t>` + p + `</a:t></a:r></a:p>`
	}
	return `<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody>` + body + `</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

// minimalPptx returns minimal .pptx zip bytes with one slide containing the given text in <a:t> tags.
func minimalPptx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("ppt/slides/slide1.xml")
	_, _ = fw.Write([]byte(slideXML(text)))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtract_pptx(t *testing.T) {
	got := extractBytes(t, minimalPptx("Converted pptx content"), models.FormatPPTX)
	if got != "Converted pptx content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_pptxSlideOrder(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	// Written out of order: zip order must not decide slide order.
	for _, s := range []struct{ name, xml string }{
		{"ppt/slides/slide10.xml", slideXML("Tenth slide")},
		{"ppt/slides/slide2.xml", slideXML("Second slide", "Bullet")},
		{"ppt/slides/_rels/slide1.xml.rels", "<Relationships/>"},
		{"ppt/slides/slide1.xml", slideXML("First slide")},
	} {
		fw, _ := w.Create(s.name)
		_, _ = fw.Write([]byte(s.xml))
	}
	_ = w.Close()

	got := extractBytes(t, buf.Bytes(), models.FormatPPTX)
	want := "First slide\n\nSecond slide\nBullet\n\nTenth slide"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_pptxLineBreak(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("ppt/slides/slide1.xml")
	_, _ = fw.Write([]byte(`<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody>` +
		`<a:p><a:r><a:t>First line</a:t></a:r><a:br/><a:r><a:t>Second line</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>Next</a:t></a:r><a:br><a:rPr lang="en-US"/></a:br><a:r><a:t>para</a:t></a:r></a:p>` +
		`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`))
	_ = w.Close()

	got := extractBytes(t, buf.Bytes(), models.FormatPPTX)
	want := "First line\nSecond line\nNext\npara"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_pptxEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("ppt/slides/other.xml")
	_, _ = w.Create("docProps/core.xml")
	_ = w.Close()
	got := extractBytes(t, buf.Bytes(), models.FormatPPTX)
	if got != "" {
		t.Errorf("got %q", got)
	}
}

func TestExtractFile_pptx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(path, minimalPptx("Converted from file"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewRegistry().ExtractFile(path, "")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if got != "Converted from file" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_pptxNotZip(t *testing.T) {
	_, err := NewRegistry().Extract(models.SourceDocument{Format: models.FormatPPTX, Content: []byte("not a zip")})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Errorf("got %v, want ExtractionError", err)
	}
}

func TestExtract_pdfMalformed(t *testing.T) {
	_, err := NewRegistry().Extract(models.SourceDocument{Format: models.FormatPDF, Content: []byte("%PDF-1.4 garbage")})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Errorf("got %v, want ExtractionError", err)
	}
}

// minimalODF returns zip bytes with content.xml set to contentXML.
func minimalODF(contentXML string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("content.xml")
	_, _ = fw.Write([]byte(contentXML))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtract_odp(t *testing.T) {
	contentXML := `<office:document><office:body>` +
		`<draw:page><text:h>Slide title</text:h><text:p>Body <text:span>text</text:span></text:p></draw:page>` +
		`<draw:page><text:p>Second page</text:p></draw:page>` +
		`</office:body></office:document>`
	got := extractBytes(t, minimalODF(contentXML), models.FormatODP)
	want := "Slide title\nBody text\n\nSecond page"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_ods(t *testing.T) {
	contentXML := `<office:document><office:body><table:table><table:table-row><table:table-cell><text:p>Cell A</text:p></table:table-cell><table:table-cell><text:p><text:span>Cell B</text:span></text:p></table:table-cell></table:table-row></table:table></office:body></office:document>`
	got := extractBytes(t, minimalODF(contentXML), models.FormatODS)
	if got != "Cell A\nCell B" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_odfContentNotFound(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	for _, format := range []models.Format{models.FormatODP, models.FormatODS} {
		_, err := NewRegistry().Extract(models.SourceDocument{Format: format, Content: buf.Bytes()})
		if err == nil {
			t.Errorf("%s: expected error when content.xml missing", format)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("rtf", ExtractorFunc(func(content []byte) (string, error) {
		return "rtf:" + string(content), nil
	}))
	if !r.Supports("rtf") {
		t.Fatal("rtf should be supported after Register")
	}
	got, err := r.Extract(models.NewSourceDocument("letter.rtf", []byte("body"), ""))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "rtf:body" {
		t.Errorf("got %q", got)
	}
}

func TestRegistry_panicBecomesExtractionError(t *testing.T) {
	r := NewRegistry()
	r.Register(models.FormatPDF, ExtractorFunc(func([]byte) (string, error) {
		panic("bad xref")
	}))
	_, err := r.Extract(models.SourceDocument{Format: models.FormatPDF})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Errorf("got %v, want ExtractionError", err)
	}
}

func TestRegistry_Formats(t *testing.T) {
	formats := NewRegistry().Formats()
	if len(formats) != 7 {
		t.Fatalf("got %v", formats)
	}
	if formats[0] != models.FormatDOCX {
		t.Errorf("formats should be sorted: %v", formats)
	}
}

func TestStripPageNumbers(t *testing.T) {
	in := "Chapter 1\n12\nBody text with 42 in it\n- 3 -\nPage 4 of 10\npage 7\nEnd"
	want := "Chapter 1\nBody text with 42 in it\nEnd"
	if got := stripPageNumbers(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"form feed is a paragraph break", "page one\fpage two", "page one\n\npage two"},
		{"collapses blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"strips controls keeps tabs", "a\x01\tb\x1b", "a\tb"},
		{"trailing spaces", "a   \nb\t\n", "a\nb"},
		{"empty", "  \n\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistry_FormatFor(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		path, hint string
		want       models.Format
		ok         bool
	}{
		{"report.PDF", "", models.FormatPDF, true},
		{"notes.md", "", models.FormatPlain, true},
		{"upload.bin", "docx", models.FormatDOCX, true},
		{"slides.pptx", ".txt", models.FormatPlain, true},
		{"archive.rar", "", models.Format("rar"), false},
	}
	for _, tt := range tests {
		got, ok := r.FormatFor(tt.path, tt.hint)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFor(%q, %q) = %q, %v; want %q, %v", tt.path, tt.hint, got, ok, tt.want, tt.ok)
		}
	}
}
