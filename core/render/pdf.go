// PDF renderer. Lays a page export out with gofpdf: a header with the
// page title and provenance, then one block per Markdown line (headings,
// list items, fenced code, stored images and plain paragraphs).

package render

import (
	"bytes"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/pagenote/core"
)

var (
	imageLine   = regexp.MustCompile(`^!\[[^\]]*\]\(([^)\s]+)\)$`)
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletItem  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	italicRegex = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	codeRegex   = regexp.MustCompile("`([^`]+)`")
	inlineLink  = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
)

var headingSizes = [...]float64{18, 15, 13, 12, 11, 10}

const (
	bodyFont  = "Helvetica"
	codeFont  = "Courier"
	bodySize  = 10
	lineBody  = 5.0
	lineCode  = 4.5
	marginEnd = 15
)

// PDFRenderer renders Markdown content as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// pdfDoc is the document being laid out.
type pdfDoc struct {
	*gofpdf.Fpdf
	inCode bool
}

// Render converts Markdown into PDF bytes.
func (r *PDFRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	doc := &pdfDoc{Fpdf: gofpdf.New("P", "mm", "A4", "")}
	doc.SetAutoPageBreak(true, marginEnd)
	doc.AddPage()
	doc.header(meta)

	for _, line := range strings.Split(markdown, "\n") {
		doc.line(line)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func (d *pdfDoc) header(meta core.PageMetadata) {
	if meta.Title != "" {
		d.SetFont(bodyFont, "B", headingSizes[0])
		d.MultiCell(0, 8, meta.Title, "", "L", false)
		d.Ln(4)
	}

	d.SetFont(bodyFont, "I", 9)
	d.SetTextColor(100, 100, 100)
	if meta.SourceURL != "" {
		d.MultiCell(0, lineBody, "Source: "+meta.SourceURL, "", "L", false)
	}
	d.MultiCell(0, lineBody, "Modified: "+meta.ModifiedAt, "", "L", false)
	d.SetTextColor(0, 0, 0)
	d.Ln(6)
}

func (d *pdfDoc) line(line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		d.inCode = !d.inCode
		d.Ln(2)
		return
	}
	if d.inCode {
		d.SetFont(codeFont, "", 9)
		d.SetFillColor(245, 245, 245)
		d.MultiCell(0, lineCode, line, "", "L", true)
		return
	}

	switch {
	case trimmed == "":
		d.Ln(3)
	case imageLine.MatchString(trimmed):
		d.image(imageLine.FindStringSubmatch(trimmed)[1])
	case headingLine.MatchString(line):
		m := headingLine.FindStringSubmatch(line)
		d.heading(m[2], len(m[1]))
	case bulletItem.MatchString(trimmed):
		d.paragraph("• " + bulletItem.FindStringSubmatch(trimmed)[1])
	default:
		// Numbered items keep their number and render as paragraphs.
		d.paragraph(trimmed)
	}
}

func (d *pdfDoc) heading(text string, level int) {
	size := headingSizes[min(level, len(headingSizes))-1]
	d.Ln(4)
	d.SetFont(bodyFont, "B", size)
	d.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	d.Ln(2)
}

func (d *pdfDoc) paragraph(text string) {
	d.SetFont(bodyFont, "", bodySize)
	d.MultiCell(0, lineBody, cleanInlineMarkdown(text), "", "L", false)
}

// image embeds a stored image scaled to the page width. Images are
// saved without an extension, so the type is sniffed from the bytes.
// Unsupported or unreadable files become a placeholder line.
func (d *pdfDoc) image(path string) {
	kind, data := imageType(path)
	if kind == "" {
		d.placeholder()
		return
	}

	opts := gofpdf.ImageOptions{ImageType: kind, ReadDpi: true}
	info := d.RegisterImageOptionsReader(path, opts, bytes.NewReader(data))
	if !d.Ok() || info == nil {
		d.ClearError()
		d.placeholder()
		return
	}

	pageWidth, _ := d.GetPageSize()
	left, _, right, _ := d.GetMargins()
	width := min(info.Width(), pageWidth-left-right)
	d.ImageOptions(path, -1, -1, width, 0, true, opts, 0, "")
	d.Ln(2)
}

func (d *pdfDoc) placeholder() {
	d.SetFont(bodyFont, "I", 9)
	d.MultiCell(0, lineBody, "[image]", "", "L", false)
}

// imageType returns the gofpdf image type of the file at path and its
// content, or "" when it cannot be embedded.
func imageType(path string) (string, []byte) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", data
	case "image/jpeg":
		return "JPG", data
	case "image/gif":
		return "GIF", data
	}
	return "", nil
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.NewReplacer("**", "", "__", "").Replace(text)
	// Italic markers only around whole words, so "don't*" survives.
	text = italicRegex.ReplaceAllString(text, " $1 ")
	text = codeRegex.ReplaceAllString(text, "$1")
	text = inlineLink.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
