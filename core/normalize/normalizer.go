// Package normalize implements the Normalizer interface.
// It converts page markup into Markdown, the intermediate format every
// exporter renders from.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	// emptyParagraph matches the blank paragraphs editing leaves behind.
	emptyParagraph = regexp.MustCompile(`<p>\s*</p>`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize converts a page source into Markdown. Image references keep
// their stored paths.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	html = emptyParagraph.ReplaceAllString(html, "")
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = blankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown) + "\n", nil
}
