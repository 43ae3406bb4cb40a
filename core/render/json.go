// JSON renderer. Builds the structured export of a page from its Markdown
// and metadata: headings, sections, links, image and list counts.

package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagenote/core"
)

var (
	headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	// linkRegex matches links [text](url) and, with a leading "!", images.
	linkRegex     = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)
	listItemRegex = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]`)
	emphasisRegex = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	blankRunRegex = regexp.MustCompile(`\n{3,}`)
)

// JSONRenderer produces structured JSON output from Markdown.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render converts Markdown and metadata into a core.PageJSON document.
func (r *JSONRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	links, images := scanLinks(markdown)

	page := core.PageJSON{
		Metadata: meta,
		Content: core.PageContent{
			Text:     stripMarkdown(markdown),
			Markdown: markdown,
			Sections: splitSections(markdown),
		},
		Structure: core.PageStructure{
			Headings: extractHeadings(markdown),
			Links:    links,
			Images:   images,
			Lists:    len(listItemRegex.FindAllStringIndex(markdown, -1)),
		},
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func extractHeadings(md string) []core.Heading {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]core.Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, core.Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
	}
	return headings
}

// scanLinks returns the links of md and the number of images it embeds.
func scanLinks(md string) ([]core.Link, int) {
	links := []core.Link{}
	images := 0
	for _, m := range linkRegex.FindAllStringSubmatch(md, -1) {
		if m[1] == "!" {
			images++
			continue
		}
		links = append(links, core.Link{Text: m[2], Href: m[3]})
	}
	return links, images
}

// splitSections cuts md at every heading. Text before the first heading
// belongs to no section; nil is returned when md has no heading.
func splitSections(md string) []core.Section {
	bounds := headingRegex.FindAllStringSubmatchIndex(md, -1)
	if len(bounds) == 0 {
		return nil
	}

	sections := make([]core.Section, 0, len(bounds))
	for i, b := range bounds {
		end := len(md)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		sections = append(sections, core.Section{
			Heading: strings.TrimSpace(md[b[4]:b[5]]),
			Level:   b[3] - b[2],
			Text:    strings.TrimSpace(md[b[1]:end]),
		})
	}
	return sections
}

// stripMarkdown removes common Markdown formatting to produce plain text.
// Images vanish, links keep their text.
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkRegex.FindStringSubmatch(m)
		if sub[1] == "!" {
			return ""
		}
		return sub[2]
	})
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
