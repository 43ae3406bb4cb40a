// Package render provides the exporters for stored pages.
// This file implements the Markdown renderer, which prefixes the
// Markdown with a YAML front matter block describing the page.
package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/pagenote/core"
)

// frontMatter is the YAML header of a Markdown export.
type frontMatter struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Editable bool   `yaml:"editable"`
	Created  string `yaml:"created"`
	Modified string `yaml:"modified"`
}

// MarkdownRenderer writes Markdown behind a front matter block.
type MarkdownRenderer struct {
	// Bare drops the front matter.
	Bare bool
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown as bytes.
func (r *MarkdownRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	if r.Bare {
		return []byte(markdown), nil
	}
	header, err := yaml.Marshal(frontMatter{
		Name:     meta.Name,
		Title:    meta.Title,
		Source:   meta.SourceURL,
		Editable: meta.Editable,
		Created:  meta.CreatedAt,
		Modified: meta.ModifiedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(markdown)
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
