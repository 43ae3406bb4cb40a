package page

import (
	"html"
	"os"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// populate writes the body of a downloaded page: a title banner, one
// paragraph per sentence of the document text and one paragraph per
// image, then freezes the page.
func (p *Page) populate(data *core.WebsiteData) error {
	doc := data.Document

	var b strings.Builder
	b.WriteString("<p><b>" + html.EscapeString(strings.TrimSpace(doc.Title)) + "</b></p>")
	for _, s := range sentences(doc.Text) {
		b.WriteString("<p>" + html.EscapeString(s) + "</p>")
	}

	p.editMu.Lock()
	for _, img := range data.Images {
		path, err := p.newImagePath()
		if err == nil {
			err = os.WriteFile(path, img.Data, 0644)
		}
		if err != nil {
			p.log.Warn().Err(err).Str("url", img.URL).Msg("storing image")
			continue
		}
		b.WriteString(imageTag(path))
	}
	err := storage.Overwrite(p.TextPath(), b.String())
	p.editMu.Unlock()
	if err != nil {
		p.log.Error().Err(err).Msg("writing downloaded source")
		return err
	}

	if doc.URL != "" {
		if err := p.SetTag(TagSourceURL, doc.URL); err != nil {
			return err
		}
	}
	return p.SetEditable(false)
}

// sentences segments text into trimmed sentences. When the segmenter
// fails it falls back to splitting on ". ".
func sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		for _, s := range strings.Split(text, ". ") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
