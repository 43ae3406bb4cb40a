// Package extract implements the Parser interface.
// It isolates the main content from a full HTML page by:
//  1. Finding the best content container (<main>, <article>, or <body>)
//  2. Removing noise elements (nav, footer, scripts, forms, etc.)
//
// Parse also collects the title, the image sources and the outbound
// links of the page, all resolved to absolute URLs.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/crawl"
)

// noiseSelectors are HTML elements removed before extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// blockSelector lists elements whose text must not run into the next block.
const blockSelector = "p, div, li, br, h1, h2, h3, h4, h5, h6, blockquote, pre, tr, td, th, figcaption"

// HTMLExtractor strips noise from HTML and reduces it to a Document.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Parse builds a Document from raw HTML fetched from pageURL.
// Images and links are collected from the whole page before noise removal.
func (e *HTMLExtractor) Parse(html string, pageURL string) (*core.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	out := &core.Document{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if out.Title == "" {
		out.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if resolved := crawl.ResolveURL(src, base); resolved != "" {
			out.ImageURLs = append(out.ImageURLs, resolved)
		}
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := crawl.ResolveURL(href, base); resolved != "" {
			out.LinkURLs = append(out.LinkURLs, resolved)
		}
	})

	content, err := mainContent(doc)
	if err != nil {
		return nil, err
	}
	content.Find(blockSelector).AfterHtml(" ")
	out.Text = strings.Join(strings.Fields(content.Text()), " ")

	return out, nil
}

// mainContent removes noise and returns the best content container.
// <main> is the most semantically correct, then <article>, then <body>.
func mainContent(doc *goquery.Document) (*goquery.Selection, error) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			return sel.First(), nil
		}
	}
	return nil, fmt.Errorf("no content container found in HTML")
}
