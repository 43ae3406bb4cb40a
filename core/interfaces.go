// Package core defines the shared types and collaborator interfaces for pagenote.
// Each collaborator (fetching, parsing, exporting) is a small, testable interface
// so the notebook and downloader can be exercised without a network.
package core

import "context"

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Document is a parsed remote page, reduced to what a page needs.
type Document struct {
	URL       string
	Title     string
	Text      string   // plain-text body, noise removed
	ImageURLs []string // absolute URLs of <img> elements, document order
	LinkURLs  []string // absolute URLs of <a href> elements, document order
}

// Image is one downloaded image.
type Image struct {
	URL  string
	Data []byte
}

// WebsiteData is the bundle a fetch task delivers: the document and
// every image that could be retrieved.
type WebsiteData struct {
	Document *Document
	Images   []Image
}

// PageMetadata holds the descriptive fields of a stored page used by exporters.
type PageMetadata struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	SourceURL  string `json:"source_url,omitempty"`
	Editable   bool   `json:"editable"`
	CreatedAt  string `json:"created_at"`  // ISO8601
	ModifiedAt string `json:"modified_at"` // ISO8601
}

// Section represents a heading-delimited section of content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading represents a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageContent holds the text and structured content of a page.
type PageContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// PageStructure holds structural metadata parsed from the content.
type PageStructure struct {
	Headings []Heading `json:"headings"`
	Links    []Link    `json:"links"`
	Images   int       `json:"images"`
	Lists    int       `json:"lists"`
}

// PageJSON is the complete JSON export of a single page.
type PageJSON struct {
	Metadata  PageMetadata  `json:"metadata"`
	Content   PageContent   `json:"content"`
	Structure PageStructure `json:"structure"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// BinaryFetcher retrieves raw bytes (images) from a URL.
type BinaryFetcher interface {
	FetchBinary(ctx context.Context, url string) ([]byte, error)
}

// Parser turns fetched HTML into a Document, resolving relative URLs against url.
type Parser interface {
	Parse(html string, url string) (*Document, error)
}

// Normalizer converts page markup into Markdown (the canonical export format).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta PageMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
