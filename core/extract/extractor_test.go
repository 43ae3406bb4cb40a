package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/core/extract"
)

const article = `<html>
<head><title> Saved Post </title><style>p { color: red }</style></head>
<body>
  <nav><a href="/home">Home</a></nav>
  <main>
    <h1>Heading</h1>
    <p>First paragraph.</p><p>Second <b>paragraph</b>.</p>
    <img src="/img/a.png">
    <img src="https://cdn.example.org/b.jpg">
    <a href="related">Related</a>
    <script>track()</script>
  </main>
  <footer>Footer text</footer>
</body>
</html>`

func TestParse(t *testing.T) {
	doc, err := extract.New().Parse(article, "https://example.com/posts/1")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/posts/1", doc.URL)
	assert.Equal(t, "Saved Post", doc.Title)
	assert.Equal(t, "Heading First paragraph. Second paragraph. Related", doc.Text)
	assert.Equal(t, []string{
		"https://example.com/img/a.png",
		"https://cdn.example.org/b.jpg",
	}, doc.ImageURLs)
	assert.Equal(t, []string{
		"https://example.com/home",
		"https://example.com/posts/related",
	}, doc.LinkURLs)
}

func TestParseTitleFallsBackToHeading(t *testing.T) {
	doc, err := extract.New().Parse(`<body><h1>Only Heading</h1><p>x</p></body>`, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Only Heading", doc.Title)
}

func TestParseDropsNoise(t *testing.T) {
	doc, err := extract.New().Parse(article, "https://example.com/posts/1")
	require.NoError(t, err)

	assert.NotContains(t, doc.Text, "Footer text")
	assert.NotContains(t, doc.Text, "track()")
	assert.NotContains(t, doc.Text, "Home")
}

func TestParseRejectsBadURL(t *testing.T) {
	_, err := extract.New().Parse(article, "://bad")
	assert.Error(t, err)
}
