package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/core/normalize"
)

func TestNormalize(t *testing.T) {
	n := normalize.New()

	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{"Paragraphs", "<p>one</p><p>two</p>", []string{"one\n\ntwo"}},
		{"Bold", "<p><b>Title</b></p>", []string{"**Title**"}},
		{"Heading", "<h1>Top</h1><p>text</p>", []string{"# Top"}},
		{"Image", `<p><img src="/data/pages/1/images/2"/></p>`, []string{"![](/data/pages/1/images/2)"}},
		{"Link", `<p><a href="https://example.com">site</a></p>`, []string{"[site](https://example.com)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := n.Normalize(tt.html)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, md, want)
			}
			assert.NotContains(t, md, "\n\n\n")
			assert.Equal(t, byte('\n'), md[len(md)-1])
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := normalize.New()
	for _, html := range []string{"", "  ", "<p></p>", "<p> </p><p>\n</p>"} {
		md, err := n.Normalize(html)
		require.NoError(t, err)
		assert.Empty(t, md, "input %q", html)
	}
}
