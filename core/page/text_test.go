package page_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/core/page"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"Empty", "", ""},
		{"Paragraphs", "<p>Hello   world</p><p>Second<br>line</p>", "Hello world\n\nSecond\nline"},
		{"Image", "<p>a</p><p><img src=\"x\"/></p>", "a\n\n\uFFFC"},
		{"Script", "<p>keep</p><script>drop()</script>", "keep"},
		{"Inline", "<p><b>bold</b> and <i>italic</i></p>", "bold and italic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newEditable(t, tt.source)
			assert.Equal(t, tt.want, p.Text())
		})
	}
}

func TestTokenCursor(t *testing.T) {
	p := newEditable(t, "<p>Foo bar foo</p><p>FOO</p>")
	require.Equal(t, "Foo bar foo\n\nFOO", p.Text())

	assert.Equal(t, 0, p.NextPosition(), "no token set")
	assert.Equal(t, 3, p.NumOfTokens("foo"))

	p.SetTokenToBeFound("foo")
	assert.Equal(t, 0, p.NextPosition())
	assert.Equal(t, 8, p.NextPosition())
	assert.Equal(t, 13, p.NextPosition())
	assert.Equal(t, 13, p.NextPosition(), "clamped at the last match")

	assert.Equal(t, 13, p.PreviousPosition())
	assert.Equal(t, 8, p.PreviousPosition())
	assert.Equal(t, 0, p.PreviousPosition())
	assert.Equal(t, 0, p.PreviousPosition(), "clamped at the first match")

	p.SetTokenToBeFound("missing")
	assert.Equal(t, 0, p.NextPosition())
	assert.Equal(t, 0, p.PreviousPosition())
}

func TestNumOfTokensDoesNotOverlap(t *testing.T) {
	p := newEditable(t, "<p>aaaa</p>")
	assert.Equal(t, 2, p.NumOfTokens("aa"))
	assert.Equal(t, 0, p.NumOfTokens(""))
}

func TestContains(t *testing.T) {
	p := newEditable(t, "<p>The Quick brown</p><p>fox</p>")

	assert.True(t, p.Contains([]string{"quick", "FOX"}))
	assert.False(t, p.Contains([]string{"quick", "dog"}))
	assert.True(t, p.Contains(nil))
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "picture.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG"), 0644))
	return path
}

func imageFiles(t *testing.T, p *page.Page) []string {
	t.Helper()
	entries, err := os.ReadDir(p.ImageDir())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAddImage(t *testing.T) {
	t.Run("EmptyPage", func(t *testing.T) {
		p := newEditable(t, "")
		require.NoError(t, p.AddImage(writeImage(t), 0))

		files := imageFiles(t, p)
		require.Len(t, files, 1)
		assert.Equal(t, `<p><img src="`+filepath.Join(p.ImageDir(), files[0])+`"/></p>`, p.Source())
	})

	t.Run("AfterFirstParagraph", func(t *testing.T) {
		p := newEditable(t, "<p>one</p><p>two</p>")
		require.NoError(t, p.AddImage(writeImage(t), 0))

		files := imageFiles(t, p)
		require.Len(t, files, 1)
		img := `<p><img src="` + filepath.Join(p.ImageDir(), files[0]) + `"/></p>`
		assert.Equal(t, "<p>one</p>"+img+"<p>two</p>", p.Source())
	})

	t.Run("AfterSecondParagraph", func(t *testing.T) {
		p := newEditable(t, "<p>one</p><p>two</p>")
		require.NoError(t, p.AddImage(writeImage(t), 7))

		assert.True(t, strings.HasPrefix(p.Source(), "<p>one</p><p>two</p><p><img"))
	})
}

func TestImageGarbageCollection(t *testing.T) {
	p := newEditable(t, "")
	require.NoError(t, p.AddImage(writeImage(t), 0))
	require.NoError(t, p.AddImage(writeImage(t), 0))
	files := imageFiles(t, p)
	require.Len(t, files, 2)

	kept := `<p><img src="` + filepath.Join(p.ImageDir(), files[1]) + `"/></p>`
	require.NoError(t, p.SetSource(kept))
	assert.Equal(t, []string{files[1]}, imageFiles(t, p))

	require.NoError(t, p.SetSource("<p>no pictures</p>"))
	assert.Empty(t, imageFiles(t, p))
}

func TestAddHTMLTag(t *testing.T) {
	p := newEditable(t, "<p>one</p><p>two</p>")

	require.NoError(t, p.AddHTMLTag(7, "b"))
	assert.Equal(t, "<p>one</p><b><p>two</p></b>", p.Source())
	assert.Equal(t, "one\n\ntwo", p.Text())

	assert.Error(t, p.AddHTMLTag(0, "b onclick=x"))
}

func TestRemoveHTMLTags(t *testing.T) {
	p := newEditable(t, "<p><u>one</u></p><p><i>two</i> <u>x</u></p>")

	require.NoError(t, p.RemoveHTMLTags(7))
	assert.Equal(t, "<p><u>one</u></p><p>two x</p>", p.Source())
}

func TestEditingEmptyPageIsNoop(t *testing.T) {
	p := newEditable(t, "")
	require.NoError(t, p.AddHTMLTag(0, "b"))
	assert.Equal(t, "", p.Source())
}

func TestImageCollectionIgnoresBareNames(t *testing.T) {
	p := newEditable(t, "")
	require.NoError(t, p.AddImage(writeImage(t), 0))
	files := imageFiles(t, p)
	require.Len(t, files, 1)

	// The file name appears in the text but no image points at it.
	require.NoError(t, p.SetSource("<p>order "+files[0]+" shipped</p>"))
	assert.Empty(t, imageFiles(t, p))
}

func TestEditingDeletedPageFails(t *testing.T) {
	p := newEditable(t, "<p>gone</p>")
	require.NoError(t, p.Delete())

	assert.ErrorIs(t, p.SetSource("<p>ghost</p>"), page.ErrIllegalState)
	assert.ErrorIs(t, p.AddImage(writeImage(t), 0), page.ErrIllegalState)
	assert.ErrorIs(t, p.AddHTMLTag(0, "b"), page.ErrIllegalState)
	assert.True(t, p.Deleted())
	assert.NoDirExists(t, p.Dir)
}
