package copier_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/core/copier"
	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

func newPage(t *testing.T, dir string, kind page.Kind) *page.Page {
	t.Helper()
	p := page.New(dir, kind)
	require.NoError(t, p.Create())
	return p
}

// withImage gives p one image file and a source referencing it.
func withImage(t *testing.T, p *page.Page, text string) string {
	t.Helper()
	img := filepath.Join(p.ImageDir(), "42")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0644))
	require.NoError(t, storage.Write(p.TextPath(), `<p>`+text+`</p><p><img src="`+filepath.ToSlash(img)+`"/></p>`))
	return img
}

func TestCopy(t *testing.T) {
	root := t.TempDir()
	src := newPage(t, filepath.Join(root, "pages", "100"), page.Article)
	withImage(t, src, "hello")
	require.NoError(t, src.SetTag(page.TagSourceURL, "https://example.com/a"))
	require.NoError(t, storage.Write(src.Notes().TextPath(), "<p>note</p>"))

	dst := newPage(t, filepath.Join(root, "pages_recycle_bin", "100"), page.Article)
	c := copier.New(zerolog.Nop())
	require.NoError(t, c.Copy(src, dst))

	source := dst.Source()
	assert.Contains(t, source, "pages_recycle_bin/100/images/42")
	assert.NotContains(t, source, "pages/100/")
	assert.True(t, storage.Exists(filepath.Join(dst.ImageDir(), "42")))
	assert.Equal(t, "https://example.com/a", dst.SourceURL())
	assert.Equal(t, "<p>note</p>", dst.Notes().Source())

	// the original is untouched
	assert.Contains(t, src.Source(), "pages/100/images/42")
}

func TestAppend(t *testing.T) {
	root := t.TempDir()
	first := newPage(t, filepath.Join(root, "pages", "100"), page.Editable)
	withImage(t, first, "one")
	second := newPage(t, filepath.Join(root, "pages", "200"), page.Editable)
	require.NoError(t, second.SetSource("<p>two</p>"))

	target := newPage(t, filepath.Join(root, "pages", "300"), page.Editable)
	c := copier.New(zerolog.Nop())
	require.NoError(t, c.Append(first, target))
	require.NoError(t, c.Append(second, target))

	source := target.Source()
	assert.True(t, strings.HasPrefix(source, "<p>one</p>"))
	assert.True(t, strings.HasSuffix(source, "<p>two</p>"))
	assert.Contains(t, source, "pages/300/images/42")
	assert.True(t, storage.Exists(filepath.Join(target.ImageDir(), "42")))
}

func TestRelocate(t *testing.T) {
	p := newPage(t, filepath.Join(t.TempDir(), "pages", "100"), page.Editable)
	require.NoError(t, storage.Write(p.TextPath(),
		`<p>x</p><p><img src="/elsewhere/data/pages/100/images/7"/></p><p><img src="/mypages/100/images/8"/></p>`))

	c := copier.New(zerolog.Nop())
	require.NoError(t, c.Relocate(p))

	source := p.Source()
	assert.Contains(t, source, `src="`+filepath.ToSlash(p.Dir)+`/images/7"`)
	assert.Contains(t, source, `src="/mypages/100/images/8"`)

	// nothing left to rewrite
	before := p.Source()
	require.NoError(t, c.Relocate(p))
	assert.Equal(t, before, p.Source())
}
