package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	w, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	path, err := w.WritePage("1712345678901", "https://www.example.com/docs/intro/", []byte("body"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1712345678901_example_com_docs_intro.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))

	path, err = w.WritePage("1712345678902", "", []byte("x"), ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1712345678902.json"), path)
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com", "example_com"},
		{"https://www.example.com/a/b", "example_com_a_b"},
		{"https://example.com:8080/a-b", "example_com_8080_a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filenameFromURL(tt.url), tt.url)
	}
	assert.Equal(t, "a_b_c", sanitize("a/b.c"))
}
