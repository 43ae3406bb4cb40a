// Package copier clones page content from one stored page into another,
// rewriting the image references embedded in the source so they point at
// the destination page.
package copier

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// Copier is stateless apart from its logger.
type Copier struct {
	log zerolog.Logger
}

// New creates a Copier.
func New(log zerolog.Logger) *Copier {
	return &Copier{log: log}
}

// Copy makes blank a clone of original: rewritten source, images,
// metadata and, for articles, the notes sub-page directory. Both pages
// must exist on disk.
func (c *Copier) Copy(original, blank *page.Page) error {
	source := rewritePaths(original.Source(), original.Dir, blank.Dir)

	if err := storage.CopyFilesToDir(original.ImageDir(), blank.ImageDir()); err != nil {
		return c.fail(original, blank, "copying images", err)
	}
	if storage.Exists(original.MetadataPath()) {
		if err := storage.CopyFile(original.MetadataPath(), blank.MetadataPath()); err != nil {
			return c.fail(original, blank, "copying metadata", err)
		}
	}
	if err := storage.Write(blank.TextPath(), source); err != nil {
		return c.fail(original, blank, "writing source", err)
	}
	if original.Notes() != nil && storage.Exists(original.NotesDir()) {
		if err := storage.CopyDir(original.NotesDir(), blank.NotesDir()); err != nil {
			return c.fail(original, blank, "copying notes", err)
		}
	}

	c.log.Debug().Str("from", original.Dir).Str("to", blank.Dir).Msg("page copied")
	return nil
}

// Append adds original's source and images to the end of target's. It
// writes storage directly, so target must be allowed to hold the result.
func (c *Copier) Append(original, target *page.Page) error {
	source := rewritePaths(original.Source(), original.Dir, target.Dir)

	if err := storage.CopyFilesToDir(original.ImageDir(), target.ImageDir()); err != nil {
		return c.fail(original, target, "copying images", err)
	}
	if err := storage.Write(target.TextPath(), target.Source()+source); err != nil {
		return c.fail(original, target, "appending source", err)
	}
	return nil
}

// Relocate points every image reference of p that ends in p's
// "<collection>/<name>/" suffix at p's own directory, whatever storage
// root it was written under. Imported pages need this.
func (c *Copier) Relocate(p *page.Page) error {
	return c.RelocateFrom(p, p.Name())
}

// RelocateFrom is Relocate for a page that was stored as storedAs before
// it got its current name.
func (c *Copier) RelocateFrom(p *page.Page, storedAs string) error {
	old := filepath.Join(filepath.Dir(p.Dir), storedAs)
	re := regexp.MustCompile(`(src=")(?:[^"]*/)?` + regexp.QuoteMeta(rootRelative(old)))
	source := p.Source()
	relocated := re.ReplaceAllString(source, "${1}"+filepath.ToSlash(p.Dir)+"/")
	if relocated == source {
		return nil
	}
	if err := storage.Write(p.TextPath(), relocated); err != nil {
		c.log.Error().Err(err).Str("page", p.Dir).Msg("relocating source")
		return fmt.Errorf("relocating %s: %w", p.Name(), err)
	}
	return nil
}

func (c *Copier) fail(from, to *page.Page, what string, err error) error {
	c.log.Error().Err(err).Str("from", from.Dir).Str("to", to.Dir).Msg(what)
	return fmt.Errorf("%s from %s to %s: %w", what, from.Name(), to.Name(), err)
}

// rewritePaths swaps references to oldDir for newDir. Only the
// "<collection>/<name>/" suffix of each directory is matched, so sources
// written under a different storage root are rewritten too.
func rewritePaths(source, oldDir, newDir string) string {
	return strings.ReplaceAll(source, rootRelative(oldDir), rootRelative(newDir))
}

func rootRelative(dir string) string {
	dir = filepath.Clean(dir)
	collection := filepath.Base(filepath.Dir(dir))
	return filepath.ToSlash(filepath.Join(collection, filepath.Base(dir))) + "/"
}
