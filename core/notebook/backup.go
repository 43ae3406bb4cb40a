package notebook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gaurav-prasanna/pagenote/core/archive"
	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// Backup zips the active pages root into the configured backup path.
func (nb *Notebook) Backup() (string, error) {
	path, err := archive.Zip(nb.cfg.PagesDir(), nb.cfg.BackupPath())
	if err != nil {
		nb.log.Error().Err(err).Msg("backing up pages")
		return "", err
	}
	nb.log.Info().Str("archive", path).Msg("pages backed up")
	return path, nil
}

// Import adds the pages stored in a backup archive to the active index.
// Pages whose name is already active are skipped. The imported pages are
// returned newest first.
func (nb *Notebook) Import(archivePath string) ([]*page.Page, error) {
	tmp, err := os.MkdirTemp("", "pagenote-import-*")
	if err != nil {
		return nil, fmt.Errorf("creating import directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if _, err := archive.Unzip(archivePath, tmp); err != nil {
		nb.log.Error().Err(err).Str("archive", archivePath).Msg("unpacking backup")
		return nil, err
	}
	root := filepath.Join(tmp, filepath.Base(nb.cfg.PagesDir()))
	if !storage.Exists(root) {
		root = tmp
	}
	names, err := storage.ListDirs(root)
	if err != nil {
		return nil, err
	}

	var (
		imported []*page.Page
		errs     []error
	)
	for _, name := range names {
		src := filepath.Join(root, name)
		if !storage.Exists(filepath.Join(src, "text")) {
			continue
		}
		p, err := nb.importPage(src, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p != nil {
			imported = append(imported, p)
		}
	}

	// Insert the oldest first so the newest import ends up at the front.
	page.SortByLastModified(imported)
	for _, p := range slices.Backward(imported) {
		nb.mu.Lock()
		added := nb.insertFront(p)
		nb.mu.Unlock()
		if !added {
			continue
		}
		p.AddListener(nb)
		nb.emit(func(l Listener) { l.OnCreated(p) })
	}

	nb.log.Info().Int("pages", len(imported)).Str("archive", archivePath).Msg("backup imported")
	return imported, errors.Join(errs...)
}

// importPage copies one unpacked page into the active root. A name taken
// by an active page skips the import; a name taken in the recycle bin
// gets the page a fresh name so deleting it later cannot clobber the
// recycled copy.
func (nb *Notebook) importPage(src, name string) (*page.Page, error) {
	nb.mu.Lock()
	if storage.Exists(filepath.Join(nb.cfg.PagesDir(), name)) || indexOf(nb.pages, name) >= 0 {
		nb.mu.Unlock()
		nb.log.Warn().Str("page", name).Msg("page exists, import skipped")
		return nil, nil
	}
	target := name
	if storage.Exists(filepath.Join(nb.cfg.RecycleBinDir(), name)) || indexOf(nb.bin, name) >= 0 {
		target = nb.allocateName()
		nb.log.Warn().Str("page", name).Str("as", target).Msg("name taken in recycle bin, page renamed")
	}
	dst := filepath.Join(nb.cfg.PagesDir(), target)
	err := storage.CopyDir(src, dst)
	nb.mu.Unlock()
	if err != nil {
		_ = storage.RemoveAll(dst)
		return nil, fmt.Errorf("importing %s: %w", name, err)
	}

	p := page.Open(dst, page.WithLogger(nb.log))
	if p.InRecycleBin() {
		if err := p.SetInRecycleBin(false); err != nil {
			return nil, err
		}
	}
	if err := nb.copier.RelocateFrom(p, name); err != nil {
		return nil, err
	}
	return p, nil
}
