package notebook

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// RecycleBin returns a copy of the recycled pages.
func (nb *Notebook) RecycleBin() []*page.Page {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return append([]*page.Page(nil), nb.bin...)
}

// RecycledPage returns the recycled page called name.
func (nb *Notebook) RecycledPage(name string) (*page.Page, error) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i := indexOf(nb.bin, name); i >= 0 {
		return nb.bin[i], nil
	}
	return nil, fmt.Errorf("%w in recycle bin: %s", ErrNotFound, name)
}

// OnDeleted runs while a page's storage is still intact. An active page
// is copied into the recycle bin before it disappears from the index; a
// recycled page is dropped for good.
func (nb *Notebook) OnDeleted(p *page.Page) {
	if p.InRecycleBin() {
		nb.mu.Lock()
		if i := indexOfPage(nb.bin, p); i >= 0 {
			nb.bin = append(nb.bin[:i], nb.bin[i+1:]...)
		}
		nb.mu.Unlock()
		p.RemoveListener(nb)
		nb.log.Info().Str("page", p.Name()).Msg("page deleted permanently")
		nb.emit(func(l Listener) { l.OnDeleted(p) })
		return
	}

	recycled, err := nb.recycle(p)
	if err != nil {
		nb.log.Error().Err(err).Str("page", p.Name()).Msg("recycling page, content is lost")
	}

	nb.mu.Lock()
	if recycled != nil {
		nb.bin = append(nb.bin, recycled)
	}
	nb.removeActive(p)
	nb.mu.Unlock()

	p.RemoveListener(nb)
	if recycled != nil {
		recycled.AddListener(nb)
	}
	nb.log.Info().Str("page", p.Name()).Msg("page moved to recycle bin")
	nb.emit(func(l Listener) { l.OnDeleted(p) })
}

// recycle copies p into the recycle bin. A recycled page never gets
// overwritten: when p's name is taken there, the copy gets a fresh one.
func (nb *Notebook) recycle(p *page.Page) (*page.Page, error) {
	nb.mu.Lock()
	name := p.Name()
	if storage.Exists(filepath.Join(nb.cfg.RecycleBinDir(), name)) || indexOf(nb.bin, name) >= 0 {
		name = nb.allocateName()
	}
	dst := page.New(filepath.Join(nb.cfg.RecycleBinDir(), name), p.Kind(), page.WithLogger(nb.log))
	err := dst.Create()
	nb.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := nb.copier.Copy(p, dst); err != nil {
		_ = storage.RemoveAll(dst.Dir)
		return nil, err
	}
	if err := dst.SetInRecycleBin(true); err != nil {
		_ = storage.RemoveAll(dst.Dir)
		return nil, err
	}
	return dst, nil
}

// Restore moves recycled pages back to the front of the active index.
// Pages not flagged as recycled are skipped. Each restored page gets its
// old name back unless an active page took it meanwhile.
func (nb *Notebook) Restore(pages ...*page.Page) ([]*page.Page, error) {
	var (
		restored []*page.Page
		errs     []error
	)
	for _, p := range pages {
		if !p.InRecycleBin() {
			continue
		}
		dst, err := nb.restore(p)
		if err != nil {
			nb.log.Error().Err(err).Str("page", p.Name()).Msg("restoring page")
			errs = append(errs, err)
			continue
		}
		restored = append(restored, dst)
	}
	return restored, errors.Join(errs...)
}

func (nb *Notebook) restore(p *page.Page) (*page.Page, error) {
	nb.mu.Lock()
	name := p.Name()
	if storage.Exists(filepath.Join(nb.cfg.PagesDir(), name)) || indexOf(nb.pages, name) >= 0 {
		name = nb.allocateName()
	}
	dst := page.New(filepath.Join(nb.cfg.PagesDir(), name), p.Kind(), page.WithLogger(nb.log))
	err := dst.Create()
	nb.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := nb.copier.Copy(p, dst); err != nil {
		_ = storage.RemoveAll(dst.Dir)
		return nil, err
	}
	if err := dst.SetInRecycleBin(false); err != nil {
		_ = storage.RemoveAll(dst.Dir)
		return nil, err
	}

	nb.mu.Lock()
	nb.insertFront(dst)
	nb.mu.Unlock()
	dst.AddListener(nb)
	nb.emit(func(l Listener) { l.OnCreated(dst) })

	// The recycled copy is flagged, so this reaches the permanent branch
	// of OnDeleted.
	if err := p.Delete(); err != nil {
		return dst, err
	}
	nb.log.Info().Str("page", dst.Name()).Msg("page restored")
	return dst, nil
}

// EmptyRecycleBin erases every recycled page.
func (nb *Notebook) EmptyRecycleBin() error {
	nb.mu.Lock()
	bin := nb.bin
	nb.bin = nil
	nb.mu.Unlock()

	var errs []error
	for _, p := range bin {
		p.RemoveListener(nb)
		if err := storage.RemoveAll(p.Dir); err != nil {
			errs = append(errs, err)
			continue
		}
		nb.emit(func(l Listener) { l.OnDeleted(p) })
	}
	nb.log.Info().Int("pages", len(bin)).Msg("recycle bin emptied")
	return errors.Join(errs...)
}
