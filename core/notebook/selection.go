package notebook

import (
	"errors"
	"path/filepath"

	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// Selected returns the selected pages in the order they were selected.
func (nb *Notebook) Selected() []*page.Page {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return append([]*page.Page(nil), nb.selected...)
}

// SelectAll selects every active page, in index order.
func (nb *Notebook) SelectAll() {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	for _, p := range nb.pages {
		p.MarkSelected(true)
	}
	nb.selected = append(nb.selected[:0], nb.pages...)
}

// UnselectAll clears the selection.
func (nb *Notebook) UnselectAll() {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.unselectAll()
}

func (nb *Notebook) unselectAll() {
	for _, p := range nb.selected {
		p.MarkSelected(false)
	}
	nb.selected = nil
}

// unselect drops p from the selection. Callers hold nb.mu.
func (nb *Notebook) unselect(p *page.Page) {
	if i := indexOfPage(nb.selected, p); i >= 0 {
		nb.selected = append(nb.selected[:i], nb.selected[i+1:]...)
	}
	p.MarkSelected(false)
}

// DeleteSelected deletes every selected page, moving each one to the
// recycle bin.
func (nb *Notebook) DeleteSelected() error {
	var errs []error
	for _, p := range nb.Selected() {
		if err := p.Delete(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CompactSelection concatenates the selected pages, in selection order,
// into a new editable page at the front of the index. The originals are
// kept and the selection is cleared.
func (nb *Notebook) CompactSelection() (*page.Page, error) {
	selected := nb.Selected()
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	nb.mu.Lock()
	dst := page.New(filepath.Join(nb.cfg.PagesDir(), nb.allocateName()), page.Editable, page.WithLogger(nb.log))
	err := dst.Create()
	nb.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, p := range selected {
		if err := nb.copier.Append(p, dst); err != nil {
			_ = storage.RemoveAll(dst.Dir)
			return nil, err
		}
	}

	nb.mu.Lock()
	nb.insertFront(dst)
	nb.unselectAll()
	nb.mu.Unlock()

	dst.AddListener(nb)
	nb.log.Info().Int("pages", len(selected)).Str("page", dst.Name()).Msg("selection compacted")
	nb.emit(func(l Listener) { l.OnCreated(dst) })
	return dst, nil
}
