// Package notebook is the facade over a user's pages. It owns the active
// index (most recent first), the selection, the recycle bin, the
// pagination cursor and the downloader, and reconciles page events,
// deletions and finished downloads into one consistent list.
//
// All notebook state sits behind a single mutex. Page callbacks and
// listener notifications always run after the lock is released, so a
// listener may call back into the notebook (even delete another page)
// without deadlocking.
package notebook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/pagenote/config"
	"github.com/gaurav-prasanna/pagenote/core/copier"
	"github.com/gaurav-prasanna/pagenote/core/download"
	"github.com/gaurav-prasanna/pagenote/core/extract"
	"github.com/gaurav-prasanna/pagenote/core/fetch"
	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

var (
	// ErrNotFound is returned when no page has the requested name.
	ErrNotFound = errors.New("page not found")
	// ErrEmptySelection is returned by operations on an empty selection.
	ErrEmptySelection = errors.New("no page selected")
)

// Listener is the single external observer of a notebook. Methods may be
// called from any goroutine.
type Listener interface {
	OnCreated(p *page.Page)
	OnDeleted(p *page.Page)
	OnModified(p *page.Page)
	// OnFound reports one keyword-search match.
	OnFound(p *page.Page)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Created  func(p *page.Page)
	Deleted  func(p *page.Page)
	Modified func(p *page.Page)
	Found    func(p *page.Page)
}

func (l ListenerFuncs) OnCreated(p *page.Page) {
	if l.Created != nil {
		l.Created(p)
	}
}

func (l ListenerFuncs) OnDeleted(p *page.Page) {
	if l.Deleted != nil {
		l.Deleted(p)
	}
}

func (l ListenerFuncs) OnModified(p *page.Page) {
	if l.Modified != nil {
		l.Modified(p)
	}
}

func (l ListenerFuncs) OnFound(p *page.Page) {
	if l.Found != nil {
		l.Found(p)
	}
}

// Option configures a Notebook.
type Option func(*Notebook)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(nb *Notebook) { nb.log = log }
}

// WithDownloader replaces the HTTP downloader built from the config.
func WithDownloader(d *download.Downloader) Option {
	return func(nb *Notebook) { nb.downloader = d }
}

// WithListener sets the external listener at construction.
func WithListener(l Listener) Option {
	return func(nb *Notebook) { nb.listener = l }
}

// Notebook indexes the pages stored under one data directory.
type Notebook struct {
	cfg        config.Config
	log        zerolog.Logger
	copier     *copier.Copier
	downloader *download.Downloader

	mu       sync.Mutex
	pages    []*page.Page
	selected []*page.Page
	bin      []*page.Page
	cursor   int
	listener Listener
	lastName int64
}

// New opens the notebook stored under cfg.DataDir and loads its pages.
func New(cfg config.Config, opts ...Option) (*Notebook, error) {
	nb := &Notebook{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(nb)
	}
	nb.copier = copier.New(nb.log)

	if nb.downloader == nil {
		fetcher := fetch.New(fetch.WithTimeout(cfg.Timeout), fetch.WithUserAgent(cfg.UserAgent))
		nb.downloader = download.New(fetcher, fetcher, extract.New(),
			download.WithConcurrency(cfg.Concurrency),
			download.WithMaxLinks(cfg.MaxLinks),
			download.WithSameDomain(cfg.SameDomain),
			download.WithLogger(nb.log))
	}
	nb.downloader.SetListener(nb)

	if err := nb.Reload(); err != nil {
		return nil, err
	}
	return nb, nil
}

// Close stops every download.
func (nb *Notebook) Close() error {
	return nb.downloader.Close()
}

// SetListener replaces the external listener; nil disables notifications.
func (nb *Notebook) SetListener(l Listener) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.listener = l
}

// Reload re-reads both collections from disk, sorts the active index
// newest first, clears the selection and rewinds the cursor. The lock is
// held from listing to swap so no page created meanwhile is dropped;
// loading fires no page callbacks.
func (nb *Notebook) Reload() error {
	nb.mu.Lock()
	active, err := nb.loadDir(nb.cfg.PagesDir())
	if err != nil {
		nb.mu.Unlock()
		return err
	}
	bin, err := nb.loadDir(nb.cfg.RecycleBinDir())
	if err != nil {
		nb.mu.Unlock()
		return err
	}
	page.SortByLastModified(active)

	for _, p := range nb.selected {
		p.MarkSelected(false)
	}
	nb.pages = active
	nb.bin = bin
	nb.selected = nil
	nb.cursor = 0
	nb.mu.Unlock()

	nb.log.Info().Int("pages", len(active)).Int("recycled", len(bin)).Msg("notebook loaded")
	return nil
}

// loadDir opens every page directory below dir. Callers hold nb.mu.
func (nb *Notebook) loadDir(dir string) ([]*page.Page, error) {
	names, err := storage.ListDirs(dir)
	if err != nil {
		nb.log.Error().Err(err).Str("dir", dir).Msg("listing pages")
		return nil, err
	}
	pages := make([]*page.Page, 0, len(names))
	for _, name := range names {
		p := page.Open(filepath.Join(dir, name), page.WithLogger(nb.log))
		p.AddListener(nb)
		pages = append(pages, p)
	}
	return pages, nil
}

// Next returns up to n pages from the cursor and advances it by the
// number returned. It never wraps; call Rewind to start over.
func (nb *Notebook) Next(n int) []*page.Page {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if n <= 0 || nb.cursor >= len(nb.pages) {
		return nil
	}
	n = min(n, len(nb.pages)-nb.cursor)
	out := append([]*page.Page(nil), nb.pages[nb.cursor:nb.cursor+n]...)
	nb.cursor += n
	return out
}

// Rewind resets the pagination cursor.
func (nb *Notebook) Rewind() {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.cursor = 0
}

// Cursor returns the pagination cursor.
func (nb *Notebook) Cursor() int {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return nb.cursor
}

// Len returns the number of active pages.
func (nb *Notebook) Len() int {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return len(nb.pages)
}

// Pages returns a copy of the active index.
func (nb *Notebook) Pages() []*page.Page {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return append([]*page.Page(nil), nb.pages...)
}

// Page returns the active page called name.
func (nb *Notebook) Page(name string) (*page.Page, error) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	for _, p := range nb.pages {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// NewPage creates an empty editable page at the front of the index.
func (nb *Notebook) NewPage() (*page.Page, error) {
	nb.mu.Lock()
	p := page.New(filepath.Join(nb.cfg.PagesDir(), nb.allocateName()), page.Editable, page.WithLogger(nb.log))
	if err := p.Create(); err != nil {
		nb.mu.Unlock()
		return nil, err
	}
	nb.insertFront(p)
	nb.mu.Unlock()

	p.AddListener(nb)
	nb.emit(func(l Listener) { l.OnCreated(p) })
	return p, nil
}

// allocateName returns a creation-instant name free in both collections
// and never handed out before. Callers hold nb.mu.
func (nb *Notebook) allocateName() string {
	n := time.Now().UnixMilli()
	if n <= nb.lastName {
		n = nb.lastName + 1
	}
	for {
		name := strconv.FormatInt(n, 10)
		if !storage.Exists(filepath.Join(nb.cfg.PagesDir(), name)) &&
			!storage.Exists(filepath.Join(nb.cfg.RecycleBinDir(), name)) &&
			indexOf(nb.pages, name) < 0 && indexOf(nb.bin, name) < 0 {
			nb.lastName = n
			return name
		}
		n++
	}
}

// insertFront adds p at the head of the index unless a page with the same
// directory is already there. A cursor past zero is shifted so pages
// already handed out by Next are not handed out twice. Callers hold nb.mu.
func (nb *Notebook) insertFront(p *page.Page) bool {
	for _, q := range nb.pages {
		if q == p || q.Dir == p.Dir {
			return false
		}
	}
	nb.pages = append([]*page.Page{p}, nb.pages...)
	if nb.cursor > 0 {
		nb.cursor++
	}
	return true
}

// removeActive drops p from the index and the selection, keeping the
// cursor on the same next page. Callers hold nb.mu.
func (nb *Notebook) removeActive(p *page.Page) {
	if i := indexOfPage(nb.pages, p); i >= 0 {
		nb.pages = append(nb.pages[:i], nb.pages[i+1:]...)
		if i < nb.cursor {
			nb.cursor--
		}
	}
	nb.unselect(p)
}

func indexOf(pages []*page.Page, name string) int {
	for i, p := range pages {
		if p.Name() == name {
			return i
		}
	}
	return -1
}

func indexOfPage(pages []*page.Page, p *page.Page) int {
	for i, q := range pages {
		if q == p || q.Dir == p.Dir {
			return i
		}
	}
	return -1
}

// emit calls fn with the current listener outside of the lock.
func (nb *Notebook) emit(fn func(Listener)) {
	nb.mu.Lock()
	l := nb.listener
	nb.mu.Unlock()
	if l != nil {
		fn(l)
	}
}

// OnSelected tracks the selection flag of active pages.
func (nb *Notebook) OnSelected(p *page.Page) {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if indexOfPage(nb.pages, p) < 0 {
		p.MarkSelected(false)
		return
	}
	if p.Selected() {
		if indexOfPage(nb.selected, p) < 0 {
			nb.selected = append(nb.selected, p)
		}
		return
	}
	nb.unselect(p)
}

// OnCreated indexes a page created by someone else while the notebook
// was listening to it.
func (nb *Notebook) OnCreated(p *page.Page) {
	if p.InRecycleBin() {
		return
	}
	nb.mu.Lock()
	added := nb.insertFront(p)
	nb.mu.Unlock()
	if added {
		nb.emit(func(l Listener) { l.OnCreated(p) })
	}
}

// OnModified forwards page edits to the external listener.
func (nb *Notebook) OnModified(p *page.Page) {
	nb.emit(func(l Listener) { l.OnModified(p) })
}
