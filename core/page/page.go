// Package page implements the stored document unit of a notebook: a directory
// holding a metadata tag file, an HTML-like text blob, an image area and, for
// articles, a nested notes page.
//
// There is a single Page type. What a page may do is decided at call time
// from its Kind and its persisted flags (EDITABLE, IN_RECYCLE_BIN), never
// from its Go type.
package page

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// Metadata tags understood by a page.
const (
	TagEditable     = "EDITABLE"
	TagInRecycleBin = "IN_RECYCLE_BIN"
	TagLastPosition = "LAST_POSITION"
	TagSourceURL    = "SOURCE_URL"
)

// ErrIllegalState is returned when an operation is not allowed in the
// page's current state (editing a recycled or read-only page).
var ErrIllegalState = errors.New("illegal page state")

// Kind is the variant of a page.
type Kind int

const (
	// Editable pages are authored locally and mutable.
	Editable Kind = iota
	// ReadOnly pages are populated once from downloaded content.
	ReadOnly
	// Article is a ReadOnly page that owns an editable notes page.
	Article
)

func (k Kind) String() string {
	switch k {
	case Editable:
		return "editable"
	case ReadOnly:
		return "readonly"
	case Article:
		return "article"
	default:
		return "unknown"
	}
}

// Layout locates the files of a page below its directory.
type Layout struct {
	Dir string
}

// TextPath is the file holding the page source.
func (l Layout) TextPath() string { return filepath.Join(l.Dir, "text") }

// MetadataPath is the tag file.
func (l Layout) MetadataPath() string { return filepath.Join(l.Dir, "metadata") }

// ImageDir is the directory holding the page images.
func (l Layout) ImageDir() string { return filepath.Join(l.Dir, "images") }

// NotesDir is the directory of the nested notes page (articles only).
func (l Layout) NotesDir() string { return filepath.Join(l.Dir, "notes") }

// Listener observes the lifecycle of a page.
type Listener interface {
	OnSelected(p *Page)
	OnCreated(p *Page)
	OnDeleted(p *Page)
	OnModified(p *Page)
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the logger used to report storage and tag errors.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Page) { p.log = log }
}

// WithWebData attaches downloaded content that Create turns into the page body.
func WithWebData(data *core.WebsiteData) Option {
	return func(p *Page) { p.web = data }
}

// Page is one stored document.
type Page struct {
	Layout

	kind  Kind
	meta  *storage.Metadata
	notes *Page
	log   zerolog.Logger

	// editMu serializes writes to the source and image area.
	editMu  sync.Mutex
	deleted atomic.Bool

	mu        sync.Mutex
	listeners []Listener
	selected  bool
	web       *core.WebsiteData
	search    tokenCursor
}

// New returns a handle on the page stored in dir. Nothing is written until Create.
func New(dir string, kind Kind, opts ...Option) *Page {
	p := &Page{
		Layout: Layout{Dir: dir},
		kind:   kind,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("page", p.Name()).Logger()
	p.meta = storage.NewMetadata(p.MetadataPath())
	if kind == Article {
		p.notes = New(p.NotesDir(), Editable, WithLogger(p.log))
	}
	return p
}

// Open returns a handle on an existing page directory, detecting articles
// by the presence of a notes sub-page.
func Open(dir string, opts ...Option) *Page {
	kind := Editable
	if info, err := os.Stat(Layout{Dir: dir}.NotesDir()); err == nil && info.IsDir() {
		kind = Article
	}
	return New(dir, kind, opts...)
}

// Name is the page identifier: the base name of its directory.
func (p *Page) Name() string {
	return filepath.Base(p.Dir)
}

// Kind returns the page variant.
func (p *Page) Kind() Kind {
	return p.kind
}

// Notes returns the notes sub-page of an article, nil for other kinds.
func (p *Page) Notes() *Page {
	return p.notes
}

func (p *Page) String() string {
	return fmt.Sprintf("%s(%s)", p.kind, p.Name())
}

// CreationTime is derived from the page name (Unix milliseconds). Pages
// with a foreign name fall back to the directory modification time.
func (p *Page) CreationTime() time.Time {
	if ms, err := strconv.ParseInt(p.Name(), 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	info, err := os.Stat(p.Dir)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// LastModifiedTime is the write time of the text blob.
func (p *Page) LastModifiedTime() time.Time {
	info, err := os.Stat(p.TextPath())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Exists reports whether the page directory is present on disk.
func (p *Page) Exists() bool {
	return storage.Exists(p.Dir)
}

// Deleted reports whether Delete was called on this handle.
func (p *Page) Deleted() bool {
	return p.deleted.Load()
}

// AddListener registers l for lifecycle events of this page.
func (p *Page) AddListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.listeners {
		if existing == l {
			return
		}
	}
	p.listeners = append(p.listeners, l)
}

// RemoveListener unregisters l.
func (p *Page) RemoveListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.listeners {
		if existing == l {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

func (p *Page) snapshotListeners() []Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Listener(nil), p.listeners...)
}

// Selected reports the transient selection flag.
func (p *Page) Selected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SetSelected changes the selection flag and notifies listeners.
func (p *Page) SetSelected(selected bool) {
	p.MarkSelected(selected)
	for _, l := range p.snapshotListeners() {
		l.OnSelected(p)
	}
}

// MarkSelected changes the selection flag without notifying anyone. It is
// meant for the owner of the selection set.
func (p *Page) MarkSelected(selected bool) {
	p.mu.Lock()
	p.selected = selected
	p.mu.Unlock()
}

// Create allocates the page on disk, writes default metadata, builds the
// body from attached web data if any, and notifies OnCreated.
func (p *Page) Create() error {
	if err := os.MkdirAll(p.ImageDir(), 0755); err != nil {
		p.log.Error().Err(err).Msg("creating page directory")
		return fmt.Errorf("creating page %s: %w", p.Name(), err)
	}
	if err := p.meta.Create(); err != nil {
		p.log.Error().Err(err).Msg("creating metadata")
		return err
	}
	if !storage.Exists(p.TextPath()) {
		if err := storage.Write(p.TextPath(), ""); err != nil {
			p.log.Error().Err(err).Msg("creating text file")
			return err
		}
	}
	p.setDefault(TagEditable, "true")
	p.setDefault(TagInRecycleBin, "false")
	p.setDefault(TagLastPosition, "0")

	p.mu.Lock()
	web := p.web
	p.web = nil
	p.mu.Unlock()

	if web != nil && web.Document != nil && p.kind != Editable {
		if err := p.populate(web); err != nil {
			return err
		}
	}

	if p.notes != nil {
		if err := p.notes.Create(); err != nil {
			return err
		}
	}

	p.log.Debug().Str("kind", p.kind.String()).Msg("page created")
	for _, l := range p.snapshotListeners() {
		l.OnCreated(p)
	}
	return nil
}

func (p *Page) setDefault(tag, value string) {
	if _, ok := p.meta.String(tag); ok {
		return
	}
	if err := p.meta.Set(tag, value); err != nil {
		p.log.Error().Err(err).Str("tag", tag).Msg("writing default tag")
	}
}

// Delete notifies OnDeleted and then erases the page storage. Listeners
// can still read the page content while they handle the event. The handle
// rejects every edit from then on.
func (p *Page) Delete() error {
	p.deleted.Store(true)
	for _, l := range p.snapshotListeners() {
		l.OnDeleted(p)
	}
	if err := storage.RemoveAll(p.Dir); err != nil {
		p.log.Error().Err(err).Msg("deleting page")
		return err
	}
	p.log.Debug().Msg("page deleted")
	return nil
}

// Source returns the raw page markup, or "" when it cannot be read.
func (p *Page) Source() string {
	text, err := storage.Read(p.TextPath())
	if err != nil {
		p.log.Error().Err(err).Msg("reading source")
		return ""
	}
	return text
}

// Preview returns the first line of the source.
func (p *Page) Preview() string {
	line, err := storage.ReadFirstLine(p.TextPath())
	if err != nil {
		p.log.Error().Err(err).Msg("reading preview")
		return ""
	}
	return line
}

// Editable reports the EDITABLE flag (true when unset or unreadable).
func (p *Page) Editable() bool {
	v, err := p.meta.Bool(TagEditable)
	if err != nil {
		p.logTagError(TagEditable, err)
		return true
	}
	return v
}

// SetEditable sets the EDITABLE flag.
func (p *Page) SetEditable(editable bool) error {
	return p.SetTag(TagEditable, strconv.FormatBool(editable))
}

// InRecycleBin reports the IN_RECYCLE_BIN flag.
func (p *Page) InRecycleBin() bool {
	v, err := p.meta.Bool(TagInRecycleBin)
	if err != nil {
		p.logTagError(TagInRecycleBin, err)
		return false
	}
	return v
}

// SetInRecycleBin sets the IN_RECYCLE_BIN flag.
func (p *Page) SetInRecycleBin(in bool) error {
	return p.SetTag(TagInRecycleBin, strconv.FormatBool(in))
}

// SavePosition stores a reading bookmark.
func (p *Page) SavePosition(pos int) error {
	return p.SetTag(TagLastPosition, strconv.Itoa(pos))
}

// LastPosition returns the reading bookmark, 0 when unset.
func (p *Page) LastPosition() int {
	return p.IntTag(TagLastPosition)
}

// SourceURL returns the address the page was downloaded from, if any.
func (p *Page) SourceURL() string {
	return p.StringTag(TagSourceURL)
}

// SetTag stores a raw tag value.
func (p *Page) SetTag(tag, value string) error {
	if err := p.meta.Set(tag, value); err != nil {
		p.log.Error().Err(err).Str("tag", tag).Msg("writing tag")
		return err
	}
	return nil
}

// StringTag returns tag as a string, "" when unset.
func (p *Page) StringTag(tag string) string {
	v, _ := p.meta.String(tag)
	return v
}

// IntTag returns tag as an int, 0 when unset or not an int.
func (p *Page) IntTag(tag string) int {
	v, err := p.meta.Int(tag)
	if err != nil {
		p.logTagError(tag, err)
		return 0
	}
	return v
}

// LongTag returns tag as an int64, 0 when unset or not an integer.
func (p *Page) LongTag(tag string) int64 {
	v, err := p.meta.Long(tag)
	if err != nil {
		p.logTagError(tag, err)
		return 0
	}
	return v
}

// FloatTag returns tag as a float64, 0 when unset or not a number.
func (p *Page) FloatTag(tag string) float64 {
	v, err := p.meta.Float(tag)
	if err != nil {
		p.logTagError(tag, err)
		return 0
	}
	return v
}

// BoolTag returns tag as a bool, false when unset or not a bool.
func (p *Page) BoolTag(tag string) bool {
	v, err := p.meta.Bool(tag)
	if err != nil {
		p.logTagError(tag, err)
		return false
	}
	return v
}

func (p *Page) logTagError(tag string, err error) {
	if errors.Is(err, storage.ErrTagNotFound) {
		return
	}
	p.log.Warn().Err(err).Str("tag", tag).Msg("reading tag")
}

func (p *Page) notifyModified() {
	for _, l := range p.snapshotListeners() {
		l.OnModified(p)
	}
}
