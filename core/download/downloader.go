// Package download runs background fetch tasks: one per document, plus one
// per bulk-download root that fans out to the root's outbound links.
//
// Tasks share a bounded pool of worker slots. Every task carries its own
// cancellation token which is checked once, when the task gets a slot;
// a fetch that already started is never interrupted by StopAll. Stopped
// tasks stay registered and ResumeAll reissues them as new tasks.
package download

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/crawl"
)

const (
	defaultConcurrency = 4
	defaultMaxLinks    = 100
)

// Listener receives completed downloads. It is called from worker
// goroutines and must be safe for concurrent use.
type Listener interface {
	OnDownloadReady(data *core.WebsiteData)
}

// State is the lifecycle state of a task.
type State int

const (
	Pending State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TaskInfo describes a registered task.
type TaskInfo struct {
	ID      uint64
	Address string
	Bulk    bool
	State   State
}

type task struct {
	id      uint64
	address string
	bulk    bool
	ctx     context.Context
	cancel  context.CancelFunc
	state   State
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithConcurrency caps the number of tasks fetching at the same time.
func WithConcurrency(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithMaxLinks caps how many links a single bulk download fans out to.
func WithMaxLinks(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.maxLinks = n
		}
	}
}

// WithSameDomain restricts bulk downloads to links on the root's host.
func WithSameDomain(same bool) Option {
	return func(d *Downloader) { d.sameDomain = same }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Downloader) { d.log = log }
}

// Downloader manages fetch tasks.
type Downloader struct {
	fetcher core.Fetcher
	images  core.BinaryFetcher
	parser  core.Parser

	concurrency int
	maxLinks    int
	sameDomain  bool
	log         zerolog.Logger

	slots   *semaphore.Weighted
	visited *crawl.Visited
	root    context.Context
	close   context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	listener Listener
	tasks    map[uint64]*task
	nextID   uint64
}

// New creates a Downloader. Call Close to abort everything.
func New(fetcher core.Fetcher, images core.BinaryFetcher, parser core.Parser, opts ...Option) *Downloader {
	d := &Downloader{
		fetcher:     fetcher,
		images:      images,
		parser:      parser,
		concurrency: defaultConcurrency,
		maxLinks:    defaultMaxLinks,
		log:         zerolog.Nop(),
		visited:     crawl.NewVisited(),
		tasks:       make(map[uint64]*task),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.slots = semaphore.NewWeighted(int64(d.concurrency))
	d.root, d.close = context.WithCancel(context.Background())
	return d
}

// SetListener registers the receiver of completed downloads.
func (d *Downloader) SetListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = l
}

// Download starts a task fetching the document at address and its images.
func (d *Downloader) Download(address string) uint64 {
	return d.start(address, false)
}

// DownloadAll starts a task fetching homepage and downloading every
// outbound link not downloaded before, up to the link cap.
func (d *Downloader) DownloadAll(homepage string) uint64 {
	return d.start(homepage, true)
}

func (d *Downloader) start(address string, bulk bool) uint64 {
	ctx, cancel := context.WithCancel(d.root)

	d.mu.Lock()
	d.nextID++
	t := &task{id: d.nextID, address: address, bulk: bulk, ctx: ctx, cancel: cancel}
	d.tasks[t.id] = t
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(t)
	return t.id
}

func (d *Downloader) run(t *task) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("url", t.address).Interface("panic", r).Msg("download task crashed")
			d.remove(t)
		}
	}()

	if err := d.slots.Acquire(t.ctx, 1); err != nil {
		d.markStopped(t)
		return
	}
	defer d.slots.Release(1)

	if !d.markRunning(t) {
		return
	}

	if t.bulk {
		d.crawl(t)
	} else {
		d.fetch(t)
	}
}

// markRunning checks the task token and flips the task to Running.
// A cancelled task is left Stopped and false is returned.
func (d *Downloader) markRunning(t *task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks[t.id] != t {
		return false
	}
	if t.ctx.Err() != nil {
		t.state = Stopped
		return false
	}
	t.state = Running
	return true
}

func (d *Downloader) markStopped(t *task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks[t.id] == t {
		t.state = Stopped
	}
}

func (d *Downloader) remove(t *task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks[t.id] == t {
		delete(d.tasks, t.id)
	}
	t.cancel()
}

func (d *Downloader) fetch(t *task) {
	log := d.log.With().Str("url", t.address).Logger()

	res, err := d.fetcher.Fetch(d.root, t.address)
	if err != nil {
		log.Warn().Err(err).Msg("document fetch failed")
		d.remove(t)
		return
	}
	doc, err := d.parser.Parse(res.HTML, t.address)
	if err != nil {
		log.Warn().Err(err).Msg("document parse failed")
		d.remove(t)
		return
	}

	data := &core.WebsiteData{Document: doc}
	for _, src := range doc.ImageURLs {
		body, err := d.images.FetchBinary(d.root, src)
		if err != nil {
			log.Debug().Err(err).Str("image", src).Msg("image skipped")
			continue
		}
		data.Images = append(data.Images, core.Image{URL: src, Data: body})
	}

	d.remove(t)
	log.Info().Int("images", len(data.Images)).Msg("download ready")

	d.mu.Lock()
	listener := d.listener
	d.mu.Unlock()
	if listener != nil {
		listener.OnDownloadReady(data)
	}
}

func (d *Downloader) crawl(t *task) {
	defer d.remove(t)
	log := d.log.With().Str("root", t.address).Logger()

	res, err := d.fetcher.Fetch(d.root, t.address)
	if err != nil {
		log.Warn().Err(err).Msg("homepage fetch failed")
		return
	}
	home, err := d.parser.Parse(res.HTML, t.address)
	if err != nil {
		log.Warn().Err(err).Msg("homepage parse failed")
		return
	}

	domain := ""
	if d.sameDomain {
		domain = crawl.Host(t.address)
	}
	d.visited.Add(t.address)

	started := 0
	for _, link := range crawl.Outbound(home.LinkURLs, domain) {
		if started >= d.maxLinks || t.ctx.Err() != nil {
			break
		}
		if !d.visited.Add(link) {
			continue
		}
		d.Download(link)
		started++
	}
	log.Info().Int("links", started).Msg("bulk download fanned out")
}

// StopAll cancels the token of every registered task. Tasks that have not
// started stay registered as Stopped; running fetches finish normally.
func (d *Downloader) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.tasks {
		t.cancel()
	}
	d.log.Info().Int("tasks", len(d.tasks)).Msg("downloads stopped")
}

// ResumeAll reissues every stopped task as a new task with a fresh token.
func (d *Downloader) ResumeAll() int {
	d.mu.Lock()
	var resume []*task
	for id, t := range d.tasks {
		if t.state != Running && t.ctx.Err() != nil {
			delete(d.tasks, id)
			resume = append(resume, t)
		}
	}
	d.mu.Unlock()

	sort.Slice(resume, func(i, j int) bool { return resume[i].id < resume[j].id })
	for _, t := range resume {
		d.start(t.address, t.bulk)
	}
	d.log.Info().Int("tasks", len(resume)).Msg("downloads resumed")
	return len(resume)
}

// Tasks returns the registered tasks ordered by ID.
func (d *Downloader) Tasks() []TaskInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]TaskInfo, 0, len(d.tasks))
	for _, t := range d.tasks {
		out = append(out, TaskInfo{ID: t.id, Address: t.address, Bulk: t.bulk, State: t.state})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Wait blocks until every task has finished or stopped.
func (d *Downloader) Wait() {
	d.wg.Wait()
}

// Close aborts in-flight requests and waits for the workers to exit.
func (d *Downloader) Close() error {
	d.close()
	d.wg.Wait()
	return nil
}

func (t TaskInfo) String() string {
	kind := "page"
	if t.Bulk {
		kind = "bulk"
	}
	return fmt.Sprintf("#%d %s %s %s", t.ID, kind, t.State, t.Address)
}
