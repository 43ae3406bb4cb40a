// Visited set shared by bulk downloads.
// Remembers every URL handed out so a bulk download never fetches the same
// page twice. Safe for concurrent use by download tasks.

package crawl

import "sync"

// Visited is a concurrency-safe set of normalized URLs.
type Visited struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewVisited creates an empty Visited set.
func NewVisited() *Visited {
	return &Visited{
		seen: make(map[string]bool),
	}
}

// Add records url and reports whether it was new.
func (v *Visited) Add(url string) bool {
	url = NormalizeURL(url)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[url] {
		return false
	}
	v.seen[url] = true
	return true
}

// Has reports whether url has been recorded.
func (v *Visited) Has(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seen[NormalizeURL(url)]
}

// Len returns the total number of unique URLs seen.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// Reset forgets every URL.
func (v *Visited) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = make(map[string]bool)
}
