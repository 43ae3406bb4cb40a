package notebook

import (
	"context"
	"strings"

	"github.com/gaurav-prasanna/pagenote/core/page"
)

// Search scans a snapshot of the active index in the background and
// reports every page containing all whitespace-separated keywords of
// query through the listener's OnFound, in index order. The returned
// channel is closed when the scan ends or ctx is cancelled.
func (nb *Notebook) Search(ctx context.Context, query string) <-chan struct{} {
	keywords := strings.Fields(query)
	snapshot := nb.Pages()
	done := make(chan struct{})

	go func() {
		defer close(done)
		found := 0
		for _, p := range snapshot {
			if ctx.Err() != nil {
				nb.log.Debug().Str("query", query).Msg("search cancelled")
				return
			}
			if p.Contains(keywords) {
				found++
				nb.emit(func(l Listener) { l.OnFound(p) })
			}
		}
		nb.log.Debug().Str("query", query).Int("found", found).Msg("search finished")
	}()
	return done
}

// Find is the synchronous form of Search and returns the matches.
func (nb *Notebook) Find(query string) []*page.Page {
	keywords := strings.Fields(query)
	var out []*page.Page
	for _, p := range nb.Pages() {
		if p.Contains(keywords) {
			out = append(out, p)
		}
	}
	return out
}
