package notebook

import (
	"path/filepath"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/download"
	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/storage"
)

// OnDownloadReady turns a finished download into an article page at the
// front of the index. Naming and creation happen under the notebook lock
// so concurrent downloads always land in distinct directories.
func (nb *Notebook) OnDownloadReady(data *core.WebsiteData) {
	if data == nil || data.Document == nil {
		return
	}

	nb.mu.Lock()
	p := page.New(filepath.Join(nb.cfg.PagesDir(), nb.allocateName()), page.Article,
		page.WithLogger(nb.log), page.WithWebData(data))
	if err := p.Create(); err != nil {
		nb.mu.Unlock()
		nb.log.Error().Err(err).Str("url", data.Document.URL).Msg("storing download")
		_ = storage.RemoveAll(p.Dir)
		return
	}
	nb.insertFront(p)
	nb.mu.Unlock()

	p.AddListener(nb)
	nb.log.Info().Str("page", p.Name()).Str("url", data.Document.URL).Msg("download stored")
	nb.emit(func(l Listener) { l.OnCreated(p) })
}

// Download fetches address in the background into a new article.
func (nb *Notebook) Download(address string) uint64 {
	return nb.downloader.Download(address)
}

// DownloadAll fetches homepage and every page it links to.
func (nb *Notebook) DownloadAll(homepage string) uint64 {
	return nb.downloader.DownloadAll(homepage)
}

// PauseDownloads stops every task that has not started fetching yet.
func (nb *Notebook) PauseDownloads() {
	nb.downloader.StopAll()
}

// ResumeDownloads restarts the paused tasks.
func (nb *Notebook) ResumeDownloads() int {
	return nb.downloader.ResumeAll()
}

// Downloads lists the registered download tasks.
func (nb *Notebook) Downloads() []download.TaskInfo {
	return nb.downloader.Tasks()
}

// WaitDownloads blocks until no download is in flight.
func (nb *Notebook) WaitDownloads() {
	nb.downloader.Wait()
}
