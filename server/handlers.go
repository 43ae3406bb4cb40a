package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gaurav-prasanna/pagenote/core/download"
	"github.com/gaurav-prasanna/pagenote/core/notebook"
	"github.com/gaurav-prasanna/pagenote/core/page"
)

const defaultBatch = 20

// pageView is the JSON form of a page. Source and text are only filled
// in for single-page responses.
type pageView struct {
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	SourceURL    string    `json:"source_url,omitempty"`
	Editable     bool      `json:"editable"`
	InRecycleBin bool      `json:"in_recycle_bin"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Source       string    `json:"source,omitempty"`
	Text         string    `json:"text,omitempty"`
}

func summarize(p *page.Page) pageView {
	meta := notebook.Metadata(p)
	return pageView{
		Name:         p.Name(),
		Kind:         p.Kind().String(),
		Title:        meta.Title,
		SourceURL:    meta.SourceURL,
		Editable:     meta.Editable,
		InRecycleBin: p.InRecycleBin(),
		Created:      p.CreationTime(),
		Modified:     p.LastModifiedTime(),
	}
}

func detail(p *page.Page) pageView {
	v := summarize(p)
	v.Source = p.Source()
	v.Text = p.Text()
	return v
}

func summarizeAll(pages []*page.Page) []pageView {
	views := make([]pageView, 0, len(pages))
	for _, p := range pages {
		views = append(views, summarize(p))
	}
	return views
}

type sourceRequest struct {
	Source string `json:"source"`
}

type downloadRequest struct {
	URL string `json:"url"`
	All bool   `json:"all"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"pages":    s.nb.Len(),
		"recycled": len(s.nb.RecycleBin()),
	})
}

// handleListPages returns the next batch of pages and advances the
// notebook cursor. POST /api/pages/rewind starts over.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	n := defaultBatch
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}
	pages := s.nb.Next(n)
	respondJSON(w, http.StatusOK, map[string]any{
		"pages":  summarizeAll(pages),
		"cursor": s.nb.Cursor(),
		"total":  s.nb.Len(),
	})
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	p, err := s.nb.NewPage()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.Source != "" {
		if err := p.SetSource(req.Source); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusCreated, detail(p))
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	s.nb.Rewind()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	p, err := s.nb.Page(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Page not found")
		return nil, false
	}
	return p, true
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, detail(p))
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := p.SetSource(req.Source); err != nil {
		if errors.Is(err, page.ErrIllegalState) {
			respondError(w, http.StatusConflict, "Page is not editable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail(p))
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := p.Delete(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing query")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"pages": summarizeAll(s.nb.Find(q)),
	})
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	tasks := s.nb.Downloads()
	views := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView(t))
	}
	respondJSON(w, http.StatusOK, views)
}

func taskView(t download.TaskInfo) map[string]any {
	return map[string]any{
		"id":      t.ID,
		"address": t.Address,
		"bulk":    t.Bulk,
		"state":   t.State.String(),
	}
}

func (s *Server) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		respondError(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	var id uint64
	if req.All {
		id = s.nb.DownloadAll(req.URL)
	} else {
		id = s.nb.Download(req.URL)
	}
	respondJSON(w, http.StatusAccepted, map[string]any{"task": id})
}

func (s *Server) handleListBin(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, summarizeAll(s.nb.RecycleBin()))
}

func (s *Server) handleEmptyBin(w http.ResponseWriter, r *http.Request) {
	if err := s.nb.EmptyRecycleBin(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	p, err := s.nb.RecycledPage(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Page not found in recycle bin")
		return
	}
	restored, err := s.nb.Restore(p)
	if err != nil || len(restored) == 0 {
		msg := "Page could not be restored"
		if err != nil {
			msg = err.Error()
		}
		respondError(w, http.StatusInternalServerError, msg)
		return
	}
	respondJSON(w, http.StatusOK, detail(restored[0]))
}

// respondJSON writes payload with status. A nil payload writes headers only.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
