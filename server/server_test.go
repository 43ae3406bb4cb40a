package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/config"
	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/download"
	"github.com/gaurav-prasanna/pagenote/core/extract"
	"github.com/gaurav-prasanna/pagenote/core/notebook"
)

type stubWeb struct{}

func (stubWeb) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	return &core.FetchResult{URL: url, StatusCode: 200,
		HTML: "<html><head><title>Remote</title></head><body><main><p>Fetched body.</p></main></body></html>"}, nil
}

func (stubWeb) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("no images")
}

func newTestServer(t *testing.T) (*Server, *notebook.Notebook) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	nb, err := notebook.New(cfg, notebook.WithDownloader(download.New(stubWeb{}, stubWeb{}, extract.New())))
	require.NoError(t, err)
	t.Cleanup(func() { nb.Close() })
	return New(nb, zerolog.Nop()), nb
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "GET", "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["pages"])
}

func TestPageLifecycle(t *testing.T) {
	s, nb := newTestServer(t)

	rec := do(t, s, "POST", "/api/pages", `{"source":"<p>Hello API</p>"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[pageView](t, rec)
	assert.Equal(t, "Hello API", created.Title)
	assert.Equal(t, "editable", created.Kind)
	assert.True(t, created.Editable)

	rec = do(t, s, "GET", "/api/pages/"+created.Name, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>Hello API</p>", decode[pageView](t, rec).Source)

	rec = do(t, s, "PUT", "/api/pages/"+created.Name, `{"source":"<p>Changed</p>"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Changed", decode[pageView](t, rec).Text)

	rec = do(t, s, "PUT", "/api/pages/"+created.Name, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "DELETE", "/api/pages/"+created.Name, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, nb.Len())

	rec = do(t, s, "GET", "/api/pages/"+created.Name, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, "GET", "/api/bin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	bin := decode[[]pageView](t, rec)
	require.Len(t, bin, 1)
	assert.True(t, bin[0].InRecycleBin)

	rec = do(t, s, "POST", "/api/bin/"+created.Name+"/restore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>Changed</p>", decode[pageView](t, rec).Source)
	assert.Equal(t, 1, nb.Len())

	rec = do(t, s, "POST", "/api/bin/"+created.Name+"/restore", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReadOnlyPage(t *testing.T) {
	s, nb := newTestServer(t)
	nb.OnDownloadReady(&core.WebsiteData{Document: &core.Document{
		URL: "https://example.com/a", Title: "Remote", Text: "Body.",
	}})
	name := nb.Pages()[0].Name()

	rec := do(t, s, "PUT", "/api/pages/"+name, `{"source":"<p>x</p>"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListPages(t *testing.T) {
	s, nb := newTestServer(t)
	for range 3 {
		_, err := nb.NewPage()
		require.NoError(t, err)
	}

	type listing struct {
		Pages  []pageView `json:"pages"`
		Cursor int        `json:"cursor"`
		Total  int        `json:"total"`
	}

	rec := do(t, s, "GET", "/api/pages?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[listing](t, rec)
	assert.Len(t, first.Pages, 2)
	assert.Equal(t, 2, first.Cursor)
	assert.Equal(t, 3, first.Total)

	second := decode[listing](t, do(t, s, "GET", "/api/pages?n=2", ""))
	assert.Len(t, second.Pages, 1)
	assert.Empty(t, decode[listing](t, do(t, s, "GET", "/api/pages", "")).Pages)

	assert.Equal(t, http.StatusNoContent, do(t, s, "POST", "/api/pages/rewind", "").Code)
	assert.Len(t, decode[listing](t, do(t, s, "GET", "/api/pages", "")).Pages, 3)

	assert.Equal(t, http.StatusBadRequest, do(t, s, "GET", "/api/pages?n=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, "GET", "/api/pages?n=x", "").Code)
}

func TestSearch(t *testing.T) {
	s, nb := newTestServer(t)
	p, err := nb.NewPage()
	require.NoError(t, err)
	require.NoError(t, p.SetSource("<p>needle in a haystack</p>"))
	_, err = nb.NewPage()
	require.NoError(t, err)

	rec := do(t, s, "GET", "/api/search?q=NEEDLE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Pages []pageView `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Pages, 1)
	assert.Equal(t, p.Name(), body.Pages[0].Name)

	assert.Equal(t, http.StatusBadRequest, do(t, s, "GET", "/api/search", "").Code)
}

func TestStartDownload(t *testing.T) {
	s, nb := newTestServer(t)

	rec := do(t, s, "POST", "/api/downloads", `{"url":"https://example.com/post"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task"`)

	nb.WaitDownloads()
	require.Equal(t, 1, nb.Len())
	assert.Equal(t, "https://example.com/post", nb.Pages()[0].SourceURL())

	rec = do(t, s, "GET", "/api/downloads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, body := range []string{`{"url":"ftp://example.com"}`, `{"url":""}`, `{`} {
		assert.Equal(t, http.StatusBadRequest, do(t, s, "POST", "/api/downloads", body).Code, body)
	}
}

func TestEmptyBin(t *testing.T) {
	s, nb := newTestServer(t)
	p, err := nb.NewPage()
	require.NoError(t, err)
	require.NoError(t, p.Delete())

	assert.Equal(t, http.StatusNoContent, do(t, s, "DELETE", "/api/bin", "").Code)
	assert.Empty(t, nb.RecycleBin())
}

func TestUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, "PATCH", "/api/pages", "").Code)
}
