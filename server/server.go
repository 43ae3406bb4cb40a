// Package server exposes a notebook over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/pagenote/core/notebook"
)

// Server routes API requests to a notebook.
type Server struct {
	nb     *notebook.Notebook
	log    zerolog.Logger
	router *mux.Router
}

// New builds the router for nb.
func New(nb *notebook.Notebook, log zerolog.Logger) *Server {
	s := &Server{nb: nb, log: log, router: mux.NewRouter()}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(requestLogger(log))

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	api.HandleFunc("/pages", s.handleListPages).Methods("GET")
	api.HandleFunc("/pages", s.handleCreatePage).Methods("POST")
	api.HandleFunc("/pages/rewind", s.handleRewind).Methods("POST")
	api.HandleFunc("/pages/{name}", s.handleGetPage).Methods("GET")
	api.HandleFunc("/pages/{name}", s.handleUpdatePage).Methods("PUT")
	api.HandleFunc("/pages/{name}", s.handleDeletePage).Methods("DELETE")

	api.HandleFunc("/search", s.handleSearch).Methods("GET")

	api.HandleFunc("/downloads", s.handleListDownloads).Methods("GET")
	api.HandleFunc("/downloads", s.handleStartDownload).Methods("POST")

	api.HandleFunc("/bin", s.handleListBin).Methods("GET")
	api.HandleFunc("/bin", s.handleEmptyBin).Methods("DELETE")
	api.HandleFunc("/bin/{name}/restore", s.handleRestore).Methods("POST")

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	s.log.Info().Str("addr", addr).Msg("listening")

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
