// Package config holds the runtime settings of pagenote and the on-disk
// layout derived from them.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the configuration shared by the CLI, the notebook and the server.
type Config struct {
	// Root of all stored data. Pages live in <DataDir>/pages, the recycle
	// bin in <DataDir>/pages_recycle_bin.
	DataDir string

	// Max download tasks fetching at the same time.
	Concurrency int

	// Max links a single bulk download fans out to.
	MaxLinks int

	// Restrict bulk downloads to the host of the root page.
	SameDomain bool

	// Per-request HTTP timeout.
	Timeout time.Duration

	// User-Agent header sent with every request.
	UserAgent string

	// zerolog level name (debug, info, warn, error).
	LogLevel string

	// Optional log file; logs go to stderr when empty.
	LogFile string

	// Address the HTTP API listens on.
	Addr string
}

// Default returns the configuration used when no flag overrides a value.
func Default() Config {
	dataDir := filepath.Join(".", ".pagenote")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".pagenote")
	}
	return Config{
		DataDir:     dataDir,
		Concurrency: 4,
		MaxLinks:    100,
		SameDomain:  true,
		Timeout:     30 * time.Second,
		UserAgent:   "pagenote/1.0 (https://github.com/gaurav-prasanna/pagenote)",
		LogLevel:    "info",
		Addr:        ":8080",
	}
}

// PagesDir is the active pages root.
func (c Config) PagesDir() string {
	return filepath.Join(c.DataDir, "pages")
}

// RecycleBinDir is the recycle-bin root.
func (c Config) RecycleBinDir() string {
	return filepath.Join(c.DataDir, "pages_recycle_bin")
}

// BackupPath is where Backup writes the pages archive.
func (c Config) BackupPath() string {
	return filepath.Join(c.DataDir, "pages_backup.zip")
}
