package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrTagNotFound is returned when a tag has never been set.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTypeMismatch is returned when a stored value does not parse as the requested type.
	ErrTypeMismatch = errors.New("tag type mismatch")
)

// Metadata is a line-oriented TAG=value file scoped to one page.
// Every Set rewrites the whole file; reads always go to disk so that a
// copied metadata file is picked up without reloading.
type Metadata struct {
	mu   sync.Mutex
	path string
}

// NewMetadata returns a Metadata backed by the file at path. The file is
// not touched until Create or Set is called.
func NewMetadata(path string) *Metadata {
	return &Metadata{path: path}
}

// Path returns the location of the tag file.
func (m *Metadata) Path() string {
	return m.path
}

// Create makes sure the tag file exists.
func (m *Metadata) Create() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("creating metadata %s: %w", m.path, err)
	}
	return f.Close()
}

// String returns the raw value of tag.
func (m *Metadata) String(tag string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags, err := m.load()
	if err != nil {
		return "", false
	}
	v, ok := tags[tag]
	return v, ok
}

// Int returns tag parsed as an int.
func (m *Metadata) Int(tag string) (int, error) {
	v, err := m.raw(tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an int", ErrTypeMismatch, tag, v)
	}
	return n, nil
}

// Long returns tag parsed as an int64.
func (m *Metadata) Long(tag string) (int64, error) {
	v, err := m.raw(tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a long", ErrTypeMismatch, tag, v)
	}
	return n, nil
}

// Float returns tag parsed as a float64.
func (m *Metadata) Float(tag string) (float64, error) {
	v, err := m.raw(tag)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a float", ErrTypeMismatch, tag, v)
	}
	return f, nil
}

// Bool returns tag parsed as a bool.
func (m *Metadata) Bool(tag string) (bool, error) {
	v, err := m.raw(tag)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a bool", ErrTypeMismatch, tag, v)
	}
	return b, nil
}

// Set stores value under tag.
func (m *Metadata) Set(tag, value string) error {
	if strings.ContainsAny(tag, "=\n") {
		return fmt.Errorf("invalid tag name %q", tag)
	}
	value = strings.ReplaceAll(value, "\n", " ")

	m.mu.Lock()
	defer m.mu.Unlock()

	tags, err := m.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if tags == nil {
		tags = make(map[string]string)
	}
	tags[tag] = value
	return m.store(tags)
}

func (m *Metadata) raw(tag string) (string, error) {
	v, ok := m.String(tag)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTagNotFound, tag)
	}
	return v, nil
}

// load parses the tag file. Callers hold m.mu.
func (m *Metadata) load() (map[string]string, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata: %w", err)
	}
	defer f.Close()

	tags := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok || key == "" {
			continue
		}
		tags[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", m.path, err)
	}
	return tags, nil
}

// store writes tags sorted by name. Callers hold m.mu.
func (m *Metadata) store(tags map[string]string) error {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(tags[k])
		b.WriteByte('\n')
	}
	// No MkdirAll here: a tag write must never resurrect a deleted page.
	if err := os.WriteFile(m.path, []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("writing metadata %s: %w", m.path, err)
	}
	return nil
}
