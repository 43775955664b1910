package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Collection names one of the locally persisted record sets. The name doubles
// as the remote table name and, with a .json suffix, as the local file name.
type Collection string

const (
	Users     Collection = "users"
	Schools   Collection = "schools"
	Materials Collection = "materials"
	Requests  Collection = "requests"
	Stock     Collection = "stock_kimonos"
)

// All lists every collection in sync order.
var All = []Collection{Users, Schools, Materials, Requests, Stock}

func (c Collection) Filename() string {
	return string(c) + ".json"
}

// JSONStore persists whole collections as pretty-printed JSON arrays, one
// UTF-8 file per collection. There are no partial updates: every mutation
// path loads the full collection, merges in memory, and rewrites the file.
//
// Writes within one process are serialized by a mutex; across processes the
// files are shared mutable state with last-writer-wins semantics on the whole
// file. Acceptable for the assumed single small team, documented as a known
// limitation.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &JSONStore{dir: dir}, nil
}

// Path returns the file backing a collection.
func (s *JSONStore) Path(c Collection) string {
	return filepath.Join(s.dir, c.Filename())
}

// Exists reports whether the collection file is present on disk.
func (s *JSONStore) Exists(c Collection) bool {
	_, err := os.Stat(s.Path(c))
	return err == nil
}

// Remove deletes the collection file. Used by the sync engine after a
// first-time sync, when the local file becomes a retired bootstrap seed.
func (s *JSONStore) Remove(c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.Remove(s.Path(c))
}

// LoadRaw reads a collection as dynamic rows. A missing file, unreadable
// file, or malformed document yields an empty slice, never an error.
func (s *JSONStore) LoadRaw(c Collection) []map[string]any {
	var rows []map[string]any
	s.load(c, &rows)
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows
}

// SaveRaw overwrites a collection with dynamic rows.
func (s *JSONStore) SaveRaw(c Collection, rows []map[string]any) error {
	return s.save(c, rows)
}

// Load reads a collection into typed records. Same never-fails contract as
// LoadRaw: anything unreadable is an empty collection.
func Load[T any](s *JSONStore, c Collection) []T {
	var rows []T
	s.load(c, &rows)
	if rows == nil {
		rows = []T{}
	}
	return rows
}

// Save overwrites a collection with typed records.
func Save[T any](s *JSONStore, c Collection, rows []T) error {
	return s.save(c, rows)
}

func (s *JSONStore) load(c Collection, dest any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(c))
	if err != nil {
		return
	}
	// Malformed documents are treated as empty rather than fatal; the
	// normalizer will rebuild a valid file on the next save.
	_ = json.Unmarshal(data, dest)
}

func (s *JSONStore) save(c Collection, rows any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}
	data = append(data, '\n')

	// Write-then-rename so readers never observe a half-written collection.
	path := s.Path(c)
	tmp, err := os.CreateTemp(s.dir, c.Filename()+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", c, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", c, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", c, err)
	}
	return nil
}
