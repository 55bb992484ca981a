package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/fsops"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a durable per-workspace key/value map. Values are JSON encoded.
// Each Put or Delete is atomic for its key; there is no cross-key atomicity.
type Store interface {
	// Get decodes the value stored under key into v.
	// Returns ErrNotFound if the key is absent.
	Get(key string, v any) error

	// Put encodes v and stores it under key.
	Put(key string, v any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}

// FileStore implements Store as a single JSON document on disk.
//
// Every operation re-reads the document so that a CLI command running in
// another process and the daemon observe each other's writes.
type FileStore struct {
	mu    sync.Mutex
	fs    fsops.FS
	clock clock.Clock
	path  string
	repo  string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(fs fsops.FS, clk clock.Clock, path, repo string) *FileStore {
	return &FileStore{
		fs:    fs,
		clock: clk,
		path:  path,
		repo:  repo,
	}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get decodes the value stored under key into v.
func (s *FileStore) Get(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	raw, ok := doc.Values[key]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return nil
}

// Put encodes v and stores it under key.
func (s *FileStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Values[key] = raw
	return s.save(doc)
}

// Delete removes key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Values[key]; !ok {
		return nil
	}
	delete(doc.Values, key)
	return s.save(doc)
}

// Close is a no-op for FileStore.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (*WorkspaceDocument, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewWorkspaceDocument(s.repo), nil
		}
		return nil, fmt.Errorf("failed to read workspace state: %w", err)
	}

	var doc WorkspaceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace state: %w", err)
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("workspace state %s has version %d, newer than supported %d", s.path, doc.Version, SchemaVersion)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]json.RawMessage)
	}
	return &doc, nil
}

func (s *FileStore) save(doc *WorkspaceDocument) error {
	doc.Version = SchemaVersion
	if doc.Repo == "" {
		doc.Repo = s.repo
	}
	doc.UpdatedAt = s.clock.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workspace state: %w", err)
	}
	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace state: %w", err)
	}
	return nil
}
