package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/scrapter/scrapter-front/internal/log"
)

// FileStore persists the auth state as a single JSON document, keyed by
// RecordKey. Writes go through a temp file and rename so a crashed write
// never leaves a torn record.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed credential store at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type fileRecord struct {
	Key   string    `json:"key"`
	State AuthState `json:"state"`
}

// Read returns the persisted state. A missing file means no sync has
// happened yet and returns nil without error.
func (s *FileStore) Read(ctx context.Context) (*AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential store: %w", err)
	}

	var record fileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt record is treated as absent; the next sync rewrites it
		log.LogWarnWithFields("credstore", "Discarding corrupt auth state", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}
	return &record.State, nil
}

// Write replaces the persisted state, last-write-wins
func (s *FileStore) Write(ctx context.Context, state AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fileRecord{Key: RecordKey, State: state}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding auth state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credential store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing auth state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("committing auth state: %w", err)
	}
	return nil
}
