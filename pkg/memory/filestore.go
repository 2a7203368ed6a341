package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/logging"
)

// FileStore persists the snapshot as a single JSON document on disk. Absent
// file means fresh memory.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logging.Logger
}

// NewFileStore creates a store backed by the JSON file at path. The file is
// not created until the first Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logging.GetLogger(),
	}
}

// Load implements the Store interface. Any read or parse problem is swallowed
// and replaced by defaults, which are persisted best-effort so the next load
// starts from a well-formed document.
func (f *FileStore) Load() *Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return f.freshDefaults()
	}

	snapshot := &Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		f.logger.Warn(context.Background(), "memory file unreadable, starting fresh: %v", err)
		return f.freshDefaults()
	}

	snapshot.normalize()
	return snapshot
}

func (f *FileStore) freshDefaults() *Snapshot {
	snapshot := NewSnapshot()
	if err := f.save(snapshot); err != nil {
		f.logger.Warn(context.Background(), "failed to persist default memory: %v", err)
	}
	return snapshot
}

// Save implements the Store interface. The document is fully overwritten.
func (f *FileStore) Save(s *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(s)
}

func (f *FileStore) save(s *Snapshot) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.MemorySaveFailed, "failed to create memory directory"),
				errors.Fields{"path": f.path})
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to marshal snapshot")
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.MemorySaveFailed, "failed to write snapshot"),
			errors.Fields{"path": f.path})
	}

	return nil
}

// Reset implements the Store interface.
func (f *FileStore) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.WithFields(
			errors.Wrap(err, errors.MemorySaveFailed, "failed to delete memory file"),
			errors.Fields{"path": f.path})
	}
	return nil
}

// Close implements the Store interface. FileStore holds no open resources.
func (f *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
