package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/logging"
)

// SQLiteStore persists the snapshot in SQLite. The document is still written
// wholesale: a single row holds the entire snapshot as JSON, so the store
// semantics match FileStore exactly while gaining durable transactional writes.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	path   string
	logger *logging.Logger

	initialized sync.Once
}

// NewSQLiteStore creates a new SQLite-backed memory store.
// If path is ":memory:", the database is created in-memory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MemoryLoadFailed, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.GetLogger(),
	}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL keeps readers unblocked while a run record commits
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.MemoryLoadFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS memory_snapshot (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            doc TEXT NOT NULL,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.WithFields(
				errors.Wrap(err, errors.MemoryLoadFailed, "failed to initialize database"),
				errors.Fields{"query": query},
			)
			return
		}
	})
	return initErr
}

// Load implements the Store interface. A missing row or an unparsable
// document yields persisted defaults, mirroring FileStore.
func (s *SQLiteStore) Load() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc string
	err := s.db.QueryRow("SELECT doc FROM memory_snapshot WHERE id = 1").Scan(&doc)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn(context.Background(), "memory row unreadable, starting fresh: %v", err)
		}
		return s.freshDefaults()
	}

	snapshot := &Snapshot{}
	if err := json.Unmarshal([]byte(doc), snapshot); err != nil {
		s.logger.Warn(context.Background(), "memory document unreadable, starting fresh: %v", err)
		return s.freshDefaults()
	}

	snapshot.normalize()
	return snapshot
}

func (s *SQLiteStore) freshDefaults() *Snapshot {
	snapshot := NewSnapshot()
	if err := s.save(snapshot); err != nil {
		s.logger.Warn(context.Background(), "failed to persist default memory: %v", err)
	}
	return snapshot
}

// Save implements the Store interface. The single snapshot row is upserted
// inside a transaction.
func (s *SQLiteStore) Save(snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(snapshot)
}

func (s *SQLiteStore) save(snapshot *Snapshot) error {
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to marshal snapshot")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.logger.Error(context.Background(), "failed to rollback transaction: %v", err)
		}
	}()

	query := `
    INSERT INTO memory_snapshot (id, doc, updated_at)
    VALUES (1, ?, CURRENT_TIMESTAMP)
    ON CONFLICT(id) DO UPDATE SET
        doc = excluded.doc,
        updated_at = CURRENT_TIMESTAMP
    `

	if _, err := tx.Exec(query, string(doc)); err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to store snapshot")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to commit transaction")
	}

	return nil
}

// Reset implements the Store interface.
func (s *SQLiteStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM memory_snapshot"); err != nil {
		return errors.Wrap(err, errors.MemorySaveFailed, "failed to clear memory snapshot")
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close database connection")
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
