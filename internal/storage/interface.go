/*
Package storage implements the persistent catalog and event log.

This package provides SQLite-based storage for catalog items and user events
with graceful degradation if the database is unavailable: reads return empty
results and writes become no-ops.

The database lives at the configured storage.dbPath (default
~/.city-hub/city.db) and uses modernc.org/sqlite (a pure Go, CGo-free
implementation).
*/
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/khanglvm/city-hub/internal/logging"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// UpsertItem inserts or replaces a catalog item.
	UpsertItem(ctx context.Context, item Item) error

	// UpsertItems inserts or replaces items in one transaction.
	UpsertItems(ctx context.Context, items []Item) error

	// FindItems returns items matching filter in the given order.
	FindItems(ctx context.Context, filter ItemFilter, order Order, limit int) ([]Item, error)

	// DeleteItem removes an item by id.
	DeleteItem(ctx context.Context, id string) error

	// AppendEvent records a user event.
	AppendEvent(ctx context.Context, event UserEvent) error

	// AppendEvents records a batch of user events in one transaction.
	AppendEvents(ctx context.Context, events []UserEvent) error

	// QueryEvents returns a user's events, newest first.
	QueryEvents(ctx context.Context, q EventQuery) ([]UserEvent, error)

	// Stats returns row counts.
	Stats(ctx context.Context) (Stats, error)

	// Cleanup removes events older than the retention period.
	Cleanup(retention time.Duration) (int64, error)

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a new SQLite storage instance.
//
// An empty dbPath selects ~/.city-hub/city.db. The directory is created on
// Init. If the database cannot be opened, the storage will be disabled but
// operations will not fail.
func NewStorage(dbPath string) *SQLiteStorage {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logging.Warn().Err(err).Msg("failed to get home directory, storage disabled")
			return &SQLiteStorage{enabled: false}
		}
		dbPath = filepath.Join(home, ".city-hub", "city.db")
	}

	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.disable(initErr)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.disable(initErr)
			return
		}
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.disable(initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.disable(initErr)
			return
		}
	})

	return initErr
}

func (s *SQLiteStorage) disable(err error) {
	s.enabled = false
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	logging.Warn().Err(err).Str("path", s.dbPath).Msg("storage disabled")
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// timeLayout is fixed-width so that text order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
