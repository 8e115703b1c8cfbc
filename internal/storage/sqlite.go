package storage

import (
	"fmt"

	"github.com/khanglvm/city-hub/internal/logging"
)

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	// Run migrations in order
	migrations := []migration{
		{version: 1, name: "catalog", up: s.migration001Catalog},
		{version: 2, name: "user_events", up: s.migration002UserEvents},
	}

	for _, m := range migrations {
		if version < m.version {
			logging.Debug().Int("version", m.version).Str("name", m.name).Msg("running migration")
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migrationVersion reports the applied schema version.
func (s *SQLiteStorage) migrationVersion() (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCurrentMigrationVersion()
}

// migration001Catalog creates the items table.
func (s *SQLiteStorage) migration001Catalog() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			attributes TEXT NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			expires_at TEXT
		)
	`); err != nil {
		return fmt.Errorf("failed to create items table: %w", err)
	}

	indexes := []struct{ name, ddl string }{
		{"category", `CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`},
		{"status", `CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`},
		{"created_at", `CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC)`},
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx.ddl); err != nil {
			return fmt.Errorf("failed to create items %s index: %w", idx.name, err)
		}
	}

	return nil
}

// migration002UserEvents creates the user_events table.
func (s *SQLiteStorage) migration002UserEvents() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			entity_id TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create user_events table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_events_user_time
		ON user_events(user_id, created_at DESC)
	`); err != nil {
		return fmt.Errorf("failed to create user_events index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_events_created_at
		ON user_events(created_at)
	`); err != nil {
		return fmt.Errorf("failed to create user_events time index: %w", err)
	}

	return nil
}
