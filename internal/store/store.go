// Package store persists counsellor state in SQLite: profiles, the university
// catalog, shortlists, locks, todos and application documents.
//
// All reads and writes go through a Session, a unit of work bound to one
// dedicated connection. Callers Acquire a Session at request start and
// Release it at request end; there is no package-level handle.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"counsellor/internal/config"
	"counsellor/internal/logging"
)

// Store owns the connection pool.
type Store struct {
	db     *sql.DB
	dbPath string
	driver string
}

// Open creates or opens the counsellor database described by cfg.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverModernc
	}
	logging.Store("Opening store at %s (driver=%s)", cfg.Path, driver)

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		logging.StoreError("Failed to create directory for %s: %v", cfg.Path, err)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open(driver, dsn(driver, cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: cfg.Path, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return s, nil
}

// dsn builds the connection string. busy_timeout and foreign_keys are
// per-connection settings, so they ride on the DSN rather than a one-off Exec.
func dsn(driver, path string) string {
	if driver == config.DriverCgo {
		return path + "?_busy_timeout=5000&_foreign_keys=on"
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Driver returns the registered database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Acquire reserves a dedicated connection for one unit of work.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, q: conn}, nil
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id INTEGER PRIMARY KEY,
		current_education_level TEXT NOT NULL DEFAULT '',
		degree_major TEXT NOT NULL DEFAULT '',
		graduation_year INTEGER,
		gpa REAL,
		intended_degree TEXT NOT NULL DEFAULT '',
		field_of_study TEXT NOT NULL DEFAULT '',
		target_intake_year INTEGER,
		preferred_countries TEXT NOT NULL DEFAULT '',
		budget_per_year REAL,
		funding_plan TEXT NOT NULL DEFAULT '',
		ielts_toefl_status TEXT NOT NULL DEFAULT '',
		ielts_toefl_score REAL,
		gre_gmat_status TEXT NOT NULL DEFAULT '',
		gre_gmat_score REAL,
		sop_status TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS universities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		country TEXT NOT NULL,
		degree_type TEXT NOT NULL DEFAULT '',
		field_of_study TEXT NOT NULL DEFAULT '',
		tuition_fee REAL NOT NULL DEFAULT 0,
		acceptance_rate REAL NOT NULL DEFAULT 0,
		ranking INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_universities_country ON universities(country);
	CREATE INDEX IF NOT EXISTS idx_universities_name ON universities(name);

	CREATE TABLE IF NOT EXISTS shortlisted_universities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		university_id INTEGER NOT NULL REFERENCES universities(id),
		created_at TEXT NOT NULL,
		UNIQUE(user_id, university_id)
	);

	CREATE TABLE IF NOT EXISTS locked_universities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		university_id INTEGER NOT NULL REFERENCES universities(id),
		created_at TEXT NOT NULL,
		UNIQUE(user_id, university_id)
	);

	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		university_id INTEGER REFERENCES universities(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id);

	CREATE TABLE IF NOT EXISTS application_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		university_id INTEGER NOT NULL REFERENCES universities(id),
		name TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_owner ON application_documents(user_id, university_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
