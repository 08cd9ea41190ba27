// Package journal persists sweep events to SQLite so operators can audit
// what the sweeper removed, skipped, or failed on.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tempkeeper/internal/scan"
)

// DB manages the SQLite journal of sweep events.
type DB struct {
	db *sql.DB
}

// Record represents a single sweep event.
type Record struct {
	ID           int64
	Timestamp    time.Time
	Action       string // REMOVE, DRY_RUN, SKIP, ERROR
	Path         string
	FileName     string
	ObjectType   string // file or directory
	Size         int64
	Reason       string
	Rule         string
	ErrorMessage string
	CreatedAt    time.Time
}

// Open creates the journal database if needed and initializes the schema.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing.
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// A plain Exec both verifies the connection and forces creation of
	// the database file.
	if _, err = db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal (check permissions on %s): %w", dbPath, err)
	}

	// WAL keeps the query CLI readable while the sweeper writes.
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous mode: %w", err)
	}

	j := &DB{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweep_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		reason TEXT,
		rule TEXT,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON sweep_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON sweep_events(action);
	CREATE INDEX IF NOT EXISTS idx_path ON sweep_events(path);
	CREATE INDEX IF NOT EXISTS idx_size ON sweep_events(size);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordEvent inserts a sweep event into the journal.
func (d *DB) RecordEvent(action string, cand scan.Candidate, errorMsg string) error {
	ts := cand.Reason.EvaluatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO sweep_events (
		timestamp, action, path, file_name, object_type, size,
		reason, rule, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		ts,
		action,
		cand.Path,
		filepath.Base(cand.Path),
		objectType(cand),
		cand.Size,
		cand.Reason.ToLogString(),
		cand.Reason.Rule,
		errorMsg,
	)
	return err
}

func objectType(c scan.Candidate) string {
	if c.IsDir {
		return "directory"
	}
	return "file"
}

// Close closes the journal database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically).
func (d *DB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
