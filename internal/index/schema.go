// Package index maintains the SQLite entries index: one row per dated
// entry, keyed by file and position, with optional FTS5 search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// dsnParams keeps writers from blocking readers and enforces the
// note_files -> entries cascade.
const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS note_files (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	path     TEXT NOT NULL REFERENCES note_files(path) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	date     TEXT NOT NULL,
	date_str TEXT NOT NULL,
	content  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (path, position)
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`

// DB is the entries index handle. All methods are safe for concurrent use;
// SQLite serializes writers underneath.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the index database at path and applies the schema,
// including the FTS5 table when that build tag is active.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
