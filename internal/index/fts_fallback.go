//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on entries.content.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ int, _, _, _ string) error {
	// Content is already stored in the entries table; nothing extra to do.
	return nil
}

func ftsDeleteFile(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]EntryHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, date, date_str, substr(content, 1, 200)
		FROM entries
		WHERE content LIKE ? OR date_str LIKE ?
		ORDER BY date DESC, path ASC
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
