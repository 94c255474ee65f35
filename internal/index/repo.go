package index

import (
	"database/sql"
	"fmt"
)

// EntryRow is one dated entry as stored in the index. Position is the
// entry's ordinal within its file.
type EntryRow struct {
	Path     string
	Position int
	Date     string // ISO YYYY-MM-DD
	DateStr  string // header token as written
	Content  string
}

// EntryHit is one full-text search hit.
type EntryHit struct {
	Path    string
	Date    string
	DateStr string
	Snippet string
}

// ReplaceFileEntries replaces everything indexed for path in one
// transaction: the file row is upserted with its checksum and previous
// entries give way to rows.
func (db *DB) ReplaceFileEntries(path, checksum string, rows []EntryRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO note_files (path, checksum, indexed_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			indexed_at = excluded.indexed_at
	`, path, checksum)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)
	ftsDeleteFile(tx, path)

	if len(rows) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO entries (path, position, date, date_str, content) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.Exec(path, r.Position, r.Date, r.DateStr, r.Content); err != nil {
				return fmt.Errorf("index: insert entry: %w", err)
			}
			if err := ftsUpsert(tx, path, r.Position, r.Date, r.DateStr, r.Content); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and its entries from the index.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteFile(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM note_files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM note_files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM note_files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// FileEntries returns the indexed entries of one file in file order.
func (db *DB) FileEntries(path string) ([]EntryRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, position, date, date_str, content
		FROM entries
		WHERE path = ?
		ORDER BY position ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: file entries: %w", err)
	}
	return scanEntryRows(rows)
}

// RecentEntries returns the newest indexed entries across all files, date
// descending with path as tie-break.
func (db *DB) RecentEntries(limit int) ([]EntryRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path, position, date, date_str, content
		FROM entries
		ORDER BY date DESC, path ASC, position ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: recent entries: %w", err)
	}
	return scanEntryRows(rows)
}

// Stats reports how many files and entries are indexed.
func (db *DB) Stats() (files, entries int, err error) {
	if err = db.conn.QueryRow(`SELECT count(*) FROM note_files`).Scan(&files); err != nil {
		return 0, 0, fmt.Errorf("index: count files: %w", err)
	}
	if err = db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&entries); err != nil {
		return 0, 0, fmt.Errorf("index: count entries: %w", err)
	}
	return files, entries, nil
}

func scanEntryRows(rows *sql.Rows) ([]EntryRow, error) {
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.Path, &r.Position, &r.Date, &r.DateStr, &r.Content); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanHits collects search result rows; both Search implementations
// produce the same column set.
func scanHits(rows *sql.Rows) ([]EntryHit, error) {
	defer rows.Close()
	var out []EntryHit
	for rows.Next() {
		var h EntryHit
		if err := rows.Scan(&h.Path, &h.Date, &h.DateStr, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
