package index

import (
	"log/slog"

	"github.com/jbrinkw/daybook/internal/checksum"
	"github.com/jbrinkw/daybook/internal/notes"
	"github.com/jbrinkw/daybook/internal/storage"
)

// Sync walks the vault's dated-notes files and brings the index up to date:
//   - new/changed files are rescanned and replaced
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	paths, err := store.ListNotes()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		disk[p] = struct{}{}

		data, err := store.Read(p)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if checksums[p] == checksum.Sum(data) {
			continue
		}
		if err := IndexFile(db, p, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", p))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile scans data as a dated-notes document and replaces the stored
// entries for path. Exported so the watcher and the note service can reuse
// it after writes.
func IndexFile(db *DB, path string, data []byte) error {
	doc := notes.ParseDocument(string(data))
	var rows []EntryRow
	pos := 0
	for e := range notes.Entries(doc.Body) {
		rows = append(rows, EntryRow{
			Path:     path,
			Position: pos,
			Date:     e.Date.Format("2006-01-02"),
			DateStr:  e.DateStr(),
			Content:  e.Text(),
		})
		pos++
	}
	return db.ReplaceFileEntries(path, checksum.Sum(data), rows)
}
