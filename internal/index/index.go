package index

// EntryIndex is the index surface the watcher, sync, and note service
// program against; *DB is the SQLite implementation.
type EntryIndex interface {
	ReplaceFileEntries(path, checksum string, rows []EntryRow) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	FileEntries(path string) ([]EntryRow, error)
	RecentEntries(limit int) ([]EntryRow, error)
	Stats() (files, entries int, err error)
	Search(query string, limit int) ([]EntryHit, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
