// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileInfo describes one Markdown file in the vault.
type FileInfo struct {
	Path      string // vault-relative
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileInfo, error)
	// ListNotes returns the path of every dated-notes file, in walk order.
	ListNotes() ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
