package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jbrinkw/daybook/internal/checksum"
	"github.com/jbrinkw/daybook/internal/storage"
)

// EventCallback receives watcher-driven index changes. kind is "created",
// "updated", or "deleted"; path is vault-relative.
type EventCallback func(kind string, path string)

// renameSettle is how long reconciliation waits after a rename for the
// matching create event to land.
const renameSettle = 200 * time.Millisecond

// vaultWatcher glues fsnotify events to index mutations.
type vaultWatcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	notify EventCallback
}

// Watch mirrors dated-notes file changes under vaultRoot into the index
// until ctx is cancelled, invoking cb after every successful mutation.
// Directories created while watching are picked up automatically, and
// renames settle through a short reconciliation pass.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := watchTree(fw, vaultRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	vw := &vaultWatcher{db: db, store: store, root: vaultRoot, logger: logger, notify: cb}

	settle := time.NewTimer(renameSettle)
	if !settle.Stop() {
		<-settle.C
	}

	for {
		select {
		case <-ctx.Done():
			settle.Stop()
			logger.Info("watcher: stopped")
			return nil

		case <-settle.C:
			vw.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if vw.handleEvent(fw, ev) {
				settle.Reset(renameSettle)
			}

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// handleEvent processes one fsnotify event. It reports whether a rename
// was seen, which arms the reconcile timer.
func (vw *vaultWatcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := watchTree(fw, ev.Name); err != nil {
				vw.logger.Warn("watcher: add new dir failed",
					slog.String("path", ev.Name),
					slog.String("error", err.Error()))
			} else {
				vw.logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
			}
			vw.scanDir(ev.Name)
			return false
		}
	}

	// Only dated-notes files feed the entries index.
	if !storage.IsNotesFile(filepath.Base(ev.Name)) {
		return false
	}
	rel, err := filepath.Rel(vw.root, ev.Name)
	if err != nil {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := "updated"
		if ev.Op&fsnotify.Create != 0 {
			kind = "created"
		}
		vw.indexPath(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		vw.removePath(rel, "watcher: delete failed")

	case ev.Op&fsnotify.Rename != 0:
		// Rename arrives on the old path only; the new path shows up as
		// a separate create when it stays inside the vault. Drop the old
		// rows now and let reconcile catch whatever the create missed.
		vw.removePath(rel, "watcher: rename delete failed")
		return true
	}
	return false
}

// indexPath rescans one notes file and publishes kind on success.
func (vw *vaultWatcher) indexPath(rel, kind string) {
	data, err := vw.store.Read(rel)
	if err != nil {
		vw.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(vw.db, rel, data); err != nil {
		vw.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	vw.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	if vw.notify != nil {
		vw.notify(kind, rel)
	}
}

// removePath drops one file's index rows and publishes "deleted" on
// success.
func (vw *vaultWatcher) removePath(rel, failMsg string) {
	if err := vw.db.DeleteFile(rel); err != nil {
		vw.logger.Warn(failMsg, slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	vw.logger.Debug("watcher: deleted", slog.String("path", rel))
	if vw.notify != nil {
		vw.notify("deleted", rel)
	}
}

// reconcile squares the index with the disk after renames: indexed paths
// with no file behind them are dropped, and on-disk files that are missing
// or stale in the index are rescanned.
func (vw *vaultWatcher) reconcile() {
	checksums, err := vw.db.AllChecksums()
	if err != nil {
		vw.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	paths, err := vw.store.ListNotes()
	if err != nil {
		vw.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		onDisk[p] = struct{}{}
	}
	for p := range checksums {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if err := vw.db.DeleteFile(p); err == nil {
			vw.logger.Debug("reconcile: removed stale", slog.String("path", p))
			if vw.notify != nil {
				vw.notify("deleted", p)
			}
		}
	}

	for _, p := range paths {
		data, err := vw.store.Read(p)
		if err != nil {
			continue
		}
		if checksums[p] == checksum.Sum(data) {
			continue
		}
		if err := IndexFile(vw.db, p, data); err == nil {
			vw.logger.Debug("reconcile: indexed new", slog.String("path", p))
			if vw.notify != nil {
				vw.notify("created", p)
			}
		}
	}
}

// scanDir indexes dated-notes files already present under a directory that
// just became watched.
func (vw *vaultWatcher) scanDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsNotesFile(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(vw.root, p)
		if relErr != nil {
			return nil
		}
		vw.indexPath(rel, "created")
		return nil
	})
}

// watchTree registers dir and every directory below it.
func watchTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
}
