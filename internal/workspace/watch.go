package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after a relevant file change has been applied.
type ChangeFunc func(path string, kind ChangeKind)

// Watch follows file changes under Root until ctx is done, applying relevant
// ones through Update and then calling onChange. onChange may be nil.
func (w *Workspace) Watch(ctx context.Context, onChange ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, w.Root); err != nil {
		w.logger.Error("failed to watch workspace", "root", w.Root, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, event, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Workspace) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, onChange ChangeFunc) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !SkipDir(info.Name()) {
				if err := watchDirRecursive(watcher, event.Name); err != nil {
					w.logger.Warn("failed to watch directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	kind, ok := changeKind(event.Op)
	if !ok {
		return
	}
	relevant, err := w.Update(event.Name, kind)
	if !relevant {
		return
	}
	if err != nil {
		w.logger.Warn("failed to apply workspace change", "path", event.Name, "kind", kind.String(), "error", err)
		return
	}
	if onChange != nil {
		onChange(event.Name, kind)
	}
}

func changeKind(op fsnotify.Op) (ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Deleted, true
	case op.Has(fsnotify.Create):
		return Created, true
	case op.Has(fsnotify.Write):
		return Modified, true
	}
	return 0, false
}

// watchDirRecursive adds dir and its subdirectories to the watcher, skipping
// dependency and hidden directories.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
