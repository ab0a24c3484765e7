package library

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the library root and imports file
// changes until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list. Rename and directory removal events trigger a debounced Sync that
// removes prompts whose files no longer exist and imports the new names.
func Watch(ctx context.Context, im *Importer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := im.FS().Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := im.Sync(ctx); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			handleEvent(ctx, w, im, ev, logger, scheduleReconcile)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func handleEvent(ctx context.Context, w *fsnotify.Watcher, im *Importer, ev fsnotify.Event, logger *slog.Logger, reconcile func()) {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(w, absPath); addErr != nil {
				logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			} else {
				logger.Debug("watcher: watching new dir", slog.String("path", absPath))
			}
			importDir(ctx, im, absPath, logger)
			return
		}
	}

	if !isPromptFile(filepath.Base(absPath)) {
		// A removed or renamed directory takes its prompt files with it.
		if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			reconcile()
		}
		return
	}

	rel, relErr := im.FS().Rel(absPath)
	if relErr != nil {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		id, err := im.Import(ctx, rel)
		if err != nil {
			logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		logger.Debug("watcher: imported", slog.String("path", rel), slog.Int64("id", id))

	case ev.Op&fsnotify.Remove != 0:
		if err := im.Remove(ctx, rel); err != nil {
			logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
		}

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify fires Rename on the OLD path only. The new path arrives
		// as a separate Create event when it stays within a watched dir.
		if err := im.Remove(ctx, rel); err != nil {
			logger.Warn("watcher: rename remove failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		reconcile()
	}
}

// importDir imports any prompt files found in a newly created directory.
func importDir(ctx context.Context, im *Importer, dirPath string, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isPromptFile(d.Name()) {
			return nil
		}
		rel, relErr := im.FS().Rel(p)
		if relErr != nil {
			return nil
		}
		if _, err := im.Import(ctx, rel); err == nil {
			logger.Debug("watcher: imported from new dir", slog.String("path", rel))
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
