package indexer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven record build. kind is
// "indexed" for new or rewritten files and "removed" for deleted ones;
// removed records carry only their path.
type EventCallback func(kind string, rec *Record)

// Watch starts an fsnotify watcher over the scan directories and rebuilds
// the record for each capture file as it lands, until ctx is cancelled.
// Acquisition tools write frames incrementally, so a file may produce
// several events; each rebuild replaces the previous record, matching the
// wholesale-rebuild contract of an indexing pass.
//
// New directories created at runtime are added to the watch list when the
// pass is recursive, and any files already inside them are indexed.
func Watch(ctx context.Context, dirs []string, opts Options, logger *slog.Logger, cb EventCallback) error {
	opts = opts.WithDefaults()
	patterns, err := compilePatterns(opts.Patterns)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if opts.Recursive {
			if err := addDirsRecursive(w, dir); err != nil {
				return err
			}
		} else if err := w.Add(dir); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.Int("dirs", len(dirs)))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if !opts.Recursive {
						continue
					}
					if addErr := addDirsRecursive(w, path); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", path),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", path))
					indexNewDir(path, patterns, opts, logger, cb)
					continue
				}
			}

			if !matchesAny(patterns, filepath.Base(path)) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				emitRecord(path, opts, logger, cb)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path arrives as
				// its own Create event when it stays inside a watched dir.
				logger.Debug("watcher: removed", slog.String("path", path))
				if cb != nil {
					cb("removed", &Record{Path: path})
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func emitRecord(path string, opts Options, logger *slog.Logger, cb EventCallback) {
	rec, diags := BuildRecord(path, opts)
	for _, d := range diags {
		logger.Warn("watcher: degraded record",
			slog.String("path", d.Path),
			slog.String("error", d.Err.Error()))
	}
	logger.Debug("watcher: indexed", slog.String("path", path))
	if cb != nil {
		cb("indexed", rec)
	}
}

// indexNewDir emits records for capture files already present in a newly
// created directory.
func indexNewDir(dir string, patterns []*regexp.Regexp, opts Options, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !matchesAny(patterns, d.Name()) {
			return nil
		}
		emitRecord(path, opts, logger, cb)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
