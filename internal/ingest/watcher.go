// Package ingest implements the cloud_sync upload source: a recursive
// drop-directory watcher that feeds discovered files into the same
// upload path the HTTP API uses.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	InitialScan bool     // if true, walk roots and emit existing files
	Debounce    time.Duration
}

// StartWatcher emits paths of files created or modified under the
// configured roots. Rapid write bursts are coalesced per path.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addDir(root); err != nil {
			logger.Error("failed to watch root", "root", root, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	if cfg.InitialScan {
		go func() {
			for _, root := range cfg.Roots {
				_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
					if walkErr != nil || d.IsDir() {
						return walkErr
					}
					select {
					case evCh <- path:
					case <-ctx.Done():
						return ctx.Err()
					}
					return nil
				})
			}
		}()
	}

	go func() {
		defer func() { _ = w.Close() }()
		defer close(evCh)

		pending := make(map[string]*time.Timer)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
					continue
				}
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					// new directory: extend the watch
					if err := addDir(ev.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
					continue
				}
				path := ev.Name
				if t, ok := pending[path]; ok {
					t.Reset(cfg.Debounce)
					continue
				}
				pending[path] = time.AfterFunc(cfg.Debounce, func() {
					select {
					case evCh <- path:
					case <-ctx.Done():
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
