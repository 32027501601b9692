package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/utils"
)

// reloadDelay coalesces the bursts of events editors produce for a single save.
const reloadDelay = 100 * time.Millisecond

// A Watcher re-reads a config file whenever it changes on disk.
type Watcher struct {
	fsw     *fsnotify.Watcher
	workers utils.StoppableWorkers
}

// Watch calls onChange with the new config every time the file at path is rewritten with a
// valid config that differs from the last one seen. Events arriving within reloadDelay of each
// other cause a single reload. Invalid rewrites are logged and skipped.
// The directory is watched rather than the file so editors that replace files keep working.
// Watching ends when ctx is done or Close is called.
func Watch(ctx context.Context, path string, logger logging.Logger, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %q", path)
	}
	var last Config
	if cfg, err := Read(abs, logger); err == nil {
		last = *cfg
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", abs), fsw.Close())
	}

	// The debounced function runs on a timer goroutine; it only signals the worker so onChange is
	// never called after Close returns.
	reload := make(chan struct{}, 1)
	debounced := debounce.New(reloadDelay)
	signalReload := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	w := &Watcher{fsw: fsw}
	w.workers = utils.NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "error", err)
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) == abs && event.Has(fsnotify.Write|fsnotify.Create) {
					debounced(signalReload)
				}
			case <-reload:
				cfg, err := Read(abs, logger)
				if err != nil {
					logger.Warnw("ignoring invalid config change", "path", abs, "error", err)
					continue
				}
				if *cfg == last {
					continue
				}
				last = *cfg
				logger.Infow("config changed", "path", abs)
				onChange(cfg)
			}
		}
	})
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.workers.Stop()
	return w.fsw.Close()
}
