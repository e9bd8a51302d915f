package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kasuboski/showmatcher/pkg/logger"
)

const DefaultDebounce = 2 * time.Second

// RunFunc is called once the watched directory has been quiet for the debounce period
type RunFunc func(ctx context.Context) error

// Watcher re-runs a batch when files are created or written in a directory
type Watcher struct {
	dir      string
	run      RunFunc
	debounce time.Duration
	initial  bool
}

type Option func(*Watcher)

// WithDebounce sets how long the directory must be quiet before running
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialRun runs once on start before waiting for changes. Enabled by default.
func WithInitialRun(initial bool) Option {
	return func(w *Watcher) {
		w.initial = initial
	}
}

func New(dir string, run RunFunc, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		run:      run,
		debounce: DefaultDebounce,
		initial:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. Errors from the run function are logged and don't stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx, "directory", w.dir)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	if w.initial {
		w.trigger(ctx)
	}

	log.Infow("watching for new files", "debounce", w.debounce.String())

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("watch context cancelled")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// moves out of the directory show up as rename or remove and must not retrigger
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			log.Debugw("file event", "name", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watch error", "error", err)
		case <-timer.C:
			w.trigger(ctx)
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	if err := w.run(ctx); err != nil {
		logger.FromCtx(ctx).Errorw("run failed", "directory", w.dir, "error", err)
	}
}
