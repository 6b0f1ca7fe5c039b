package repl

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/koto-lang/koto-go/internal/klog"
)

// Watcher polls a file's modification time and invokes onChange when
// it advances, bounding concurrent reload handlers with a semaphore
// so a burst of rapid saves can't pile up overlapping reloads while a
// previous one is still running (SPEC_FULL.md domain-stack note:
// "x/sync is wired via x/sync/semaphore in internal/repl to bound
// concurrent file-watch reloads in the REPL's --watch mode").
type Watcher struct {
	path     string
	interval time.Duration
	sem      *semaphore.Weighted
	log      klog.Logger
}

// NewWatcher builds a Watcher over path, polling every interval and
// allowing at most maxConcurrentReloads overlapping onChange calls.
func NewWatcher(path string, interval time.Duration, maxConcurrentReloads int64, log klog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		interval: interval,
		sem:      semaphore.NewWeighted(maxConcurrentReloads),
		log:      log,
	}
}

// Run polls until ctx is cancelled, calling onChange (in its own
// goroutine, subject to the semaphore) whenever the watched file's
// mtime advances.
func (w *Watcher) Run(ctx context.Context, onChange func(source string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				w.log.Warnf("watch: stat %s: %v", w.path, err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()

			if !w.sem.TryAcquire(1) {
				w.log.Debugf("watch: reload already in flight, skipping %s", w.path)
				continue
			}
			go func() {
				defer w.sem.Release(1)
				source, err := os.ReadFile(w.path)
				if err != nil {
					w.log.Warnf("watch: reading %s: %v", w.path, err)
					return
				}
				onChange(string(source))
			}()
		}
	}
}
