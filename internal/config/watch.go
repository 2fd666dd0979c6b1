package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow absorbs the burst of events most editors produce for a
// single logical save (write, chmod, rename-into-place).
const debounceWindow = 150 * time.Millisecond

// Watch reloads the config file at path whenever it changes on disk,
// invoking onReload with the newly parsed Config. Changes are debounced
// the way a directory watcher would batch a burst of writes into one
// update, adapted here to a single file. A reload that fails to parse or
// validate is logged by the caller's onReload (it receives the error
// directly) and does not update the caller's view of the config.
//
// Watch blocks until ctx is cancelled, at which point it closes the
// underlying fsnotify.Watcher and returns.
func Watch(ctx context.Context, path string, onReload func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	reload := func() {
		cfg, err := Load(path)
		onReload(cfg, err)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}
		case <-timerC:
			reload()
			timer = nil
			timerC = nil
		case _, ok := <-w.Errors:
			if !ok {
				return nil
			}
		}
	}
}
