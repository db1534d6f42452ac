package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/cinepost/internal/logging"
)

// RulesWatcher watches the parser rules file and invokes a callback when
// it changes, so edits take effect without a restart.
type RulesWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	log       *logging.Logger
	onChange  func()
	done      chan struct{}
}

// WatchRules starts watching the rules file. onChange runs on every write
// or replace of the file; atomic editor saves (rename over the file)
// are handled by watching the containing directory.
func WatchRules(path string, log *logging.Logger, onChange func()) (*RulesWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	if log == nil {
		log = logging.Nop()
	}

	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	w := &RulesWatcher{
		fsWatcher: fsWatcher,
		path:      path,
		log:       log,
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	go w.loop()

	log.Info("config", "watching parser rules file", logging.F("path", path))
	return w, nil
}

func (w *RulesWatcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Info("config", "parser rules file changed", logging.F("path", w.path))
			w.onChange()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config", "rules watcher error", err)
		}
	}
}

// Close stops the watcher.
func (w *RulesWatcher) Close() error {
	err := w.fsWatcher.Close()
	<-w.done
	return err
}
