// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Update is the result of reloading the watched file.
type Update struct {
	Config *Config
	Err    error
}

// Watcher reloads a config file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself, since many
// editors save by writing a new file and renaming it over the old one.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	updates  chan Update
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWatcher starts watching path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		watcher:  fw,
		debounce: debounce,
		updates:  make(chan Update, 1),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Updates delivers reload results. Only the newest pending result is kept.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// processEvents processes file system events
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			cfg, err := LoadFromPath(w.path)
			w.publish(Update{Config: cfg, Err: err})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.publish(Update{Err: fmt.Errorf("watch error: %w", err)})
		}
	}
}

// publish replaces any unread update with u.
func (w *Watcher) publish(u Update) {
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- u:
	case <-w.done:
	}
}
