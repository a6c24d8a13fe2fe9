// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the global configuration when the file changes on disk.
// This lets the admin allow-list or backend URL change without restarting
// the TUI.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)
	done     chan struct{}
}

// Watch starts watching the config file. onReload is called with the new
// configuration after each successful reload; invalid edits are ignored and
// the previous configuration stays active.
func Watch(onReload func(*Config)) (*Watcher, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors often replace the file
	// with a rename, which drops a file-level watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		onReload: onReload,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	// Debounce: editors fire several events per save.
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, w.reload)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFrom(w.path)
	if err != nil {
		return
	}
	ReplaceGlobal(cfg)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
