/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	applog "neurodraft/internal/log"
)

// ChapterWatcher observes a project's chapter directory for out-of-band
// edits. The outline index is rebuilt wholesale per structural operation, so
// the watcher only reports that the on-disk state moved; it does not try to
// diff. Callbacks run on the watcher goroutine.
type ChapterWatcher struct {
	w       *fsnotify.Watcher
	onStale func(path string)
	log     *slog.Logger
	done    chan struct{}
}

// WatchChapters starts watching the chapters directory under root. onStale is
// invoked with the changed path for every create/write/rename/remove of a
// chapter file (.md or .txt).
func WatchChapters(root string, onStale func(path string)) (*ChapterWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, ChaptersDirName)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	cw := &ChapterWatcher{
		w:       w,
		onStale: onStale,
		log:     applog.WithComponent("storage").With(slog.String("dir", dir)),
		done:    make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *ChapterWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if !isChapterFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			cw.log.Debug("chapter file changed on disk", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			if cw.onStale != nil {
				cw.onStale(ev.Name)
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.log.Warn("watch error", slog.Any("err", err))
		}
	}
}

// Close stops the watcher and waits for the event loop to drain.
func (cw *ChapterWatcher) Close() error {
	err := cw.w.Close()
	<-cw.done
	return err
}

func isChapterFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return true
	}
	return false
}
