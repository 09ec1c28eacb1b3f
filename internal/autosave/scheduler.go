/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autosave keeps a bounded window on unsaved edits across all open
// documents without saving on every keystroke.
//
// Two timers feed the same flush operation: a repeating fallback interval
// (default 300s) and a single-shot typing-pause timer (default 10s) that is
// restarted on every content change across the whole tracked set. The flush
// is idempotent, so the two firing close together saves each dirty document
// once.
package autosave

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"neurodraft/internal/config"
	applog "neurodraft/internal/log"
)

// Document is an open editable document the host can persist to a path.
// *EditorBuffer implements it; UI editors provide their own implementation.
type Document interface {
	Save(path string) error
}

// Events are optional listener callbacks. They are invoked outside the
// scheduler lock; a nil callback is skipped.
type Events struct {
	AutoSaveCompleted func(filesSaved int)
	AutoSaveFailed    func(path, reason string)
	StatusChanged     func(status string)
}

// Options configures a Scheduler. Zero values fall back to the config
// package defaults. Persist, when set, is called with the accepted settings
// after every configuration change.
type Options struct {
	IntervalSeconds    int
	TypingPauseSeconds int
	Enabled            bool
	Events             Events
	Persist            func(intervalSeconds, typingPauseSeconds int, enabled bool)
}

type docState struct {
	path      string
	dirty     bool
	lastSaved time.Time
}

// Scheduler tracks registered documents and flushes dirty ones to disk when
// typing pauses or the fallback interval elapses. All operations are safe for
// concurrent use; internal state is serialized behind a single mutex.
type Scheduler struct {
	mu       sync.Mutex
	docs     map[Document]*docState
	interval time.Duration
	pause    time.Duration
	enabled  bool

	lastAutoSave time.Time

	fallbackTimer *time.Timer
	pauseTimer    *time.Timer

	events  Events
	persist func(intervalSeconds, typingPauseSeconds int, enabled bool)
	log     *slog.Logger
}

// New creates a Scheduler and, when enabled, arms the fallback timer.
func New(opts Options) *Scheduler {
	interval := opts.IntervalSeconds
	if interval < config.MinAutoSaveInterval || interval > config.MaxAutoSaveInterval {
		interval = config.DefaultAutoSaveInterval
	}
	pause := opts.TypingPauseSeconds
	if pause < config.MinTypingPause || pause > config.MaxTypingPause {
		pause = config.DefaultTypingPause
	}
	s := &Scheduler{
		docs:     make(map[Document]*docState),
		interval: time.Duration(interval) * time.Second,
		pause:    time.Duration(pause) * time.Second,
		enabled:  opts.Enabled,
		events:   opts.Events,
		persist:  opts.Persist,
		log:      applog.WithComponent("autosave"),
	}
	if s.enabled {
		s.armFallbackLocked()
	}
	return s
}

// Register begins tracking a document. The document starts out clean. A
// re-registration with the same handle repoints the path and resets state.
func (s *Scheduler) Register(doc Document, path string) {
	if doc == nil {
		return
	}
	s.mu.Lock()
	s.docs[doc] = &docState{path: path, lastSaved: time.Now()}
	s.mu.Unlock()
	s.log.Debug("registered document", slog.String("path", path))
}

// Unregister stops tracking a document. Safe to call multiple times; the
// host calls it when an editor is closed or destroyed.
func (s *Scheduler) Unregister(doc Document) {
	s.mu.Lock()
	_, ok := s.docs[doc]
	delete(s.docs, doc)
	s.mu.Unlock()
	if ok {
		s.log.Debug("unregistered document")
	}
}

// UpdatePath repoints the backing file of a tracked document without touching
// its dirty state. Used after the file was renamed elsewhere in the system.
func (s *Scheduler) UpdatePath(doc Document, newPath string) {
	s.mu.Lock()
	if st, ok := s.docs[doc]; ok {
		st.path = newPath
	}
	s.mu.Unlock()
}

// NoteChanged marks a tracked document dirty and restarts the typing-pause
// timer. While the scheduler is disabled the document is still marked dirty
// but no timer is armed.
func (s *Scheduler) NoteChanged(doc Document) {
	s.mu.Lock()
	st, ok := s.docs[doc]
	if !ok {
		s.mu.Unlock()
		return
	}
	st.dirty = true
	if s.enabled {
		s.armPauseLocked()
	}
	s.mu.Unlock()
}

// FlushDirty saves every dirty tracked document. Per-document failures are
// reported through the AutoSaveFailed event and leave the document dirty; the
// batch continues. Returns the number of documents saved.
func (s *Scheduler) FlushDirty() int {
	return s.flush(false)
}

// FlushAll saves every tracked document unconditionally, dirty or not. Used
// at shutdown to minimize data loss; failures are reported and skipped.
func (s *Scheduler) FlushAll() int {
	return s.flush(true)
}

func (s *Scheduler) flush(unconditional bool) int {
	type saveTask struct {
		doc  Document
		path string
	}
	s.mu.Lock()
	tasks := make([]saveTask, 0, len(s.docs))
	for doc, st := range s.docs {
		if unconditional || st.dirty {
			tasks = append(tasks, saveTask{doc: doc, path: st.path})
		}
	}
	s.mu.Unlock()

	saved := 0
	var failures []saveTask
	var reasons []string
	for _, t := range tasks {
		if err := t.doc.Save(t.path); err != nil {
			failures = append(failures, t)
			reasons = append(reasons, err.Error())
			s.log.Warn("auto-save failed", slog.String("path", t.path), slog.Any("err", err))
			continue
		}
		saved++
		s.mu.Lock()
		if st, ok := s.docs[t.doc]; ok {
			st.dirty = false
			st.lastSaved = time.Now()
		}
		s.mu.Unlock()
	}

	if saved > 0 {
		s.mu.Lock()
		s.lastAutoSave = time.Now()
		s.mu.Unlock()
	}

	for i, t := range failures {
		s.emitFailed(t.path, reasons[i])
	}
	if saved > 0 {
		s.emitCompleted(saved)
		s.emitStatus(fmt.Sprintf("Saved %d files", saved))
	}
	return saved
}

// SetEnabled starts or stops both timers. Disabling does not clear dirty
// flags; re-enabling resumes saving on the next trigger.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	if enabled {
		s.armFallbackLocked()
	} else {
		s.stopTimersLocked()
	}
	interval, pause := s.interval, s.pause
	s.mu.Unlock()

	if enabled {
		s.emitStatus("Auto-save enabled")
	} else {
		s.emitStatus("Auto-save disabled")
	}
	s.persistSettings(interval, pause, enabled)
}

// Enabled reports whether the timers are running.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetInterval updates the fallback save interval. Out-of-range values are
// rejected and the previous value is retained.
func (s *Scheduler) SetInterval(seconds int) error {
	if seconds < config.MinAutoSaveInterval || seconds > config.MaxAutoSaveInterval {
		s.log.Warn("auto-save interval out of range", slog.Int("seconds", seconds))
		return fmt.Errorf("auto-save interval out of range: %d", seconds)
	}
	s.mu.Lock()
	s.interval = time.Duration(seconds) * time.Second
	if s.enabled {
		s.armFallbackLocked()
	}
	interval, pause, enabled := s.interval, s.pause, s.enabled
	s.mu.Unlock()

	s.emitStatus(fmt.Sprintf("Auto-save interval set to %d seconds", seconds))
	s.persistSettings(interval, pause, enabled)
	return nil
}

// SetTypingPause updates the typing-pause duration. Out-of-range values are
// rejected and the previous value is retained.
func (s *Scheduler) SetTypingPause(seconds int) error {
	if seconds < config.MinTypingPause || seconds > config.MaxTypingPause {
		s.log.Warn("typing pause out of range", slog.Int("seconds", seconds))
		return fmt.Errorf("typing pause out of range: %d", seconds)
	}
	s.mu.Lock()
	s.pause = time.Duration(seconds) * time.Second
	interval, pause, enabled := s.interval, s.pause, s.enabled
	s.mu.Unlock()

	s.emitStatus(fmt.Sprintf("Typing pause set to %d seconds", seconds))
	s.persistSettings(interval, pause, enabled)
	return nil
}

// Interval returns the fallback interval in seconds.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.interval / time.Second)
}

// TypingPause returns the typing-pause duration in seconds.
func (s *Scheduler) TypingPause() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.pause / time.Second)
}

// LastAutoSave returns when the last flush saved at least one document.
func (s *Scheduler) LastAutoSave() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAutoSave
}

// ModifiedCount returns the number of tracked documents with unsaved edits.
func (s *Scheduler) ModifiedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.docs {
		if st.dirty {
			n++
		}
	}
	return n
}

// ModifiedFiles returns the backing paths of all dirty tracked documents.
func (s *Scheduler) ModifiedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var files []string
	for _, st := range s.docs {
		if st.dirty {
			files = append(files, st.path)
		}
	}
	return files
}

// IsDirty reports the dirty flag of a tracked document; false when untracked.
func (s *Scheduler) IsDirty(doc Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.docs[doc]
	return ok && st.dirty
}

// Close stops both timers. Tracked documents remain registered; callers
// typically FlushAll first.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.mu.Unlock()
}

// armFallbackLocked (re)arms the repeating fallback timer. Caller holds mu.
func (s *Scheduler) armFallbackLocked() {
	if s.fallbackTimer != nil {
		s.fallbackTimer.Stop()
	}
	s.fallbackTimer = time.AfterFunc(s.interval, s.onFallback)
}

// armPauseLocked restarts the single-shot typing-pause timer. Caller holds mu.
func (s *Scheduler) armPauseLocked() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
	}
	s.pauseTimer = time.AfterFunc(s.pause, s.onPauseElapsed)
}

func (s *Scheduler) stopTimersLocked() {
	if s.fallbackTimer != nil {
		s.fallbackTimer.Stop()
		s.fallbackTimer = nil
	}
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
}

func (s *Scheduler) onFallback() {
	s.mu.Lock()
	enabled := s.enabled
	if enabled {
		s.armFallbackLocked()
	}
	s.mu.Unlock()
	if enabled {
		s.FlushDirty()
	}
}

func (s *Scheduler) onPauseElapsed() {
	s.mu.Lock()
	enabled := s.enabled
	s.mu.Unlock()
	if enabled {
		s.FlushDirty()
	}
}

func (s *Scheduler) persistSettings(interval, pause time.Duration, enabled bool) {
	if s.persist != nil {
		s.persist(int(interval/time.Second), int(pause/time.Second), enabled)
	}
}

func (s *Scheduler) emitCompleted(n int) {
	if s.events.AutoSaveCompleted != nil {
		s.events.AutoSaveCompleted(n)
	}
}

func (s *Scheduler) emitFailed(path, reason string) {
	if s.events.AutoSaveFailed != nil {
		s.events.AutoSaveFailed(path, reason)
	}
}

func (s *Scheduler) emitStatus(status string) {
	if s.events.StatusChanged != nil {
		s.events.StatusChanged(status)
	}
}
