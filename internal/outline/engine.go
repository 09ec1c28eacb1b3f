/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package outline keeps chapter ordering, chapter numbering, file names, and
// embedded heading text mutually consistent across a project's chapter files,
// and keeps subsection numbering and anchors consistent within a chapter.
//
// Every structural operation runs the same phases: re-analyze the chapter
// directory, back up every affected file, then mutate. The backup phase is
// all-or-nothing: a single backup failure aborts with zero file changes. The
// mutation phase is not transactional; a hard failure aborts remaining work
// and leaves already-renumbered chapters in place. The index must then be
// treated as stale and re-analyzed; RestoreFromBackups is the manual
// recovery path.
package outline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"neurodraft/internal/domain"
	applog "neurodraft/internal/log"
	"neurodraft/internal/storage"
)

const (
	// BackupSuffix marks the sibling copy made before any mutation.
	BackupSuffix = ".neurodraft_backup"
	// MaxBackups bounds how many backup files CleanupBackups retains
	// per project.
	MaxBackups = 5
	// renameTmpSuffix is used for the intermediate hop of the two-phase
	// rename, so permutations that swap canonical names cannot collide.
	renameTmpSuffix = ".renumber_tmp"
)

// Events are optional listener callbacks, fired after the engine releases
// its lock. A nil callback is skipped. Failures surface through UpdateError
// plus a false return; the engine never panics across its public operations.
type Events struct {
	ChapterMoved      func(projectPath string, fromIndex, toIndex int)
	ChapterRenamed    func(projectPath string, chapterNumber int, newName string)
	SubsectionMoved   func(projectPath string, chapterNumber, fromIndex, toIndex int)
	SubsectionRenamed func(projectPath string, chapterNumber, subsectionNumber int, newTitle string)
	NumberingUpdated  func(projectPath string)
	UpdateError       func(message string)
}

// Engine owns the per-project chapter index (project path -> ordered chapter
// records). The index is rebuilt wholesale per operation and is stale after
// any out-of-band file edit until the next re-analyze. All operations are
// serialized behind a single mutex.
type Engine struct {
	mu       sync.Mutex
	chapters map[string][]domain.Chapter
	events   Events
	pending  []func()
	log      *slog.Logger
}

// NewEngine creates an engine with the given event listeners.
func NewEngine(events Events) *Engine {
	return &Engine{
		chapters: make(map[string][]domain.Chapter),
		events:   events,
		log:      applog.WithComponent("outline"),
	}
}

// run executes fn under the engine lock and fires queued events afterwards.
func (e *Engine) run(fn func() bool) bool {
	e.mu.Lock()
	ok := fn()
	fire := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, f := range fire {
		f()
	}
	return ok
}

func (e *Engine) emit(f func()) {
	if f != nil {
		e.pending = append(e.pending, f)
	}
}

func (e *Engine) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log.Warn("update error", slog.String("msg", msg))
	if e.events.UpdateError != nil {
		e.emit(func() { e.events.UpdateError(msg) })
	}
}

// Analyze rebuilds the chapter index for a project from a full directory
// scan and returns a copy of the records in chapter order.
func (e *Engine) Analyze(projectPath string) []domain.Chapter {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.analyzeLocked(projectPath)
	return append([]domain.Chapter(nil), e.chapters[projectPath]...)
}

// Chapters returns the cached chapter records for a project, analyzing
// first if the project has not been seen yet.
func (e *Engine) Chapters(projectPath string) []domain.Chapter {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.chapters[projectPath]; !ok {
		e.analyzeLocked(projectPath)
	}
	return append([]domain.Chapter(nil), e.chapters[projectPath]...)
}

// analyzeLocked rescans <projectPath>/chapters and rebuilds the index entry.
// Caller holds mu.
func (e *Engine) analyzeLocked(projectPath string) {
	chapters := e.chapters[projectPath][:0]
	dir := filepath.Join(projectPath, storage.ChaptersDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		e.log.Debug("chapters directory not readable", slog.String("dir", dir), slog.Any("err", err))
		e.chapters[projectPath] = nil
		return
	}
	for _, ent := range ents {
		if ent.IsDir() || !isChapterName(ent.Name()) {
			continue
		}
		ch, err := parseChapterFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			e.log.Warn("skipping unreadable chapter file", slog.String("file", ent.Name()), slog.Any("err", err))
			continue
		}
		chapters = append(chapters, ch)
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].ChapterNumber < chapters[j].ChapterNumber
	})
	e.chapters[projectPath] = chapters
	e.log.Debug("analyzed project", slog.String("project", projectPath), slog.Int("chapters", len(chapters)))
}

func isChapterName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return !strings.HasSuffix(name, BackupSuffix) && !strings.HasSuffix(name, renameTmpSuffix)
	}
	return false
}

// RenumberChapters re-derives contiguous 1..N numbering from the current
// sort order and materializes it on disk: canonical file names, rewritten
// chapter headings, and renumbered subsections. A no-op success when the
// numbering is already contiguous.
func (e *Engine) RenumberChapters(projectPath string) bool {
	return e.run(func() bool {
		if strings.TrimSpace(projectPath) == "" {
			e.errorf("Project path is empty")
			return false
		}
		e.analyzeLocked(projectPath)
		return e.materializeNumberingLocked(projectPath)
	})
}

// MoveChapter reorders the chapter list and delegates to the renumbering
// pass to materialize the new order. Equal indices is a no-op success.
func (e *Engine) MoveChapter(projectPath string, fromIndex, toIndex int) bool {
	return e.run(func() bool {
		if strings.TrimSpace(projectPath) == "" {
			e.errorf("Project path is empty")
			return false
		}
		e.analyzeLocked(projectPath)
		chapters := e.chapters[projectPath]
		if fromIndex < 0 || fromIndex >= len(chapters) || toIndex < 0 || toIndex >= len(chapters) {
			e.errorf("Invalid chapter indices for move operation")
			return false
		}
		if fromIndex == toIndex {
			return true
		}
		moved := chapters[fromIndex]
		chapters = append(chapters[:fromIndex], chapters[fromIndex+1:]...)
		chapters = append(chapters[:toIndex], append([]domain.Chapter{moved}, chapters[toIndex:]...)...)
		e.chapters[projectPath] = chapters

		if !e.materializeNumberingLocked(projectPath) {
			return false
		}
		if e.events.ChapterMoved != nil {
			e.emit(func() { e.events.ChapterMoved(projectPath, fromIndex, toIndex) })
		}
		return true
	})
}

// materializeNumberingLocked implements the backup+mutate phases over the
// current in-memory order. Caller holds mu and has analyzed (or reordered)
// e.chapters[projectPath].
func (e *Engine) materializeNumberingLocked(projectPath string) bool {
	chapters := e.chapters[projectPath]
	if len(chapters) == 0 {
		return true
	}

	// Backup phase: all files, before any mutation. All-or-nothing.
	for _, ch := range chapters {
		if err := createBackup(ch.FilePath); err != nil {
			e.errorf("Failed to create backup for: %s", ch.FilePath)
			return false
		}
	}

	dir := filepath.Join(projectPath, storage.ChaptersDirName)

	// Plan renames and refuse targets occupied by files outside the
	// chapter set before touching anything.
	owned := make(map[string]bool, len(chapters))
	for _, ch := range chapters {
		owned[ch.FilePath] = true
	}
	type rename struct {
		index int
		from  string
		to    string
	}
	var renames []rename
	for i, ch := range chapters {
		newPath := filepath.Join(dir, chapterFileName(i+1))
		if ch.FilePath == newPath {
			continue
		}
		if _, err := os.Stat(newPath); err == nil && !owned[newPath] {
			e.errorf("Target file already exists: %s", newPath)
			return false
		}
		renames = append(renames, rename{index: i, from: ch.FilePath, to: newPath})
	}

	// Two-phase rename via temporary names, so permutations that swap
	// canonical names never collide mid-flight.
	for _, r := range renames {
		if err := os.Rename(r.from, r.from+renameTmpSuffix); err != nil {
			e.errorf("Failed to rename chapter file: %s", chapters[r.index].FileName)
			return false
		}
	}
	for _, r := range renames {
		if err := os.Rename(r.from+renameTmpSuffix, r.to); err != nil {
			e.errorf("Failed to rename chapter file: %s", chapters[r.index].FileName)
			return false
		}
		chapters[r.index].FilePath = r.to
		chapters[r.index].FileName = filepath.Base(r.to)
	}

	// Rewrite headings and subsection numbering for every chapter whose
	// number changed. Unchanged chapters are untouched, which keeps the
	// whole pass idempotent.
	for i := range chapters {
		ch := &chapters[i]
		newNumber := i + 1
		if ch.ChapterNumber == newNumber {
			continue
		}
		oldNumber := ch.ChapterNumber
		ch.ChapterNumber = newNumber

		if err := updateChapterHeading(ch.FilePath, newNumber, ch.Name); err != nil {
			e.errorf("Failed to update chapter content: %s", ch.FileName)
			return false
		}
		if !e.renumberSubsectionsLocked(projectPath, newNumber) {
			return false
		}
		e.log.Info("renumbered chapter",
			slog.String("project", projectPath),
			slog.Int("from", oldNumber), slog.Int("to", newNumber))
	}

	if e.events.NumberingUpdated != nil {
		e.emit(func() { e.events.NumberingUpdated(projectPath) })
	}
	return true
}

// RenumberSubsections re-parses the chapter's subsections, reassigns
// sequential numbers and anchors, and rewrites the heading lines in place.
// The chapter file is backed up first.
func (e *Engine) RenumberSubsections(projectPath string, chapterNumber int) bool {
	return e.run(func() bool {
		ch, ok := e.lookupChapterLocked(projectPath, chapterNumber)
		if !ok {
			return false
		}
		if err := createBackup(ch.FilePath); err != nil {
			e.errorf("Failed to create backup for: %s", ch.FilePath)
			return false
		}
		return e.renumberSubsectionsLocked(projectPath, chapterNumber)
	})
}

// lookupChapterLocked finds a chapter by number, analyzing the project first
// if it has not been seen. Emits an error when absent. Caller holds mu.
func (e *Engine) lookupChapterLocked(projectPath string, chapterNumber int) (*domain.Chapter, bool) {
	if _, ok := e.chapters[projectPath]; !ok {
		e.analyzeLocked(projectPath)
	}
	chapters := e.chapters[projectPath]
	for i := range chapters {
		if chapters[i].ChapterNumber == chapterNumber {
			return &chapters[i], true
		}
	}
	e.errorf("Chapter not found: %d", chapterNumber)
	return nil, false
}

// renumberSubsectionsLocked rewrites subsection headings as
// "## <ch>.<n>: <title>" in file order. Caller holds mu; the file is
// expected to be backed up already.
func (e *Engine) renumberSubsectionsLocked(projectPath string, chapterNumber int) bool {
	ch, ok := e.lookupChapterLocked(projectPath, chapterNumber)
	if !ok {
		return false
	}
	subs, err := parseSubsections(ch.FilePath, chapterNumber)
	if err != nil {
		e.errorf("Failed to parse subsections in file: %s", ch.FileName)
		return false
	}
	if err := writeSubsectionHeadings(ch.FilePath, subs); err != nil {
		e.errorf("Failed to update subsections in file: %s", ch.FileName)
		return false
	}
	titles := make([]string, len(subs))
	for i, s := range subs {
		titles[i] = s.Title
	}
	ch.Subsections = titles
	return true
}

// RenameChapter updates a chapter's display name in its heading line. The
// new name must be unique among the project's chapters.
func (e *Engine) RenameChapter(projectPath string, chapterNumber int, newName string) bool {
	return e.run(func() bool {
		newName = strings.TrimSpace(newName)
		if newName == "" {
			e.errorf("Chapter name is empty")
			return false
		}
		ch, ok := e.lookupChapterLocked(projectPath, chapterNumber)
		if !ok {
			return false
		}
		for _, other := range e.chapters[projectPath] {
			if other.ChapterNumber != chapterNumber && normalizeName(other.Name) == normalizeName(newName) {
				e.errorf("Chapter name already in use: %s", newName)
				return false
			}
		}
		if err := createBackup(ch.FilePath); err != nil {
			e.errorf("Failed to create backup for: %s", ch.FilePath)
			return false
		}
		if err := updateChapterHeading(ch.FilePath, chapterNumber, newName); err != nil {
			e.errorf("Failed to update chapter content: %s", ch.FileName)
			return false
		}
		ch.Name = newName
		if e.events.ChapterRenamed != nil {
			e.emit(func() { e.events.ChapterRenamed(projectPath, chapterNumber, newName) })
		}
		return true
	})
}

// RenameSubsection retitles one subsection heading, keeping its number and
// regenerating its anchor.
func (e *Engine) RenameSubsection(projectPath string, chapterNumber, subsectionNumber int, newTitle string) bool {
	return e.run(func() bool {
		newTitle = strings.TrimSpace(newTitle)
		if newTitle == "" {
			e.errorf("Subsection title is empty")
			return false
		}
		ch, ok := e.lookupChapterLocked(projectPath, chapterNumber)
		if !ok {
			return false
		}
		subs, err := parseSubsections(ch.FilePath, chapterNumber)
		if err != nil {
			e.errorf("Failed to parse subsections in file: %s", ch.FileName)
			return false
		}
		if subsectionNumber < 1 || subsectionNumber > len(subs) {
			e.errorf("Subsection not found: %d.%d", chapterNumber, subsectionNumber)
			return false
		}
		if err := createBackup(ch.FilePath); err != nil {
			e.errorf("Failed to create backup for: %s", ch.FilePath)
			return false
		}
		s := &subs[subsectionNumber-1]
		s.Title = newTitle
		s.Anchor = subsectionAnchor(chapterNumber, subsectionNumber, newTitle)
		if err := writeSubsectionHeadings(ch.FilePath, subs); err != nil {
			e.errorf("Failed to update subsections in file: %s", ch.FileName)
			return false
		}
		titles := make([]string, len(subs))
		for i, sub := range subs {
			titles[i] = sub.Title
		}
		ch.Subsections = titles
		if e.events.SubsectionRenamed != nil {
			e.emit(func() { e.events.SubsectionRenamed(projectPath, chapterNumber, subsectionNumber, newTitle) })
		}
		return true
	})
}

// MoveSubsection relocates a subsection block (heading plus body up to the
// next subsection heading) within its chapter and renumbers afterwards.
// Indices are 0-based positions in file order; equal indices is a no-op.
func (e *Engine) MoveSubsection(projectPath string, chapterNumber, fromIndex, toIndex int) bool {
	return e.run(func() bool {
		ch, ok := e.lookupChapterLocked(projectPath, chapterNumber)
		if !ok {
			return false
		}
		subs, err := parseSubsections(ch.FilePath, chapterNumber)
		if err != nil {
			e.errorf("Failed to parse subsections in file: %s", ch.FileName)
			return false
		}
		if fromIndex < 0 || fromIndex >= len(subs) || toIndex < 0 || toIndex >= len(subs) {
			e.errorf("Invalid subsection indices for move operation")
			return false
		}
		if fromIndex == toIndex {
			return true
		}
		if err := createBackup(ch.FilePath); err != nil {
			e.errorf("Failed to create backup for: %s", ch.FilePath)
			return false
		}
		if err := moveSubsectionBlock(ch.FilePath, subs, fromIndex, toIndex); err != nil {
			e.errorf("Failed to update subsections in file: %s", ch.FileName)
			return false
		}
		if !e.renumberSubsectionsLocked(projectPath, chapterNumber) {
			return false
		}
		if e.events.SubsectionMoved != nil {
			e.emit(func() { e.events.SubsectionMoved(projectPath, chapterNumber, fromIndex, toIndex) })
		}
		return true
	})
}

// RestoreFromBackups copies every backup file in the chapter directory back
// over its original and re-analyzes. This is the manual recovery path after
// a partially failed renumbering.
func (e *Engine) RestoreFromBackups(projectPath string) bool {
	return e.run(func() bool {
		dir := filepath.Join(projectPath, storage.ChaptersDirName)
		ents, err := os.ReadDir(dir)
		if err != nil {
			e.errorf("Failed to read chapters directory: %s", dir)
			return false
		}
		restored := 0
		for _, ent := range ents {
			name := ent.Name()
			if !strings.HasSuffix(name, BackupSuffix) {
				continue
			}
			src := filepath.Join(dir, name)
			dst := filepath.Join(dir, strings.TrimSuffix(name, BackupSuffix))
			if err := storage.CopyFile(src, dst); err != nil {
				e.errorf("Failed to restore backup: %s", src)
				return false
			}
			restored++
		}
		e.log.Info("restored chapter backups", slog.String("project", projectPath), slog.Int("files", restored))
		e.analyzeLocked(projectPath)
		return true
	})
}

// CleanupBackups removes the oldest backup files so that at most MaxBackups
// remain in the project's chapter directory. Best-effort; returns how many
// files were removed.
func (e *Engine) CleanupBackups(projectPath string) int {
	dir := filepath.Join(projectPath, storage.ChaptersDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	type backup struct {
		path string
		mod  int64
	}
	var backups []backup
	for _, ent := range ents {
		if !strings.HasSuffix(ent.Name(), BackupSuffix) {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, ent.Name()), mod: info.ModTime().UnixNano()})
	}
	if len(backups) <= MaxBackups {
		return 0
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].mod < backups[j].mod })
	removed := 0
	for _, b := range backups[:len(backups)-MaxBackups] {
		if err := os.Remove(b.path); err == nil {
			removed++
		}
	}
	return removed
}

// createBackup copies filePath to its sibling backup path, replacing any
// previous backup.
func createBackup(filePath string) error {
	backupPath := filePath + BackupSuffix
	if _, err := os.Stat(backupPath); err == nil {
		if err := os.Remove(backupPath); err != nil {
			return err
		}
	}
	return storage.CopyFile(filePath, backupPath)
}

// updateChapterHeading rewrites the first level-1 heading line as
// "# Chapter <N>: <Title>". A file without such a heading is left unchanged.
// The write is skipped when the heading already matches.
func updateChapterHeading(filePath string, chapterNumber int, name string) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	lines := strings.Split(string(b), "\n")
	target := fmt.Sprintf("# Chapter %d: %s", chapterNumber, name)
	for i, line := range lines {
		if _, ok := headingTitle(strings.TrimRight(line, "\r"), 1); !ok {
			continue
		}
		if strings.TrimRight(line, "\r") == target {
			return nil
		}
		lines[i] = target
		return storage.WriteFileAtomic(filePath, []byte(strings.Join(lines, "\n")))
	}
	return nil
}

// writeSubsectionHeadings rewrites the level-2 heading lines as
// "## <ch>.<n>: <title>" in order. The write is skipped when nothing changes.
func writeSubsectionHeadings(filePath string, subs []domain.Subsection) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	lines := strings.Split(string(b), "\n")
	changed := false
	idx := 0
	for i, line := range lines {
		if idx >= len(subs) {
			break
		}
		if _, ok := headingTitle(strings.TrimRight(line, "\r"), 2); !ok {
			continue
		}
		s := subs[idx]
		target := fmt.Sprintf("## %d.%d: %s", s.ChapterNumber, s.SubsectionNumber, s.Title)
		if strings.TrimRight(line, "\r") != target {
			lines[i] = target
			changed = true
		}
		idx++
	}
	if !changed {
		return nil
	}
	return storage.WriteFileAtomic(filePath, []byte(strings.Join(lines, "\n")))
}

// moveSubsectionBlock reorders whole subsection blocks in the file. A block
// runs from a subsection heading up to the next one (or end of file); the
// preamble before the first heading stays in place.
func moveSubsectionBlock(filePath string, subs []domain.Subsection, fromIndex, toIndex int) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	lines := strings.Split(string(b), "\n")

	starts := make([]int, len(subs))
	for i, s := range subs {
		starts[i] = s.LineNumber
	}
	blockEnd := func(i int) int {
		if i+1 < len(starts) {
			return starts[i+1]
		}
		return len(lines)
	}
	blocks := make([][]string, len(subs))
	for i := range subs {
		blocks[i] = lines[starts[i]:blockEnd(i)]
	}
	preamble := lines[:starts[0]]

	moved := blocks[fromIndex]
	blocks = append(blocks[:fromIndex], blocks[fromIndex+1:]...)
	blocks = append(blocks[:toIndex], append([][]string{moved}, blocks[toIndex:]...)...)

	out := append([]string(nil), preamble...)
	for _, blk := range blocks {
		out = append(out, blk...)
	}
	return storage.WriteFileAtomic(filePath, []byte(strings.Join(out, "\n")))
}
