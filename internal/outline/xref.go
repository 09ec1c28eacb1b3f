/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package outline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"neurodraft/internal/storage"
)

// Cross-references are written as [[<anchor>]] inside chapter text, where
// the anchor is the subsection anchor "<ch>-<sub>-<slug>". Renumbering
// regenerates anchors but never rewrites reference sites on its own;
// UpdateCrossReferences is the explicit repair operation.

// FindCrossReferences scans every chapter file for [[anchor]] occurrences
// and returns hits as "<file name>:<1-based line>".
func (e *Engine) FindCrossReferences(projectPath, anchor string) []string {
	token := "[[" + anchor + "]]"
	var hits []string
	for _, ch := range e.Chapters(projectPath) {
		b, err := os.ReadFile(ch.FilePath)
		if err != nil {
			e.log.Warn("cross-reference scan skipped file", slog.String("file", ch.FileName), slog.Any("err", err))
			continue
		}
		for i, line := range strings.Split(string(b), "\n") {
			if strings.Contains(line, token) {
				hits = append(hits, fmt.Sprintf("%s:%d", ch.FileName, i+1))
			}
		}
	}
	return hits
}

// UpdateCrossReferences rewrites [[oldAnchor]] to [[newAnchor]] across all
// chapter files that contain it, backing up each file before rewriting.
func (e *Engine) UpdateCrossReferences(projectPath, oldAnchor, newAnchor string) bool {
	return e.run(func() bool {
		if _, ok := e.chapters[projectPath]; !ok {
			e.analyzeLocked(projectPath)
		}
		refs := map[string]string{oldAnchor: newAnchor}
		for _, ch := range e.chapters[projectPath] {
			if !e.updateFileReferencesLocked(ch.FilePath, refs) {
				return false
			}
		}
		return true
	})
}

// UpdateFileReferences rewrites a set of anchor replacements in one file.
// The file is only backed up and written when at least one reference is
// present.
func (e *Engine) UpdateFileReferences(filePath string, refs map[string]string) bool {
	return e.run(func() bool {
		return e.updateFileReferencesLocked(filePath, refs)
	})
}

func (e *Engine) updateFileReferencesLocked(filePath string, refs map[string]string) bool {
	b, err := os.ReadFile(filePath)
	if err != nil {
		e.errorf("Failed to read file: %s", filePath)
		return false
	}
	text := string(b)
	updated := text
	for oldAnchor, newAnchor := range refs {
		updated = strings.ReplaceAll(updated, "[["+oldAnchor+"]]", "[["+newAnchor+"]]")
	}
	if updated == text {
		return true
	}
	if err := createBackup(filePath); err != nil {
		e.errorf("Failed to create backup for: %s", filePath)
		return false
	}
	if err := storage.WriteFileAtomic(filePath, []byte(updated)); err != nil {
		e.errorf("Failed to update references in file: %s", filepath.Base(filePath))
		return false
	}
	return true
}
