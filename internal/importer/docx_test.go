/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextChapterNumber(t *testing.T) {
	dir := t.TempDir()
	if got := nextChapterNumber(dir); got != 1 {
		t.Fatalf("empty dir: got %d, want 1", got)
	}

	for _, name := range []string{"chapter_01.md", "chapter_02.md", "chapter_07.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# Chapter\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// Non-chapter files do not advance the counter.
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	if got := nextChapterNumber(dir); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestReadDocxMissingFile(t *testing.T) {
	if _, err := ReadDocx(filepath.Join(t.TempDir(), "nope.docx")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestImportDocxMissingFile(t *testing.T) {
	root := t.TempDir()
	if _, err := ImportDocx(root, filepath.Join(root, "nope.docx")); err == nil {
		t.Fatalf("expected error for missing docx")
	}
}

func TestReadDocxRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadDocx(path); err == nil {
		t.Fatalf("expected parse error for non-archive file")
	}
}
