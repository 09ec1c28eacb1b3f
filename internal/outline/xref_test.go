package outline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neurodraft/internal/storage"
)

func TestFindCrossReferences(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: One\n\nSee [[2-1-arrival]] for details.\n")
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Two\n\n## 2.1: Arrival\n\nNo references here.\n")

	eng := NewEngine(Events{})
	hits := eng.FindCrossReferences(root, "2-1-arrival")
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %v", len(hits), hits)
	}
	if hits[0] != "chapter_01.md:3" {
		t.Errorf("hit = %q, want %q", hits[0], "chapter_01.md:3")
	}
}

func TestUpdateCrossReferences(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: One\n\nSee [[2-1-arrival]] and again [[2-1-arrival]].\n")
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Two\n\nplain text\n")

	eng := NewEngine(Events{})
	if !eng.UpdateCrossReferences(root, "2-1-arrival", "1-1-arrival") {
		t.Fatal("UpdateCrossReferences failed")
	}
	got := readChapter(t, root, "chapter_01.md")
	if strings.Contains(got, "2-1-arrival") {
		t.Errorf("old anchor still present: %q", got)
	}
	if strings.Count(got, "[[1-1-arrival]]") != 2 {
		t.Errorf("new anchor not substituted everywhere: %q", got)
	}
	// The rewritten file gets a backup; the untouched one does not.
	if _, err := os.Stat(filepath.Join(root, storage.ChaptersDirName, "chapter_01.md"+BackupSuffix)); err != nil {
		t.Errorf("backup missing for rewritten file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, storage.ChaptersDirName, "chapter_02.md"+BackupSuffix)); err == nil {
		t.Error("backup created for untouched file")
	}
}

func TestUpdateFileReferences(t *testing.T) {
	root := t.TempDir()
	path := writeChapter(t, root, "chapter_01.md", "a [[x]] b [[y]] c\n")

	eng := NewEngine(Events{})
	ok := eng.UpdateFileReferences(path, map[string]string{"x": "x2", "y": "y2"})
	if !ok {
		t.Fatal("UpdateFileReferences failed")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "a [[x2]] b [[y2]] c\n" {
		t.Errorf("content = %q", got)
	}
}

func TestUpdateFileReferencesMissingFile(t *testing.T) {
	var errMsg string
	eng := NewEngine(Events{UpdateError: func(msg string) { errMsg = msg }})
	if eng.UpdateFileReferences(filepath.Join(t.TempDir(), "absent.md"), map[string]string{"a": "b"}) {
		t.Fatal("missing file reported success")
	}
	if errMsg == "" {
		t.Error("no UpdateError emitted")
	}
}
