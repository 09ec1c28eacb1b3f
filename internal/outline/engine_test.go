package outline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"neurodraft/internal/storage"
)

func writeChapter(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, storage.ChaptersDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readChapter(t *testing.T, root, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, storage.ChaptersDirName, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func chapterFiles(t *testing.T, root string) []string {
	t.Helper()
	ents, err := os.ReadDir(filepath.Join(root, storage.ChaptersDirName))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ent := range ents {
		if isChapterName(ent.Name()) {
			names = append(names, ent.Name())
		}
	}
	return names
}

func TestRenumberChaptersFillsGaps(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: One\n\ntext\n")
	writeChapter(t, root, "chapter_03.md", "# Chapter 3: Three\n\ntext\n")
	writeChapter(t, root, "chapter_04.md", "# Chapter 4: Four\n\ntext\n")

	eng := NewEngine(Events{})
	if !eng.RenumberChapters(root) {
		t.Fatal("RenumberChapters failed")
	}

	files := chapterFiles(t, root)
	want := []string{"chapter_01.md", "chapter_02.md", "chapter_03.md"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i, name := range want {
		if files[i] != name {
			t.Fatalf("files = %v, want %v", files, want)
		}
	}
	if got := readChapter(t, root, "chapter_02.md"); !strings.Contains(got, "# Chapter 2: Three") {
		t.Errorf("chapter_02.md heading not rewritten: %q", got)
	}
	if got := readChapter(t, root, "chapter_03.md"); !strings.Contains(got, "# Chapter 3: Four") {
		t.Errorf("chapter_03.md heading not rewritten: %q", got)
	}
	// Unchanged chapter keeps its content byte for byte.
	if got := readChapter(t, root, "chapter_01.md"); got != "# Chapter 1: One\n\ntext\n" {
		t.Errorf("chapter_01.md was modified: %q", got)
	}
}

func TestRenumberCreatesBackupsBeforeMutating(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Lone\n\ntext\n")

	eng := NewEngine(Events{})
	if !eng.RenumberChapters(root) {
		t.Fatal("RenumberChapters failed")
	}
	backup := filepath.Join(root, storage.ChaptersDirName, "chapter_02.md"+BackupSuffix)
	b, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if !strings.Contains(string(b), "# Chapter 2: Lone") {
		t.Errorf("backup holds mutated content: %q", string(b))
	}
	if _, err := os.Stat(filepath.Join(root, storage.ChaptersDirName, "chapter_01.md")); err != nil {
		t.Fatalf("renumbered file missing: %v", err)
	}
}

func TestRenumberChaptersIdempotent(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: One\n\ntext\n")
	writeChapter(t, root, "chapter_05.md", "# Chapter 5: Five\n\ntext\n")

	eng := NewEngine(Events{})
	if !eng.RenumberChapters(root) {
		t.Fatal("first RenumberChapters failed")
	}
	first := map[string]string{}
	for _, name := range chapterFiles(t, root) {
		first[name] = readChapter(t, root, name)
	}

	if !eng.RenumberChapters(root) {
		t.Fatal("second RenumberChapters failed")
	}
	second := chapterFiles(t, root)
	if len(second) != len(first) {
		t.Fatalf("file set changed on second run: %v", second)
	}
	for _, name := range second {
		if got := readChapter(t, root, name); got != first[name] {
			t.Errorf("%s changed on second run", name)
		}
	}
}

func TestMoveChapterReordersAndRenumbers(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Alpha\n\na\n")
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Beta\n\nb\n")
	writeChapter(t, root, "chapter_03.md", "# Chapter 3: Gamma\n\nc\n")

	var movedFrom, movedTo int
	eng := NewEngine(Events{
		ChapterMoved: func(path string, from, to int) { movedFrom, movedTo = from, to },
	})
	if !eng.MoveChapter(root, 2, 0) {
		t.Fatal("MoveChapter failed")
	}
	if movedFrom != 2 || movedTo != 0 {
		t.Errorf("ChapterMoved(%d, %d), want (2, 0)", movedFrom, movedTo)
	}

	if got := readChapter(t, root, "chapter_01.md"); !strings.Contains(got, "# Chapter 1: Gamma") {
		t.Errorf("chapter_01.md = %q, want Gamma first", got)
	}
	if got := readChapter(t, root, "chapter_02.md"); !strings.Contains(got, "# Chapter 2: Alpha") {
		t.Errorf("chapter_02.md = %q, want Alpha second", got)
	}
	if got := readChapter(t, root, "chapter_03.md"); !strings.Contains(got, "# Chapter 3: Beta") {
		t.Errorf("chapter_03.md = %q, want Beta third", got)
	}
}

func TestMoveChapterSwapTwoChapters(t *testing.T) {
	// A two-element swap makes every canonical target name occupied by the
	// other chapter, which exercises the temp-name hop.
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Alpha\n\na\n")
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Beta\n\nb\n")

	eng := NewEngine(Events{})
	if !eng.MoveChapter(root, 0, 1) {
		t.Fatal("MoveChapter failed")
	}
	if got := readChapter(t, root, "chapter_01.md"); !strings.Contains(got, "# Chapter 1: Beta") {
		t.Errorf("chapter_01.md = %q, want Beta", got)
	}
	if got := readChapter(t, root, "chapter_02.md"); !strings.Contains(got, "# Chapter 2: Alpha") {
		t.Errorf("chapter_02.md = %q, want Alpha", got)
	}
	for _, name := range chapterFiles(t, root) {
		if strings.HasSuffix(name, renameTmpSuffix) {
			t.Errorf("leftover temp file %s", name)
		}
	}
}

func TestMoveChapterInvalidIndices(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Only\n")

	var errMsg string
	eng := NewEngine(Events{UpdateError: func(msg string) { errMsg = msg }})
	if eng.MoveChapter(root, 0, 5) {
		t.Fatal("MoveChapter succeeded with out-of-range index")
	}
	if errMsg == "" {
		t.Error("no UpdateError emitted")
	}
}

func TestMoveChapterSameIndexIsNoop(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Only\n")

	eng := NewEngine(Events{})
	if !eng.MoveChapter(root, 0, 0) {
		t.Fatal("no-op move reported failure")
	}
	if _, err := os.Stat(filepath.Join(root, storage.ChaptersDirName, "chapter_01.md"+BackupSuffix)); err == nil {
		t.Error("no-op move created a backup")
	}
}

func TestRenumberSubsections(t *testing.T) {
	root := t.TempDir()
	content := "# Chapter 2: Roads\n\n## Arrival\n\ntext\n\n## 2.7: Departure\n\nmore\n"
	writeChapter(t, root, "chapter_02.md", content)

	eng := NewEngine(Events{})
	if !eng.RenumberSubsections(root, 2) {
		t.Fatal("RenumberSubsections failed")
	}
	got := readChapter(t, root, "chapter_02.md")
	if !strings.Contains(got, "## 2.1: Arrival") {
		t.Errorf("first subsection not renumbered: %q", got)
	}
	if !strings.Contains(got, "## 2.2: Departure") {
		t.Errorf("second subsection not renumbered: %q", got)
	}
}

func TestRenumberSubsectionsUnknownChapter(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: One\n")

	var errMsg string
	eng := NewEngine(Events{UpdateError: func(msg string) { errMsg = msg }})
	if eng.RenumberSubsections(root, 9) {
		t.Fatal("RenumberSubsections succeeded for missing chapter")
	}
	if !strings.Contains(errMsg, "9") {
		t.Errorf("UpdateError = %q, want chapter number", errMsg)
	}
}

func TestRenameChapter(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Draft\n\ntext\n")

	var renamed string
	eng := NewEngine(Events{
		ChapterRenamed: func(path string, num int, name string) { renamed = name },
	})
	if !eng.RenameChapter(root, 1, "The Storm") {
		t.Fatal("RenameChapter failed")
	}
	if renamed != "The Storm" {
		t.Errorf("ChapterRenamed got %q", renamed)
	}
	if got := readChapter(t, root, "chapter_01.md"); !strings.Contains(got, "# Chapter 1: The Storm") {
		t.Errorf("heading not rewritten: %q", got)
	}
}

func TestRenameChapterRejectsDuplicate(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_01.md", "# Chapter 1: Alpha\n")
	writeChapter(t, root, "chapter_02.md", "# Chapter 2: Beta\n")

	eng := NewEngine(Events{})
	if eng.RenameChapter(root, 2, "alpha") {
		t.Fatal("duplicate name accepted")
	}
	if got := readChapter(t, root, "chapter_02.md"); !strings.Contains(got, "Beta") {
		t.Errorf("chapter mutated on rejected rename: %q", got)
	}
}

func TestRenameSubsection(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "chapter_03.md", "# Chapter 3: Roads\n\n## 3.1: Old\n\ntext\n")

	eng := NewEngine(Events{})
	if !eng.RenameSubsection(root, 3, 1, "New Dawn") {
		t.Fatal("RenameSubsection failed")
	}
	if got := readChapter(t, root, "chapter_03.md"); !strings.Contains(got, "## 3.1: New Dawn") {
		t.Errorf("subsection heading not rewritten: %q", got)
	}
}

func TestMoveSubsection(t *testing.T) {
	root := t.TempDir()
	content := "# Chapter 1: One\n\nintro\n\n## 1.1: First\n\nalpha\n\n## 1.2: Second\n\nbeta\n\n## 1.3: Third\n\ngamma\n"
	writeChapter(t, root, "chapter_01.md", content)

	eng := NewEngine(Events{})
	if !eng.MoveSubsection(root, 1, 2, 0) {
		t.Fatal("MoveSubsection failed")
	}
	got := readChapter(t, root, "chapter_01.md")
	if !strings.Contains(got, "intro") {
		t.Errorf("preamble lost: %q", got)
	}
	iThird := strings.Index(got, "## 1.1: Third")
	iFirst := strings.Index(got, "## 1.2: First")
	iSecond := strings.Index(got, "## 1.3: Second")
	if iThird < 0 || iFirst < 0 || iSecond < 0 {
		t.Fatalf("renumbered headings missing: %q", got)
	}
	if !(iThird < iFirst && iFirst < iSecond) {
		t.Errorf("subsection order wrong: %q", got)
	}
	if strings.Index(got, "gamma") > strings.Index(got, "alpha") {
		t.Errorf("body did not move with heading: %q", got)
	}
}

func TestRestoreFromBackups(t *testing.T) {
	root := t.TempDir()
	path := writeChapter(t, root, "chapter_01.md", "# Chapter 1: Original\n")
	if err := createBackup(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("# Chapter 1: Clobbered\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(Events{})
	if !eng.RestoreFromBackups(root) {
		t.Fatal("RestoreFromBackups failed")
	}
	if got := readChapter(t, root, "chapter_01.md"); !strings.Contains(got, "Original") {
		t.Errorf("restore did not revert content: %q", got)
	}
}

func TestCleanupBackups(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, storage.ChaptersDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < MaxBackups+2; i++ {
		path := filepath.Join(dir, chapterFileName(i+1)+BackupSuffix)
		if err := os.WriteFile(path, []byte("backup"), 0o644); err != nil {
			t.Fatal(err)
		}
		stamp := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}

	eng := NewEngine(Events{})
	if removed := eng.CleanupBackups(root); removed != 2 {
		t.Fatalf("removed %d backups, want 2", removed)
	}
	// The two oldest are gone, the newest survive.
	if _, err := os.Stat(filepath.Join(dir, chapterFileName(1)+BackupSuffix)); err == nil {
		t.Error("oldest backup still present")
	}
	if _, err := os.Stat(filepath.Join(dir, chapterFileName(MaxBackups+2)+BackupSuffix)); err != nil {
		t.Error("newest backup removed")
	}
}
