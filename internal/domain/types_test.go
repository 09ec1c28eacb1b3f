package domain

import (
	"encoding/json"
	"testing"
)

func TestDefaultProject(t *testing.T) {
	p := DefaultProject("Winter Draft")
	if p.Name != "Winter Draft" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", p.Version)
	}
	if p.WordTargets.Project != 80000 {
		t.Errorf("project word target = %d, want 80000", p.WordTargets.Project)
	}
	if !p.Settings.AutoSave {
		t.Error("auto-save should default to enabled")
	}
	if p.Settings.BackupCount != 5 {
		t.Errorf("BackupCount = %d, want 5", p.Settings.BackupCount)
	}
}

func TestProjectManifestJSONKeys(t *testing.T) {
	p := DefaultProject("X")
	p.WordTargets.Chapters = map[string]int{"chapter_01.md": 4000}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "version", "created", "modified", "author", "description", "wordTargets", "settings"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("manifest key %q missing", key)
		}
	}
	settings, ok := raw["settings"].(map[string]any)
	if !ok {
		t.Fatal("settings is not an object")
	}
	if _, ok := settings["autoSave"]; !ok {
		t.Error("settings.autoSave key missing")
	}
	if _, ok := settings["backupCount"]; !ok {
		t.Error("settings.backupCount key missing")
	}
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one two three", 3},
		{"# Chapter 1: Title\n\nOne two.\n", 5},
		{"## 2.1: Sub\nbody text", 4},
		{"--- *** ---", 0},
		{"don't stop", 2},
	}
	for _, c := range cases {
		if got := CountWords(c.in); got != c.want {
			t.Errorf("CountWords(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
