/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)
	t.Setenv("USERPROFILE", dir)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.AutoSave.IntervalSeconds != DefaultAutoSaveInterval {
		t.Errorf("interval = %d, want %d", cfg.AutoSave.IntervalSeconds, DefaultAutoSaveInterval)
	}
	if cfg.AutoSave.TypingPauseSeconds != DefaultTypingPause {
		t.Errorf("typing pause = %d, want %d", cfg.AutoSave.TypingPauseSeconds, DefaultTypingPause)
	}
	if !cfg.AutoSave.Enabled {
		t.Error("auto-save should default to enabled")
	}
}

func TestEnvOverridesAutoSave(t *testing.T) {
	isolateConfigDir(t)
	t.Setenv(EnvAutoSaveInterval, "120")
	t.Setenv(EnvTypingPause, "15")
	t.Setenv(EnvAutoSaveEnabled, "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AutoSave.IntervalSeconds != 120 {
		t.Errorf("interval = %d, want 120", cfg.AutoSave.IntervalSeconds)
	}
	if cfg.AutoSave.TypingPauseSeconds != 15 {
		t.Errorf("typing pause = %d, want 15", cfg.AutoSave.TypingPauseSeconds)
	}
	if cfg.AutoSave.Enabled {
		t.Error("enabled override not applied")
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	isolateConfigDir(t)
	t.Setenv(EnvAutoSaveInterval, "5")
	t.Setenv(EnvTypingPause, "600")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AutoSave.IntervalSeconds != DefaultAutoSaveInterval {
		t.Errorf("out-of-range interval = %d, want default %d", cfg.AutoSave.IntervalSeconds, DefaultAutoSaveInterval)
	}
	if cfg.AutoSave.TypingPauseSeconds != DefaultTypingPause {
		t.Errorf("out-of-range typing pause = %d, want default %d", cfg.AutoSave.TypingPauseSeconds, DefaultTypingPause)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolateConfigDir(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/nd.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/nd.log" {
		t.Fatalf("logging env overrides not applied: %#v", cfg.Logging)
	}
}

func TestMergeIncludesAutoSave(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.AutoSave.IntervalSeconds = 900
	src.AutoSave.TypingPauseSeconds = 20
	src.AutoSave.Enabled = false
	mergeInto(&dst, &src)
	if dst.AutoSave.IntervalSeconds != 900 || dst.AutoSave.TypingPauseSeconds != 20 || dst.AutoSave.Enabled {
		t.Fatalf("auto-save fields not merged: %#v", dst.AutoSave)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	cfg := Defaults()
	cfg.General.Author = "A. Writer"
	cfg.AutoSave.IntervalSeconds = 600
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("config path = %q, want yaml file", path)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Author != "A. Writer" {
		t.Errorf("Author = %q after round trip", got.General.Author)
	}
	if got.AutoSave.IntervalSeconds != 600 {
		t.Errorf("interval = %d after round trip, want 600", got.AutoSave.IntervalSeconds)
	}
}
