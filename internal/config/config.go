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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the
// user scope. Environment variables are treated as read-only overrides at
// runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type AutoSaveConfig struct {
	// IntervalSeconds is the periodic fallback save interval (30-3600).
	IntervalSeconds int `yaml:"interval"`
	// TypingPauseSeconds is the quiet period after the last edit that
	// triggers a save (5-60).
	TypingPauseSeconds int  `yaml:"typing_pause"`
	Enabled            bool `yaml:"enabled"`
}

type GeneralConfig struct {
	Author string `yaml:"author"`
	Theme  string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	AutoSave      AutoSaveConfig `yaml:"autosave"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Accepted bounds for the auto-save timers. Out-of-range values in the config
// file are replaced with defaults on load.
const (
	DefaultAutoSaveInterval = 300
	MinAutoSaveInterval     = 30
	MaxAutoSaveInterval     = 3600

	DefaultTypingPause = 10
	MinTypingPause     = 5
	MaxTypingPause     = 60
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		AutoSave: AutoSaveConfig{
			IntervalSeconds:    DefaultAutoSaveInterval,
			TypingPauseSeconds: DefaultTypingPause,
			Enabled:            true,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvAutoSaveInterval = "ND_AUTOSAVE_INTERVAL"
	EnvTypingPause      = "ND_AUTOSAVE_TYPING_PAUSE"
	EnvAutoSaveEnabled  = "ND_AUTOSAVE_ENABLED"
	EnvLogLevel         = "ND_LOG_LEVEL"
	EnvLogFormat        = "ND_LOG_FORMAT"
	EnvLogSource        = "ND_LOG_SOURCE"
	EnvLogFile          = "ND_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "NeuroDraft")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "NeuroDraft")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "neurodraft")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	clampAutoSave(&cfg.AutoSave)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.Author) != "" {
		dst.General.Author = strings.TrimSpace(src.General.Author)
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.AutoSave.IntervalSeconds != 0 {
		dst.AutoSave.IntervalSeconds = src.AutoSave.IntervalSeconds
	}
	if src.AutoSave.TypingPauseSeconds != 0 {
		dst.AutoSave.TypingPauseSeconds = src.AutoSave.TypingPauseSeconds
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.AutoSave.Enabled = src.AutoSave.Enabled
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAutoSaveInterval)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AutoSave.IntervalSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTypingPause)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AutoSave.TypingPauseSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoSaveEnabled)); v != "" {
		cfg.AutoSave.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// clampAutoSave replaces out-of-range timer values with defaults, mirroring
// what the scheduler accepts at runtime.
func clampAutoSave(a *AutoSaveConfig) {
	if a.IntervalSeconds < MinAutoSaveInterval || a.IntervalSeconds > MaxAutoSaveInterval {
		a.IntervalSeconds = DefaultAutoSaveInterval
	}
	if a.TypingPauseSeconds < MinTypingPause || a.TypingPauseSeconds > MaxTypingPause {
		a.TypingPauseSeconds = DefaultTypingPause
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
