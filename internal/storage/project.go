/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"neurodraft/internal/domain"
)

const (
	ManifestFileName = "project.json"
	ChaptersDirName  = "chapters"
	BackupsDirName   = "backups"
	HashtagsDirName  = ".hashtags"
	hashtagIndexName = "index.json"
)

// Standard subfolders of a NeuroDraft project.
var standardSubDirs = []string{
	ChaptersDirName,
	"characters",
	"research",
	"corkboard",
	HashtagsDirName,
	BackupsDirName,
}

// manifestSchema validates project.json on open. Kept permissive: unknown
// fields pass, the listed fields must have the right shape when present.
const manifestSchema = `{
  "type": "object",
  "required": ["name", "version"],
  "properties": {
    "name":        {"type": "string", "minLength": 1},
    "version":     {"type": "string"},
    "created":     {"type": "string"},
    "modified":    {"type": "string"},
    "author":      {"type": "string"},
    "description": {"type": "string"},
    "wordTargets": {
      "type": "object",
      "properties": {
        "project":  {"type": "integer", "minimum": 0},
        "chapters": {"type": "object", "additionalProperties": {"type": "integer"}}
      }
    },
    "settings": {
      "type": "object",
      "properties": {
        "autoSave":    {"type": "boolean"},
        "backupCount": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// ProjectHandle keeps track of the project state loaded/saved from disk.
// Root is the project directory containing project.json and subfolders.
// Project holds the in-memory representation of the manifest.
type ProjectHandle struct {
	Root         string
	ManifestPath string
	Project      domain.Project
}

// ChaptersDir returns the chapter directory of the handle's project.
func (ph *ProjectHandle) ChaptersDir() string {
	return filepath.Join(ph.Root, ChaptersDirName)
}

// InitProject creates a new project directory at root (creating it if it
// doesn't exist), scaffolds the standard subfolders, seeds chapter_01.md, and
// writes the manifest transactionally. It fails if a manifest already exists.
func InitProject(root, name string) (*ProjectHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project name is required")
	}
	mpath := filepath.Join(root, ManifestFileName)
	if _, err := os.Stat(mpath); err == nil {
		return nil, fmt.Errorf("project already exists at %s", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create project root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	// Seed the first chapter so the project opens with something to edit.
	seed := filepath.Join(root, ChaptersDirName, "chapter_01.md")
	if _, err := os.Stat(seed); os.IsNotExist(err) {
		if err := WriteFileSync(seed, []byte("# Chapter 1\n\nBegin your story here...\n")); err != nil {
			return nil, fmt.Errorf("seed first chapter: %w", err)
		}
	}

	proj := domain.DefaultProject(name)
	now := time.Now().Format(time.RFC3339)
	proj.Created = now
	proj.Modified = now

	ph := &ProjectHandle{Root: root, ManifestPath: mpath, Project: proj}
	if err := Save(ph); err != nil {
		return nil, err
	}
	if err := SaveHashtags(root, nil); err != nil {
		return nil, fmt.Errorf("init hashtag index: %w", err)
	}
	return ph, nil
}

// Open loads an existing project from the given root directory. If the
// current manifest cannot be read, parsed, or validated, the latest backup is
// tried before giving up.
func Open(root string) (*ProjectHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		proj, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &ProjectHandle{Root: root, ManifestPath: mpath, Project: *proj}, nil
	}
	proj, err := parseManifest(b)
	if err != nil {
		bproj, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", err, berr)
		}
		return &ProjectHandle{Root: root, ManifestPath: mpath, Project: *bproj}, nil
	}
	return &ProjectHandle{Root: root, ManifestPath: mpath, Project: *proj}, nil
}

// Save writes the current ProjectHandle.Project to disk with transactional
// semantics and a timestamped backup of the previous manifest (if present).
// The manifest's modified timestamp is refreshed.
func Save(ph *ProjectHandle) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	if ph.Root == "" || ph.ManifestPath == "" {
		return errors.New("invalid ProjectHandle: missing paths")
	}
	ph.Project.Modified = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(ph.Project, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(ph.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(ph.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp))
		if cerr := CopyFile(ph.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	if err := WriteFileAtomic(ph.ManifestPath, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// parseManifest unmarshals and schema-validates a manifest document.
func parseManifest(b []byte) (*domain.Project, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(manifestSchema), gojsonschema.NewBytesLoader(b))
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("manifest schema violation: %s", strings.Join(msgs, "; "))
	}
	var p domain.Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// openFromLatestBackup tries to open the latest timestamped manifest backup.
func openFromLatestBackup(root string) (*domain.Project, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	p, err := parseManifest(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return p, nil
}

// LoadHashtags reads the project-wide hashtag index. A missing index yields
// an empty list.
func LoadHashtags(root string) ([]string, error) {
	path := filepath.Join(root, HashtagsDirName, hashtagIndexName)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read hashtag index: %w", err)
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, fmt.Errorf("parse hashtag index: %w", err)
	}
	return tags, nil
}

// SaveHashtags writes the project-wide hashtag index.
func SaveHashtags(root string, tags []string) error {
	dir := filepath.Join(root, HashtagsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure hashtags dir: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	data, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hashtag index: %w", err)
	}
	data = append(data, '\n')
	return WriteFileAtomic(filepath.Join(dir, hashtagIndexName), data)
}
