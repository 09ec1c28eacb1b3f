/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model for a NeuroDraft novel project.
package domain

import (
	"strings"
	"unicode"
)

// Project represents the project manifest persisted as project.json in the
// project root directory.
type Project struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Created     string      `json:"created"`  // RFC 3339
	Modified    string      `json:"modified"` // RFC 3339
	Author      string      `json:"author"`
	Description string      `json:"description"`
	WordTargets WordTargets `json:"wordTargets"`
	Settings    Settings    `json:"settings"`
}

// WordTargets holds writing goals for the whole manuscript and per chapter.
// Chapter keys are chapter file names (chapter_01.md).
type WordTargets struct {
	Project  int            `json:"project"`
	Chapters map[string]int `json:"chapters,omitempty"`
}

// Settings holds per-project behavior flags.
type Settings struct {
	AutoSave    bool `json:"autoSave"`
	BackupCount int  `json:"backupCount"`
}

// Chapter is the parsed structural summary of one chapter file.
// ChapterNumber is unique and contiguous from 1..N within a project after any
// successful renumbering.
type Chapter struct {
	Name          string   `json:"name"`
	FileName      string   `json:"fileName"`
	FilePath      string   `json:"filePath"`
	ChapterNumber int      `json:"chapterNumber"`
	Subsections   []string `json:"subsections,omitempty"`
	WordCount     int      `json:"wordCount,omitempty"`
}

// Subsection is a second-level heading within a chapter. Anchor is the slug
// used for cross-references; it is stable only while the numbering is stable.
type Subsection struct {
	Title            string `json:"title"`
	ChapterNumber    int    `json:"chapterNumber"`
	SubsectionNumber int    `json:"subsectionNumber"`
	LineNumber       int    `json:"lineNumber"`
	Anchor           string `json:"anchor"`
}

// DefaultProject returns a manifest with the defaults a freshly created
// project carries.
func DefaultProject(name string) Project {
	return Project{
		Name:        name,
		Version:     "1.0",
		WordTargets: WordTargets{Project: 80000},
		Settings:    Settings{AutoSave: true, BackupCount: 5},
	}
}

// CountWords counts whitespace-separated words, skipping heading markers so
// that "# Chapter 1: Title" counts only the title words.
func CountWords(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		for _, f := range strings.FieldsFunc(line, func(r rune) bool {
			return unicode.IsSpace(r)
		}) {
			if strings.TrimFunc(f, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			}) != "" {
				n++
			}
		}
	}
	return n
}
