/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package importer converts foreign manuscript files into project chapter
// files. Heading 1 paragraphs start a new chapter, Heading 2 paragraphs
// become subsection headings; everything else is body text.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"

	"neurodraft/internal/storage"
)

// ImportedChapter is one chapter extracted from a manuscript file, before
// it is written into the project.
type ImportedChapter struct {
	Title string
	Body  []string // markdown lines, without the level-1 heading
}

// ImportDocx splits a .docx manuscript into chapters and writes them as
// chapter_NN.md files into the project's chapter directory, continuing
// after the highest existing chapter number. It returns the written paths.
func ImportDocx(projectPath, docxPath string) ([]string, error) {
	chapters, err := ReadDocx(docxPath)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters found in %s", filepath.Base(docxPath))
	}

	dir := filepath.Join(projectPath, storage.ChaptersDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure chapters dir: %w", err)
	}
	next := nextChapterNumber(dir)

	var written []string
	for i, ch := range chapters {
		num := next + i
		var b strings.Builder
		fmt.Fprintf(&b, "# Chapter %d: %s\n", num, ch.Title)
		for _, line := range ch.Body {
			b.WriteString("\n")
			b.WriteString(line)
			b.WriteString("\n")
		}
		path := filepath.Join(dir, fmt.Sprintf("chapter_%02d.md", num))
		if _, err := os.Stat(path); err == nil {
			return written, fmt.Errorf("chapter file already exists: %s", path)
		}
		if err := storage.WriteFileSync(path, []byte(b.String())); err != nil {
			return written, fmt.Errorf("write chapter %d: %w", num, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ReadDocx parses a .docx file into chapters without touching any project.
// Content before the first Heading 1 goes into an untitled leading chapter.
func ReadDocx(path string) ([]ImportedChapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var chapters []ImportedChapter
	var current *ImportedChapter
	ensure := func() *ImportedChapter {
		if current == nil {
			chapters = append(chapters, ImportedChapter{Title: "Untitled"})
			current = &chapters[len(chapters)-1]
		}
		return current
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		level := headingLevel(para)
		text := paragraphText(para)
		if text == "" {
			continue
		}
		switch level {
		case 1:
			chapters = append(chapters, ImportedChapter{Title: text})
			current = &chapters[len(chapters)-1]
		case 2:
			ch := ensure()
			ch.Body = append(ch.Body, "## "+text)
		default:
			ch := ensure()
			ch.Body = append(ch.Body, text)
		}
	}
	return chapters, nil
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// nextChapterNumber returns one past the highest chapter_NN number present,
// or 1 for an empty directory.
func nextChapterNumber(dir string) int {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	max := 0
	for _, ent := range ents {
		var n int
		if _, err := fmt.Sscanf(ent.Name(), "chapter_%d", &n); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
