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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"neurodraft/internal/domain"
)

// Chapter files are "markdown-shaped": the structure the engine cares about
// is the first level-1 heading and every level-2 heading. This is a
// line-oriented scan, not a Markdown parser.
//
// Canonical forms written by the engine:
//
//	# Chapter <N>: <Title>
//	## <N>.<M>: <Title>
//
// Parsing strips those numbering prefixes when present so that a second
// renumbering pass sees the same titles and rewrites nothing.

// headingTitle returns the title of a heading line of the given level
// ("# " or "## " prefix) and whether the line is such a heading.
func headingTitle(line string, level int) (string, bool) {
	marker := strings.Repeat("#", level) + " "
	if !strings.HasPrefix(line, marker) {
		return "", false
	}
	title := strings.TrimSpace(line[len(marker):])
	if title == "" {
		return "", false
	}
	return title, true
}

// stripChapterPrefix removes a leading "Chapter <N>: " from a chapter title.
func stripChapterPrefix(title string) string {
	rest, ok := strings.CutPrefix(title, "Chapter ")
	if !ok {
		return title
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest) || rest[i] != ':' {
		return title
	}
	if t := strings.TrimSpace(rest[i+1:]); t != "" {
		return t
	}
	return title
}

// stripSubsectionPrefix removes a leading "<N>.<M>: " from a subsection title.
func stripSubsectionPrefix(title string) string {
	i := 0
	for i < len(title) && title[i] >= '0' && title[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(title) || title[i] != '.' {
		return title
	}
	j := i + 1
	for j < len(title) && title[j] >= '0' && title[j] <= '9' {
		j++
	}
	if j == i+1 || j >= len(title) || title[j] != ':' {
		return title
	}
	if t := strings.TrimSpace(title[j+1:]); t != "" {
		return t
	}
	return title
}

// chapterNumberFromFileName extracts <N> from "chapter_<N>.<ext>"; returns 1
// when the name does not follow the convention.
func chapterNumberFromFileName(fileName string) int {
	rest, ok := strings.CutPrefix(fileName, "chapter_")
	if !ok {
		return 1
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest) || rest[i] != '.' {
		return 1
	}
	n, err := strconv.Atoi(rest[:i])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// chapterFileName returns the canonical file name for a chapter number,
// zero-padded to two digits.
func chapterFileName(chapterNumber int) string {
	return fmt.Sprintf("chapter_%02d.md", chapterNumber)
}

// subsectionAnchor builds the cross-reference slug for a subsection:
// {chapter}-{subsection}-{slugified title}. Anchors are stable only while
// the numbering is stable.
func subsectionAnchor(chapterNumber, subsectionNumber int, title string) string {
	return fmt.Sprintf("%d-%d-%s", chapterNumber, subsectionNumber, slugify(title))
}

// slugify lowercases, collapses runs of non-alphanumerics to single hyphens,
// and trims leading/trailing hyphens.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return b.String()
}

// parseChapterFile builds a chapter record from one file. The chapter number
// comes from the file name; the display name from the first level-1 heading,
// else the file base name; subsections from level-2 headings.
func parseChapterFile(filePath string) (domain.Chapter, error) {
	ch := domain.Chapter{
		FilePath: filePath,
		FileName: filepath.Base(filePath),
	}
	ch.ChapterNumber = chapterNumberFromFileName(ch.FileName)

	b, err := os.ReadFile(filePath)
	if err != nil {
		return ch, fmt.Errorf("read chapter file: %w", err)
	}
	content := string(b)
	ch.WordCount = domain.CountWords(content)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if title, ok := headingTitle(line, 1); ok && ch.Name == "" {
			ch.Name = stripChapterPrefix(title)
			continue
		}
		if title, ok := headingTitle(line, 2); ok {
			ch.Subsections = append(ch.Subsections, stripSubsectionPrefix(title))
		}
	}
	if ch.Name == "" {
		base := ch.FileName
		ch.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ch, nil
}

// parseSubsections scans one chapter file and returns its subsections with
// sequential numbers, source line numbers, and freshly generated anchors.
func parseSubsections(filePath string, chapterNumber int) ([]domain.Subsection, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read chapter file: %w", err)
	}
	var subs []domain.Subsection
	for lineNo, line := range strings.Split(string(b), "\n") {
		line = strings.TrimRight(line, "\r")
		title, ok := headingTitle(line, 2)
		if !ok {
			continue
		}
		title = stripSubsectionPrefix(title)
		n := len(subs) + 1
		subs = append(subs, domain.Subsection{
			Title:            title,
			ChapterNumber:    chapterNumber,
			SubsectionNumber: n,
			LineNumber:       lineNo,
			Anchor:           subsectionAnchor(chapterNumber, n, title),
		})
	}
	return subs, nil
}
