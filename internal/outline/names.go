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
	"strings"
	"time"
)

// Name kinds accepted by IsNameValid and ExistingNames.
const (
	NameKindChapter    = "chapter"
	NameKindSubsection = "subsection"
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsNameValid reports whether name is non-empty after trimming and does not
// collide, case-insensitively, with an existing chapter name or subsection
// title in the project.
func (e *Engine) IsNameValid(projectPath, name, kind string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	want := normalizeName(name)
	for _, existing := range e.ExistingNames(projectPath, kind) {
		if normalizeName(existing) == want {
			return false
		}
	}
	return true
}

// ExistingNames lists the taken names of the given kind across the project,
// in chapter order.
func (e *Engine) ExistingNames(projectPath, kind string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.chapters[projectPath]; !ok {
		e.analyzeLocked(projectPath)
	}
	var names []string
	for _, ch := range e.chapters[projectPath] {
		switch kind {
		case NameKindSubsection:
			names = append(names, ch.Subsections...)
		default:
			names = append(names, ch.Name)
		}
	}
	return names
}

// SuggestAlternativeName returns a free variant of name by appending
// " (2)" .. " (100)", falling back to a timestamp suffix when all numbered
// variants are taken.
func (e *Engine) SuggestAlternativeName(projectPath, name, kind string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "Untitled"
	}
	taken := make(map[string]bool)
	for _, existing := range e.ExistingNames(projectPath, kind) {
		taken[normalizeName(existing)] = true
	}
	if !taken[normalizeName(base)] {
		return base
	}
	for i := 2; i <= 100; i++ {
		candidate := fmt.Sprintf("%s (%d)", base, i)
		if !taken[normalizeName(candidate)] {
			return candidate
		}
	}
	return base + time.Now().Format("_20060102_150405")
}
