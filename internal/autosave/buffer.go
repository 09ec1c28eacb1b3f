/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package autosave

import (
	"os"
	"sync"

	"neurodraft/internal/domain"
	"neurodraft/internal/storage"
)

// EditorBuffer is an in-memory text document backing one open editor. It
// satisfies Document so a Scheduler can persist it, and is safe for
// concurrent use.
type EditorBuffer struct {
	mu   sync.RWMutex
	text string
}

// NewEditorBuffer returns an empty buffer.
func NewEditorBuffer() *EditorBuffer {
	return &EditorBuffer{}
}

// LoadEditorBuffer reads an existing file into a new buffer.
func LoadEditorBuffer(path string) (*EditorBuffer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &EditorBuffer{text: string(b)}, nil
}

// SetText replaces the buffer contents.
func (eb *EditorBuffer) SetText(text string) {
	eb.mu.Lock()
	eb.text = text
	eb.mu.Unlock()
}

// Text returns the current buffer contents.
func (eb *EditorBuffer) Text() string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.text
}

// WordCount counts prose words in the buffer, ignoring heading markers.
func (eb *EditorBuffer) WordCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return domain.CountWords(eb.text)
}

// Save writes the buffer to path via a temp-file rename, so a crash mid-save
// never truncates the chapter on disk.
func (eb *EditorBuffer) Save(path string) error {
	eb.mu.RLock()
	text := eb.text
	eb.mu.RUnlock()
	return storage.WriteFileAtomic(path, []byte(text))
}
