/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a project's chapter files into distributable
// formats. Chapters are read in their on-disk order; the manifest supplies
// title page metadata.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"

	"neurodraft/internal/domain"
	"neurodraft/internal/storage"
)

const htmlStyle = `body { max-width: 42em; margin: 2em auto; font-family: Georgia, serif; line-height: 1.6; }
h1 { page-break-before: always; }
header { text-align: center; margin-bottom: 4em; }`

// ExportManuscriptHTML renders all chapters into a single standalone HTML
// file at outPath. Relative outPath values land under <root>/exports.
func ExportManuscriptHTML(ph *storage.ProjectHandle, chapters []domain.Chapter, outPath string) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}

	md := goldmark.New()
	var body bytes.Buffer
	for _, ch := range chapters {
		src, err := os.ReadFile(ch.FilePath)
		if err != nil {
			return fmt.Errorf("read chapter %s: %w", ch.FileName, err)
		}
		body.WriteString("<article>\n")
		if err := md.Convert(src, &body); err != nil {
			return fmt.Errorf("convert chapter %s: %w", ch.FileName, err)
		}
		body.WriteString("</article>\n")
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(ph.Project.Name))
	fmt.Fprintf(&doc, "<style>%s</style>\n", htmlStyle)
	doc.WriteString("</head>\n<body>\n<header>\n")
	fmt.Fprintf(&doc, "<h1>%s</h1>\n", html.EscapeString(ph.Project.Name))
	if ph.Project.Author != "" {
		fmt.Fprintf(&doc, "<p>%s</p>\n", html.EscapeString(ph.Project.Author))
	}
	if ph.Project.Description != "" {
		fmt.Fprintf(&doc, "<p><em>%s</em></p>\n", html.EscapeString(ph.Project.Description))
	}
	doc.WriteString("</header>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	outPath, err := resolveOutPath(ph.Root, outPath)
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(outPath, doc.Bytes())
}

func resolveOutPath(root, outPath string) (string, error) {
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return outPath, nil
}
