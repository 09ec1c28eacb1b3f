/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"neurodraft/internal/domain"
	"neurodraft/internal/storage"
)

// PDFOptions controls manuscript PDF export.
// Built-in Helvetica is used for portability; font embedding can be added
// later with TTFs.
type PDFOptions struct {
	BodySize    float64 // body font size in pt, default 12
	HeadingSize float64 // chapter heading font size in pt, default 18
	Chapters    []int   // chapter numbers to export; empty means all
}

// ExportManuscriptPDF exports the chapters to a multi-page PDF at outPath.
// Each chapter starts a new page; level-1 headings are dropped in favor of
// the rendered chapter title, level-2 headings become subheadings.
func ExportManuscriptPDF(ph *storage.ProjectHandle, chapters []domain.Chapter, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	bodySize := opt.BodySize
	if bodySize <= 0 {
		bodySize = 12
	}
	headingSize := opt.HeadingSize
	if headingSize <= 0 {
		headingSize = 18
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(ph.Project.Name, true)
	pdf.SetAuthor(ph.Project.Author, true)
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 72)
	pageW, _ := pdf.GetPageSize()
	textW := pageW - 144

	// Title page.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetY(240)
	pdf.MultiCell(textW, 34, ph.Project.Name, "", "C", false)
	if ph.Project.Author != "" {
		pdf.Ln(20)
		pdf.SetFont("Helvetica", "", 14)
		pdf.MultiCell(textW, 18, ph.Project.Author, "", "C", false)
	}
	if ph.Project.Description != "" {
		pdf.Ln(40)
		pdf.SetFont("Helvetica", "I", 12)
		pdf.MultiCell(textW, 16, ph.Project.Description, "", "C", false)
	}

	wanted := make(map[int]bool, len(opt.Chapters))
	for _, n := range opt.Chapters {
		wanted[n] = true
	}

	for _, ch := range chapters {
		if len(wanted) > 0 && !wanted[ch.ChapterNumber] {
			continue
		}
		src, err := os.ReadFile(ch.FilePath)
		if err != nil {
			return fmt.Errorf("read chapter %s: %w", ch.FileName, err)
		}

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", headingSize)
		pdf.MultiCell(textW, headingSize*1.3, fmt.Sprintf("Chapter %d: %s", ch.ChapterNumber, ch.Name), "", "C", false)
		pdf.Ln(headingSize)

		for _, line := range strings.Split(string(src), "\n") {
			line = strings.TrimRight(line, "\r")
			switch {
			case strings.HasPrefix(line, "## "):
				pdf.Ln(bodySize)
				pdf.SetFont("Helvetica", "B", bodySize+2)
				pdf.MultiCell(textW, (bodySize+2)*1.4, strings.TrimSpace(line[3:]), "", "L", false)
				pdf.Ln(bodySize * 0.4)
			case strings.HasPrefix(line, "# "):
				// Chapter heading already rendered above.
			case strings.TrimSpace(line) == "":
				pdf.Ln(bodySize * 0.6)
			default:
				pdf.SetFont("Helvetica", "", bodySize)
				pdf.MultiCell(textW, bodySize*1.5, line, "", "L", false)
			}
		}
	}

	outPath, err := resolveOutPath(ph.Root, outPath)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
