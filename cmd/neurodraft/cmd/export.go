/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"neurodraft/internal/export"
	"neurodraft/internal/telemetry"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export {html|pdf}",
	Short:     "Export the manuscript",
	Long:      `Export all chapters as a single HTML document or a PDF. Output lands under <project>/exports unless --out is absolute.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"html", "pdf"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		chapters := newEngine().Analyze(ph.Root)

		format := args[0]
		out := exportOut
		if out == "" {
			out = "manuscript." + format
		}
		switch format {
		case "html":
			err = export.ExportManuscriptHTML(ph, chapters, out)
		case "pdf":
			err = export.ExportManuscriptPDF(ph, chapters, out, export.PDFOptions{})
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return err
		}
		telemetry.Event("manuscript_exported", map[string]any{"format": format})
		fmt.Printf("Exported %d chapter(s) to %s\n", len(chapters), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file name")
	rootCmd.AddCommand(exportCmd)
}
