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
	"path/filepath"

	"github.com/spf13/cobra"

	"neurodraft/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.docx>",
	Short: "Import a manuscript as chapters",
	Long: `Split a .docx manuscript into chapter files. Heading 1 paragraphs
start a new chapter, Heading 2 paragraphs become subsection headings.
New chapters are numbered after the existing ones; run
'neurodraft renumber' afterwards if you reorder them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		written, err := importer.ImportDocx(ph.Root, args[0])
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println("Wrote", filepath.Base(path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
