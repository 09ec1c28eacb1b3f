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
)

var renumberChapter int

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Renumber chapters to a contiguous sequence",
	Long: `Renumber all chapters so that numbering, file names, and headings
form a contiguous 1..N sequence. With --chapter, only renumber the
subsections of that chapter.

Every affected file is backed up next to the original before anything
is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		eng := newEngine()
		if renumberChapter > 0 {
			if !eng.RenumberSubsections(ph.Root, renumberChapter) {
				return fmt.Errorf("renumbering subsections of chapter %d failed", renumberChapter)
			}
			return nil
		}
		if !eng.RenumberChapters(ph.Root) {
			return fmt.Errorf("renumbering failed; run 'neurodraft restore' to roll back from backups")
		}
		return nil
	},
}

func init() {
	renumberCmd.Flags().IntVar(&renumberChapter, "chapter", 0, "renumber only this chapter's subsections")
	rootCmd.AddCommand(renumberCmd)
}
