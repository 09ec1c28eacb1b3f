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
	"strconv"

	"github.com/spf13/cobra"

	"neurodraft/internal/outline"
)

var renameSubsection int

var renameCmd = &cobra.Command{
	Use:   "rename <chapter> <new-name>",
	Short: "Rename a chapter or subsection",
	Long: `Rename the chapter with the given number. With --subsection, rename
that subsection of the chapter instead.

When the name is already taken, a free alternative is suggested.

Examples:
  neurodraft rename 3 "The Long Night"
  neurodraft rename 3 "Aftermath" --subsection 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		name := args[1]
		ph, err := openProject()
		if err != nil {
			return err
		}
		eng := newEngine()
		if renameSubsection > 0 {
			if !eng.IsNameValid(ph.Root, name, outline.NameKindSubsection) {
				suggestion := eng.SuggestAlternativeName(ph.Root, name, outline.NameKindSubsection)
				return fmt.Errorf("title %q is not available; try %q", name, suggestion)
			}
			if !eng.RenameSubsection(ph.Root, num, renameSubsection, name) {
				return fmt.Errorf("rename failed")
			}
			return nil
		}
		if !eng.IsNameValid(ph.Root, name, outline.NameKindChapter) {
			suggestion := eng.SuggestAlternativeName(ph.Root, name, outline.NameKindChapter)
			return fmt.Errorf("name %q is not available; try %q", name, suggestion)
		}
		if !eng.RenameChapter(ph.Root, num, name) {
			return fmt.Errorf("rename failed")
		}
		return nil
	},
}

func init() {
	renameCmd.Flags().IntVar(&renameSubsection, "subsection", 0, "rename this subsection instead of the chapter")
	rootCmd.AddCommand(renameCmd)
}
