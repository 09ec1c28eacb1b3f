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
)

var moveSubChapter int

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a chapter to a new position",
	Long: `Move the chapter at 1-based position <from> to position <to> and
renumber everything to match. With --chapter, move a subsection within
that chapter instead.

Examples:
  neurodraft move 3 1
  neurodraft move 2 4 --chapter 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[0])
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		ph, err := openProject()
		if err != nil {
			return err
		}
		eng := newEngine()
		if moveSubChapter > 0 {
			if !eng.MoveSubsection(ph.Root, moveSubChapter, from-1, to-1) {
				return fmt.Errorf("move failed")
			}
			return nil
		}
		if !eng.MoveChapter(ph.Root, from-1, to-1) {
			return fmt.Errorf("move failed")
		}
		return nil
	},
}

func init() {
	moveCmd.Flags().IntVar(&moveSubChapter, "chapter", 0, "move a subsection within this chapter")
	rootCmd.AddCommand(moveCmd)
}
