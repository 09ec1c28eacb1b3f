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

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show project overview and word counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		chapters := newEngine().Analyze(ph.Root)

		fmt.Printf("%s", ph.Project.Name)
		if ph.Project.Author != "" {
			fmt.Printf(" by %s", ph.Project.Author)
		}
		fmt.Println()

		total := 0
		for _, ch := range chapters {
			total += ch.WordCount
			fmt.Printf("  %2d. %-40s %7d words", ch.ChapterNumber, ch.Name, ch.WordCount)
			if target, ok := ph.Project.WordTargets.Chapters[ch.FileName]; ok && target > 0 {
				fmt.Printf(" / %d", target)
			}
			fmt.Println()
			for i, sub := range ch.Subsections {
				fmt.Printf("      %d.%d %s\n", ch.ChapterNumber, i+1, sub)
			}
		}
		fmt.Printf("Total: %d words", total)
		if ph.Project.WordTargets.Project > 0 {
			fmt.Printf(" of %d target (%.0f%%)", ph.Project.WordTargets.Project,
				100*float64(total)/float64(ph.Project.WordTargets.Project))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
