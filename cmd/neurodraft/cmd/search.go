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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"neurodraft/internal/storage"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the full-text search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		chapters := newEngine().Analyze(ph.Root)
		if err := storage.RebuildIndex(context.Background(), ph.Root, ph.Project, chapters); err != nil {
			return err
		}
		fmt.Printf("Indexed %d chapter(s).\n", len(chapters))
		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search chapter text",
	Long: `Full-text search over the project index. Run 'neurodraft index'
first, or after editing chapters outside the app.

Examples:
  neurodraft search lighthouse
  neurodraft search "winter storm" --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		results, err := storage.Search(context.Background(), ph.Root, storage.SearchQuery{
			Text:  args[0],
			Limit: searchLimit,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}
		for _, r := range results {
			if r.Chapter > 0 {
				fmt.Printf("[ch %d] %s: %s\n", r.Chapter, r.Type, r.Snippet)
			} else {
				fmt.Printf("[%s] %s\n", r.Type, r.Snippet)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
}
