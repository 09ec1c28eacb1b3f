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
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"neurodraft/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the search index fresh while chapters are edited",
	Long: `Watch the chapter directory and rebuild the full-text index when
chapter files change. Rebuilds are debounced so a burst of saves only
triggers one reindex. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}

		var stale atomic.Bool
		cw, err := storage.WatchChapters(ph.Root, func(path string) {
			stale.Store(true)
		})
		if err != nil {
			return err
		}
		defer cw.Close()

		reindex := func() {
			chapters := newEngine().Analyze(ph.Root)
			if err := storage.RebuildIndex(context.Background(), ph.Root, ph.Project, chapters); err != nil {
				fmt.Fprintln(os.Stderr, "reindex failed:", err)
				return
			}
			fmt.Printf("Reindexed %d chapter(s).\n", len(chapters))
		}
		reindex()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		fmt.Println("Watching", ph.ChaptersDir())
		for {
			select {
			case <-stop:
				return nil
			case <-ticker.C:
				if stale.Swap(false) {
					reindex()
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
