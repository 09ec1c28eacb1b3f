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
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"neurodraft/internal/autosave"
	"neurodraft/internal/config"
)

var writeCmd = &cobra.Command{
	Use:   "write <chapter>",
	Short: "Append to a chapter from stdin with auto-save",
	Long: `Read lines from stdin and append them to the chapter. The buffer is
auto-saved after a typing pause and at the configured interval, so an
interrupted session loses at most a few seconds of input. End with EOF
(Ctrl-D).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		ph, err := openProject()
		if err != nil {
			return err
		}
		var target string
		for _, ch := range newEngine().Analyze(ph.Root) {
			if ch.ChapterNumber == num {
				target = ch.FilePath
				break
			}
		}
		if target == "" {
			return fmt.Errorf("chapter %d not found", num)
		}

		buf, err := autosave.LoadEditorBuffer(target)
		if err != nil {
			return err
		}
		sched := autosave.New(autosave.Options{
			IntervalSeconds:    appConfig.AutoSave.IntervalSeconds,
			TypingPauseSeconds: appConfig.AutoSave.TypingPauseSeconds,
			Enabled:            appConfig.AutoSave.Enabled,
			Events: autosave.Events{
				AutoSaveCompleted: func(n int) { fmt.Fprintf(os.Stderr, "[saved]\n") },
				AutoSaveFailed: func(path, reason string) {
					fmt.Fprintf(os.Stderr, "[save failed: %s]\n", reason)
				},
			},
			Persist: func(interval, pause int, enabled bool) {
				appConfig.AutoSave.IntervalSeconds = interval
				appConfig.AutoSave.TypingPauseSeconds = pause
				appConfig.AutoSave.Enabled = enabled
				if err := config.Save(appConfig); err != nil {
					fmt.Fprintln(os.Stderr, "could not persist settings:", err)
				}
			},
		})
		defer sched.Close()
		activeScheduler = sched
		sched.Register(buf, target)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			buf.SetText(buf.Text() + scanner.Text() + "\n")
			sched.NoteChanged(buf)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		sched.FlushAll()
		fmt.Printf("Chapter %d now has %d words.\n", num, buf.WordCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
