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
	"os"

	"github.com/spf13/cobra"

	"neurodraft/internal/autosave"
	"neurodraft/internal/config"
	"neurodraft/internal/crash"
	applog "neurodraft/internal/log"
	"neurodraft/internal/outline"
	"neurodraft/internal/storage"
	"neurodraft/internal/telemetry"
)

var (
	projectPath string
	appConfig   config.AppConfig

	activeHandle    *storage.ProjectHandle
	activeScheduler *autosave.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "neurodraft",
	Short: "Project tooling for NeuroDraft manuscripts",
	Long: `neurodraft manages novel projects on disk: creating the project
structure, keeping chapter numbering consistent, maintaining the full-text
index, and exporting the manuscript.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = cfg
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
		telemetry.InitDefault()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	defer func() { crash.Recover(activeHandle, activeScheduler) }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", ".", "path to the project directory")
}

// openProject opens the manifest at the --project path and remembers the
// handle for crash reporting.
func openProject() (*storage.ProjectHandle, error) {
	ph, err := storage.Open(projectPath)
	if err != nil {
		return nil, err
	}
	activeHandle = ph
	return ph, nil
}

// newEngine builds a consistency engine whose events go to the terminal.
func newEngine() *outline.Engine {
	return outline.NewEngine(outline.Events{
		NumberingUpdated: func(path string) {
			fmt.Println("Numbering updated.")
		},
		ChapterMoved: func(path string, from, to int) {
			fmt.Printf("Moved chapter from position %d to %d.\n", from+1, to+1)
		},
		ChapterRenamed: func(path string, num int, name string) {
			fmt.Printf("Renamed chapter %d to %q.\n", num, name)
		},
		SubsectionRenamed: func(path string, ch, sub int, title string) {
			fmt.Printf("Renamed subsection %d.%d to %q.\n", ch, sub, title)
		},
		SubsectionMoved: func(path string, ch, from, to int) {
			fmt.Printf("Moved subsection in chapter %d from position %d to %d.\n", ch, from+1, to+1)
		},
		UpdateError: func(msg string) {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		},
	})
}
