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

	"neurodraft/internal/storage"
	"neurodraft/internal/telemetry"
)

var createAuthor string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Long: `Create a new project at the --project path: the manifest, the
standard directory layout, and a seeded first chapter.

Examples:
  neurodraft -p ~/novels/winter create "Winter Draft"
  neurodraft create "Winter Draft" --author "A. Writer"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := storage.InitProject(projectPath, args[0])
		if err != nil {
			return err
		}
		if createAuthor != "" {
			ph.Project.Author = createAuthor
			if err := storage.Save(ph); err != nil {
				return err
			}
		}
		activeHandle = ph
		telemetry.Event("project_created", nil)
		fmt.Printf("Created project %q at %s\n", ph.Project.Name, ph.Root)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createAuthor, "author", "", "author name for the manifest")
	rootCmd.AddCommand(createCmd)
}
