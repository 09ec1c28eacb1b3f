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

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore chapter files from their backups",
	Long: `Copy every chapter backup back over its original. Use this after a
renumbering that reported an error partway through.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		if !newEngine().RestoreFromBackups(ph.Root) {
			return fmt.Errorf("restore failed")
		}
		fmt.Println("Restored chapters from backups.")
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old chapter backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ph, err := openProject()
		if err != nil {
			return err
		}
		removed := newEngine().CleanupBackups(ph.Root)
		fmt.Printf("Removed %d old backup file(s).\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(cleanupCmd)
}
