// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves the profile, entries, and chat history from the current store to another.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/config"
	"github.com/harperreed/kcal/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo    string
	migrateDest  string
	migrateForce bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all data from the current store into another backend.

The current store is left untouched. Switch backends afterwards by setting
"backend" and "data_dir" in ~/.config/kcal/config.json.

USAGE:

  kcal migrate --to markdown --dest ~/notes/kcal
  kcal migrate --to sqlite --dest ~/.local/share/kcal-sqlite

The destination must be empty unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := config.ExpandPath(migrateDest)
		if dest == "" {
			return fmt.Errorf("--dest is required")
		}

		nonEmpty, err := storage.IsDirNonEmpty(dest)
		if err != nil {
			return err
		}
		if nonEmpty && !migrateForce {
			return fmt.Errorf("destination %s is not empty (use --force to merge into it)", dest)
		}

		dstCfg := config.Config{Backend: migrateTo, DataDir: dest}
		dst, err := dstCfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated to %s (%s)", dest, migrateTo)
		profile := "no"
		if summary.Profile {
			profile = "yes"
		}
		fmt.Printf("  profile: %s, entries: %d, chat messages: %d\n", profile, summary.Entries, summary.ChatMessages)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "markdown", "destination backend: sqlite or markdown")
	migrateCmd.Flags().StringVar(&migrateDest, "dest", "", "destination data directory")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow a non-empty destination")
	rootCmd.AddCommand(migrateCmd)
}
