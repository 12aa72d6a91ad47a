// ABOUTME: CLI commands for listing and deleting food entries.
// ABOUTME: Deletion accepts a full ID or a unique ID prefix.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/models"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listDate  string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List food entries",
	Long: `List recent food entries, most recent first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  NAME  CALORIES  (MACROS)

  The ID is an 8-character prefix you can use with the delete command.

EXAMPLES:

  kcal list                     # Show last 20 entries
  kcal list -n 50               # Show last 50 entries
  kcal list --date 2025-05-10   # Show every entry of one day`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []*models.FoodEntry
		if listDate != "" {
			day, err := time.ParseInLocation("2006-01-02", listDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", listDate)
			}
			summary, err := trk.Day(day)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}
			entries = summary.Entries
		} else {
			var err error
			entries, err = trk.Entries(listLimit)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			fmt.Printf("%s %s %s %5d kcal%s\n",
				faint.Sprint(e.ID.String()[:8]),
				faint.Sprint(e.Timestamp.Format("2006-01-02 15:04")),
				padRight(truncate(e.Name, 24), 24),
				e.Calories,
				formatMacros(e))
		}

		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a food entry",
	Long: `Delete a food entry by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'kcal list' output.

EXAMPLES:

  kcal delete abc12345      # Delete by 8-char prefix
  kcal rm abc1              # Short prefix (if unique)

CAUTION:

  This permanently deletes the entry. There is no undo.
  If the prefix matches multiple entries, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idOrPrefix := args[0]

		entry, err := repo.GetEntry(idOrPrefix)
		if err != nil {
			return fmt.Errorf("entry not found: %w", err)
		}

		if err := trk.DeleteEntry(entry.ID.String()); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		color.Yellow("✗ Deleted %s", entry.Name)
		fmt.Printf("  %s %d kcal\n",
			color.New(color.Faint).Sprint(entry.ID.String()[:8]),
			entry.Calories)

		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	listCmd.Flags().StringVar(&listDate, "date", "", "only entries of this day (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
