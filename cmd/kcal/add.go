// ABOUTME: CLI commands for logging food entries and looking up common foods.
// ABOUTME: Entries can optionally be pushed to the remote meal log.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/models"
	"github.com/harperreed/kcal/internal/nutrition"
	"github.com/spf13/cobra"
)

var (
	addAt      string
	addProtein string
	addFats    string
	addCarbs   string
	addGrams   string
	addPush    bool
)

var addCmd = &cobra.Command{
	Use:     "add <name> <calories>",
	Aliases: []string{"a"},
	Short:   "Log a food entry",
	Long: `Log a food entry with its calories and optional macros in grams.

Examples:
  kcal add "Oatmeal" 300
  kcal add "Chicken salad" 450 --protein 35 --fats 20 --carbs 12
  kcal add "Pizza" 800 --at "2025-05-09 20:00"
  kcal add "Banana" 89 --push`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := models.EntryInput{
			Name:        args[0],
			Calories:    args[1],
			Protein:     addProtein,
			Fats:        addFats,
			Carbs:       addCarbs,
			WeightGrams: addGrams,
		}

		if addAt != "" {
			t, err := parseTime(addAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
			in.Timestamp = t
		}

		e, ok, err := trk.LogEntry(in)
		if err != nil {
			return fmt.Errorf("failed to add entry: %w", err)
		}
		if !ok {
			return fmt.Errorf("invalid entry: a name is required and calories and macros must be non-negative numbers")
		}

		color.Green("✓ Added %s", e.Name)
		fmt.Printf("  %s %d kcal%s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			e.Calories,
			formatMacros(e))

		if addPush {
			if err := trk.PushEntry(cmd.Context(), e); err != nil {
				return remoteError("failed to push entry", err)
			}
			color.Green("✓ Pushed to %s", apiClient.BaseURL())
		}

		if nutrition.SameDay(e.Timestamp, time.Now()) {
			summary, err := trk.Today()
			if err != nil {
				return err
			}
			fmt.Printf("  Today: %d / %d kcal\n", summary.TotalCalories, summary.Goal)
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Look up typical calories for common foods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches := nutrition.Suggest(args[0])
		if len(matches) == 0 {
			fmt.Println("No matching foods.")
			return nil
		}
		for _, s := range matches {
			fmt.Printf("%s %d kcal\n", padRight(s.Name, 24), s.Calories)
		}
		return nil
	},
}

// formatMacros renders non-zero macros as " (P 10g F 20g C 30g)".
func formatMacros(e *models.FoodEntry) string {
	if e.Protein == 0 && e.Fats == 0 && e.Carbs == 0 {
		return ""
	}
	return color.New(color.Faint).Sprintf(" (P %sg F %sg C %sg)",
		formatGrams(e.Protein), formatGrams(e.Fats), formatGrams(e.Carbs))
}

func formatGrams(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringVar(&addProtein, "protein", "", "protein in grams")
	addCmd.Flags().StringVar(&addFats, "fats", "", "fats in grams")
	addCmd.Flags().StringVar(&addCarbs, "carbs", "", "carbs in grams")
	addCmd.Flags().StringVar(&addGrams, "grams", "", "portion weight in grams")
	addCmd.Flags().BoolVar(&addPush, "push", false, "also save the meal to the remote service")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(suggestCmd)
}
