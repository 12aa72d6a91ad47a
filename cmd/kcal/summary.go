// ABOUTME: CLI commands for daily and weekly calorie summaries.
// ABOUTME: Shows eaten, goal, and remaining calories with per-day bars.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/nutrition"
	"github.com/spf13/cobra"
)

var weekDays int

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's calories against the goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := trk.Today()
		if err != nil {
			return fmt.Errorf("failed to summarize today: %w", err)
		}
		printDay(summary)
		return nil
	},
}

var dayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "Show one day's calories against the goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
		if err != nil {
			return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", args[0])
		}
		summary, err := trk.Day(day)
		if err != nil {
			return fmt.Errorf("failed to summarize day: %w", err)
		}
		printDay(summary)
		return nil
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show calories per day for the last week",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := trk.Week(time.Now(), weekDays)
		if err != nil {
			return fmt.Errorf("failed to summarize week: %w", err)
		}
		p, err := trk.Profile()
		if err != nil {
			return err
		}
		goal := nutrition.GoalFor(p)

		peak := goal
		total := 0
		for _, d := range days {
			total += d.TotalCalories
			if d.TotalCalories > peak {
				peak = d.TotalCalories
			}
		}

		for _, d := range days {
			line := fmt.Sprintf("%s %5d kcal %s", d.Date, d.TotalCalories, bar(d.TotalCalories, peak, 30))
			if goal > 0 && d.TotalCalories > goal {
				color.Red("%s", line)
			} else {
				fmt.Println(line)
			}
		}
		fmt.Printf("Total: %d kcal, average %d kcal/day\n", total, total/len(days))
		return nil
	},
}

func printDay(s nutrition.DaySummary) {
	faint := color.New(color.Faint)
	fmt.Println(s.Day.Format("Monday, 2006-01-02"))

	if len(s.Entries) == 0 {
		fmt.Println(faint.Sprint("  Nothing logged."))
	}
	for _, e := range s.Entries {
		fmt.Printf("  %s %s %5d kcal%s\n",
			faint.Sprint(e.Timestamp.Format("15:04")),
			padRight(truncate(e.Name, 24), 24),
			e.Calories,
			formatMacros(e))
	}
	fmt.Println()

	fmt.Printf("  Eaten:     %d kcal (%d meals)\n", s.TotalCalories, s.MealCount)
	fmt.Printf("  Macros:    P %sg F %sg C %sg\n", formatGrams(s.Protein), formatGrams(s.Fats), formatGrams(s.Carbs))
	if s.Goal == 0 {
		fmt.Println(faint.Sprint("  Goal:      not set (run 'kcal profile set')"))
		return
	}
	fmt.Printf("  Goal:      %d kcal\n", s.Goal)
	if s.Remaining < 0 {
		color.Red("  Over by:   %d kcal", -s.Remaining)
	} else {
		color.Green("  Remaining: %d kcal", s.Remaining)
	}
}

// bar renders value as a bar of at most width cells relative to peak.
func bar(value, peak, width int) string {
	if value <= 0 || peak <= 0 {
		return ""
	}
	n := value * width / peak
	if n == 0 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

func init() {
	weekCmd.Flags().IntVar(&weekDays, "days", 7, "number of days ending today (at most 366)")
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(weekCmd)
}
