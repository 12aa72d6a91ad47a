// ABOUTME: CLI command for recognizing a meal in a photo via the API service.
// ABOUTME: The result can be logged as a food entry with --log.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeLog bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image.jpg>",
	Short: "Estimate calories from a meal photo",
	Long: `Send a JPEG photo to the API service and show the recognized meal.

Requires 'kcal login'. The service allows 5 analyses per minute.

EXAMPLES:

  kcal analyze lunch.jpg          # Show the estimate
  kcal analyze lunch.jpg --log    # Also log it as an entry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		image, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		a, err := trk.AnalyzeImage(cmd.Context(), image)
		if err != nil {
			return remoteError("analysis failed", err)
		}
		if !a.IsFood {
			color.Yellow("No food recognized in %s", filepath.Base(path))
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %d kcal\n", a.Name, a.Calories)
		fmt.Printf("  %s P %sg F %sg C %sg, %sg portion\n",
			faint.Sprint("macros"),
			formatGrams(a.Protein), formatGrams(a.Fats), formatGrams(a.Carbs), formatGrams(a.WeightGrams))

		if !analyzeLog {
			return nil
		}
		if a.ImagePath == nil {
			if abs, err := filepath.Abs(path); err == nil {
				a.ImagePath = &abs
			}
		}
		e, err := trk.LogAnalysis(a, time.Time{})
		if err != nil {
			return fmt.Errorf("failed to log entry: %w", err)
		}
		color.Green("✓ Logged %s", e.Name)
		fmt.Printf("  %s %d kcal\n", faint.Sprint(e.ID.String()[:8]), e.Calories)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeLog, "log", false, "log the recognized meal as an entry")
	rootCmd.AddCommand(analyzeCmd)
}
