// ABOUTME: CLI commands for viewing and setting the body profile.
// ABOUTME: Saving a profile recomputes the daily calorie goal.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/models"
	"github.com/harperreed/kcal/internal/nutrition"
	"github.com/spf13/cobra"
)

var (
	profileWeight   string
	profileHeight   string
	profileActivity string
	profileGender   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the body profile and daily goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := trk.Profile()
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		if p == nil {
			fmt.Println("Profile not set. Run 'kcal profile set --weight <kg> --height <cm>'.")
			return nil
		}
		printProfile(p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save weight, height, activity and gender",
	Long: `Save the body profile. The daily calorie goal is recomputed every time.

GOAL FORMULA:

  Base = 10 x weight(kg) + 6.25 x height(cm) + gender adjustment
  Goal = Base x activity multiplier

  Gender adjustment is +5 for male, -161 for female, and 0 when unset.
  The activity multiplier is 1.2 for sedentary and 1.55 for active.

EXAMPLES:

  kcal profile set --weight 70 --height 175 --activity active --gender male
  kcal profile set --weight 60 --height 165 --gender female`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok, err := trk.SaveProfile(models.ProfileInput{
			Weight:        profileWeight,
			Height:        profileHeight,
			ActivityLevel: profileActivity,
			Gender:        profileGender,
		})
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if !ok {
			return fmt.Errorf("invalid profile: weight and height must be positive numbers")
		}

		color.Green("✓ Saved profile")
		printProfile(p)
		return nil
	},
}

func printProfile(p *models.Profile) {
	faint := color.New(color.Faint)
	gender := string(p.Gender)
	if gender == "" {
		gender = "not set"
	}
	bmi := nutrition.BMI(p.Weight, p.Height)

	fmt.Printf("  %s %.1f kg\n", faint.Sprint(padRight("Weight", 10)), p.Weight)
	fmt.Printf("  %s %.0f cm\n", faint.Sprint(padRight("Height", 10)), p.Height)
	fmt.Printf("  %s %s\n", faint.Sprint(padRight("Gender", 10)), gender)
	fmt.Printf("  %s %s\n", faint.Sprint(padRight("Activity", 10)), p.ActivityLevel)
	fmt.Printf("  %s %.1f (%s)\n", faint.Sprint(padRight("BMI", 10)), bmi, nutrition.BMICategory(bmi))
	fmt.Printf("  %s %d kcal\n", faint.Sprint(padRight("Goal", 10)), p.DailyCalorieGoal)
}

func init() {
	profileSetCmd.Flags().StringVar(&profileWeight, "weight", "", "body weight in kg")
	profileSetCmd.Flags().StringVar(&profileHeight, "height", "", "height in cm")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "sedentary", "activity level: sedentary or active")
	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "male or female")
	_ = profileSetCmd.MarkFlagRequired("weight")
	_ = profileSetCmd.MarkFlagRequired("height")

	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
