// ABOUTME: Daily calorie goal calculation from body metrics (Mifflin-St Jeor approximation).
// ABOUTME: Also provides BMI and its category for profile display.
package nutrition

import (
	"math"

	"github.com/harperreed/kcal/internal/models"
)

// ActivityMultiplier returns the multiplier for the activity level.
func ActivityMultiplier(level models.ActivityLevel) float64 {
	switch level {
	case models.ActivityActive:
		return 1.55
	default:
		return 1.2
	}
}

// GenderAdjustment returns the constant added to the base metabolic estimate.
// An unset gender contributes nothing.
func GenderAdjustment(g models.Gender) float64 {
	switch g {
	case models.GenderMale:
		return 5
	case models.GenderFemale:
		return -161
	default:
		return 0
	}
}

// ComputeDailyGoal returns the daily calorie target in kcal.
// It returns 0 when weight or height is not a finite positive number, meaning
// there is not enough data to compute a goal.
func ComputeDailyGoal(weight, height float64, level models.ActivityLevel, gender models.Gender) int {
	if !(weight > 0 && height > 0) || math.IsInf(weight, 1) || math.IsInf(height, 1) {
		return 0
	}
	base := 10*weight + 6.25*height + GenderAdjustment(gender)
	return int(math.Round(base * ActivityMultiplier(level)))
}

// GoalFor computes the goal for a profile; nil yields 0.
func GoalFor(p *models.Profile) int {
	if p == nil {
		return 0
	}
	return ComputeDailyGoal(p.Weight, p.Height, p.ActivityLevel, p.Gender)
}

// BMI returns weight (kg) over height (m) squared, or 0 without a height.
func BMI(weight, height float64) float64 {
	if height <= 0 {
		return 0
	}
	m := height / 100
	return weight / (m * m)
}

// BMICategory buckets a BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}
