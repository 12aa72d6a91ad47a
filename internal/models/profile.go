// ABOUTME: Profile model with body metrics and derived daily calorie goal.
// ABOUTME: Gender and ActivityLevel enums parse persisted strings with fallbacks.
package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Gender is the biological sex used by the goal formula.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps a persisted or user-entered string to a Gender.
// Empty input means unset; anything unrecognized falls back to male.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return GenderUnset
	case "female", "f", "woman":
		return GenderFemale
	default:
		return GenderMale
	}
}

// ActivityLevel selects the activity multiplier of the goal formula.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityActive    ActivityLevel = "active"
)

// AllActivityLevels lists the supported activity levels.
var AllActivityLevels = []ActivityLevel{ActivitySedentary, ActivityActive}

// ParseActivityLevel maps a persisted or user-entered string to an ActivityLevel.
// Display labels like "Sedentary (Inactive)" are accepted; anything
// unrecognized falls back to sedentary.
func ParseActivityLevel(s string) ActivityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return ActivityActive
	default:
		return ActivitySedentary
	}
}

// Profile holds the user's body metrics. At most one exists per store.
type Profile struct {
	Weight           float64       `json:"weight" yaml:"weight"`
	Height           float64       `json:"height" yaml:"height"`
	Gender           Gender        `json:"gender,omitempty" yaml:"gender,omitempty"`
	ActivityLevel    ActivityLevel `json:"activity_level" yaml:"activity_level"`
	DailyCalorieGoal int           `json:"daily_calorie_goal" yaml:"daily_calorie_goal"`
	UpdatedAt        time.Time     `json:"updated_at" yaml:"updated_at"`
}

// ProfileInput is raw profile form input.
type ProfileInput struct {
	Weight        string
	Height        string
	ActivityLevel string
	Gender        string
}

// ParseProfileInput validates raw profile input. It returns ok=false when
// weight or height is unparsable, not finite or not positive. DailyCalorieGoal is left
// for the caller to compute.
func ParseProfileInput(in ProfileInput) (*Profile, bool) {
	w, err := strconv.ParseFloat(strings.TrimSpace(in.Weight), 64)
	if err != nil || w <= 0 || !finite(w) {
		return nil, false
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(in.Height), 64)
	if err != nil || h <= 0 || !finite(h) {
		return nil, false
	}
	return &Profile{
		Weight:        w,
		Height:        h,
		Gender:        ParseGender(in.Gender),
		ActivityLevel: ParseActivityLevel(in.ActivityLevel),
		UpdatedAt:     time.Now(),
	}, true
}

// Validate checks the body metrics of an already built profile.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("missing profile")
	}
	if !(p.Weight > 0) || !finite(p.Weight) || !(p.Height > 0) || !finite(p.Height) {
		return errors.New("weight and height must be positive numbers")
	}
	return nil
}
