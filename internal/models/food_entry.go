// ABOUTME: FoodEntry model for logged meals with calories and macros.
// ABOUTME: Entries are immutable once created; ParseFoodEntry validates raw input.
package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FoodEntry is a single logged food item.
type FoodEntry struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Calories    int       `json:"calories" yaml:"calories"`
	Protein     float64   `json:"protein" yaml:"protein"`
	Fats        float64   `json:"fats" yaml:"fats"`
	Carbs       float64   `json:"carbs" yaml:"carbs"`
	WeightGrams float64   `json:"weight_grams" yaml:"weight_grams"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	ImageRef    *string   `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// NewFoodEntry creates a FoodEntry with generated UUID and current timestamp.
func NewFoodEntry(name string, calories int) *FoodEntry {
	now := time.Now()
	return &FoodEntry{
		ID:        uuid.New(),
		Name:      name,
		Calories:  calories,
		Timestamp: now,
		CreatedAt: now,
	}
}

// WithMacros sets protein, fats and carbs in grams.
func (e *FoodEntry) WithMacros(protein, fats, carbs float64) *FoodEntry {
	e.Protein = protein
	e.Fats = fats
	e.Carbs = carbs
	return e
}

// WithWeight sets the portion weight in grams.
func (e *FoodEntry) WithWeight(grams float64) *FoodEntry {
	e.WeightGrams = grams
	return e
}

// WithTimestamp sets a custom eaten-at timestamp.
func (e *FoodEntry) WithTimestamp(t time.Time) *FoodEntry {
	e.Timestamp = t
	return e
}

// WithImageRef sets the reference to the analyzed photo.
func (e *FoodEntry) WithImageRef(ref string) *FoodEntry {
	e.ImageRef = &ref
	return e
}

// EntryInput is raw meal form input. Blank macro fields mean zero.
type EntryInput struct {
	Name        string
	Calories    string
	Protein     string
	Fats        string
	Carbs       string
	WeightGrams string
	Timestamp   time.Time
}

// ParseFoodEntry validates raw meal input and builds an entry from it.
// It returns ok=false for an empty name, non-integer or negative calories,
// or any unparsable or negative optional field.
func ParseFoodEntry(in EntryInput) (*FoodEntry, bool) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false
	}

	calories, err := strconv.Atoi(strings.TrimSpace(in.Calories))
	if err != nil || calories < 0 {
		return nil, false
	}

	var amounts [4]float64
	for i, raw := range []string{in.Protein, in.Fats, in.Carbs, in.WeightGrams} {
		v, ok := parseOptionalAmount(raw)
		if !ok {
			return nil, false
		}
		amounts[i] = v
	}

	e := NewFoodEntry(name, calories).
		WithMacros(amounts[0], amounts[1], amounts[2]).
		WithWeight(amounts[3])
	if !in.Timestamp.IsZero() {
		e.WithTimestamp(in.Timestamp)
	}
	return e, true
}

func parseOptionalAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	// Accept a decimal comma, common in the locales the app targets.
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || v < 0 || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports whether an already built entry, such as one read from an
// export file, satisfies the same rules ParseFoodEntry enforces.
func (e *FoodEntry) Validate() error {
	switch {
	case e == nil:
		return errors.New("missing entry")
	case e.ID == uuid.Nil:
		return errors.New("entry has no id")
	case strings.TrimSpace(e.Name) == "":
		return errors.New("entry has no name")
	case e.Calories < 0:
		return errors.New("calories must not be negative")
	}
	for _, v := range []float64{e.Protein, e.Fats, e.Carbs, e.WeightGrams} {
		if v < 0 || !finite(v) {
			return errors.New("macros and weight must be finite and not negative")
		}
	}
	return nil
}
