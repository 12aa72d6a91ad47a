// ABOUTME: Per-day aggregation of food entries against the calorie goal.
// ABOUTME: Day boundaries follow wall-clock midnight in the day's location.
package nutrition

import (
	"math"
	"time"

	"github.com/harperreed/kcal/internal/models"
)

// DailyTotal is the aggregation of one calendar day.
type DailyTotal struct {
	Day           time.Time           `json:"day"`
	TotalCalories int                 `json:"total_calories"`
	Protein       float64             `json:"total_protein"`
	Fats          float64             `json:"total_fats"`
	Carbs         float64             `json:"total_carbs"`
	Entries       []*models.FoodEntry `json:"entries"`
}

// DaySummary adds the goal and remaining budget to a DailyTotal.
type DaySummary struct {
	DailyTotal
	Goal      int `json:"goal_calories"`
	Remaining int `json:"remaining_calories"`
	MealCount int `json:"meal_count"`
}

// DayTotal is a single bucket of a multi-day series.
type DayTotal struct {
	Date          string `json:"date"`
	TotalCalories int    `json:"total_calories"`
}

// DayBounds returns local midnight of day and the following local midnight,
// both in day's location. The span is not always 24h across DST changes.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether t falls on the calendar day of day, evaluated in
// day's location.
func SameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Aggregate filters entries to the calendar day of day and sums them.
// The filtered entries keep the order of the input.
func Aggregate(entries []*models.FoodEntry, day time.Time) DailyTotal {
	start, _ := DayBounds(day)
	dt := DailyTotal{Day: start, Entries: []*models.FoodEntry{}}
	for _, e := range entries {
		if !SameDay(e.Timestamp, day) {
			continue
		}
		dt.Entries = append(dt.Entries, e)
		dt.TotalCalories += e.Calories
		dt.Protein += e.Protein
		dt.Fats += e.Fats
		dt.Carbs += e.Carbs
	}
	dt.Protein = round1(dt.Protein)
	dt.Fats = round1(dt.Fats)
	dt.Carbs = round1(dt.Carbs)
	return dt
}

// Remaining is goal minus total. Negative means the goal was exceeded.
func Remaining(goal, total int) int {
	return goal - total
}

// Summarize aggregates day and compares it against goal.
func Summarize(entries []*models.FoodEntry, day time.Time, goal int) DaySummary {
	dt := Aggregate(entries, day)
	return DaySummary{
		DailyTotal: dt,
		Goal:       goal,
		Remaining:  Remaining(goal, dt.TotalCalories),
		MealCount:  len(dt.Entries),
	}
}

// MaxSeriesDays caps the length of a Weekly series.
const MaxSeriesDays = 366

// SeriesDays normalizes a requested series length: non-positive means a
// week, and anything longer than MaxSeriesDays is cut to it.
func SeriesDays(days int) int {
	switch {
	case days <= 0:
		return 7
	case days > MaxSeriesDays:
		return MaxSeriesDays
	}
	return days
}

// Weekly returns one calorie total per calendar day for the days ending on
// end (inclusive), oldest first. Days without entries are zero.
func Weekly(entries []*models.FoodEntry, end time.Time, days int) []DayTotal {
	days = SeriesDays(days)
	lastStart, _ := DayBounds(end)
	firstStart := lastStart.AddDate(0, 0, -(days - 1))

	series := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := firstStart.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = DayTotal{Date: key}
		index[key] = i
	}

	loc := end.Location()
	for _, e := range entries {
		key := e.Timestamp.In(loc).Format("2006-01-02")
		if i, ok := index[key]; ok {
			series[i].TotalCalories += e.Calories
		}
	}
	return series
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
