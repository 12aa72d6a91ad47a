// ABOUTME: Offline lookup of common foods for quick manual entry.
package nutrition

import "strings"

// Suggestion is a known food with its typical calories per serving.
type Suggestion struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

var knownFoods = []Suggestion{
	{"Apple", 52},
	{"Banana", 89},
	{"Chicken breast (100g)", 165},
	{"Coffee with milk", 45},
	{"Boiled egg", 155},
	{"Oatmeal with water", 68},
	{"Pizza Margherita", 250},
	{"Buckwheat", 132},
}

// Suggest returns known foods whose name contains query, ignoring case.
// An empty query returns nothing.
func Suggest(query string) []Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []Suggestion
	for _, s := range knownFoods {
		if strings.Contains(strings.ToLower(s.Name), query) {
			out = append(out, s)
		}
	}
	return out
}

// KnownFoods returns a copy of the offline food table.
func KnownFoods() []Suggestion {
	out := make([]Suggestion, len(knownFoods))
	copy(out, knownFoods)
	return out
}
