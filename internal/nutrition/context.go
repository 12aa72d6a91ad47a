// ABOUTME: Builds the natural-language data block prepended to chat requests.
// ABOUTME: Summarizes the profile and today's meals for the remote nutrition advisor.
package nutrition

import (
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/kcal/internal/models"
)

// Marker lines used when data is missing.
const (
	ProfileNotSetLine = "Profile: not set."
	NothingEatenLine  = "Eaten today: 0 kcal, nothing eaten yet."
)

// BuildContext renders the profile and today's entries as a fixed-format
// block. Entries are listed in the order given.
func BuildContext(profile *models.Profile, todays []*models.FoodEntry) string {
	var sb strings.Builder

	if profile == nil {
		sb.WriteString(ProfileNotSetLine)
	} else {
		fmt.Fprintf(&sb, "Profile: weight %d kg, height %d cm, daily goal %d kcal.",
			int(math.Round(profile.Weight)),
			int(math.Round(profile.Height)),
			profile.DailyCalorieGoal)
	}
	sb.WriteString("\n")

	if len(todays) == 0 {
		sb.WriteString(NothingEatenLine)
		return sb.String()
	}

	total := 0
	items := make([]string, 0, len(todays))
	for _, e := range todays {
		total += e.Calories
		items = append(items, fmt.Sprintf("%s (%d kcal)", e.Name, e.Calories))
	}
	fmt.Fprintf(&sb, "Eaten today: %d kcal.\n", total)
	fmt.Fprintf(&sb, "Meals: %s.", strings.Join(items, ", "))
	return sb.String()
}

// BuildPrompt wraps the data block and the user's question in the template
// sent to the chat endpoint: data first, then the quoted question, then the
// instruction.
func BuildPrompt(context, question string) string {
	var sb strings.Builder
	sb.WriteString("User data:\n")
	sb.WriteString(context)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "User question: %q\n\n", question)
	sb.WriteString("Act as a nutrition advisor. Answer the question using the user data above. " +
		"Be concise and practical.")
	return sb.String()
}
