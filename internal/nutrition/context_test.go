// ABOUTME: Tests for the chat context block and prompt template.
package nutrition

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/kcal/internal/models"
)

func TestBuildContextEmpty(t *testing.T) {
	got := BuildContext(nil, nil)
	want := ProfileNotSetLine + "\n" + NothingEatenLine
	if got != want {
		t.Errorf("BuildContext(nil, nil) =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildContextWithData(t *testing.T) {
	p := &models.Profile{Weight: 70.4, Height: 175.6, DailyCalorieGoal: 2788}
	now := time.Now()
	entries := []*models.FoodEntry{
		models.NewFoodEntry("Salad", 450).WithTimestamp(now),
		models.NewFoodEntry("Oatmeal", 300).WithTimestamp(now.Add(-time.Hour)),
	}

	got := BuildContext(p, entries)
	want := "Profile: weight 70 kg, height 176 cm, daily goal 2788 kcal.\n" +
		"Eaten today: 750 kcal.\n" +
		"Meals: Salad (450 kcal), Oatmeal (300 kcal)."
	if got != want {
		t.Errorf("BuildContext =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildContextPreservesOrder(t *testing.T) {
	entries := []*models.FoodEntry{
		models.NewFoodEntry("Zucchini", 20),
		models.NewFoodEntry("Apple", 52),
	}
	got := BuildContext(nil, entries)
	if strings.Index(got, "Zucchini") > strings.Index(got, "Apple") {
		t.Errorf("expected source order, got %s", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	ctx := BuildContext(nil, nil)
	got := BuildPrompt(ctx, "What should I eat for dinner?")

	dataIdx := strings.Index(got, ctx)
	questionIdx := strings.Index(got, `"What should I eat for dinner?"`)
	instructionIdx := strings.Index(got, "nutrition advisor")

	if dataIdx < 0 || questionIdx < 0 || instructionIdx < 0 {
		t.Fatalf("prompt missing a section:\n%s", got)
	}
	if !(dataIdx < questionIdx && questionIdx < instructionIdx) {
		t.Errorf("sections out of order:\n%s", got)
	}
}
