// ABOUTME: Export and import functionality for tracker data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/kcal/internal/models"
	"github.com/harperreed/kcal/internal/nutrition"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for tracker data.
type ExportData struct {
	Version      string                `json:"version" yaml:"version"`
	ExportedAt   time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool         string                `json:"tool" yaml:"tool"`
	Profile      *models.Profile       `json:"profile,omitempty" yaml:"profile,omitempty"`
	Entries      []*models.FoodEntry   `json:"entries" yaml:"entries"`
	ChatMessages []*models.ChatMessage `json:"chat_messages" yaml:"chat_messages"`
}

// collectAllData gathers every record from repo into an ExportData.
func collectAllData(repo Repository) (*ExportData, error) {
	profile, err := repo.GetProfile()
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	entries, err := repo.ListEntries(0)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	messages, err := repo.ListChatMessages(0)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "kcal",
		Profile:      profile,
		Entries:      entries,
		ChatMessages: messages,
	}, nil
}

// importAllData writes every record of data into repo. The whole import is
// rejected before any write when a record is invalid.
func importAllData(repo Repository, data *ExportData) error {
	if err := validateImport(data); err != nil {
		return err
	}
	if data.Profile != nil {
		if err := repo.SaveProfile(data.Profile); err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}
	for _, e := range data.Entries {
		if err := repo.CreateEntry(e); err != nil {
			return fmt.Errorf("import entry %s: %w", e.ID, err)
		}
	}
	for _, m := range data.ChatMessages {
		if err := repo.AppendChatMessage(m); err != nil {
			return fmt.Errorf("import chat message %s: %w", m.ID, err)
		}
	}
	return nil
}

func validateImport(data *ExportData) error {
	if data.Profile != nil {
		if err := data.Profile.Validate(); err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}
	for i, e := range data.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("import entry %d: %w", i+1, err)
		}
	}
	for i, m := range data.ChatMessages {
		if m == nil || m.ID == uuid.Nil {
			return fmt.Errorf("import chat message %d: missing id", i+1)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return collectAllData(d)
}

// ImportData imports data from an export. Duplicate IDs cause an error.
func (d *DB) ImportData(data *ExportData) error {
	return importAllData(d, data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return repo.ImportData(&data)
}

type yamlEntry struct {
	ID       string  `yaml:"id"`
	Time     string  `yaml:"time"`
	Name     string  `yaml:"name"`
	Calories int     `yaml:"calories"`
	Protein  float64 `yaml:"protein,omitempty"`
	Fats     float64 `yaml:"fats,omitempty"`
	Carbs    float64 `yaml:"carbs,omitempty"`
	Grams    float64 `yaml:"weight_grams,omitempty"`
}

type yamlDay struct {
	TotalCalories int         `yaml:"total_calories"`
	Entries       []yamlEntry `yaml:"entries"`
}

// ExportYAML exports all data as YAML with entries grouped by local day.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string             `yaml:"version"`
		ExportedAt string             `yaml:"exported_at"`
		Tool       string             `yaml:"tool"`
		Profile    *models.Profile    `yaml:"profile,omitempty"`
		Days       map[string]yamlDay `yaml:"days"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Profile:    data.Profile,
		Days:       make(map[string]yamlDay),
	}

	for _, e := range data.Entries {
		key := e.Timestamp.Local().Format("2006-01-02")
		day := yamlData.Days[key]
		day.TotalCalories += e.Calories
		day.Entries = append(day.Entries, yamlEntry{
			ID:       e.ID.String()[:8],
			Time:     e.Timestamp.Local().Format("15:04"),
			Name:     e.Name,
			Calories: e.Calories,
			Protein:  e.Protein,
			Fats:     e.Fats,
			Carbs:    e.Carbs,
			Grams:    e.WeightGrams,
		})
		yamlData.Days[key] = day
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown exports the profile and per-day meal tables as Markdown.
func ExportMarkdown(repo Repository, since *time.Time) (string, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return "", err
	}

	entries := data.Entries
	if since != nil {
		var filtered []*models.FoodEntry
		for _, e := range entries {
			if !e.Timestamp.Before(*since) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Calorie Log Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	goal := 0
	if p := data.Profile; p != nil {
		goal = p.DailyCalorieGoal
		sb.WriteString("## Profile\n\n")
		sb.WriteString(fmt.Sprintf("- Weight: %.1f kg\n", p.Weight))
		sb.WriteString(fmt.Sprintf("- Height: %.1f cm\n", p.Height))
		if p.Gender != models.GenderUnset {
			sb.WriteString(fmt.Sprintf("- Gender: %s\n", p.Gender))
		}
		sb.WriteString(fmt.Sprintf("- Activity: %s\n", p.ActivityLevel))
		sb.WriteString(fmt.Sprintf("- Daily goal: %d kcal\n\n", p.DailyCalorieGoal))
	}

	grouped := make(map[string][]*models.FoodEntry)
	for _, e := range entries {
		key := e.Timestamp.Local().Format("2006-01-02")
		grouped[key] = append(grouped[key], e)
	}

	// Most recent day first, matching list order.
	var days []string
	for d := range grouped {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	for _, key := range days {
		dayEntries := grouped[key]
		day, _ := time.ParseInLocation("2006-01-02", key, time.Local)
		summary := nutrition.Summarize(dayEntries, day, goal)

		sb.WriteString(fmt.Sprintf("## %s\n\n", key))
		sb.WriteString("| Time | Meal | kcal | P | F | C |\n")
		sb.WriteString("|------|------|------|---|---|---|\n")
		for _, e := range summary.Entries {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.1f | %.1f | %.1f |\n",
				e.Timestamp.Local().Format("15:04"), tableCell(e.Name), e.Calories, e.Protein, e.Fats, e.Carbs))
		}
		sb.WriteString(fmt.Sprintf("\nTotal: %d kcal", summary.TotalCalories))
		if goal > 0 {
			sb.WriteString(fmt.Sprintf(" (remaining %d of %d)", summary.Remaining, goal))
		}
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

var tableCellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// tableCell keeps free text from breaking a markdown table row.
func tableCell(s string) string {
	return tableCellReplacer.Replace(s)
}
