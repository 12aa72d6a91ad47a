// ABOUTME: MCP tool implementations for the calorie tracker.
// ABOUTME: Profile, meal log, daily and weekly summaries, chat context, and food lookup.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/harperreed/kcal/internal/models"
	"github.com/harperreed/kcal/internal/nutrition"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the user's body metrics and daily calorie goal",
	}, s.handleGetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_profile",
		Description: "Save weight, height, activity level and gender; the daily goal is recomputed",
	}, s.handleSetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_entry",
		Description: "Log a food entry with calories and optional macros",
	}, s.handleAddEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_entries",
		Description: "List recent food entries, most recent first",
	}, s.handleListEntries)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete a food entry by ID or ID prefix",
	}, s.handleDeleteEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_summary",
		Description: "Total calories, macros and remaining budget for a day",
	}, s.handleDailySummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_summary",
		Description: "Calories per day for the last N days",
	}, s.handleWeeklySummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "chat_context",
		Description: "The profile and today's meals as a text block for nutrition advice",
	}, s.handleChatContext)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "suggest_food",
		Description: "Look up typical calories for common foods",
	}, s.handleSuggestFood)
}

// Tool input/output types

type emptyInput struct{}

type setProfileInput struct {
	Weight        float64 `json:"weight" jsonschema:"Body weight in kg"`
	Height        float64 `json:"height" jsonschema:"Height in cm"`
	ActivityLevel string  `json:"activity_level,omitempty" jsonschema:"sedentary or active (default sedentary)"`
	Gender        string  `json:"gender,omitempty" jsonschema:"male or female, optional"`
}

type profileOutput struct {
	Weight           float64 `json:"weight,omitempty"`
	Height           float64 `json:"height,omitempty"`
	Gender           string  `json:"gender,omitempty"`
	ActivityLevel    string  `json:"activity_level,omitempty"`
	DailyCalorieGoal int     `json:"daily_calorie_goal,omitempty"`
	BMI              float64 `json:"bmi,omitempty"`
	Message          string  `json:"message"`
}

type addEntryInput struct {
	Name        string  `json:"name" jsonschema:"Food name"`
	Calories    *int    `json:"calories" jsonschema:"Calories in kcal"`
	Protein     float64 `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Fats        float64 `json:"fats,omitempty" jsonschema:"Fats in grams"`
	Carbs       float64 `json:"carbs,omitempty" jsonschema:"Carbs in grams"`
	WeightGrams float64 `json:"weight_grams,omitempty" jsonschema:"Portion weight in grams"`
	EatenAt     string  `json:"eaten_at,omitempty" jsonschema:"Timestamp (ISO 8601 or YYYY-MM-DD HH:MM), defaults to now"`
}

type entryOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Message  string `json:"message"`
}

type listEntriesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type deleteEntryInput struct {
	ID string `json:"id" jsonschema:"Entry ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type dailySummaryInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type weeklySummaryInput struct {
	Days int `json:"days,omitempty" jsonschema:"Number of days ending today (default 7, at most 366)"`
}

type suggestFoodInput struct {
	Query string `json:"query" jsonschema:"Part of a food name"`
}

// Tool handlers

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, profileOutput, error) {
	p, err := s.tracker.Profile()
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return nil, profileOutput{Message: "Profile not set."}, nil
	}
	return nil, newProfileOutput(p, fmt.Sprintf("Daily goal: %d kcal", p.DailyCalorieGoal)), nil
}

func (s *Server) handleSetProfile(ctx context.Context, req *mcp.CallToolRequest, input setProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	p, ok, err := s.tracker.SaveProfile(models.ProfileInput{
		Weight:        strconv.FormatFloat(input.Weight, 'f', -1, 64),
		Height:        strconv.FormatFloat(input.Height, 'f', -1, 64),
		ActivityLevel: input.ActivityLevel,
		Gender:        input.Gender,
	})
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if !ok {
		return nil, profileOutput{}, errors.New("weight and height must be positive numbers")
	}
	return nil, newProfileOutput(p, fmt.Sprintf("Profile saved. Daily goal: %d kcal", p.DailyCalorieGoal)), nil
}

func (s *Server) handleAddEntry(ctx context.Context, req *mcp.CallToolRequest, input addEntryInput) (*mcp.CallToolResult, entryOutput, error) {
	if input.Calories == nil {
		return nil, entryOutput{}, errors.New("calories is required")
	}
	in := models.EntryInput{
		Name:        input.Name,
		Calories:    strconv.Itoa(*input.Calories),
		Protein:     formatAmount(input.Protein),
		Fats:        formatAmount(input.Fats),
		Carbs:       formatAmount(input.Carbs),
		WeightGrams: formatAmount(input.WeightGrams),
	}
	if input.EatenAt != "" {
		t, err := parseTimestamp(input.EatenAt)
		if err != nil {
			return nil, entryOutput{}, err
		}
		in.Timestamp = t
	}

	e, ok, err := s.tracker.LogEntry(in)
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to add entry: %w", err)
	}
	if !ok {
		return nil, entryOutput{}, errors.New("entry needs a name and non-negative calories and macros")
	}

	return nil, entryOutput{
		ID:       e.ID.String()[:8],
		Name:     e.Name,
		Calories: e.Calories,
		Message:  fmt.Sprintf("Added %s: %d kcal (ID: %s)", e.Name, e.Calories, e.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListEntries(ctx context.Context, req *mcp.CallToolRequest, input listEntriesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	entries, err := s.tracker.Entries(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No entries found."}, nil
	}

	return nil, map[string]interface{}{"entries": entries}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *mcp.CallToolRequest, input deleteEntryInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.tracker.DeleteEntry(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete entry: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted entry: %s", input.ID),
	}, nil
}

func (s *Server) handleDailySummary(ctx context.Context, req *mcp.CallToolRequest, input dailySummaryInput) (*mcp.CallToolResult, any, error) {
	day := s.tracker.Now()
	if input.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", input.Date, day.Location())
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.Date)
		}
		day = d
	}

	summary, err := s.tracker.Day(day)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize day: %w", err)
	}
	return nil, summary, nil
}

func (s *Server) handleWeeklySummary(ctx context.Context, req *mcp.CallToolRequest, input weeklySummaryInput) (*mcp.CallToolResult, any, error) {
	days, err := s.tracker.Week(s.tracker.Now(), input.Days)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize week: %w", err)
	}
	return nil, map[string]interface{}{"days": days}, nil
}

func (s *Server) handleChatContext(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, simpleOutput, error) {
	block, err := s.tracker.ChatContext()
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to build chat context: %w", err)
	}
	return nil, simpleOutput{Message: block}, nil
}

func (s *Server) handleSuggestFood(ctx context.Context, req *mcp.CallToolRequest, input suggestFoodInput) (*mcp.CallToolResult, any, error) {
	matches := nutrition.Suggest(input.Query)
	if len(matches) == 0 {
		return nil, map[string]interface{}{"message": "No matching foods."}, nil
	}
	return nil, map[string]interface{}{"suggestions": matches}, nil
}

func newProfileOutput(p *models.Profile, message string) profileOutput {
	return profileOutput{
		Weight:           p.Weight,
		Height:           p.Height,
		Gender:           string(p.Gender),
		ActivityLevel:    string(p.ActivityLevel),
		DailyCalorieGoal: p.DailyCalorieGoal,
		BMI:              math.Round(nutrition.BMI(p.Weight, p.Height)*10) / 10,
		Message:          message,
	}
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseTimestamp accepts RFC 3339 or a local "YYYY-MM-DD HH:MM".
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: use ISO 8601 or YYYY-MM-DD HH:MM", s)
}
