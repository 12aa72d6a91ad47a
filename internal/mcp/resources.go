// ABOUTME: MCP resource implementations for the calorie tracker.
// ABOUTME: Provides kcal://today, kcal://week, and kcal://profile resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// kcal://today - today's entries, totals and remaining budget
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "kcal://today",
		Name:        "Today's Calories",
		Description: "Entries logged today with totals against the daily goal",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "kcal://week",
		Name:        "Last 7 Days",
		Description: "Calories per day for the last seven days",
		MIMEType:    "application/json",
	}, s.handleWeekResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "kcal://profile",
		Name:        "Profile",
		Description: "Body metrics and daily calorie goal",
		MIMEType:    "application/json",
	}, s.handleProfileResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summary, err := s.tracker.Today()
	if err != nil {
		return nil, fmt.Errorf("failed to summarize today: %w", err)
	}
	return jsonResource("kcal://today", summary)
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	days, err := s.tracker.Week(s.tracker.Now(), 7)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize week: %w", err)
	}

	total := 0
	for _, d := range days {
		total += d.TotalCalories
	}

	return jsonResource("kcal://week", map[string]interface{}{
		"days":           days,
		"total_calories": total,
	})
}

func (s *Server) handleProfileResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p, err := s.tracker.Profile()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return jsonResource("kcal://profile", map[string]interface{}{"message": "Profile not set."})
	}
	return jsonResource("kcal://profile", p)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
