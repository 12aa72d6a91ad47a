// ABOUTME: MCP server setup for the kcal calorie tracker.
// ABOUTME: Wraps the MCP server around a Tracker so assistants can log and review meals.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/kcal/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "kcal"
	serverVersion = "1.0.0"

	serverInstructions = "kcal tracks food entries against a daily calorie goal. " +
		"Call get_profile before giving advice, log meals with add_entry, " +
		"and use daily_summary or chat_context to see today's intake."
)

// Server exposes a Tracker over MCP.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
}

// NewServer registers the kcal tools and resources against t.
func NewServer(t *tracker.Tracker) (*Server, error) {
	if t == nil {
		return nil, errors.New("mcp server needs a tracker")
	}

	s := &Server{
		mcpServer: mcp.NewServer(
			&mcp.Implementation{Name: serverName, Version: serverVersion},
			&mcp.ServerOptions{Instructions: serverInstructions},
		),
		tracker: t,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve runs over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
