// Package mcpserver exposes a board to AI agents over the Model Context
// Protocol. Every tool runs through the same service.Board as the HTTP
// server, so agent edits are undoable like any other mutation.
package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/buildinfo"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/iiif"
)

// Server is the MCP server for one board.
type Server struct {
	mcp    *server.MCPServer
	board  *service.Board
	logger *log.Logger
}

// New creates the server and registers all tools and resources.
func New(b *service.Board, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{board: b, logger: logger}
	s.mcp = server.NewMCPServer(
		"pinboard",
		buildinfo.Get().Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithRecovery(),
	)
	s.registerBoardTools()
	s.registerHistoryTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

// errorResult reports a tool failure to the agent without failing the
// JSON-RPC call.
func errorResult(err error) *mcp.CallToolResult {
	r := textResult(fmt.Sprintf("%s: %s", errors.GetCode(err), errors.UserMessage(err)))
	r.IsError = true
	return r
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// fragmentJSON exports the board as indented canvas JSON.
func (s *Server) fragmentJSON() (string, error) {
	c, err := s.board.Export()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := iiif.WriteJSON(c, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s is required", key)
	}
	return v, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
