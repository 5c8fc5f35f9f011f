package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func (s *Server) registerBoardTools() {
	s.mcp.AddTool(mcp.NewTool("list_board",
		mcp.WithDescription("List every item and connection on the board"),
	), s.handleListBoard)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a text note. Without x and y it is placed below the existing items."),
		mcp.WithString("text", mcp.Description("Note text"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Left edge in canvas units (optional)")),
		mcp.WithNumber("y", mcp.Description("Top edge in canvas units (optional)")),
	), s.handleAddNote)

	s.mcp.AddTool(mcp.NewTool("add_resource",
		mcp.WithDescription("Add an archival resource by IIIF id. Unresolvable ids become placeholders."),
		mcp.WithString("id", mcp.Description("Resource URL or URN"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Left edge in canvas units (optional)")),
		mcp.WithNumber("y", mcp.Description("Top edge in canvas units (optional)")),
	), s.handleAddResource)

	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move an item's top-left corner. Locked items cannot be moved."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New left edge"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New top edge"), mcp.Required()),
	), s.handleMoveItem)

	s.mcp.AddTool(mcp.NewTool("connect_items",
		mcp.WithDescription("Draw a directed connection between two items"),
		mcp.WithString("fromId", mcp.Description("Source item ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target item ID"), mcp.Required()),
		mcp.WithString("fromAnchor", mcp.Description("top, right, bottom or left (optional)")),
		mcp.WithString("toAnchor", mcp.Description("top, right, bottom or left (optional)")),
		mcp.WithString("style", mcp.Description("straight, elbow or curved (optional)")),
		mcp.WithString("label", mcp.Description("Connection label (optional)")),
		mcp.WithString("purpose", mcp.Description("Why the items are related (optional)")),
	), s.handleConnect)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Remove an item and every connection touching it"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveItem)

	s.mcp.AddTool(mcp.NewTool("arrange",
		mcp.WithDescription("Arrange items with a template: grid, sequence or comparison"),
		mcp.WithString("template", mcp.Description("grid, sequence or comparison"), mcp.Required()),
		mcp.WithString("itemIds", mcp.Description("Comma-separated item IDs in layout order (optional, default all)")),
		mcp.WithNumber("x", mcp.Description("Origin x (default 0)")),
		mcp.WithNumber("y", mcp.Description("Origin y (default 0)")),
	), s.handleArrange)

	s.mcp.AddTool(mcp.NewTool("export_fragment",
		mcp.WithDescription("Export the board as a IIIF Presentation 3 canvas fragment"),
	), s.handleExport)
}

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last board change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone board change"),
	), s.handleRedo)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

type itemSummary struct {
	ID     string     `json:"id"`
	Kind   board.Kind `json:"kind"`
	Label  string     `json:"label"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	W      float64    `json:"w"`
	H      float64    `json:"h"`
	Locked bool       `json:"locked,omitempty"`
}

type connSummary struct {
	ID      string `json:"id"`
	FromID  string `json:"fromId"`
	ToID    string `json:"toId"`
	Label   string `json:"label,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

func summarizeItem(it board.Item) itemSummary {
	return itemSummary{ID: it.ID, Kind: it.Kind(), Label: it.Label(), X: it.X, Y: it.Y, W: it.W, H: it.H, Locked: it.Locked}
}

func (s *Server) handleListBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.board.State()
	out := struct {
		Items       []itemSummary `json:"items"`
		Connections []connSummary `json:"connections"`
	}{Items: []itemSummary{}, Connections: []connSummary{}}
	for _, it := range st.Items {
		out.Items = append(out.Items, summarizeItem(it))
	}
	for _, c := range st.Connections {
		out.Connections = append(out.Connections, connSummary{ID: c.ID, FromID: c.FromID, ToID: c.ToID, Label: c.Label, Purpose: c.Purpose})
	}
	return jsonResult(out)
}

func position(args map[string]any) *geom.Point {
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		return nil
	}
	p := geom.Pt(x, y)
	return &p
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, err := requireString(args, "text")
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarizeItem(s.board.AddNote(text, position(args))))
}

func (s *Server) handleAddResource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "id")
	if err != nil {
		return errorResult(err), nil
	}
	it, err := s.board.AddResource(ctx, id, position(args))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarizeItem(it))
}

func (s *Server) handleMoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "itemId")
	if err != nil {
		return errorResult(err), nil
	}
	it, err := s.board.MoveItem(id, getFloat(args, "x", 0), getFloat(args, "y", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarizeItem(it))
}

func (s *Server) handleConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	c, err := s.board.Connect(service.ConnectRequest{
		FromID:     getString(args, "fromId"),
		ToID:       getString(args, "toId"),
		FromAnchor: board.Anchor(getString(args, "fromAnchor")),
		ToAnchor:   board.Anchor(getString(args, "toAnchor")),
		Style:      board.Style(getString(args, "style")),
		Label:      getString(args, "label"),
		Purpose:    getString(args, "purpose"),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(connSummary{ID: c.ID, FromID: c.FromID, ToID: c.ToID, Label: c.Label, Purpose: c.Purpose})
}

func (s *Server) handleRemoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "itemId")
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.board.RemoveItem(id); err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Item %s removed", id)), nil
}

func (s *Server) handleArrange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	t := board.Template(getString(args, "template"))
	origin := geom.Pt(getFloat(args, "x", 0), getFloat(args, "y", 0))
	if err := s.board.Arrange(t, splitIDs(getString(args, "itemIds")), origin); err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Arranged %d items as %s", len(s.board.State().Items), t)), nil
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.fragmentJSON()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return textResult(text), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.board.Undo() {
		return textResult("Nothing to undo"), nil
	}
	return textResult("Undone"), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.board.Redo() {
		return textResult("Nothing to redo"), nil
	}
	return textResult("Redone"), nil
}
