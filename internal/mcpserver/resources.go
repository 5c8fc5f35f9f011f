package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const fragmentURI = "pinboard://board/fragment"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		fragmentURI,
		"Board fragment",
		mcp.WithResourceDescription("The board as a IIIF Presentation 3 canvas"),
		mcp.WithMIMEType("application/ld+json"),
	), s.handleFragmentResource)
}

func (s *Server) handleFragmentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := s.fragmentJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      fragmentURI,
			MIMEType: "application/ld+json",
			Text:     text,
		},
	}, nil
}
