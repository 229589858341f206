// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Present99 tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/altafr/present99/internal/deck"
	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/store"
	"github.com/altafr/present99/internal/themes"
)

// Server wraps the MCP server with Present99 tools.
type Server struct {
	mcp    *server.MCPServer
	decks  *deck.Service
	repo   store.Repository
	themes *themes.Catalog
}

// New creates a new MCP server with all Present99 tools registered.
func New(decks *deck.Service, repo store.Repository, catalog *themes.Catalog) *Server {
	s := &Server{decks: decks, repo: repo, themes: catalog}

	s.mcp = server.NewMCPServer(
		"Present99",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_presentation",
		mcp.WithDescription("Generate a slide deck about a topic and save it. "+
			"Returns the stored presentation as JSON, including its id."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Presentation topic")),
		mcp.WithNumber("slide_count", mcp.Description("Number of slides (default 5)")),
		mcp.WithString("tone", mcp.Description("Tone of the content (default professional)")),
		mcp.WithString("theme", mcp.Description("Theme id (see list_themes)")),
	), s.generatePresentation)

	s.mcp.AddTool(mcp.NewTool("list_presentations",
		mcp.WithDescription("List saved presentations, most recently updated first."),
	), s.listPresentations)

	s.mcp.AddTool(mcp.NewTool("read_presentation",
		mcp.WithDescription("Read a saved presentation as JSON. Slides follow the "+
			"slide format contract (see the present99://slide-format resource)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id")),
	), s.readPresentation)

	s.mcp.AddTool(mcp.NewTool("delete_presentation",
		mcp.WithDescription("Delete a saved presentation."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id")),
	), s.deletePresentation)

	s.mcp.AddTool(mcp.NewTool("list_themes",
		mcp.WithDescription("List available theme ids and names."),
	), s.listThemes)

	// Resource: slide format contract.
	s.mcp.AddResource(
		mcp.NewResource("present99://slide-format", "Slide Format Contract",
			mcp.WithResourceDescription("Canonical slide JSON structure and layout catalog."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSlideFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) generatePresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slideCount := 0
	if n, err := req.RequireFloat("slide_count"); err == nil {
		slideCount = int(n)
	}
	tone := ""
	if v, err := req.RequireString("tone"); err == nil {
		tone = v
	}
	themeID := ""
	if v, err := req.RequireString("theme"); err == nil {
		themeID = v
	}

	slides, err := s.decks.Generate(ctx, topic, slideCount, tone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := &models.Presentation{
		ID:      uuid.New().String(),
		Topic:   topic,
		ThemeID: s.themes.GetOrDefault(themeID).ID,
		Slides:  slides,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPresentations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no presentations saved"), nil
	}
	var lines []string
	for _, p := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d slides\t%s",
			p.ID, p.Topic, len(p.Slides), p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readPresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deletePresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listThemes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lines []string
	for _, t := range s.themes.List() {
		lines = append(lines, fmt.Sprintf("%s\t%s", t.ID, t.Name))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readSlideFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "present99://slide-format",
			MIMEType: "text/markdown",
			Text:     SlideFormatContract,
		},
	}, nil
}
