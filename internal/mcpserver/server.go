// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes daybook tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jbrinkw/daybook/internal/noteservice"
	"github.com/jbrinkw/daybook/internal/storage"
)

// Server wraps the MCP server with daybook tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *noteservice.Service
	store storage.Provider
}

// New creates a new MCP server with all daybook tools registered.
// store is used by upload_asset to place files in the vault.
func New(svc *noteservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Daybook",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_project_hierarchy",
		mcp.WithDescription("Returns the project tree as indented text: root projects at "+
			"column zero, children as '- Name' lines, blank line between roots."),
	), s.getProjectHierarchy)

	s.mcp.AddTool(mcp.NewTool("get_project_text",
		mcp.WithDescription("Returns a project's root page text and its linked note file text. "+
			"Accepts a project id or a display name (case-insensitive)."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id or display name")),
	), s.getProjectText)

	s.mcp.AddTool(mcp.NewTool("get_notes_by_date_range",
		mcp.WithDescription("Collects dated note entries across every note file in the vault. "+
			"Dates use MM/DD/YY (e.g. 6/1/24). Bounds are inclusive and may be given in either order."),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Range start in MM/DD/YY format")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Range end in MM/DD/YY format")),
	), s.getNotesByDateRange)

	s.mcp.AddTool(mcp.NewTool("update_project_note",
		mcp.WithDescription("Appends content under today's date header in a project's note file, "+
			"creating the file or the day entry as needed. Content is plain Markdown; do NOT "+
			"include a date header, it is managed for you. Read the entry format first via "+
			"the get_note_contract tool or the daybook://note-format resource."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id or display name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to append")),
		mcp.WithString("section_id", mcp.Description("Optional ## section within today's entry")),
	), s.updateProjectNote)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Search indexed note entries by content or date string."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Upload an image or file into the vault attachments directory "+
			"from a data URI or an http(s) URL. Returns the saved path and a Markdown image tag."),
		mcp.WithString("source", mcp.Required(), mcp.Description("data: URI or http(s) URL of the asset")),
		mcp.WithString("filename", mcp.Description("Optional filename hint (extension is validated)")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical daybook note entry format. "+
			"Call this before appending note content to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("daybook://note-format", "Note Entry Format",
			mcp.WithResourceDescription("Canonical dated-entry format that note files follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

// jsonResult marshals a success payload as indented JSON tool output.
func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

// errorResult wraps a service error in the standard error payload.
func errorResult(err error) *mcp.CallToolResult {
	out, _ := json.Marshal(map[string]string{"status": "error", "message": err.Error()})
	return mcp.NewToolResultError(string(out))
}

func (s *Server) getProjectHierarchy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.svc.GetProjectHierarchy(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) getProjectText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.GetProjectText(ctx, projectID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) getNotesByDateRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.GetNotesByDateRange(ctx, start, end)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) updateProjectNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sectionID := ""
	if sec, secErr := req.RequireString("section_id"); secErr == nil {
		sectionID = sec
	}
	out, err := s.svc.UpdateProjectNote(ctx, projectID, content, sectionID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.SearchEntries(ctx, query, 20)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "daybook://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
