// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes knowledge graph queries for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/boxgraph/internal/apperr"
	"github.com/starford/boxgraph/internal/errtemplate"
	"github.com/starford/boxgraph/internal/query"
)

const (
	protocolURI        = "boxgraph://protocol"
	defaultSearchLimit = 10
)

// Server wraps the MCP server with the query tools.
type Server struct {
	mcp   *server.MCPServer
	graph *query.Graph
	now   func() time.Time
}

// New creates a new MCP server with all query tools registered.
func New(g *query.Graph, version string) *Server {
	s := &Server{graph: g, now: time.Now}

	s.mcp = server.NewMCPServer(
		"boxgraph",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every box category with its box count, largest first."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("query_category",
		mcp.WithDescription("List the boxes filed under a category."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Category label, e.g. script-engine")),
	), s.queryCategory)

	s.mcp.AddTool(mcp.NewTool("search_keyword",
		mcp.WithDescription("Rank boxes by how often a keyword occurs in their path, description, context and interface names."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Keyword, matched literally and case-insensitively")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.searchKeyword)

	s.mcp.AddTool(mcp.NewTool("semantic_search",
		mcp.WithDescription("Natural-language search. Falls back to keyword search; no vector similarity is computed."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.semanticSearch)

	s.mcp.AddTool(mcp.NewTool("query_depends",
		mcp.WithDescription("List the boxes that include a file."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Include name as written, e.g. util.h")),
	), s.queryDepends)

	s.mcp.AddTool(mcp.NewTool("get_box",
		mcp.WithDescription("Return every field of a box."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Box id, e.g. ScriptBox")),
	), s.getBox)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Return collection counts, project metadata and security status."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("get_error_template",
		mcp.WithDescription("Return the context-rich error template of a box, with placeholders."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Box id")),
	), s.getErrorTemplate)

	s.mcp.AddTool(mcp.NewTool("repair_prompt",
		mcp.WithDescription("Fill a box's error template with what went wrong and return the repair prompt."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Box id")),
		mcp.WithString("error_reason", mcp.Required(), mcp.Description("Why the error occurred")),
		mcp.WithString("suggested_fix", mcp.Required(), mcp.Description("What should be changed")),
		mcp.WithString("input", mcp.Description("Input the box received")),
		mcp.WithString("stack", mcp.Description("Stack trace")),
	), s.repairPrompt)

	s.mcp.AddResource(
		mcp.NewResource(protocolURI, "City of Boxes Protocol",
			mcp.WithResourceDescription("How boxes, categories, contracts and repair prompts are derived."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProtocolResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// notFound renders a miss with optional suggestions as a tool error.
func notFound(err error, suggestions []string) (*mcp.CallToolResult, error) {
	if !errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := err.Error()
	if len(suggestions) > 0 {
		msg += "\nsimilar: " + strings.Join(suggestions, ", ")
	}
	return mcp.NewToolResultError(msg), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.graph.Categories())
}

func (s *Server) queryCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	boxes, err := s.graph.Category(name)
	if err != nil {
		var names []string
		for _, c := range s.graph.CategoryCounts() {
			names = append(names, c.Name)
		}
		return notFound(err, names)
	}
	return jsonResult(boxes)
}

func (s *Server) searchKeyword(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := req.RequireString("keyword")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.search(s.graph.Keyword, keyword, req.GetInt("limit", defaultSearchLimit), "")
}

func (s *Server) semanticSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.search(s.graph.Semantic, q, req.GetInt("limit", defaultSearchLimit), "keyword")
}

type searchResult struct {
	Total    int           `json:"total"`
	Results  []query.Match `json:"results"`
	Fallback string        `json:"fallback,omitempty"`
}

func (s *Server) search(find func(string) ([]query.Match, error), q string, limit int, fallback string) (*mcp.CallToolResult, error) {
	matches, err := find(q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return jsonResult(searchResult{
		Total:    len(matches),
		Results:  matches[:min(len(matches), limit)],
		Fallback: fallback,
	})
}

func (s *Server) queryDepends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	boxes, err := s.graph.Dependents(name)
	if err != nil {
		return notFound(err, s.graph.SimilarDependencies(name))
	}
	return jsonResult(boxes)
}

func (s *Server) getBox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	box, err := s.graph.Box(id)
	if err != nil {
		return notFound(err, s.graph.SimilarBoxes(id))
	}
	return jsonResult(box)
}

func (s *Server) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.graph.Stats())
}

func (s *Server) getErrorTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tpl, err := s.graph.Template(id)
	if err != nil {
		return notFound(err, s.graph.SimilarBoxes(id))
	}
	return jsonResult(tpl)
}

func (s *Server) repairPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reason, err := req.RequireString("error_reason")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fix, err := req.RequireString("suggested_fix")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tpl, err := s.graph.Template(id)
	if err != nil {
		return notFound(err, s.graph.SimilarBoxes(id))
	}
	filled := errtemplate.Instantiate(tpl, errtemplate.RuntimeValues{
		Timestamp:    s.now(),
		Input:        req.GetString("input", ""),
		Stack:        req.GetString("stack", ""),
		ErrorReason:  reason,
		SuggestedFix: fix,
	})
	return mcp.NewToolResultText(filled.RepairPrompt), nil
}

func (s *Server) readProtocolResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      protocolURI,
			MIMEType: "text/markdown",
			Text:     ProtocolGuide,
		},
	}, nil
}
