// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes astrometa tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/astrometa/internal/api"
	"github.com/starford/astrometa/internal/filename"
	"github.com/starford/astrometa/internal/indexer"
)

// Server wraps the MCP server with astrometa tools.
type Server struct {
	mcp  *server.MCPServer
	svc  *api.Service
	opts indexer.Options
}

// New creates a new MCP server with all astrometa tools registered.
func New(svc *api.Service, opts indexer.Options) *Server {
	s := &Server{svc: svc, opts: opts.WithDefaults()}

	s.mcp = server.NewMCPServer(
		"astrometa",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("query_metadata",
		mcp.WithDescription("Scan the configured capture directories and return frame metadata, "+
			"optionally filtered. Criteria use key=value1|value2 form, AND-combined across keys."),
		mcp.WithString("criteria", mcp.Description("Space-separated criteria, e.g. 'type=LIGHT filter=Ha|OIII'. "+
			"A value may contain spaces; tokens without '=' extend the preceding value.")),
		mcp.WithBoolean("enrich", mcp.Description("Force reading true file headers")),
	), s.queryMetadata)

	s.mcp.AddTool(mcp.NewTool("get_file_headers",
		mcp.WithDescription("Read one capture file and return its raw headers plus normalized metadata fields."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the capture file")),
	), s.getFileHeaders)

	s.mcp.AddTool(mcp.NewTool("find_calibration",
		mcp.WithDescription("Find the best matching dark, bias, and flat frames for a light frame."),
		mcp.WithString("light", mcp.Required(), mcp.Description("Absolute path to the light frame")),
	), s.findCalibration)

	s.mcp.AddTool(mcp.NewTool("suggest_filename",
		mcp.WithDescription("Compute the canonical filename for a capture file from its metadata. "+
			"The convention is described by the astrometa://filename-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the capture file")),
	), s.suggestFilename)

	// Resource: filename format contract.
	s.mcp.AddResource(
		mcp.NewResource("astrometa://filename-format", "Filename Format Contract",
			mcp.WithResourceDescription("Canonical capture filename convention used when encoding and decoding metadata."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFilenameFormatResource,
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

func (s *Server) queryMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria := indexer.Criteria{}
	if raw := req.GetString("criteria", ""); raw != "" {
		var err error
		criteria, err = indexer.ParseCriteria(splitCriteria(raw))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	enrich := req.GetBool("enrich", false)

	result, err := s.svc.Query(ctx, criteria, enrich)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// splitCriteria splits a space-separated criteria string into key=value
// tokens. A token without "=" continues the previous token's value, so
// values may themselves contain spaces ("type=Light Frame filter=Ha").
func splitCriteria(raw string) []string {
	var pairs []string
	for _, tok := range strings.Fields(raw) {
		if !strings.Contains(tok, "=") && len(pairs) > 0 {
			pairs[len(pairs)-1] += " " + tok
			continue
		}
		pairs = append(pairs, tok)
	}
	return pairs
}

func (s *Server) getFileHeaders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.FileDetail(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findCalibration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	light, err := req.RequireString("light")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.svc.Calibration(ctx, light)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) suggestFilename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.opts.Store.Exists(path) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}

	opts := s.opts
	opts.Enrich = true
	rec, _ := indexer.BuildRecord(path, opts)
	stem, err := filename.Encode(rec.Fields, opts.Filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(stem + strings.ToLower(filepath.Ext(path))), nil
}

func (s *Server) readFilenameFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "astrometa://filename-format",
			MIMEType: "text/markdown",
			Text:     FilenameFormatContract,
		},
	}, nil
}

