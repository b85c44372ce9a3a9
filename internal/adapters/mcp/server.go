// Package mcpadapter exposes the checklist review and reference search as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

const serverName = "adgm-corporate-agent"

const (
	toolAnalyzeDocument  = "analyze_document"
	toolSearchReferences = "search_references"
	toolListProcesses    = "list_processes"
)

type Server struct {
	analyzer ports.DocumentAnalyzer
	searcher ports.ReferenceSearcher
	logger   *slog.Logger
	mcp      *server.MCPServer
}

// NewServer registers the tools. searcher may be nil when no reference index is configured;
// search_references is then left out.
func NewServer(analyzer ports.DocumentAnalyzer, searcher ports.ReferenceSearcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		analyzer: analyzer,
		searcher: searcher,
		logger:   logger,
		mcp:      server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(toolListProcesses,
		mcp.WithDescription("List the ADGM processes and the documents each one requires."),
	), s.listProcesses)

	s.mcp.AddTool(mcp.NewTool(toolAnalyzeDocument,
		mcp.WithDescription("Analyze one corporate document (.docx or .pdf) for red flags and checklist completeness."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Original file name including extension")),
		mcp.WithString("content_base64", mcp.Required(), mcp.Description("Base64-encoded file content")),
		mcp.WithString("process", mcp.Description("Process key; identified from the document when omitted")),
	), s.analyzeDocument)

	if searcher != nil {
		s.mcp.AddTool(mcp.NewTool(toolSearchReferences,
			mcp.WithDescription("Search the indexed ADGM reference material."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
		), s.searchReferences)
	}
	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve reads JSON-RPC messages from in until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) listProcesses(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"processes": s.analyzer.Processes()})
}

func (s *Server) analyzeDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	encoded, err := request.RequireString("content_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content_base64 is not valid base64: %v", err)), nil
	}

	batch, err := s.analyzer.AnalyzeBatch(ctx, strings.TrimSpace(request.GetString("process", "")), []domain.UploadedFile{
		{Filename: filename, Data: data},
	})
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", toolAnalyzeDocument, "error_kind", domain.KindName(err), "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.analyzer.GenerateReport(batch))
}

func (s *Server) searchReferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.searcher.Search(ctx, query, request.GetInt("limit", 0))
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", toolSearchReferences, "error_kind", domain.KindName(err), "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"query": query, "results": results})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}
