package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/apperrors"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/auth"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/prompts"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/services"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/sqlsafety"
)

// ReportToolDeps defines dependencies for the report MCP tools.
type ReportToolDeps struct {
	ReportService services.ReportService
	Catalog       *prompts.Catalog
	Logger        *zap.Logger
}

// RegisterReportTools registers the report tools with the MCP server.
func RegisterReportTools(mcpServer *server.MCPServer, deps *ReportToolDeps) {
	registerAskReportTool(mcpServer, deps)
	registerRerunReportTool(mcpServer, deps)
	registerListReportTablesTool(mcpServer, deps)
}

func registerAskReportTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"ask_report",
		mcp.WithDescription(
			"Answer a natural-language question about this wedding's guests, "+
				"seating, RSVPs or gifts. The question is translated to SQL, "+
				"checked against the safety policy and executed read-only. "+
				"Returns rows plus the SQL, which rerun_report can replay.",
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question to answer, e.g. \"How many guests have accepted?\""),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weddingID, adminID, err := auth.ExtractClaimsFromContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("authentication required: %w", err)
		}

		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_request", "question parameter is required"), nil
		}

		result, err := deps.ReportService.Ask(ctx, weddingID, adminID, question)
		if err != nil {
			if toolResult := reportErrorResult(err); toolResult != nil {
				return toolResult, nil
			}
			return nil, err
		}

		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func registerRerunReportTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"rerun_report",
		mcp.WithDescription(
			"Re-execute SQL returned by a previous ask_report call. "+
				"The SQL is re-validated against the current safety policy "+
				"before execution, so stale or tampered queries are rejected.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("The sql field from a prior ask_report result"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weddingID, adminID, err := auth.ExtractClaimsFromContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("authentication required: %w", err)
		}

		sqlText, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_request", "sql parameter is required"), nil
		}

		result, err := deps.ReportService.Rerun(ctx, weddingID, adminID, sqlText)
		if err != nil {
			if toolResult := reportErrorResult(err); toolResult != nil {
				return toolResult, nil
			}
			return nil, err
		}

		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// reportTableInfo describes one queryable table for the assistant.
type reportTableInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
}

type listReportTablesResponse struct {
	Tables []reportTableInfo `json:"tables"`
	Count  int               `json:"count"`
}

func registerListReportTablesTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"list_report_tables",
		mcp.WithDescription(
			"List the tables report questions can draw on, with their "+
				"columns. Questions about anything outside these tables "+
				"cannot be answered.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, _, err := auth.ExtractClaimsFromContext(ctx); err != nil {
			return nil, fmt.Errorf("authentication required: %w", err)
		}

		resp := listReportTablesResponse{
			Tables: make([]reportTableInfo, 0, len(deps.Catalog.Tables)),
		}
		for _, table := range deps.Catalog.Tables {
			info := reportTableInfo{
				Name:        table.Name,
				Description: table.Description,
				Columns:     make([]string, 0, len(table.Columns)),
			}
			for _, col := range table.Columns {
				info.Columns = append(info.Columns, col.Name)
			}
			resp.Tables = append(resp.Tables, info)
		}
		resp.Count = len(resp.Tables)

		jsonBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal table list: %w", err)
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// reportErrorResult converts actionable service errors into tool
// results. Returns nil for system failures, which propagate as Go
// errors.
func reportErrorResult(err error) *mcp.CallToolResult {
	var verr *sqlsafety.ValidationError
	switch {
	case errors.As(err, &verr):
		return NewErrorResultWithDetails("query_rejected", verr.Message,
			map[string]any{"rule": string(verr.Rule)})
	case errors.Is(err, apperrors.ErrEmptyQuestion):
		return NewErrorResult("invalid_request", "question cannot be empty")
	default:
		return nil
	}
}
