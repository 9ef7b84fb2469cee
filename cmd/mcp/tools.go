package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/gpa"
	"github.com/WessleyAI/gradepoint/internal/rpc"
)

type transcriptParser interface {
	Parse(ctx context.Context, path string) ([]domain.Course, error)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var courseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"subject": map[string]any{"type": "string"},
		"number":  map[string]any{"type": "string"},
		"title":   map[string]any{"type": "string"},
		"units":   map[string]any{"type": "number"},
		"grade":   map[string]any{"type": "string"},
		"source":  map[string]any{"type": "string", "enum": []string{"parsed", "manual"}},
	},
	"required": []string{"subject", "number", "title", "units", "grade", "source"},
}

// registerTools adds parse_transcript and calculate_gpa to srv.
func registerTools(srv *mcp.Server, p transcriptParser) {
	srv.AddTool(&mcp.Tool{
		Name:        "parse_transcript",
		Description: "Parse a transcript PDF into course records and compute its cumulative GPA.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path of the transcript PDF"},
		}, []string{"path"}),
	}, toolHandler(func(ctx context.Context, req rpc.ParseRequest) (any, error) {
		if req.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		courses, err := p.Parse(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		g, err := gpa.Calculate(courses)
		if err != nil {
			return nil, err
		}
		return rpc.ParseReply{Courses: courses, GPA: g}, nil
	}))

	srv.AddTool(&mcp.Tool{
		Name:        "calculate_gpa",
		Description: "Compute the GPA of a list of course records. Non-GPA grades and zero-unit courses are skipped.",
		InputSchema: inputSchema(map[string]any{
			"courses": map[string]any{"type": "array", "items": courseSchema},
		}, []string{"courses"}),
	}, toolHandler(func(_ context.Context, req rpc.GPARequest) (any, error) {
		return gpa.Summarize(req.Courses)
	}))
}

// toolHandler decodes the tool arguments as Req and returns endpoint's
// result as JSON text. Failures become tool errors, not protocol errors.
func toolHandler[Req any](endpoint func(context.Context, Req) (any, error)) mcp.ToolHandler {
	return func(ctx context.Context, call *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req Req
		if err := json.Unmarshal(call.Params.Arguments, &req); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		resp, err := endpoint(ctx, req)
		if err != nil {
			return toolError(err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
