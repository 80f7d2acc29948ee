package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dkoval/crmscope/internal/flowchart"
	"github.com/dkoval/crmscope/internal/reports"
	"github.com/dkoval/crmscope/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipelines  PipelineCatalog
	Flows      FlowCatalog
	Events     reports.EmailEventSource
	Views      reports.PageViewSource
	Store      *storage.Store // optional; if nil, archiving and audit logging are skipped
	ObjectType string         // default CRM object type for pipeline tools
}

func (d MCPDeps) objectType(req mcp.CallToolRequest) string {
	ot := req.GetString("object_type", d.ObjectType)
	if ot == "" {
		ot = "deals"
	}
	return ot
}

// NewMCPServer creates an MCP server with all crmscope tools registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"crmscope",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("crmscope: CRM pipelines, workflows, and engagement analytics over the HubSpot API."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_pipelines",
			mcp.WithDescription("List CRM pipelines and their stages for an object type."),
			mcp.WithString("object_type", mcp.Description("CRM object type (default: deals)")),
		),
		withAudit(deps, "list_pipelines", mcpListPipelines(deps)),
	)

	s.AddTool(
		mcp.NewTool("resolve_stage",
			mcp.WithDescription("Resolve a pipeline (and optionally a stage) from free-text names to internal ids."),
			mcp.WithString("pipeline", mcp.Description("Pipeline name to resolve"), mcp.Required()),
			mcp.WithString("stage", mcp.Description("Stage name to resolve within the matched pipeline")),
			mcp.WithString("object_type", mcp.Description("CRM object type (default: deals)")),
		),
		withAudit(deps, "resolve_stage", mcpResolveStage(deps)),
	)

	s.AddTool(
		mcp.NewTool("list_workflows",
			mcp.WithDescription("List workflow automations, optionally filtered by a fuzzy name query."),
			mcp.WithString("query", mcp.Description("Optional name filter")),
		),
		withAudit(deps, "list_workflows", mcpListWorkflows(deps)),
	)

	s.AddTool(
		mcp.NewTool("render_workflow",
			mcp.WithDescription("Render a workflow's action graph as an ASCII diagram. Accepts a workflow id or name."),
			mcp.WithString("workflow", mcp.Description("Workflow id or name"), mcp.Required()),
		),
		withAudit(deps, "render_workflow", mcpRenderWorkflow(deps)),
	)

	s.AddTool(
		mcp.NewTool("email_engagement_report",
			mcp.WithDescription("Aggregate email sent/open/click counts per campaign over a trailing window."),
			mcp.WithNumber("since_days", mcp.Description("Window size in days (default 30)")),
		),
		withAudit(deps, "email_engagement_report", mcpEmailEngagement(deps)),
	)

	s.AddTool(
		mcp.NewTool("page_views",
			mcp.WithDescription("List recent page views for a single contact."),
			mcp.WithString("contact", mcp.Description("Contact id"), mcp.Required()),
		),
		withAudit(deps, "page_views", mcpPageViews(deps)),
	)

	return s
}

// withAudit records every invocation of a tool in the audit log. Logging
// failures never affect the tool result.
func withAudit(deps MCPDeps, tool string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	if deps.Store == nil {
		return h
	}
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req)

		args, margs := json.Marshal(req.GetArguments())
		if margs != nil {
			args = []byte("{}")
		}
		ok := err == nil && (result == nil || !result.IsError)
		if logErr := deps.Store.LogToolCall(storage.ToolCall{
			ID:       uuid.New().String(),
			Tool:     tool,
			ArgsJSON: string(args),
			OK:       ok,
		}); logErr != nil {
			slog.Warn("tool call audit log failed", "tool", tool, "error", logErr)
		}
		return result, err
	}
}

func mcpListPipelines(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		objectType := deps.objectType(req)
		pipelines, err := deps.Pipelines.All(ctx, objectType)
		if err != nil {
			return mcpError(fmt.Sprintf("listing pipelines: %v", err)), nil
		}

		var b strings.Builder
		for _, p := range pipelines {
			fmt.Fprintf(&b, "%s (id %s)\n", p.Label, p.ID)
			for _, st := range p.Stages {
				fmt.Fprintf(&b, "  - %s (id %s)\n", st.Label, st.ID)
			}
		}
		return mcpText(b.String()), nil
	}
}

func mcpResolveStage(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pipelineQuery, err := req.RequireString("pipeline")
		if err != nil {
			return mcpError("pipeline is required"), nil
		}
		stageQuery := req.GetString("stage", "")
		objectType := deps.objectType(req)

		res, err := ResolveStage(ctx, deps.Pipelines, objectType, pipelineQuery, stageQuery)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		if len(res.PipelineAlternatives) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "Pipeline name %q is ambiguous. Candidates:\n", pipelineQuery)
			for _, alt := range res.PipelineAlternatives {
				fmt.Fprintf(&b, "  - %s (id %s, score %.2f)\n", alt.Label, alt.Item.ID, alt.Score)
			}
			return mcpText(b.String()), nil
		}
		if len(res.StageAlternatives) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "Stage name %q is ambiguous in pipeline %q. Candidates:\n", stageQuery, res.Pipeline.Label)
			for _, alt := range res.StageAlternatives {
				fmt.Fprintf(&b, "  - %s (id %s, score %.2f)\n", alt.Label, alt.Item.ID, alt.Score)
			}
			return mcpText(b.String()), nil
		}

		out := map[string]any{
			"pipeline_id":    res.Pipeline.ID,
			"pipeline_label": res.Pipeline.Label,
			"pipeline_score": res.PipelineScore,
		}
		if res.Stage != nil {
			out["stage_id"] = res.Stage.ID
			out["stage_label"] = res.Stage.Label
			out["stage_score"] = res.StageScore
		}
		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListWorkflows(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flows, err := deps.Flows.All(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("listing workflows: %v", err)), nil
		}

		query := strings.TrimSpace(req.GetString("query", ""))
		var b strings.Builder
		if query == "" {
			for _, f := range flows {
				fmt.Fprintf(&b, "%s  %s  (%s)\n", f.ID, f.Name, enabledLabel(f.Enabled))
			}
			return mcpText(b.String()), nil
		}

		results := matchFlows(query, flows)
		if len(results) == 0 {
			return mcpText(fmt.Sprintf("No workflows matching %q.", query)), nil
		}
		for _, r := range results {
			fmt.Fprintf(&b, "%s  %s  (%s, score %.2f)\n", r.Item.ID, r.Item.Name, enabledLabel(r.Item.Enabled), r.Score)
		}
		return mcpText(b.String()), nil
	}
}

func mcpRenderWorkflow(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("workflow")
		if err != nil {
			return mcpError("workflow is required"), nil
		}

		flow, alternatives, err := ResolveFlow(ctx, deps.Flows, query)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if len(alternatives) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "Workflow name %q is ambiguous. Candidates:\n", query)
			for _, alt := range alternatives {
				fmt.Fprintf(&b, "  - %s (id %s, score %.2f)\n", alt.Label, alt.Item.ID, alt.Score)
			}
			return mcpText(b.String()), nil
		}

		diagram := flowchart.Render(flow)

		// The structured payload rides along unmodified; the diagram is for
		// reading, the JSON for anything programmatic.
		raw, err := json.MarshalIndent(flow, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal workflow: %v", err)), nil
		}
		return mcpText(diagram + "\n\n" + string(raw)), nil
	}
}

func mcpEmailEngagement(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sinceDays := req.GetInt("since_days", 30)

		text, err := reports.EmailEngagement(ctx, deps.Events, sinceDays)
		if err != nil {
			return mcpError(fmt.Sprintf("engagement report failed: %v", err)), nil
		}

		text = archive(deps, "email_engagement", fmt.Sprintf("last %d days", sinceDays), text)
		return mcpText(text), nil
	}
}

func mcpPageViews(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcpError("contact is required"), nil
		}

		text, err := reports.PageViews(ctx, deps.Views, contact)
		if err != nil {
			return mcpError(fmt.Sprintf("page view lookup failed: %v", err)), nil
		}

		text = archive(deps, "page_views", "contact "+contact, text)
		return mcpText(text), nil
	}
}

// archive stores a report body and appends a reference line to the text.
func archive(deps MCPDeps, kind, subject, body string) string {
	if deps.Store == nil {
		return body
	}
	id := uuid.New().String()
	if err := deps.Store.SaveReport(storage.Report{
		ID:      id,
		Kind:    kind,
		Subject: subject,
		Body:    body,
	}); err != nil {
		slog.Warn("report archive failed", "kind", kind, "error", err)
		return body
	}
	return body + fmt.Sprintf("\nArchived as report %s", id)
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
