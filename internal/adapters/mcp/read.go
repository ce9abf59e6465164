// Package mcp exposes the categorization engines as MCP tools so an AI
// assistant can drive sync, taxonomy edits, and feedback over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"shelfmark/internal/application/editor"
	"shelfmark/internal/application/learner"
	"shelfmark/internal/application/syncer"
	"shelfmark/internal/domain"
	"shelfmark/internal/ports"
)

// Session bundles the per-process engines a connected assistant works
// against. Sync and edit histories live here and die with the process.
type Session struct {
	Store   ports.BookmarkStore
	Syncer  *syncer.Engine
	Editor  *editor.Editor
	Learner *learner.Learner
}

// RegisterReadTools adds all read-only tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, session *Session) {
	s.AddTool(treeTool(), treeHandler(session))
	s.AddTool(optimizeTool(), optimizeHandler(session))
	s.AddTool(suggestEditsTool(), suggestEditsHandler(session))
	s.AddTool(feedbackStatsTool(), feedbackStatsHandler(session))
	s.AddTool(learningReportTool(), learningReportHandler(session))
	s.AddTool(syncHistoryTool(), syncHistoryHandler(session))
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the bookmark hierarchy as a tree. Folders show their ID; bookmarks show their ID and URL."),
		mcp.WithString("folder_id",
			mcp.Description("Folder ID to start from. Omit for the whole tree."),
		),
	)
}

func treeHandler(session *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folderID := req.GetString("folder_id", "")

		var root *domain.Node
		var err error
		if folderID == "" {
			root, err = session.Store.GetTree(ctx)
		} else {
			root, err = session.Store.GetSubtree(ctx, folderID)
		}
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		renderTree(&sb, root, "")
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderTree(sb *strings.Builder, node *domain.Node, prefix string) {
	if node.IsFolder() {
		fmt.Fprintf(sb, "%s[%s] %s/\n", prefix, node.ID, node.Title)
	} else {
		fmt.Fprintf(sb, "%s[%s] %s  %s\n", prefix, node.ID, node.Title, node.URL)
	}
	for _, child := range node.Children {
		renderTree(sb, child, prefix+"  ")
	}
}

// --- optimize ---

func optimizeTool() mcp.Tool {
	return mcp.NewTool("optimize_category",
		mcp.WithDescription("Re-score a category suggestion against learned domain and keyword patterns before applying it."),
		mcp.WithString("title",
			mcp.Description("Bookmark title"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("Bookmark URL"),
			mcp.Required(),
		),
		mcp.WithString("current_category",
			mcp.Description("The suggestion to re-score"),
			mcp.Required(),
		),
	)
}

func optimizeHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item := learner.Item{
			Title: req.GetString("title", ""),
			URL:   req.GetString("url", ""),
		}
		current := req.GetString("current_category", "")
		if current == "" {
			return toolError(fmt.Errorf("current_category is required"))
		}

		return toolJSON(session.Learner.OptimizeCategory(item, current))
	}
}

// --- suggest_edits ---

func suggestEditsTool() mcp.Tool {
	return mcp.NewTool("suggest_edits",
		mcp.WithDescription("Analyze a set of category assignments and flag likely taxonomy problems: near-duplicate names, single-item categories, too many categories."),
		mcp.WithString("assignments",
			mcp.Description(`JSON array of assignments: [{"item_id":"42","title":"...","url":"...","suggested_category":"Dev"}]`),
			mcp.Required(),
		),
	)
}

func suggestEditsHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assignments, err := parseAssignments(req.GetString("assignments", ""))
		if err != nil {
			return toolError(err)
		}

		suggestions := session.Editor.EditSuggestions(assignments)
		if len(suggestions) == 0 {
			return mcp.NewToolResultText("No edit suggestions."), nil
		}
		return toolJSON(suggestions)
	}
}

// --- feedback_stats ---

func feedbackStatsTool() mcp.Tool {
	return mcp.NewTool("feedback_stats",
		mcp.WithDescription("Summarize recorded feedback: totals, acceptance rate, last feedback time."),
	)
}

func feedbackStatsHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(session.Learner.FeedbackStats())
	}
}

// --- learning_report ---

func learningReportTool() mcp.Tool {
	return mcp.NewTool("learning_report",
		mcp.WithDescription("Full learning report: stats, progress level, per-category accuracy, improvement suggestions, strongest domain and keyword patterns."),
	)
}

func learningReportHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(session.Learner.LearningReport())
	}
}

// --- sync_history ---

func syncHistoryTool() mcp.Tool {
	return mcp.NewTool("sync_history",
		mcp.WithDescription("List the sync runs of this session that are still eligible for undo, oldest first."),
	)
}

func syncHistoryHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		history := session.Syncer.History()
		if len(history) == 0 {
			return mcp.NewToolResultText("No syncs to undo."), nil
		}

		var sb strings.Builder
		for _, outcome := range history {
			fmt.Fprintf(&sb, "%s  %s  moved=%d failed=%d skipped=%d\n",
				outcome.SyncID,
				outcome.Timestamp.Format("2006-01-02 15:04:05"),
				len(outcome.Success), len(outcome.Failed), len(outcome.Skipped))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func parseAssignments(raw string) ([]domain.CategoryAssignment, error) {
	if raw == "" {
		return nil, fmt.Errorf("assignments is required")
	}
	var assignments []domain.CategoryAssignment
	if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
		return nil, fmt.Errorf("parsing assignments: %w", err)
	}
	return assignments, nil
}
