package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"shelfmark/internal/application/learner"
	"shelfmark/internal/application/syncer"
	"shelfmark/internal/domain"
)

// RegisterWriteTools adds all mutating tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, session *Session) {
	s.AddTool(syncTool(), syncHandler(session))
	s.AddTool(undoSyncTool(), undoSyncHandler(session))
	s.AddTool(renameTool(), renameHandler(session))
	s.AddTool(mergeTool(), mergeHandler(session))
	s.AddTool(splitTool(), splitHandler(session))
	s.AddTool(undoEditTool(), undoEditHandler(session))
	s.AddTool(recordFeedbackTool(), recordFeedbackHandler(session))
	s.AddTool(resetLearningTool(), resetLearningHandler(session))
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Apply category assignments to the bookmark store: one folder per category, one move per bookmark. Pending taxonomy edits are resolved first. Per-item failures do not stop the batch."),
		mcp.WithString("assignments",
			mcp.Description(`JSON array of assignments: [{"item_id":"42","title":"...","url":"...","suggested_category":"Dev"}]`),
			mcp.Required(),
		),
		mcp.WithString("parent_folder_id",
			mcp.Description("Folder to create category folders under. Omit to use the default root folder."),
		),
	)
}

func syncHandler(session *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assignments, err := parseAssignments(req.GetString("assignments", ""))
		if err != nil {
			return toolError(err)
		}

		resolved := session.Editor.ApplyEdits(assignments)
		flat := make([]domain.CategoryAssignment, len(resolved))
		for i, r := range resolved {
			flat[i] = r.CategoryAssignment
		}

		outcome, err := session.Syncer.Sync(ctx, flat, syncer.Options{
			ParentFolderID: req.GetString("parent_folder_id", ""),
		})
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Sync %s: moved %d, failed %d, skipped %d of %d in %s.",
			outcome.SyncID,
			len(outcome.Success), len(outcome.Failed), len(outcome.Skipped),
			outcome.Total(), outcome.Duration.Round(time.Millisecond))), nil
	}
}

// --- undo_sync ---

func undoSyncTool() mcp.Tool {
	return mcp.NewTool("undo_sync",
		mcp.WithDescription("Undo the most recent sync of this session, moving every synced bookmark back to its original folder. Category folders are left in place."),
	)
}

func undoSyncHandler(session *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		restored, ok := session.Syncer.UndoLast(ctx)
		if !ok {
			return mcp.NewToolResultText("No syncs to undo."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Restored %d bookmarks.", restored)), nil
	}
}

// --- rename_category ---

func renameTool() mcp.Tool {
	return mcp.NewTool("rename_category",
		mcp.WithDescription("Rename a category. Future suggestions for the old name resolve to the new one."),
		mcp.WithString("old_name",
			mcp.Description("Current category name"),
			mcp.Required(),
		),
		mcp.WithString("new_name",
			mcp.Description("New category name"),
			mcp.Required(),
		),
	)
}

func renameHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec, err := session.Editor.Rename(
			req.GetString("old_name", ""),
			req.GetString("new_name", ""),
			nil,
		)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Renamed %q to %q (edit %s).", rec.OldName, rec.NewName, rec.EditID)), nil
	}
}

// --- merge_categories ---

func mergeTool() mcp.Tool {
	return mcp.NewTool("merge_categories",
		mcp.WithDescription("Merge one or more categories into a target. The sources become aliases of the target."),
		mcp.WithString("sources",
			mcp.Description(`JSON array of source category names, e.g. ["Programing","Coding"]`),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Category the sources merge into"),
			mcp.Required(),
		),
	)
}

func mergeHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sources []string
		if err := json.Unmarshal([]byte(req.GetString("sources", "")), &sources); err != nil {
			return toolError(fmt.Errorf("parsing sources: %w", err))
		}

		rec, err := session.Editor.Merge(sources, req.GetString("target", ""), nil)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Merged %d categories into %q (edit %s).",
			len(rec.SourceCategories), rec.TargetCategory, rec.EditID)), nil
	}
}

// --- split_category ---

func splitTool() mcp.Tool {
	return mcp.NewTool("split_category",
		mcp.WithDescription("Split a category into two or more new categories, with a per-item reassignment map. Splits cannot be undone."),
		mcp.WithString("source",
			mcp.Description("Category to split"),
			mcp.Required(),
		),
		mcp.WithString("new_categories",
			mcp.Description(`JSON array of new category names, e.g. ["Frontend","Backend"]`),
			mcp.Required(),
		),
		mcp.WithString("assignments",
			mcp.Description(`JSON object mapping item ID to its new category, e.g. {"42":"Frontend"}`),
		),
	)
}

func splitHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var newCategories []string
		if err := json.Unmarshal([]byte(req.GetString("new_categories", "")), &newCategories); err != nil {
			return toolError(fmt.Errorf("parsing new_categories: %w", err))
		}
		assignments := map[string]string{}
		if raw := req.GetString("assignments", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
				return toolError(fmt.Errorf("parsing assignments: %w", err))
			}
		}

		rec, err := session.Editor.Split(req.GetString("source", ""), newCategories, assignments)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Split %q into %d categories, %d items reassigned (edit %s).",
			rec.SourceCategory, len(rec.NewCategories), rec.AffectedCount, rec.EditID)), nil
	}
}

// --- undo_edit ---

func undoEditTool() mcp.Tool {
	return mcp.NewTool("undo_edit",
		mcp.WithDescription("Undo the most recent taxonomy edit. Renames and merges are reverted; a split only consumes its history entry."),
	)
}

func undoEditHandler(session *Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := session.Editor.UndoLast()
		if result == nil {
			return mcp.NewToolResultText("No edits to undo."), nil
		}
		if !result.Reversible {
			return mcp.NewToolResultText(fmt.Sprintf(
				"Edit %s was a split of %q and cannot be reverted; it was removed from the history.",
				result.Record.EditID, result.Record.SourceCategory)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reverted %s edit %s.", result.Record.Type, result.Record.EditID)), nil
	}
}

// --- record_feedback ---

func recordFeedbackTool() mcp.Tool {
	return mcp.NewTool("record_feedback",
		mcp.WithDescription("Record that the user accepted or rejected a category suggestion. Rejections may carry the category the user chose instead."),
		mcp.WithString("action",
			mcp.Description(`"accept" or "reject"`),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Bookmark title"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("Bookmark URL"),
			mcp.Required(),
		),
		mcp.WithString("suggested_category",
			mcp.Description("The category that was suggested"),
			mcp.Required(),
		),
		mcp.WithString("user_category",
			mcp.Description("On reject: the category the user chose instead"),
		),
		mcp.WithString("item_id",
			mcp.Description("Bookmark ID, if known"),
		),
	)
}

func recordFeedbackHandler(session *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item := learner.Item{
			ID:    req.GetString("item_id", ""),
			Title: req.GetString("title", ""),
			URL:   req.GetString("url", ""),
		}
		suggested := req.GetString("suggested_category", "")
		if suggested == "" {
			return toolError(fmt.Errorf("suggested_category is required"))
		}

		switch action := req.GetString("action", ""); action {
		case "accept":
			session.Learner.RecordAcceptance(ctx, item, suggested)
			return mcp.NewToolResultText("Recorded acceptance."), nil
		case "reject":
			session.Learner.RecordRejection(ctx, item, suggested, req.GetString("user_category", ""))
			return mcp.NewToolResultText("Recorded rejection."), nil
		default:
			return toolError(fmt.Errorf("action must be accept or reject, got %q", action))
		}
	}
}

// --- reset_learning ---

func resetLearningTool() mcp.Tool {
	return mcp.NewTool("reset_learning",
		mcp.WithDescription("Discard all learned feedback and patterns, in memory and in the state store."),
	)
}

func resetLearningHandler(session *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := session.Learner.Reset(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Learning state reset."), nil
	}
}
