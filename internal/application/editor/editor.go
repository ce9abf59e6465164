// Package editor lets a user restructure the category taxonomy (rename,
// merge, split, or batches of these) independent of any particular sync
// batch. It maintains the alias-resolution map applied when interpreting
// suggested categories, and a single-level undo history. The editor never
// moves bookmarks itself; callers apply ApplyEdits downstream.
package editor

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logging sink.
func WithLogger(log *slog.Logger) Option {
	return func(ed *Editor) { ed.log = log }
}

// Editor owns the category mapping, alias sets, and edit history for one
// session. Process-lifetime state; not safe for concurrent use.
type Editor struct {
	log     *slog.Logger
	mapping domain.CategoryMapping
	aliases domain.CategoryAliasSet
	history []*domain.EditRecord // LIFO undo stack
}

// New creates an empty Editor.
func New(opts ...Option) *Editor {
	ed := &Editor{
		log:     slog.Default(),
		mapping: make(domain.CategoryMapping),
		aliases: make(domain.CategoryAliasSet),
	}
	for _, o := range opts {
		o(ed)
	}
	return ed
}

// isCanonicalTarget reports whether name is currently the target of any
// mapping entry (including its own identity entry).
func (ed *Editor) isCanonicalTarget(name string) bool {
	for _, target := range ed.mapping {
		if target == name {
			return true
		}
	}
	return false
}

// Rename points oldName at newName so future lookups resolve to it. Fails
// with DuplicateCategoryError when newName is already a canonical mapping
// target; no state is mutated on failure. affectedIDs is informational;
// the caller moves the bookmarks.
func (ed *Editor) Rename(oldName, newName string, affectedIDs []string) (*domain.EditRecord, error) {
	if oldName == "" || newName == "" {
		return nil, fmt.Errorf("rename: old and new names are required")
	}
	if oldName == newName {
		return nil, fmt.Errorf("rename: %q is already the category name", newName)
	}
	if ed.isCanonicalTarget(newName) {
		return nil, &application.DuplicateCategoryError{Name: newName}
	}

	ed.mapping[oldName] = newName
	ed.mapping[newName] = newName

	rec := ed.push(&domain.EditRecord{
		Type:          domain.EditRename,
		OldName:       oldName,
		NewName:       newName,
		AffectedCount: len(affectedIDs),
	})
	ed.log.Info("renamed category", "old", oldName, "new", newName, "affected", len(affectedIDs))
	return rec, nil
}

// Merge points every source category at target and records each source as an
// alias of target. Fails with InvalidMergeError when sources are empty, the
// target is empty, or the target appears among its own sources; no state is
// mutated on failure.
func (ed *Editor) Merge(sourceCategories []string, targetCategory string, affectedIDs []string) (*domain.EditRecord, error) {
	if len(sourceCategories) == 0 {
		return nil, &application.InvalidMergeError{Reason: "no source categories"}
	}
	if targetCategory == "" {
		return nil, &application.InvalidMergeError{Reason: "target category is empty"}
	}
	for _, src := range sourceCategories {
		if src == targetCategory {
			return nil, &application.InvalidMergeError{Reason: fmt.Sprintf("target %q is among the sources", targetCategory)}
		}
		if src == "" {
			return nil, &application.InvalidMergeError{Reason: "source category is empty"}
		}
	}

	for _, src := range sourceCategories {
		ed.mapping[src] = targetCategory
		ed.aliases.Add(targetCategory, src)
	}

	rec := ed.push(&domain.EditRecord{
		Type:             domain.EditMerge,
		SourceCategories: append([]string(nil), sourceCategories...),
		TargetCategory:   targetCategory,
		AffectedCount:    len(affectedIDs),
	})
	ed.log.Info("merged categories",
		"sources", strings.Join(sourceCategories, ", "),
		"target", targetCategory,
		"affected", len(affectedIDs))
	return rec, nil
}

// Split registers each new category as canonical and stops treating the
// source as an alias of anything. The per-item reassignments are carried in
// the edit record for the caller to apply. Fails with InvalidSplitError when
// fewer than two new categories are given or any name is empty.
func (ed *Editor) Split(sourceCategory string, newCategories []string, assignments map[string]string) (*domain.EditRecord, error) {
	if sourceCategory == "" {
		return nil, &application.InvalidSplitError{Reason: "source category is empty"}
	}
	if len(newCategories) < 2 {
		return nil, &application.InvalidSplitError{Reason: "a split needs at least two new categories"}
	}
	for _, c := range newCategories {
		if c == "" {
			return nil, &application.InvalidSplitError{Reason: "new category name is empty"}
		}
	}

	for _, c := range newCategories {
		ed.mapping[c] = c
	}
	delete(ed.mapping, sourceCategory)

	copied := make(map[string]string, len(assignments))
	for k, v := range assignments {
		copied[k] = v
	}
	rec := ed.push(&domain.EditRecord{
		Type:           domain.EditSplit,
		SourceCategory: sourceCategory,
		NewCategories:  append([]string(nil), newCategories...),
		Assignments:    copied,
		AffectedCount:  len(assignments),
	})
	ed.log.Info("split category",
		"source", sourceCategory,
		"into", strings.Join(newCategories, ", "),
		"affected", len(assignments))
	return rec, nil
}

func (ed *Editor) push(rec *domain.EditRecord) *domain.EditRecord {
	rec.EditID = uuid.NewString()
	rec.Timestamp = time.Now()
	rec.Status = domain.EditStatusApplied
	ed.history = append(ed.history, rec)
	return rec
}

// BatchOperation is one heterogeneous entry in a batch edit.
type BatchOperation struct {
	Type domain.EditType `json:"type"`

	// rename
	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`

	// merge
	SourceCategories []string `json:"source_categories,omitempty"`
	TargetCategory   string   `json:"target_category,omitempty"`

	// split
	SourceCategory string            `json:"source_category,omitempty"`
	NewCategories  []string          `json:"new_categories,omitempty"`
	Assignments    map[string]string `json:"assignments,omitempty"`

	AffectedIDs []string `json:"affected_ids,omitempty"`
}

// BatchItemResult is the per-operation outcome of a batch edit.
type BatchItemResult struct {
	Type   domain.EditType    `json:"type"`
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Record *domain.EditRecord `json:"record,omitempty"`
}

// BatchResult aggregates a batch edit.
type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

// BatchEdit applies the operations in order. A failing operation is recorded
// with its error and does not abort the rest.
func (ed *Editor) BatchEdit(operations []BatchOperation) *BatchResult {
	result := &BatchResult{}
	for _, op := range operations {
		var rec *domain.EditRecord
		var err error

		switch op.Type {
		case domain.EditRename:
			rec, err = ed.Rename(op.OldName, op.NewName, op.AffectedIDs)
		case domain.EditMerge:
			rec, err = ed.Merge(op.SourceCategories, op.TargetCategory, op.AffectedIDs)
		case domain.EditSplit:
			rec, err = ed.Split(op.SourceCategory, op.NewCategories, op.Assignments)
		default:
			err = fmt.Errorf("unknown edit type %q", op.Type)
		}

		if err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchItemResult{
				Type:   op.Type,
				Status: domain.EditStatusFailed,
				Error:  err.Error(),
			})
			ed.log.Warn("batch edit operation failed", "type", op.Type, "error", err)
			continue
		}
		result.Succeeded++
		result.Results = append(result.Results, BatchItemResult{
			Type:   op.Type,
			Status: domain.EditStatusApplied,
			Record: rec,
		})
	}
	return result
}

// ResolvedAssignment is a category assignment after alias resolution.
type ResolvedAssignment struct {
	domain.CategoryAssignment
	OriginalCategory string `json:"original_category,omitempty"`
	Edited           bool   `json:"edited"`
}

// ApplyEdits resolves each assignment's suggested category through the
// current mapping. Assignments whose category changes keep the original name
// and are flagged as edited. Pure with respect to editor state.
func (ed *Editor) ApplyEdits(assignments []domain.CategoryAssignment) []ResolvedAssignment {
	out := make([]ResolvedAssignment, 0, len(assignments))
	for _, a := range assignments {
		resolved := ed.mapping.Resolve(a.SuggestedCategory)
		ra := ResolvedAssignment{CategoryAssignment: a}
		if resolved != a.SuggestedCategory {
			ra.OriginalCategory = a.SuggestedCategory
			ra.SuggestedCategory = resolved
			ra.Edited = true
		}
		out = append(out, ra)
	}
	return out
}

// UndoResult describes the outcome of UndoLast. Reversible is false for a
// split, whose record is consumed without restoring state.
type UndoResult struct {
	Record     *domain.EditRecord `json:"record"`
	Reversible bool               `json:"reversible"`
}

// UndoLast pops and reverts the most recent edit. Returns nil when the
// history is empty. Renames and merges are reverted in place; a split is not
// reversible and only consumes its record; redo is not supported.
func (ed *Editor) UndoLast() *UndoResult {
	if len(ed.history) == 0 {
		return nil
	}
	rec := ed.history[len(ed.history)-1]
	ed.history = ed.history[:len(ed.history)-1]
	rec.Status = domain.EditStatusUndone

	switch rec.Type {
	case domain.EditRename:
		delete(ed.mapping, rec.NewName)
		ed.mapping[rec.OldName] = rec.OldName
		ed.log.Info("undid rename", "old", rec.OldName, "new", rec.NewName)
		return &UndoResult{Record: rec, Reversible: true}

	case domain.EditMerge:
		for _, src := range rec.SourceCategories {
			ed.mapping[src] = src
			ed.aliases.Remove(rec.TargetCategory, src)
		}
		ed.log.Info("undid merge", "target", rec.TargetCategory)
		return &UndoResult{Record: rec, Reversible: true}

	default: // split
		ed.log.Warn("split cannot be undone", "source", rec.SourceCategory)
		return &UndoResult{Record: rec, Reversible: false}
	}
}

// Mapping returns a copy of the current category mapping.
func (ed *Editor) Mapping() domain.CategoryMapping {
	return ed.mapping.Clone()
}

// Aliases returns the aliases currently merged into canonical.
func (ed *Editor) Aliases(canonical string) []string {
	return ed.aliases.Aliases(canonical)
}

// History returns the edits still eligible for undo, oldest first.
func (ed *Editor) History() []*domain.EditRecord {
	out := make([]*domain.EditRecord, len(ed.history))
	copy(out, ed.history)
	return out
}
