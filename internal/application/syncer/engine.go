// Package syncer applies a batch of category assignments to the hierarchical
// bookmark store: one folder per category, one move per bookmark, per-item
// outcome accounting, and single-level undo of the most recent batch.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
	"shelfmark/internal/ports"
)

// DefaultRootFolderName is the folder the engine syncs under when no parent
// is given. Resolved by name among the root's children; falls back to the
// store root when absent.
const DefaultRootFolderName = "Miscellaneous"

// ProgressFunc receives coarse progress notifications during a sync run.
type ProgressFunc func(done, total int)

// Options tunes a single sync run.
type Options struct {
	// ParentFolderID overrides the default root-folder resolution.
	ParentFolderID string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logging sink.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithProgress registers a progress callback, invoked at roughly 10%
// completion increments.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithRootFolderName overrides DefaultRootFolderName.
func WithRootFolderName(name string) Option {
	return func(e *Engine) { e.rootName = name }
}

// Engine is the synchronization engine. It owns the session folder cache and
// the sync history; neither survives the process. Not safe for concurrent
// use; one logical session drives an Engine at a time.
type Engine struct {
	store    ports.BookmarkStore
	log      *slog.Logger
	progress ProgressFunc
	rootName string

	folders map[string]string     // category name → folder ID, lazily populated
	history []*domain.SyncOutcome // LIFO undo stack
}

// New creates an Engine over the given bookmark store.
func New(store ports.BookmarkStore, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		log:      slog.Default(),
		rootName: DefaultRootFolderName,
		folders:  make(map[string]string),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// resolveParent picks the folder to sync under: the explicit parent if given,
// otherwise the well-known root folder by name, otherwise the store root.
func (e *Engine) resolveParent(ctx context.Context, parentFolderID string) (string, error) {
	if parentFolderID != "" {
		return parentFolderID, nil
	}
	root, err := e.store.GetTree(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve parent folder: %w", err)
	}
	if f := root.FindChildFolder(e.rootName); f != nil {
		return f.ID, nil
	}
	return root.ID, nil
}

// PrepareFolders ensures one folder per category under the parent, reusing
// existing folders by name and caching their IDs. Idempotent: repeat calls
// with the same categories create nothing. Any lookup or create failure
// aborts the whole preparation.
func (e *Engine) PrepareFolders(ctx context.Context, categories []string, parentFolderID string) (map[string]string, error) {
	parentID, err := e.resolveParent(ctx, parentFolderID)
	if err != nil {
		return nil, err
	}

	var children []*domain.Node
	fetched := false

	for _, cat := range categories {
		if _, ok := e.folders[cat]; ok {
			continue
		}
		if !fetched {
			children, err = e.store.GetChildren(ctx, parentID)
			if err != nil {
				return nil, &application.StoreOperationError{Op: "list children", ID: parentID, Err: err}
			}
			fetched = true
		}

		var folder *domain.Node
		for _, c := range children {
			if c.IsFolder() && c.Title == cat {
				folder = c
				break
			}
		}
		if folder == nil {
			folder, err = e.store.Create(ctx, parentID, cat)
			if err != nil {
				return nil, &application.StoreOperationError{Op: "create folder", ID: cat, Err: err}
			}
			children = append(children, folder)
			e.log.Info("created category folder", "category", cat, "folder_id", folder.ID)
		}
		e.folders[cat] = folder.ID
	}

	return e.Folders(), nil
}

// Sync applies the assignments to the store in input order. Per-item
// failures never stop the batch; every assignment lands in exactly one of
// the outcome's success, failed, or skipped lists. The outcome is pushed
// onto the undo history.
func (e *Engine) Sync(ctx context.Context, assignments []domain.CategoryAssignment, opts Options) (*domain.SyncOutcome, error) {
	if len(assignments) == 0 {
		return nil, errors.New("no assignments to sync")
	}

	start := time.Now()
	if _, err := e.PrepareFolders(ctx, domain.DistinctCategories(assignments), opts.ParentFolderID); err != nil {
		return nil, fmt.Errorf("prepare folders: %w", err)
	}

	outcome := &domain.SyncOutcome{
		SyncID:    uuid.NewString(),
		Timestamp: start,
	}

	total := len(assignments)
	step := total / 10
	if step < 1 {
		step = 1
	}

	for i, a := range assignments {
		e.processAssignment(ctx, a, outcome)
		if done := i + 1; done%step == 0 || done == total {
			e.log.Info("sync progress", "done", done, "total", total)
			if e.progress != nil {
				e.progress(done, total)
			}
		}
	}

	outcome.Duration = time.Since(start)
	e.history = append(e.history, outcome)
	e.log.Info("sync complete",
		"sync_id", outcome.SyncID,
		"success", len(outcome.Success),
		"failed", len(outcome.Failed),
		"skipped", len(outcome.Skipped),
		"duration", outcome.Duration)
	return outcome, nil
}

func (e *Engine) processAssignment(ctx context.Context, a domain.CategoryAssignment, outcome *domain.SyncOutcome) {
	node, err := e.store.Get(ctx, a.ItemID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			outcome.Skipped = append(outcome.Skipped, domain.SyncSkip{ItemID: a.ItemID, Reason: "item not found"})
			e.log.Warn("skipped bookmark", "item", a.ItemID, "title", a.Title, "reason", "item not found")
			return
		}
		outcome.Failed = append(outcome.Failed, domain.SyncFailure{
			ItemID: a.ItemID, Title: a.Title, Reason: err.Error(), Timestamp: time.Now(),
		})
		e.log.Warn("fetch failed", "item", a.ItemID, "title", a.Title, "error", err)
		return
	}

	targetID, ok := e.folders[a.SuggestedCategory]
	if !ok {
		outcome.Failed = append(outcome.Failed, domain.SyncFailure{
			ItemID: a.ItemID, Title: a.Title,
			Reason:    fmt.Sprintf("no folder prepared for category %q", a.SuggestedCategory),
			Timestamp: time.Now(),
		})
		return
	}

	if _, err := e.store.Move(ctx, a.ItemID, targetID); err != nil {
		outcome.Failed = append(outcome.Failed, domain.SyncFailure{
			ItemID: a.ItemID, Title: a.Title, Reason: err.Error(), Timestamp: time.Now(),
		})
		e.log.Warn("move failed", "item", a.ItemID, "title", a.Title, "error", err)
		return
	}

	outcome.Success = append(outcome.Success, domain.SyncRecord{
		ItemID:           a.ItemID,
		Title:            a.Title,
		URL:              a.URL,
		Category:         a.SuggestedCategory,
		OriginalParentID: node.ParentID,
		TargetParentID:   targetID,
		Timestamp:        time.Now(),
	})
	e.log.Info("moved bookmark", "item", a.ItemID, "title", a.Title, "category", a.SuggestedCategory)
}

// UndoLast pops the most recent sync outcome and moves every successfully
// synced bookmark back to its original parent. Individual restore failures
// are logged and do not abort the rest. Returns the number restored, and
// false when there is nothing to undo. Folders created during preparation
// are left in place. Single level: a second call targets the next most
// recent outcome.
func (e *Engine) UndoLast(ctx context.Context) (int, bool) {
	if len(e.history) == 0 {
		return 0, false
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]

	restored := 0
	for _, rec := range last.Success {
		if _, err := e.store.Move(ctx, rec.ItemID, rec.OriginalParentID); err != nil {
			e.log.Warn("undo restore failed", "item", rec.ItemID, "error", err)
			continue
		}
		restored++
	}

	e.log.Info("undo complete", "sync_id", last.SyncID, "restored", restored, "moved", len(last.Success))
	return restored, true
}

// History returns the sync outcomes still eligible for undo, oldest first.
func (e *Engine) History() []*domain.SyncOutcome {
	out := make([]*domain.SyncOutcome, len(e.history))
	copy(out, e.history)
	return out
}

// Folders returns a copy of the session category → folder cache.
func (e *Engine) Folders() map[string]string {
	out := make(map[string]string, len(e.folders))
	for k, v := range e.folders {
		out[k] = v
	}
	return out
}
