package ports

import (
	"context"

	"shelfmark/internal/domain"
)

// BookmarkStore is the narrow interface over the external hierarchical
// bookmark store. Get must fail with application.NotFoundError when the item
// does not exist; all other failures are store-specific.
type BookmarkStore interface {
	// Tree operations
	GetTree(ctx context.Context) (*domain.Node, error)
	GetSubtree(ctx context.Context, folderID string) (*domain.Node, error)
	GetChildren(ctx context.Context, folderID string) ([]*domain.Node, error)

	// Single-item operations
	Get(ctx context.Context, itemID string) (*domain.Node, error)

	// Mutations
	Create(ctx context.Context, parentID, title string) (*domain.Node, error)
	Move(ctx context.Context, itemID, newParentID string) (*domain.Node, error)
}
