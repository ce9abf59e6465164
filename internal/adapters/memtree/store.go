// Package memtree implements ports.BookmarkStore as an in-memory node table.
// It backs the CLI, which loads a bookmark tree from a JSON export, runs a
// session against it, and writes the result back out.
package memtree

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
	"shelfmark/internal/ports"
)

// RootID is the fixed ID of the tree root.
const RootID = "0"

type node struct {
	id       string
	title    string
	url      string
	parentID string
	children []string
}

// Store holds a bookmark tree as a flat id→node table. All reads return
// detached copies so callers can never mutate internal state. Safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*node
	nextID int
}

var _ ports.BookmarkStore = (*Store)(nil)

// New creates an empty store containing only the root folder.
func New() *Store {
	return &Store{
		nodes: map[string]*node{
			RootID: {id: RootID, title: "Bookmarks"},
		},
		nextID: 1,
	}
}

// FromTree builds a store from an exported tree. The root of the given tree
// becomes the store root regardless of its original ID; descendant IDs are
// kept when present and assigned when blank.
func FromTree(root *domain.Node) (*Store, error) {
	if root == nil {
		return nil, fmt.Errorf("nil tree root")
	}
	s := New()
	s.nodes[RootID].title = root.Title
	if s.nodes[RootID].title == "" {
		s.nodes[RootID].title = "Bookmarks"
	}
	for _, child := range root.Children {
		if err := s.graft(child, RootID); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) graft(n *domain.Node, parentID string) error {
	id := n.ID
	if id == "" {
		id = s.allocateID()
	}
	if _, exists := s.nodes[id]; exists {
		return fmt.Errorf("duplicate node ID %q", id)
	}
	if n.URL != "" && len(n.Children) > 0 {
		return fmt.Errorf("node %q has both a URL and children", id)
	}
	s.nodes[id] = &node{id: id, title: n.Title, url: n.URL, parentID: parentID}
	parent := s.nodes[parentID]
	parent.children = append(parent.children, id)

	// Keep nextID ahead of any numeric ID in the import.
	if v, err := strconv.Atoi(id); err == nil && v >= s.nextID {
		s.nextID = v + 1
	}
	for _, child := range n.Children {
		if err := s.graft(child, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) allocateID() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

// GetTree returns a copy of the whole tree.
func (s *Store) GetTree(_ context.Context) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.export(RootID), nil
}

// GetSubtree returns a copy of the tree rooted at folderID.
func (s *Store) GetSubtree(_ context.Context, folderID string) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[folderID]
	if !ok {
		return nil, &application.NotFoundError{ID: folderID}
	}
	if n.url != "" {
		return nil, fmt.Errorf("node %q is not a folder", folderID)
	}
	return s.export(folderID), nil
}

// GetChildren returns copies of the direct children of folderID, with one
// level of grandchildren attached so callers can inspect folder contents.
func (s *Store) GetChildren(_ context.Context, folderID string) ([]*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[folderID]
	if !ok {
		return nil, &application.NotFoundError{ID: folderID}
	}
	if n.url != "" {
		return nil, fmt.Errorf("node %q is not a folder", folderID)
	}
	out := make([]*domain.Node, 0, len(n.children))
	for _, childID := range n.children {
		out = append(out, s.export(childID))
	}
	return out, nil
}

// Get returns a copy of a single node without its children.
func (s *Store) Get(_ context.Context, itemID string) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[itemID]
	if !ok {
		return nil, &application.NotFoundError{ID: itemID}
	}
	return &domain.Node{ID: n.id, Title: n.title, URL: n.url, ParentID: n.parentID}, nil
}

// Create adds an empty folder under parentID and returns it.
func (s *Store) Create(_ context.Context, parentID, title string) (*domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentID]
	if !ok {
		return nil, &application.NotFoundError{ID: parentID}
	}
	if parent.url != "" {
		return nil, fmt.Errorf("node %q is not a folder", parentID)
	}
	if title == "" {
		return nil, fmt.Errorf("folder title cannot be empty")
	}

	id := s.allocateID()
	s.nodes[id] = &node{id: id, title: title, parentID: parentID}
	parent.children = append(parent.children, id)
	return &domain.Node{ID: id, Title: title, ParentID: parentID}, nil
}

// Move reparents itemID under newParentID, appending it to the destination's
// children. Moving a folder into its own subtree is rejected.
func (s *Store) Move(_ context.Context, itemID, newParentID string) (*domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[itemID]
	if !ok {
		return nil, &application.NotFoundError{ID: itemID}
	}
	if itemID == RootID {
		return nil, fmt.Errorf("cannot move the root")
	}
	dst, ok := s.nodes[newParentID]
	if !ok {
		return nil, &application.NotFoundError{ID: newParentID}
	}
	if dst.url != "" {
		return nil, fmt.Errorf("node %q is not a folder", newParentID)
	}
	for cursor := dst; cursor != nil; cursor = s.nodes[cursor.parentID] {
		if cursor.id == itemID {
			return nil, fmt.Errorf("cannot move %q into its own subtree", itemID)
		}
		if cursor.parentID == "" {
			break
		}
	}

	old := s.nodes[n.parentID]
	for i, childID := range old.children {
		if childID == itemID {
			old.children = append(old.children[:i], old.children[i+1:]...)
			break
		}
	}
	dst.children = append(dst.children, itemID)
	n.parentID = newParentID

	return &domain.Node{ID: n.id, Title: n.title, URL: n.url, ParentID: n.parentID}, nil
}

// export materializes a detached copy of the subtree rooted at id. Caller
// holds at least a read lock.
func (s *Store) export(id string) *domain.Node {
	n := s.nodes[id]
	out := &domain.Node{ID: n.id, Title: n.title, URL: n.url, ParentID: n.parentID}
	for _, childID := range n.children {
		out.Children = append(out.Children, s.export(childID))
	}
	return out
}
