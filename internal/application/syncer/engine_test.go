package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
)

// fakeStore is an in-memory bookmark store with call counting and failure
// injection.
type fakeStore struct {
	nodes  map[string]*domain.Node
	nextID int

	createCalls int
	moveCalls   int

	createErr error
	moveErr   map[string]error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		nodes:   make(map[string]*domain.Node),
		nextID:  1,
		moveErr: map[string]error{},
	}
	s.nodes["0"] = &domain.Node{ID: "0", Title: "Bookmarks"}
	return s
}

func (s *fakeStore) add(parentID, title, url string) *domain.Node {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	n := &domain.Node{ID: id, Title: title, URL: url, ParentID: parentID}
	s.nodes[id] = n
	return n
}

func (s *fakeStore) children(folderID string) []*domain.Node {
	var out []*domain.Node
	for i := 1; i < s.nextID; i++ {
		if n, ok := s.nodes[strconv.Itoa(i)]; ok && n.ParentID == folderID {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeStore) GetTree(_ context.Context) (*domain.Node, error) {
	root := *s.nodes["0"]
	root.Children = s.children("0")
	return &root, nil
}

func (s *fakeStore) GetSubtree(_ context.Context, folderID string) (*domain.Node, error) {
	n, ok := s.nodes[folderID]
	if !ok {
		return nil, &application.NotFoundError{ID: folderID}
	}
	sub := *n
	sub.Children = s.children(folderID)
	return &sub, nil
}

func (s *fakeStore) GetChildren(_ context.Context, folderID string) ([]*domain.Node, error) {
	if _, ok := s.nodes[folderID]; !ok {
		return nil, &application.NotFoundError{ID: folderID}
	}
	return s.children(folderID), nil
}

func (s *fakeStore) Get(_ context.Context, itemID string) (*domain.Node, error) {
	n, ok := s.nodes[itemID]
	if !ok {
		return nil, &application.NotFoundError{ID: itemID}
	}
	cp := *n
	return &cp, nil
}

func (s *fakeStore) Create(_ context.Context, parentID, title string) (*domain.Node, error) {
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.add(parentID, title, ""), nil
}

func (s *fakeStore) Move(_ context.Context, itemID, newParentID string) (*domain.Node, error) {
	s.moveCalls++
	if err := s.moveErr[itemID]; err != nil {
		return nil, err
	}
	n, ok := s.nodes[itemID]
	if !ok {
		return nil, &application.NotFoundError{ID: itemID}
	}
	n.ParentID = newParentID
	cp := *n
	return &cp, nil
}

func TestPrepareFoldersIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := New(store)
	ctx := context.Background()

	categories := []string{"Dev", "News", "Cooking"}

	first, err := engine.PrepareFolders(ctx, categories, "0")
	if err != nil {
		t.Fatalf("first PrepareFolders: %v", err)
	}
	second, err := engine.PrepareFolders(ctx, categories, "0")
	if err != nil {
		t.Fatalf("second PrepareFolders: %v", err)
	}

	if store.createCalls != len(categories) {
		t.Errorf("create called %d times, want %d", store.createCalls, len(categories))
	}
	for _, cat := range categories {
		if first[cat] == "" || first[cat] != second[cat] {
			t.Errorf("folder map differs for %q: %q vs %q", cat, first[cat], second[cat])
		}
	}
}

func TestPrepareFoldersReusesExistingFolder(t *testing.T) {
	store := newFakeStore()
	existing := store.add("0", "Dev", "")
	engine := New(store)

	folders, err := engine.PrepareFolders(context.Background(), []string{"Dev"}, "0")
	if err != nil {
		t.Fatalf("PrepareFolders: %v", err)
	}

	if store.createCalls != 0 {
		t.Errorf("create called %d times, want 0", store.createCalls)
	}
	if folders["Dev"] != existing.ID {
		t.Errorf("Dev mapped to %q, want existing folder %q", folders["Dev"], existing.ID)
	}
}

func TestPrepareFoldersResolvesDefaultRoot(t *testing.T) {
	store := newFakeStore()
	misc := store.add("0", DefaultRootFolderName, "")
	engine := New(store)

	if _, err := engine.PrepareFolders(context.Background(), []string{"Dev"}, ""); err != nil {
		t.Fatalf("PrepareFolders: %v", err)
	}

	devID := engine.Folders()["Dev"]
	if store.nodes[devID].ParentID != misc.ID {
		t.Errorf("Dev folder created under %q, want %q", store.nodes[devID].ParentID, misc.ID)
	}
}

func TestPrepareFoldersCreateFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("quota exceeded")
	engine := New(store)

	_, err := engine.PrepareFolders(context.Background(), []string{"Dev"}, "0")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var opErr *application.StoreOperationError
	if !errors.As(err, &opErr) {
		t.Errorf("expected StoreOperationError, got %T: %v", err, err)
	}
}

func TestSyncPartitionInvariant(t *testing.T) {
	store := newFakeStore()
	ok1 := store.add("0", "Go concurrency", "https://go.dev/blog")
	ok2 := store.add("0", "Pasta carbonara", "https://cooking.example/1")
	broken := store.add("0", "Flaky", "https://flaky.example")
	store.moveErr[broken.ID] = errors.New("store rejected move")

	engine := New(store)
	assignments := []domain.CategoryAssignment{
		{ItemID: ok1.ID, Title: ok1.Title, URL: ok1.URL, SuggestedCategory: "Dev"},
		{ItemID: "999", Title: "Gone", SuggestedCategory: "Dev"},
		{ItemID: broken.ID, Title: broken.Title, URL: broken.URL, SuggestedCategory: "News"},
		{ItemID: ok2.ID, Title: ok2.Title, URL: ok2.URL, SuggestedCategory: "Cooking"},
	}

	outcome, err := engine.Sync(context.Background(), assignments, Options{ParentFolderID: "0"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if outcome.Total() != len(assignments) {
		t.Errorf("success+failed+skipped = %d, want %d", outcome.Total(), len(assignments))
	}
	if len(outcome.Success) != 2 {
		t.Errorf("success = %d, want 2", len(outcome.Success))
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].ItemID != broken.ID {
		t.Errorf("failed = %+v, want exactly the flaky item", outcome.Failed)
	}
	if len(outcome.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(outcome.Skipped))
	}
	if outcome.Skipped[0].ItemID != "999" || outcome.Skipped[0].Reason != "item not found" {
		t.Errorf("skipped = %+v, want item 999 with reason %q", outcome.Skipped[0], "item not found")
	}
}

func TestSyncRecordsOriginalParent(t *testing.T) {
	store := newFakeStore()
	inbox := store.add("0", "Inbox", "")
	bm := store.add(inbox.ID, "Go guide", "https://go.dev")

	engine := New(store)
	outcome, err := engine.Sync(context.Background(), []domain.CategoryAssignment{
		{ItemID: bm.ID, Title: bm.Title, URL: bm.URL, SuggestedCategory: "Dev"},
	}, Options{ParentFolderID: "0"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rec := outcome.Success[0]
	if rec.OriginalParentID != inbox.ID {
		t.Errorf("original parent = %q, want %q", rec.OriginalParentID, inbox.ID)
	}
	if store.nodes[bm.ID].ParentID == inbox.ID {
		t.Error("bookmark was not moved")
	}
}

func TestSyncEmptyInput(t *testing.T) {
	engine := New(newFakeStore())
	if _, err := engine.Sync(context.Background(), nil, Options{}); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSyncProgressNotifications(t *testing.T) {
	store := newFakeStore()
	var assignments []domain.CategoryAssignment
	for i := 0; i < 20; i++ {
		bm := store.add("0", fmt.Sprintf("bm %d", i), fmt.Sprintf("https://example.com/%d", i))
		assignments = append(assignments, domain.CategoryAssignment{
			ItemID: bm.ID, Title: bm.Title, URL: bm.URL, SuggestedCategory: "Dev",
		})
	}

	var calls [][2]int
	engine := New(store, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	if _, err := engine.Sync(context.Background(), assignments, Options{ParentFolderID: "0"}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if len(calls) != 10 {
		t.Fatalf("progress called %d times, want 10", len(calls))
	}
	if calls[0] != [2]int{2, 20} || calls[9] != [2]int{20, 20} {
		t.Errorf("unexpected progress sequence: %v", calls)
	}
}

func TestUndoRestoresOriginalParents(t *testing.T) {
	store := newFakeStore()
	inbox := store.add("0", "Inbox", "")
	bm1 := store.add(inbox.ID, "One", "https://example.com/1")
	bm2 := store.add(inbox.ID, "Two", "https://example.com/2")

	engine := New(store)
	outcome, err := engine.Sync(context.Background(), []domain.CategoryAssignment{
		{ItemID: bm1.ID, Title: bm1.Title, URL: bm1.URL, SuggestedCategory: "Dev"},
		{ItemID: bm2.ID, Title: bm2.Title, URL: bm2.URL, SuggestedCategory: "News"},
	}, Options{ParentFolderID: "0"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcome.Success) != 2 {
		t.Fatalf("success = %d, want 2", len(outcome.Success))
	}

	restored, ok := engine.UndoLast(context.Background())
	if !ok {
		t.Fatal("UndoLast reported empty history")
	}
	if restored != 2 {
		t.Errorf("restored = %d, want 2", restored)
	}
	for _, id := range []string{bm1.ID, bm2.ID} {
		if got := store.nodes[id].ParentID; got != inbox.ID {
			t.Errorf("bookmark %s parent = %q, want %q", id, got, inbox.ID)
		}
	}

	// Single level: the history entry is consumed.
	if _, ok := engine.UndoLast(context.Background()); ok {
		t.Error("second undo should find empty history")
	}
}

func TestUndoContinuesPastRestoreFailures(t *testing.T) {
	store := newFakeStore()
	inbox := store.add("0", "Inbox", "")
	bm1 := store.add(inbox.ID, "One", "https://example.com/1")
	bm2 := store.add(inbox.ID, "Two", "https://example.com/2")

	engine := New(store)
	if _, err := engine.Sync(context.Background(), []domain.CategoryAssignment{
		{ItemID: bm1.ID, Title: bm1.Title, URL: bm1.URL, SuggestedCategory: "Dev"},
		{ItemID: bm2.ID, Title: bm2.Title, URL: bm2.URL, SuggestedCategory: "Dev"},
	}, Options{ParentFolderID: "0"}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	store.moveErr[bm1.ID] = errors.New("locked")
	restored, ok := engine.UndoLast(context.Background())
	if !ok {
		t.Fatal("UndoLast reported empty history")
	}
	if restored != 1 {
		t.Errorf("restored = %d, want 1", restored)
	}
	if got := store.nodes[bm2.ID].ParentID; got != inbox.ID {
		t.Errorf("bookmark %s parent = %q, want %q", bm2.ID, got, inbox.ID)
	}
}
