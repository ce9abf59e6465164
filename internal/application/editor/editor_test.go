package editor

import (
	"errors"
	"reflect"
	"testing"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
)

func TestRename(t *testing.T) {
	ed := New()

	rec, err := ed.Rename("Programing", "Programming", []string{"1", "2"})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if rec.Type != domain.EditRename || rec.AffectedCount != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if got := ed.Mapping().Resolve("Programing"); got != "Programming" {
		t.Errorf("Resolve(Programing) = %q, want Programming", got)
	}
}

func TestRenameCollision(t *testing.T) {
	ed := New()
	if _, err := ed.Rename("Jobs", "Work", nil); err != nil {
		t.Fatalf("setup rename: %v", err)
	}
	before := ed.Mapping()

	_, err := ed.Rename("Other", "Work", nil)
	if !errors.Is(err, application.ErrDuplicateCategory) {
		t.Fatalf("expected DuplicateCategoryError, got %v", err)
	}
	if !reflect.DeepEqual(ed.Mapping(), before) {
		t.Error("mapping mutated by failed rename")
	}
}

func TestRenameValidation(t *testing.T) {
	ed := New()
	if _, err := ed.Rename("", "New", nil); err == nil {
		t.Error("expected error for empty old name")
	}
	if _, err := ed.Rename("Old", "", nil); err == nil {
		t.Error("expected error for empty new name")
	}
	if _, err := ed.Rename("Same", "Same", nil); err == nil {
		t.Error("expected error for identical names")
	}
}

func TestMerge(t *testing.T) {
	ed := New()

	rec, err := ed.Merge([]string{"Programming", "Coding"}, "Dev", []string{"1", "2", "3"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rec.Type != domain.EditMerge || rec.AffectedCount != 3 {
		t.Errorf("unexpected record: %+v", rec)
	}

	m := ed.Mapping()
	for _, src := range []string{"Programming", "Coding"} {
		if got := m.Resolve(src); got != "Dev" {
			t.Errorf("Resolve(%s) = %q, want Dev", src, got)
		}
	}
	if got := len(ed.Aliases("Dev")); got != 2 {
		t.Errorf("Dev has %d aliases, want 2", got)
	}
}

func TestMergeRejectsSelfTarget(t *testing.T) {
	ed := New()

	_, err := ed.Merge([]string{"A", "B"}, "A", nil)
	if !errors.Is(err, application.ErrInvalidMerge) {
		t.Fatalf("expected InvalidMergeError, got %v", err)
	}
	if len(ed.Mapping()) != 0 {
		t.Error("mapping mutated by failed merge")
	}
}

func TestMergeValidation(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		target  string
	}{
		{name: "no sources", sources: nil, target: "Dev"},
		{name: "empty target", sources: []string{"A"}, target: ""},
		{name: "empty source name", sources: []string{"A", ""}, target: "Dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := New()
			if _, err := ed.Merge(tt.sources, tt.target, nil); !errors.Is(err, application.ErrInvalidMerge) {
				t.Errorf("expected InvalidMergeError, got %v", err)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	ed := New()
	// Make the source an alias first so the split has something to clear.
	if _, err := ed.Merge([]string{"Media"}, "Everything", nil); err != nil {
		t.Fatalf("setup merge: %v", err)
	}

	rec, err := ed.Split("Media", []string{"Movies", "Music"}, map[string]string{"10": "Movies", "11": "Music"})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if rec.AffectedCount != 2 {
		t.Errorf("affected = %d, want 2", rec.AffectedCount)
	}
	if !reflect.DeepEqual(rec.Assignments, map[string]string{"10": "Movies", "11": "Music"}) {
		t.Errorf("assignments not carried: %+v", rec.Assignments)
	}

	m := ed.Mapping()
	if got := m.Resolve("Media"); got != "Media" {
		t.Errorf("source still resolves to %q", got)
	}
	for _, c := range []string{"Movies", "Music"} {
		if m[c] != c {
			t.Errorf("%s not registered as canonical", c)
		}
	}
}

func TestSplitValidation(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		newCats []string
	}{
		{name: "one new category", source: "Media", newCats: []string{"Movies"}},
		{name: "empty name among new", source: "Media", newCats: []string{"Movies", ""}},
		{name: "empty source", source: "", newCats: []string{"Movies", "Music"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := New()
			if _, err := ed.Split(tt.source, tt.newCats, nil); !errors.Is(err, application.ErrInvalidSplit) {
				t.Errorf("expected InvalidSplitError, got %v", err)
			}
		})
	}
}

func TestBatchEditContinuesPastFailures(t *testing.T) {
	ed := New()

	result := ed.BatchEdit([]BatchOperation{
		{Type: domain.EditRename, OldName: "Old", NewName: "New"},
		{Type: domain.EditMerge, SourceCategories: []string{"X"}, TargetCategory: "X"}, // self-target
		{Type: domain.EditMerge, SourceCategories: []string{"A", "B"}, TargetCategory: "C"},
		{Type: "explode"},
	})

	if result.Succeeded != 2 || result.Failed != 2 {
		t.Fatalf("succeeded=%d failed=%d, want 2/2", result.Succeeded, result.Failed)
	}
	if len(result.Results) != 4 {
		t.Fatalf("results = %d, want 4", len(result.Results))
	}
	if result.Results[1].Status != domain.EditStatusFailed || result.Results[1].Error == "" {
		t.Errorf("failed op not recorded: %+v", result.Results[1])
	}
	if got := ed.Mapping().Resolve("A"); got != "C" {
		t.Errorf("merge after failure not applied: Resolve(A) = %q", got)
	}
}

func TestApplyEdits(t *testing.T) {
	ed := New()
	if _, err := ed.Merge([]string{"Programming", "Coding"}, "Dev", nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	in := []domain.CategoryAssignment{
		{ItemID: "1", SuggestedCategory: "Programming"},
		{ItemID: "2", SuggestedCategory: "News"},
	}
	out := ed.ApplyEdits(in)

	if !out[0].Edited || out[0].SuggestedCategory != "Dev" || out[0].OriginalCategory != "Programming" {
		t.Errorf("first assignment not resolved: %+v", out[0])
	}
	if out[1].Edited || out[1].SuggestedCategory != "News" {
		t.Errorf("untouched assignment changed: %+v", out[1])
	}
	if in[0].SuggestedCategory != "Programming" {
		t.Error("input mutated")
	}
}

func TestUndoRename(t *testing.T) {
	ed := New()
	if _, err := ed.Rename("Old", "New", nil); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	res := ed.UndoLast()
	if res == nil || !res.Reversible {
		t.Fatalf("undo = %+v, want reversible", res)
	}

	m := ed.Mapping()
	if got := m.Resolve("Old"); got != "Old" {
		t.Errorf("Resolve(Old) = %q after undo", got)
	}
	if _, ok := m["New"]; ok {
		t.Error("New still mapped after undo")
	}
}

func TestUndoMerge(t *testing.T) {
	ed := New()
	if _, err := ed.Merge([]string{"A", "B"}, "C", nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	res := ed.UndoLast()
	if res == nil || !res.Reversible {
		t.Fatalf("undo = %+v, want reversible", res)
	}

	m := ed.Mapping()
	for _, src := range []string{"A", "B"} {
		if got := m.Resolve(src); got != src {
			t.Errorf("Resolve(%s) = %q after undo", src, got)
		}
	}
	if got := len(ed.Aliases("C")); got != 0 {
		t.Errorf("C still has %d aliases after undo", got)
	}
}

func TestUndoSplitNotReversible(t *testing.T) {
	ed := New()
	if _, err := ed.Split("Media", []string{"Movies", "Music"}, nil); err != nil {
		t.Fatalf("Split: %v", err)
	}

	res := ed.UndoLast()
	if res == nil {
		t.Fatal("undo returned nil with non-empty history")
	}
	if res.Reversible {
		t.Error("split reported as reversible")
	}

	// The record is consumed either way.
	if ed.UndoLast() != nil {
		t.Error("history not consumed by irreversible undo")
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	if res := New().UndoLast(); res != nil {
		t.Errorf("undo on empty history = %+v, want nil", res)
	}
}

func TestUndoIsSingleLevel(t *testing.T) {
	ed := New()
	if _, err := ed.Rename("A", "B", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ed.Merge([]string{"X"}, "Y", nil); err != nil {
		t.Fatal(err)
	}

	// First undo reverts the merge, second the rename.
	if res := ed.UndoLast(); res.Record.Type != domain.EditMerge {
		t.Errorf("first undo reverted %s, want merge", res.Record.Type)
	}
	if res := ed.UndoLast(); res.Record.Type != domain.EditRename {
		t.Errorf("second undo reverted %s, want rename", res.Record.Type)
	}
}
