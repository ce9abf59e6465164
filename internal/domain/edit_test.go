package domain

import "testing"

func TestCategoryMappingResolve(t *testing.T) {
	m := CategoryMapping{
		"Old":  "New",
		"New":  "New",
		"A":    "B",
		"B":    "C",
		"Bad1": "Bad2",
		"Bad2": "Bad1", // corrupted cycle; only reachable by hand-editing state
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single hop", in: "Old", want: "New"},
		{name: "identity entry is terminal", in: "New", want: "New"},
		{name: "chained hops", in: "A", want: "C"},
		{name: "unmapped name unchanged", in: "Other", want: "Other"},
		{name: "cycle terminates", in: "Bad1", want: "Bad1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategoryAliasSet(t *testing.T) {
	s := make(CategoryAliasSet)
	s.Add("Dev", "Programming")
	s.Add("Dev", "Coding")

	if !s.Has("Dev", "Programming") {
		t.Error("expected Programming to be an alias of Dev")
	}
	if got := len(s.Aliases("Dev")); got != 2 {
		t.Errorf("Aliases(Dev) has %d entries, want 2", got)
	}

	s.Remove("Dev", "Programming")
	if s.Has("Dev", "Programming") {
		t.Error("Programming still an alias after Remove")
	}

	s.Remove("Dev", "Coding")
	if _, ok := s["Dev"]; ok {
		t.Error("empty alias set should be deleted")
	}
}

func TestDistinctCategories(t *testing.T) {
	assignments := []CategoryAssignment{
		{ItemID: "1", SuggestedCategory: "Dev"},
		{ItemID: "2", SuggestedCategory: "News"},
		{ItemID: "3", SuggestedCategory: "Dev"},
		{ItemID: "4", SuggestedCategory: ""},
	}

	got := DistinctCategories(assignments)
	want := []string{"Dev", "News"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
