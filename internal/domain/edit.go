package domain

import "time"

// EditType identifies the kind of taxonomy edit.
type EditType string

const (
	EditRename EditType = "rename"
	EditMerge  EditType = "merge"
	EditSplit  EditType = "split"
)

// Edit statuses as recorded in an EditRecord.
const (
	EditStatusApplied = "applied"
	EditStatusFailed  = "failed"
	EditStatusUndone  = "undone"
)

// EditRecord is one entry in the edit history. Only the fields matching Type
// are populated.
type EditRecord struct {
	EditID        string    `json:"edit_id"`
	Type          EditType  `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AffectedCount int       `json:"affected_count"`
	Status        string    `json:"status"`

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
}

// CategoryMapping maps every category name a user has touched to the name it
// currently resolves to. An identity entry (name → name) marks a canonical
// name; a non-identity entry is an alias hop. The editor only ever points a
// name at a different, currently-canonical name, so chains terminate.
type CategoryMapping map[string]string

// Resolve follows the mapping until it reaches a canonical name. The visited
// guard makes resolution total even on a corrupted map.
func (m CategoryMapping) Resolve(name string) string {
	visited := make(map[string]bool)
	for {
		target, ok := m[name]
		if !ok || target == name || visited[name] {
			return name
		}
		visited[name] = true
		name = target
	}
}

// Clone returns an independent copy of the mapping.
func (m CategoryMapping) Clone() CategoryMapping {
	out := make(CategoryMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CategoryAliasSet is the inverse view of merges: canonical name → the names
// merged into it.
type CategoryAliasSet map[string]map[string]bool

// Add records alias as merged into canonical.
func (s CategoryAliasSet) Add(canonical, alias string) {
	if s[canonical] == nil {
		s[canonical] = make(map[string]bool)
	}
	s[canonical][alias] = true
}

// Remove drops alias from canonical's set, deleting the set when it empties.
func (s CategoryAliasSet) Remove(canonical, alias string) {
	if set, ok := s[canonical]; ok {
		delete(set, alias)
		if len(set) == 0 {
			delete(s, canonical)
		}
	}
}

// Has reports whether alias is already merged into canonical.
func (s CategoryAliasSet) Has(canonical, alias string) bool {
	return s[canonical][alias]
}

// Aliases returns the aliases of canonical.
func (s CategoryAliasSet) Aliases(canonical string) []string {
	var out []string
	for a := range s[canonical] {
		out = append(out, a)
	}
	return out
}
