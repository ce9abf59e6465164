package editor

import (
	"fmt"

	"shelfmark/internal/domain"
)

// Suggestion types.
const (
	SuggestSimilarNames      = "similar_names"
	SuggestSingletonCategory = "singleton_category"
	SuggestTooManyCategories = "too_many_categories"
)

// Suggestion severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	similarityThreshold = 0.70
	bloatThreshold      = 15
)

// Suggestion is an advisory, non-blocking finding about the current taxonomy.
type Suggestion struct {
	Type       string   `json:"type"`
	Severity   string   `json:"severity"`
	Categories []string `json:"categories"`
	Message    string   `json:"message"`
}

// EditSuggestions analyzes the distinct suggested-category set of a batch:
// near-duplicate names (normalized Levenshtein similarity above 0.70),
// categories holding a single bookmark, and taxonomy bloat beyond 15
// distinct categories.
func (ed *Editor) EditSuggestions(assignments []domain.CategoryAssignment) []Suggestion {
	categories := domain.DistinctCategories(assignments)
	counts := make(map[string]int, len(categories))
	for _, a := range assignments {
		counts[a.SuggestedCategory]++
	}

	var suggestions []Suggestion

	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			a, b := categories[i], categories[j]
			if sim := domain.NameSimilarity(a, b); sim > similarityThreshold {
				suggestions = append(suggestions, Suggestion{
					Type:       SuggestSimilarNames,
					Severity:   SeverityMedium,
					Categories: []string{a, b},
					Message:    fmt.Sprintf("%q and %q are %.0f%% similar; consider merging them", a, b, sim*100),
				})
			}
		}
	}

	for _, cat := range categories {
		if counts[cat] == 1 {
			suggestions = append(suggestions, Suggestion{
				Type:       SuggestSingletonCategory,
				Severity:   SeverityLow,
				Categories: []string{cat},
				Message:    fmt.Sprintf("%q holds a single bookmark; consider merging it into a broader category", cat),
			})
		}
	}

	if len(categories) > bloatThreshold {
		suggestions = append(suggestions, Suggestion{
			Type:       SuggestTooManyCategories,
			Severity:   SeverityLow,
			Categories: categories,
			Message:    fmt.Sprintf("%d distinct categories; consider consolidating the taxonomy", len(categories)),
		})
	}

	return suggestions
}
