package learner

import (
	"math"
	"sort"

	"shelfmark/internal/domain"
)

// Provenance labels for an optimized suggestion.
const (
	LearnedFromDomain  = "domain_patterns"
	LearnedFromKeyword = "keyword_patterns"
	LearnedFromCurrent = "current"
)

const (
	domainScoreThreshold = 2
	keywordVoteThreshold = 5
)

// Optimized is a re-scored category suggestion with its provenance.
type Optimized struct {
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	LearnedFrom string  `json:"learned_from"`
}

// OptimizeCategory re-scores a suggestion before it is shown or applied.
// The domain pass adopts the item's best-scoring domain category when its
// score clears 2; the keyword pass accumulates scores across all title
// keywords and overrides the domain pass when the winning vote clears 5.
// When neither fires, the current suggestion is returned at confidence 0.5.
func (l *Learner) OptimizeCategory(item Item, currentSuggestion string) Optimized {
	result := Optimized{
		Category:    currentSuggestion,
		Confidence:  0.5,
		LearnedFrom: LearnedFromCurrent,
	}

	if dom, err := domain.RegistrableDomain(item.URL); err == nil {
		if counters := l.domainStats[dom]; len(counters) > 0 {
			category, score := bestCounterScore(counters)
			if score > domainScoreThreshold {
				result = Optimized{
					Category:    category,
					Confidence:  math.Min(0.95, 0.6+float64(score)*0.05),
					LearnedFrom: LearnedFromDomain,
				}
				l.log.Debug("domain pattern matched", "domain", dom, "category", category, "score", score)
			}
		}
	}

	votes := make(map[string]int)
	for _, kw := range domain.TitleKeywords(item.Title) {
		for category, c := range l.keywordStats[kw] {
			votes[category] += c.Score()
		}
	}
	if category, vote := bestVote(votes); vote > keywordVoteThreshold {
		result = Optimized{
			Category:    category,
			Confidence:  math.Min(0.95, 0.5+float64(vote)*0.02),
			LearnedFrom: LearnedFromKeyword,
		}
		l.log.Debug("keyword pattern matched", "category", category, "vote", vote)
	}

	return result
}

// bestCounterScore returns the highest-scoring category of a counter map.
// Iteration over sorted names keeps ties deterministic.
func bestCounterScore(counters map[string]*domain.CategoryCounter) (string, int) {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestScore := "", math.MinInt
	for _, name := range names {
		if s := counters[name].Score(); s > bestScore {
			best, bestScore = name, s
		}
	}
	return best, bestScore
}

func bestVote(votes map[string]int) (string, int) {
	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestVote := "", math.MinInt
	for _, name := range names {
		if votes[name] > bestVote {
			best, bestVote = name, votes[name]
		}
	}
	return best, bestVote
}
