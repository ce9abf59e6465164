package learner

import (
	"fmt"
	"sort"
	"time"

	"shelfmark/internal/domain"
)

// Improvement-suggestion types and severities.
const (
	SuggestLowAccuracy  = "low_accuracy"
	SuggestConfusedPair = "confused_pair"

	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	lowAccuracyMinRecords = 5
	lowAccuracyRate       = 0.6
	lowAccuracySevereRate = 0.4
	confusedPairMinCount  = 3
	confusedPairHighCount = 5
	topPatternCount       = 10
)

// FeedbackStats summarizes the accumulated feedback.
type FeedbackStats struct {
	Total        int       `json:"total"`
	Accepts      int       `json:"accepts"`
	Rejects      int       `json:"rejects"`
	AcceptRate   float64   `json:"accept_rate"`
	LastFeedback time.Time `json:"last_feedback,omitzero"`
}

// FeedbackStats returns totals and the overall acceptance rate.
func (l *Learner) FeedbackStats() FeedbackStats {
	stats := FeedbackStats{Total: len(l.history)}
	for _, rec := range l.history {
		if rec.Action == domain.ActionAccept {
			stats.Accepts++
		} else {
			stats.Rejects++
		}
	}
	if stats.Total > 0 {
		stats.AcceptRate = float64(stats.Accepts) / float64(stats.Total)
		stats.LastFeedback = l.history[len(l.history)-1].Timestamp
	}
	return stats
}

// CategoryAccuracyRate returns the acceptance ratio among records whose
// original suggestion was category. The second return is false when no such
// records exist.
func (l *Learner) CategoryAccuracyRate(category string) (float64, bool) {
	total, accepts := 0, 0
	for _, rec := range l.history {
		if rec.SuggestedCategory != category {
			continue
		}
		total++
		if rec.Action == domain.ActionAccept {
			accepts++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(accepts) / float64(total), true
}

// CategoryAccuracy pairs a category with its acceptance rate.
type CategoryAccuracy struct {
	Category string  `json:"category"`
	Rate     float64 `json:"rate"`
	Records  int     `json:"records"`
}

// ImprovementSuggestion flags a weakness in the learned suggestions.
type ImprovementSuggestion struct {
	Type              string  `json:"type"`
	Category          string  `json:"category,omitempty"`
	CorrectedCategory string  `json:"corrected_category,omitempty"`
	Records           int     `json:"records"`
	AcceptRate        float64 `json:"accept_rate,omitempty"`
	Severity          string  `json:"severity"`
	Message           string  `json:"message"`
}

// ImprovementSuggestions reports categories whose suggestions the user keeps
// rejecting, and recurring suggested→corrected confusions.
func (l *Learner) ImprovementSuggestions() []ImprovementSuggestion {
	type tally struct{ total, accepts int }
	perCategory := make(map[string]*tally)
	pairCounts := make(map[[2]string]int)

	for _, rec := range l.history {
		t := perCategory[rec.SuggestedCategory]
		if t == nil {
			t = &tally{}
			perCategory[rec.SuggestedCategory] = t
		}
		t.total++
		if rec.Action == domain.ActionAccept {
			t.accepts++
		} else if rec.UserCategory != "" {
			pairCounts[[2]string{rec.SuggestedCategory, rec.UserCategory}]++
		}
	}

	var suggestions []ImprovementSuggestion

	categories := make([]string, 0, len(perCategory))
	for c := range perCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		t := perCategory[c]
		if t.total < lowAccuracyMinRecords {
			continue
		}
		rate := float64(t.accepts) / float64(t.total)
		if rate >= lowAccuracyRate {
			continue
		}
		severity := SeverityMedium
		if rate < lowAccuracySevereRate {
			severity = SeverityHigh
		}
		suggestions = append(suggestions, ImprovementSuggestion{
			Type:       SuggestLowAccuracy,
			Category:   c,
			Records:    t.total,
			AcceptRate: rate,
			Severity:   severity,
			Message:    fmt.Sprintf("suggestions for %q are accepted only %.0f%% of the time", c, rate*100),
		})
	}

	pairs := make([][2]string, 0, len(pairCounts))
	for p := range pairCounts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, p := range pairs {
		count := pairCounts[p]
		if count < confusedPairMinCount {
			continue
		}
		severity := SeverityMedium
		if count >= confusedPairHighCount {
			severity = SeverityHigh
		}
		suggestions = append(suggestions, ImprovementSuggestion{
			Type:              SuggestConfusedPair,
			Category:          p[0],
			CorrectedCategory: p[1],
			Records:           count,
			Severity:          severity,
			Message:           fmt.Sprintf("the system confuses %q for %q (%d corrections)", p[1], p[0], count),
		})
	}

	return suggestions
}

// LearningProgress is the coarse label and next target for the accumulated
// feedback count.
type LearningProgress struct {
	TotalFeedback int                  `json:"total_feedback"`
	Level         domain.LearningLevel `json:"level"`
	NextMilestone int                  `json:"next_milestone,omitempty"`
}

// LearningProgress reports the current learning level and next milestone.
func (l *Learner) LearningProgress() LearningProgress {
	total := len(l.history)
	return LearningProgress{
		TotalFeedback: total,
		Level:         domain.LevelForCount(total),
		NextMilestone: domain.NextMilestone(total),
	}
}

// PatternRank is one entry in a top-domains or top-keywords ranking: the
// key's best category and that category's score.
type PatternRank struct {
	Key      string `json:"key"`
	Category string `json:"category"`
	Score    int    `json:"score"`
}

func topPatterns(stats domain.PatternStats, n int) []PatternRank {
	ranks := make([]PatternRank, 0, len(stats))
	for key, counters := range stats {
		category, score := bestCounterScore(counters)
		ranks = append(ranks, PatternRank{Key: key, Category: category, Score: score})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].Key < ranks[j].Key
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// LearningReport aggregates everything a UI needs to explain the learner.
type LearningReport struct {
	Stats            FeedbackStats           `json:"stats"`
	Progress         LearningProgress        `json:"progress"`
	CategoryAccuracy []CategoryAccuracy      `json:"category_accuracy"`
	Suggestions      []ImprovementSuggestion `json:"suggestions"`
	TopDomains       []PatternRank           `json:"top_domains"`
	TopKeywords      []PatternRank           `json:"top_keywords"`
}

// LearningReport builds the full report: stats, per-category accuracy sorted
// best-first, improvement suggestions, and the ten strongest domains and
// keywords.
func (l *Learner) LearningReport() LearningReport {
	seen := make(map[string]bool)
	var accuracy []CategoryAccuracy
	for _, rec := range l.history {
		if seen[rec.SuggestedCategory] {
			continue
		}
		seen[rec.SuggestedCategory] = true
		rate, _ := l.CategoryAccuracyRate(rec.SuggestedCategory)
		records := 0
		for _, r := range l.history {
			if r.SuggestedCategory == rec.SuggestedCategory {
				records++
			}
		}
		accuracy = append(accuracy, CategoryAccuracy{Category: rec.SuggestedCategory, Rate: rate, Records: records})
	}
	sort.Slice(accuracy, func(i, j int) bool {
		if accuracy[i].Rate != accuracy[j].Rate {
			return accuracy[i].Rate > accuracy[j].Rate
		}
		return accuracy[i].Category < accuracy[j].Category
	})

	return LearningReport{
		Stats:            l.FeedbackStats(),
		Progress:         l.LearningProgress(),
		CategoryAccuracy: accuracy,
		Suggestions:      l.ImprovementSuggestions(),
		TopDomains:       topPatterns(l.domainStats, topPatternCount),
		TopKeywords:      topPatterns(l.keywordStats, topPatternCount),
	}
}
