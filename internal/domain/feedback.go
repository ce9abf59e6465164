package domain

import "time"

// UserAction is the user's decision on a category suggestion.
type UserAction string

const (
	ActionAccept UserAction = "accept"
	ActionReject UserAction = "reject"
)

// FeedbackRecord is one accept/reject decision. UserCategory is set only on
// a rejection that carries an explicit correction.
type FeedbackRecord struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id,omitempty"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	SuggestedCategory string     `json:"suggested_category"`
	Action            UserAction `json:"action"`
	UserCategory      string     `json:"user_category,omitempty"`
	Timestamp         time.Time  `json:"timestamp"`
}

// CategoryCounter holds the cumulative feedback counters for one category
// under one domain or keyword. Counters only ever grow.
type CategoryCounter struct {
	Accept  int `json:"accept"`
	Reject  int `json:"reject"`
	Correct int `json:"correct"`
}

// Score is the shared re-scoring formula: corrections weigh most, accepts
// next, rejections count against.
func (c CategoryCounter) Score() int {
	return c.Correct*3 + c.Accept*2 - c.Reject
}

// PatternStats maps a domain or keyword to per-category counters.
type PatternStats map[string]map[string]*CategoryCounter

// Counter returns the counter for key/category, creating it on first use.
func (s PatternStats) Counter(key, category string) *CategoryCounter {
	if s[key] == nil {
		s[key] = make(map[string]*CategoryCounter)
	}
	if s[key][category] == nil {
		s[key][category] = &CategoryCounter{}
	}
	return s[key][category]
}

// LearningLevel is a coarse label for how much feedback has accumulated.
type LearningLevel string

const (
	LevelBeginner     LearningLevel = "beginner"
	LevelNovice       LearningLevel = "novice"
	LevelIntermediate LearningLevel = "intermediate"
	LevelAdvanced     LearningLevel = "advanced"
	LevelExpert       LearningLevel = "expert"
)

// LevelForCount maps a total feedback count to its learning level.
func LevelForCount(total int) LearningLevel {
	switch {
	case total < 10:
		return LevelBeginner
	case total < 50:
		return LevelNovice
	case total < 100:
		return LevelIntermediate
	case total < 200:
		return LevelAdvanced
	default:
		return LevelExpert
	}
}

// Milestones are the feedback-count targets surfaced in progress reports.
var Milestones = []int{10, 50, 100, 200, 500}

// NextMilestone returns the first milestone above total, or 0 when all
// milestones have been passed.
func NextMilestone(total int) int {
	for _, m := range Milestones {
		if total < m {
			return m
		}
	}
	return 0
}
