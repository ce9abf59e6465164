// Package learner records accept/reject feedback on category suggestions,
// derives per-domain and per-keyword statistics from it, and re-scores
// future suggestions. The learned model is persisted to the state store
// after every mutation and reloaded at construction; losing it degrades
// suggestion quality but is never a correctness failure.
package learner

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shelfmark/internal/application"
	"shelfmark/internal/domain"
	"shelfmark/internal/ports"
)

// State-store keys.
const (
	keyFeedbackHistory  = "learning_feedback_history"
	keyCategoryPatterns = "category_patterns"
	keyDomainStats      = "domain_statistics"
	keyKeywordStats     = "keyword_statistics"
)

var storageKeys = []string{keyFeedbackHistory, keyCategoryPatterns, keyDomainStats, keyKeywordStats}

// Item identifies the bookmark a piece of feedback is about.
type Item struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Option configures a Learner.
type Option func(*Learner)

// WithLogger sets the logging sink.
func WithLogger(log *slog.Logger) Option {
	return func(l *Learner) { l.log = log }
}

// Learner accumulates feedback and the statistics derived from it. In-memory
// state is authoritative for the session; the state store is a best-effort
// mirror. Not safe for concurrent use. A nil store disables persistence.
type Learner struct {
	store ports.StateStore
	log   *slog.Logger

	history          []domain.FeedbackRecord
	categoryPatterns map[string]*domain.CategoryCounter
	domainStats      domain.PatternStats
	keywordStats     domain.PatternStats
}

// New creates a Learner and loads any previously persisted model. Absence of
// prior data is normal; load failures are logged and ignored.
func New(ctx context.Context, store ports.StateStore, opts ...Option) *Learner {
	l := &Learner{
		store:            store,
		log:              slog.Default(),
		categoryPatterns: make(map[string]*domain.CategoryCounter),
		domainStats:      make(domain.PatternStats),
		keywordStats:     make(domain.PatternStats),
	}
	for _, o := range opts {
		o(l)
	}
	l.loadFromStorage(ctx)
	return l
}

// RecordAcceptance registers that the user accepted the suggested category
// for the item. Never fails: persistence errors are logged and swallowed.
func (l *Learner) RecordAcceptance(ctx context.Context, item Item, suggestedCategory string) {
	rec := domain.FeedbackRecord{
		ID:                uuid.NewString(),
		ItemID:            item.ID,
		Title:             item.Title,
		URL:               item.URL,
		SuggestedCategory: suggestedCategory,
		Action:            domain.ActionAccept,
		Timestamp:         time.Now(),
	}
	l.history = append(l.history, rec)
	l.updatePatterns(rec)
	l.persist(ctx)
	l.log.Info("recorded acceptance", "title", item.Title, "category", suggestedCategory)
}

// RecordRejection registers that the user rejected the suggested category.
// userCategory, when non-empty, is the correction the user chose instead and
// is credited to that category's counters. Never fails.
func (l *Learner) RecordRejection(ctx context.Context, item Item, suggestedCategory, userCategory string) {
	rec := domain.FeedbackRecord{
		ID:                uuid.NewString(),
		ItemID:            item.ID,
		Title:             item.Title,
		URL:               item.URL,
		SuggestedCategory: suggestedCategory,
		Action:            domain.ActionReject,
		UserCategory:      userCategory,
		Timestamp:         time.Now(),
	}
	l.history = append(l.history, rec)
	l.updatePatterns(rec)
	l.persist(ctx)
	l.log.Info("recorded rejection",
		"title", item.Title,
		"category", suggestedCategory,
		"correction", userCategory)
}

func (l *Learner) categoryCounter(category string) *domain.CategoryCounter {
	if l.categoryPatterns[category] == nil {
		l.categoryPatterns[category] = &domain.CategoryCounter{}
	}
	return l.categoryPatterns[category]
}

// updatePatterns applies one feedback record to the domain, keyword, and
// per-category counters. A URL the domain extractor cannot handle only skips
// the domain step.
func (l *Learner) updatePatterns(rec domain.FeedbackRecord) {
	keys := domain.TitleKeywords(rec.Title)

	apply := func(stats domain.PatternStats, key string) {
		switch rec.Action {
		case domain.ActionAccept:
			stats.Counter(key, rec.SuggestedCategory).Accept++
		case domain.ActionReject:
			stats.Counter(key, rec.SuggestedCategory).Reject++
			if rec.UserCategory != "" {
				stats.Counter(key, rec.UserCategory).Correct++
			}
		}
	}

	if dom, err := domain.RegistrableDomain(rec.URL); err == nil {
		apply(l.domainStats, dom)
	} else {
		l.log.Debug("skipping domain statistics", "url", rec.URL, "error", err)
	}
	for _, kw := range keys {
		apply(l.keywordStats, kw)
	}

	switch rec.Action {
	case domain.ActionAccept:
		l.categoryCounter(rec.SuggestedCategory).Accept++
	case domain.ActionReject:
		l.categoryCounter(rec.SuggestedCategory).Reject++
		if rec.UserCategory != "" {
			l.categoryCounter(rec.UserCategory).Correct++
		}
	}
}

// History returns a copy of the recorded feedback, oldest first.
func (l *Learner) History() []domain.FeedbackRecord {
	out := make([]domain.FeedbackRecord, len(l.history))
	copy(out, l.history)
	return out
}

// Reset discards all learned state, in memory and in the store.
func (l *Learner) Reset(ctx context.Context) error {
	l.history = nil
	l.categoryPatterns = make(map[string]*domain.CategoryCounter)
	l.domainStats = make(domain.PatternStats)
	l.keywordStats = make(domain.PatternStats)

	if l.store == nil {
		return nil
	}
	if err := l.store.Remove(ctx, storageKeys); err != nil {
		return &application.PersistenceError{Op: "reset", Err: err}
	}
	return nil
}

func (l *Learner) loadFromStorage(ctx context.Context) {
	if l.store == nil {
		return
	}
	values, err := l.store.Get(ctx, storageKeys)
	if err != nil {
		l.log.Warn("loading learned state failed", "error", &application.PersistenceError{Op: "load", Err: err})
		return
	}

	load := func(key string, dst any) {
		raw, ok := values[key]
		if !ok {
			return
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			l.log.Warn("discarding unreadable learned state", "key", key, "error", err)
		}
	}
	load(keyFeedbackHistory, &l.history)
	load(keyCategoryPatterns, &l.categoryPatterns)
	load(keyDomainStats, &l.domainStats)
	load(keyKeywordStats, &l.keywordStats)
}

// persist mirrors the in-memory model to the state store. Fire-and-forget:
// failures are logged, never surfaced, so feedback recording cannot block.
func (l *Learner) persist(ctx context.Context) {
	if l.store == nil {
		return
	}

	entries := make(map[string]string, len(storageKeys))
	save := func(key string, src any) {
		raw, err := json.Marshal(src)
		if err != nil {
			l.log.Warn("encoding learned state failed", "key", key, "error", err)
			return
		}
		entries[key] = string(raw)
	}
	save(keyFeedbackHistory, l.history)
	save(keyCategoryPatterns, l.categoryPatterns)
	save(keyDomainStats, l.domainStats)
	save(keyKeywordStats, l.keywordStats)

	if err := l.store.Set(ctx, entries); err != nil {
		l.log.Warn("persisting learned state failed", "error", &application.PersistenceError{Op: "save", Err: err})
	}
}
