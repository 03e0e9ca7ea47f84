package model

import "time"

// Scheduling defaults shared by the engine.
const (
	DefaultEaseFactor   = 2.5
	MinEaseFactor       = 1.3
	DefaultHistoryLimit = 20
)

// WordKnowledgeRecord is the canonical per-(user, lemma, language) memory
// record. It is exclusively owned by the engine; modules submit ReviewEvents
// and read derived views, they never mutate the record directly.
type WordKnowledgeRecord struct {
	UserID   string
	Word     string // surface form alias, first form the learner met
	Lemma    string // identity key together with UserID and Language
	Language string

	Status       Status
	EaseFactor   float64
	IntervalDays int
	Repetitions  int // consecutive successful reviews
	NextReviewAt time.Time
	LastReviewed *time.Time // nil when never reviewed

	Tags          []string      // grammar-concept identifiers
	ModuleHistory []ReviewEvent // bounded trailing history, most recent last

	Version   int64 // optimistic-lock version, managed by the store
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWordKnowledgeRecord creates a record with scheduling defaults: a new
// word is due immediately.
func NewWordKnowledgeRecord(userID, word, lemma, language string, now time.Time) WordKnowledgeRecord {
	return WordKnowledgeRecord{
		UserID:       userID,
		Word:         word,
		Lemma:        lemma,
		Language:     language,
		Status:       StatusNew,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy so callers can hand records across goroutines
// without sharing the slices or the LastReviewed pointer.
func (r WordKnowledgeRecord) Clone() WordKnowledgeRecord {
	out := r
	if r.LastReviewed != nil {
		t := *r.LastReviewed
		out.LastReviewed = &t
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.ModuleHistory != nil {
		out.ModuleHistory = append([]ReviewEvent(nil), r.ModuleHistory...)
	}
	return out
}

// HasTag reports whether the record carries the given grammar-concept tag.
func (r WordKnowledgeRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTags merges tags into the record, skipping duplicates.
func (r *WordKnowledgeRecord) AddTags(tags []string) {
	for _, t := range tags {
		if t != "" && !r.HasTag(t) {
			r.Tags = append(r.Tags, t)
		}
	}
}

// AppendHistory appends an event and drops the oldest entries beyond limit.
func (r *WordKnowledgeRecord) AppendHistory(e ReviewEvent, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	r.ModuleHistory = append(r.ModuleHistory, e)
	if n := len(r.ModuleHistory); n > limit {
		r.ModuleHistory = append([]ReviewEvent(nil), r.ModuleHistory[n-limit:]...)
	}
}

// DueAt reports whether the record is due for review at the given time.
func (r WordKnowledgeRecord) DueAt(now time.Time) bool {
	return !r.NextReviewAt.After(now)
}

// CheckInvariants verifies the record-level invariants. The store rejects
// writes that violate them, which keeps a buggy caller from corrupting state.
func (r WordKnowledgeRecord) CheckInvariants() error {
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.EaseFactor < MinEaseFactor {
		return ErrEaseBelowFloor
	}
	if r.IntervalDays < 0 || r.Repetitions < 0 {
		return ErrNegativeCounter
	}
	if r.LastReviewed != nil && r.NextReviewAt.Before(*r.LastReviewed) {
		return ErrDueBeforeReview
	}
	return nil
}
