// Package app provides the knowledge engine that ties the store, the
// deduplication guard and the scheduler together behind one façade.
//
// Modules never touch word records directly. They submit review events
// through RecordReview and read derived views through the query methods;
// the engine owns every state transition in between.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/cache"
	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/dedupe"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/mastery"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/srs"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/stage"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultMaxDueLimit = 100
)

// RatingPolicy maps a module's raw observation onto a rating when the
// event carries none. A correct answer defaults to easy; modules that
// measure response time can demote slow answers to hard.
type RatingPolicy struct {
	// SlowResponseMs downgrades a correct answer to hard when the
	// response took longer. Zero disables the check.
	SlowResponseMs int
}

// ReviewOutcome reports what one event did to the learner's state.
type ReviewOutcome struct {
	EventID      string
	Lemma        string
	Deduplicated bool         // event landed inside the suppression window
	Created      bool         // first observation of this word
	Rating       model.Rating // effective rating, zero value when deduplicated
	Record       model.WordKnowledgeRecord
	Err          error // per-event failure in batch mode
}

// Engine is the single writer of word knowledge state.
type Engine struct {
	store      repository.Store
	guard      dedupe.Guard
	cache      *cache.KnownWords
	scheduler  *srs.Scheduler
	classifier *stage.Classifier

	policies     map[model.ModuleSource]RatingPolicy
	historyLimit int
	maxDueLimit  int
	now          func() time.Time

	logger logger.Logger
}

// New creates an engine. The store is required; every other collaborator
// has a working default.
func New(store repository.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	en := &Engine{
		store:        store,
		guard:        dedupe.NewInMemoryGuard(),
		scheduler:    srs.New(),
		classifier:   stage.New(),
		policies:     map[model.ModuleSource]RatingPolicy{},
		historyLimit: model.DefaultHistoryLimit,
		maxDueLimit:  defaultMaxDueLimit,
		now:          time.Now,
		logger:       logger.Get().Named("engine"),
	}

	for _, opt := range opts {
		opt(en)
	}

	if en.cache == nil {
		c, err := cache.NewKnownWords()
		if err != nil {
			return nil, fmt.Errorf("build known-words cache: %w", err)
		}
		en.cache = c
	}

	return en, nil
}

// wordKey scopes the deduplication marker to one learning track.
func wordKey(language, lemma string) string {
	return language + "\x1f" + lemma
}

// RecordReview applies one observation to the learner's state.
//
// An event inside the suppression window still lands in the record's
// module history, but the scheduler never runs for it: near-simultaneous
// sightings across modules are one piece of evidence, not two.
func (en *Engine) RecordReview(ctx context.Context, userID string, e model.ReviewEvent) (ReviewOutcome, error) {
	start := en.now()
	defer func() {
		metrics.ObserveRecordLatency(float64(time.Since(start).Milliseconds()))
	}()

	if userID == "" {
		metrics.RecordReviewFailure()
		return ReviewOutcome{}, ErrUserRequired
	}
	if err := e.Validate(); err != nil {
		metrics.RecordReviewFailure()
		return ReviewOutcome{}, err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = en.now().UTC()
	}

	key := wordKey(e.Language, e.Lemma)
	seen, err := en.guard.CheckAndRecord(ctx, userID, key, e)
	if err != nil {
		metrics.RecordReviewFailure()
		return ReviewOutcome{}, fmt.Errorf("dedupe check: %w", err)
	}

	outcome, err := en.applyEvent(ctx, userID, e, seen)
	if err != nil {
		metrics.RecordReviewFailure()
		if !seen {
			// The gate swallowed this event but nothing was persisted.
			// Re-open it so a retry is not silently suppressed.
			if ferr := en.guard.Forget(ctx, userID, key); ferr != nil {
				en.logger.Warn(ctx, "failed to re-open dedupe gate",
					logger.String("user_id", userID),
					logger.String("lemma", e.Lemma),
					logger.Error(ferr),
				)
			}
		}
		return ReviewOutcome{}, err
	}

	if outcome.Deduplicated {
		metrics.RecordReviewDeduplicated()
	} else {
		metrics.RecordReviewRecorded()
	}
	en.cache.Invalidate(userID, e.Language)

	en.logger.Debug(ctx, "review recorded",
		logger.String("user_id", userID),
		logger.String("lemma", e.Lemma),
		logger.String("module", string(e.Module)),
		logger.Bool("deduplicated", outcome.Deduplicated),
		logger.String("status", outcome.Record.Status.String()),
	)
	return outcome, nil
}

// RecordBatch applies a session's worth of events with partial success:
// one bad event never blocks the rest. The per-event outcome carries the
// failure, the returned error only reports a dead context.
func (en *Engine) RecordBatch(ctx context.Context, userID string, events []model.ReviewEvent) ([]ReviewOutcome, error) {
	metrics.ObserveBatchSize(len(events))

	outcomes := make([]ReviewOutcome, 0, len(events))
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome, err := en.RecordReview(ctx, userID, e)
		if err != nil {
			outcome = ReviewOutcome{EventID: e.EventID, Lemma: e.Lemma, Err: err}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// applyEvent runs the read-modify-write cycle for one event, retrying
// once when another writer bumps the version first.
func (en *Engine) applyEvent(ctx context.Context, userID string, e model.ReviewEvent, deduplicated bool) (ReviewOutcome, error) {
	outcome := ReviewOutcome{
		EventID:      e.EventID,
		Lemma:        e.Lemma,
		Deduplicated: deduplicated,
	}

	mutate := func(rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error) {
		if deduplicated {
			rec.AppendHistory(e, en.historyLimit)
			rec.UpdatedAt = e.Timestamp
			return rec, nil
		}

		rating := en.effectiveRating(e)
		outcome.Rating = rating

		updated, err := en.scheduler.Review(rec, rating, e.Timestamp)
		if err != nil {
			return model.WordKnowledgeRecord{}, err
		}
		updated.AddTags(e.Tags)
		updated.AppendHistory(e, en.historyLimit)
		return updated, nil
	}

	rec, created, err := en.loadOrCreate(ctx, userID, e)
	if err != nil {
		return ReviewOutcome{}, err
	}
	outcome.Created = created

	for attempt := 0; ; attempt++ {
		next, err := mutate(rec)
		if err != nil {
			return ReviewOutcome{}, err
		}

		var stored model.WordKnowledgeRecord
		if created {
			stored, err = en.store.Create(ctx, next)
			if errors.Is(err, repository.ErrAlreadyExists) {
				// Lost a creation race, fall through to the update path.
				created = false
				outcome.Created = false
				rec, err = en.store.Get(ctx, userID, e.Language, e.Lemma)
				if err != nil {
					return ReviewOutcome{}, fmt.Errorf("reload after create race: %w", err)
				}
				continue
			}
		} else {
			stored, err = en.store.Update(ctx, next)
		}

		if errors.Is(err, repository.ErrVersionConflict) && attempt == 0 {
			metrics.RecordReviewConflict()
			rec, err = en.store.Get(ctx, userID, e.Language, e.Lemma)
			if err != nil {
				return ReviewOutcome{}, fmt.Errorf("reload after conflict: %w", err)
			}
			continue
		}
		if err != nil {
			return ReviewOutcome{}, fmt.Errorf("persist review: %w", err)
		}

		outcome.Record = stored
		return outcome, nil
	}
}

// loadOrCreate fetches the record for the event's word, building a fresh
// one on first sight.
func (en *Engine) loadOrCreate(ctx context.Context, userID string, e model.ReviewEvent) (model.WordKnowledgeRecord, bool, error) {
	rec, err := en.store.Get(ctx, userID, e.Language, e.Lemma)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.WordKnowledgeRecord{}, false, fmt.Errorf("load word record: %w", err)
	}

	word := e.Word
	if word == "" {
		word = e.Lemma
	}
	rec = model.NewWordKnowledgeRecord(userID, word, e.Lemma, e.Language, e.Timestamp)
	rec.AddTags(e.Tags)
	return rec, true, nil
}

// effectiveRating resolves the rating for an event. An explicit rating
// always wins; otherwise correctness maps to easy or forgot, with the
// module's policy demoting slow correct answers to hard.
func (en *Engine) effectiveRating(e model.ReviewEvent) model.Rating {
	if e.Rating != nil {
		return *e.Rating
	}
	if !e.Correct {
		return model.RatingForgot
	}

	policy := en.policies[e.Module]
	if policy.SlowResponseMs > 0 && e.ResponseTimeMs > policy.SlowResponseMs {
		return model.RatingHard
	}
	return model.RatingEasy
}

// KnownWords returns the learner's records at known or above, served from
// the snapshot cache when fresh.
func (en *Engine) KnownWords(ctx context.Context, userID, language string) ([]model.WordKnowledgeRecord, error) {
	if snap, ok := en.cache.Get(userID, language); ok {
		return snap.Records, nil
	}

	records, err := en.store.ListByUser(ctx, userID, language)
	if err != nil {
		return nil, fmt.Errorf("list known words: %w", err)
	}

	known := records[:0:0]
	for _, rec := range records {
		if rec.Status >= model.StatusKnown {
			known = append(known, rec)
		}
	}

	en.cache.Put(userID, language, known, en.now())
	return known, nil
}

// DueWords returns up to limit words due for review, hardest first.
func (en *Engine) DueWords(ctx context.Context, userID, language string, limit int) ([]model.WordKnowledgeRecord, error) {
	start := en.now()
	defer func() {
		metrics.ObserveDueQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit <= 0 || limit > en.maxDueLimit {
		limit = en.maxDueLimit
	}
	return en.store.DueWords(ctx, userID, language, en.now(), limit)
}

// ConceptMastery scores one grammar concept from the learner's records.
func (en *Engine) ConceptMastery(ctx context.Context, userID, language, conceptTag string) (mastery.ConceptMastery, error) {
	records, err := en.store.ListByUser(ctx, userID, language)
	if err != nil {
		return mastery.ConceptMastery{}, fmt.Errorf("list records for mastery: %w", err)
	}
	return mastery.Compute(records, conceptTag), nil
}

// ConceptMasteries scores every concept tag present in the learner's
// records.
func (en *Engine) ConceptMasteries(ctx context.Context, userID, language string) ([]mastery.ConceptMastery, error) {
	records, err := en.store.ListByUser(ctx, userID, language)
	if err != nil {
		return nil, fmt.Errorf("list records for mastery: %w", err)
	}
	return mastery.ComputeAll(records), nil
}

// Profile classifies the learner's stage from their known-word count.
func (en *Engine) Profile(ctx context.Context, userID, language string) (stage.Profile, error) {
	count, err := en.store.CountAtLeast(ctx, userID, language, model.StatusKnown)
	if err != nil {
		return stage.Profile{}, fmt.Errorf("count known words: %w", err)
	}
	return en.classifier.Classify(count), nil
}

// Learners enumerates every tracked (user, language) pair.
func (en *Engine) Learners(ctx context.Context) ([]repository.Learner, error) {
	return en.store.Learners(ctx)
}

// LastReview exposes the guard's most recent observation for a word.
func (en *Engine) LastReview(ctx context.Context, userID, language, lemma string) (model.ReviewEvent, bool, error) {
	return en.guard.LastReview(ctx, userID, wordKey(language, lemma))
}
