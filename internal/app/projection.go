package app

import (
	"context"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// WordState is the module-facing view of a word record. Fields outside a
// module's need-to-know surface stay nil, so a conversation module can
// ask "does the learner know this word" without ever seeing scheduling
// internals it might be tempted to depend on.
type WordState struct {
	Lemma    string
	Word     string
	Language string
	Status   model.Status
	Due      bool

	// Scheduling view, only for modules that run reviews.
	EaseFactor   *float64
	IntervalDays *int
	Repetitions  *int
	NextReviewAt *time.Time
	LastReviewed *time.Time

	// Concept view, only for modules that reason about grammar.
	Tags []string
}

// WordStateFor projects the record for one module's perspective.
//
// Review-driving modules (flashcards, cloze) see the full scheduling
// state. The grammar module additionally needs concept tags but no
// scheduling detail. Every other surface gets status and dueness only.
func (en *Engine) WordStateFor(ctx context.Context, module model.ModuleSource, userID, language, lemma string) (WordState, error) {
	rec, err := en.store.Get(ctx, userID, language, lemma)
	if err != nil {
		return WordState{}, err
	}

	now := en.now()
	state := WordState{
		Lemma:    rec.Lemma,
		Word:     rec.Word,
		Language: rec.Language,
		Status:   rec.Status,
		Due:      rec.DueAt(now),
	}

	switch module {
	case model.ModuleFlashcards, model.ModuleCloze:
		ef := rec.EaseFactor
		interval := rec.IntervalDays
		reps := rec.Repetitions
		next := rec.NextReviewAt

		state.EaseFactor = &ef
		state.IntervalDays = &interval
		state.Repetitions = &reps
		state.NextReviewAt = &next
		state.LastReviewed = rec.LastReviewed
		state.Tags = rec.Tags

	case model.ModuleGrammar:
		state.Tags = rec.Tags
	}

	return state, nil
}
