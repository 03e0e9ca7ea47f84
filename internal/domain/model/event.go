// Package model contains domain models passed between engine layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleSource identifies the learning surface that produced an observation.
type ModuleSource string

const (
	ModuleFlashcards   ModuleSource = "flashcards"
	ModuleCloze        ModuleSource = "cloze"
	ModuleConversation ModuleSource = "conversation"
	ModuleFoundation   ModuleSource = "foundation"
	ModuleSongs        ModuleSource = "songs"
	ModuleDuels        ModuleSource = "duels"
	ModuleGrammar      ModuleSource = "grammar"
)

// Modules lists every known module source.
func Modules() []ModuleSource {
	return []ModuleSource{
		ModuleFlashcards,
		ModuleCloze,
		ModuleConversation,
		ModuleFoundation,
		ModuleSongs,
		ModuleDuels,
		ModuleGrammar,
	}
}

// IsValid reports whether m is one of the known module sources.
func (m ModuleSource) IsValid() bool {
	switch m {
	case ModuleFlashcards, ModuleCloze, ModuleConversation, ModuleFoundation,
		ModuleSongs, ModuleDuels, ModuleGrammar:
		return true
	default:
		return false
	}
}

// ReviewEvent is a single observation of a learner producing or recognizing
// a word. Events are immutable once created; the engine consumes each event
// exactly once and keeps a bounded trailing history on the record.
type ReviewEvent struct {
	EventID        string       // unique id for idempotency
	SessionID      string       // originating learner session
	Module         ModuleSource // which surface observed the word
	Word           string       // surface form as seen by the learner
	Lemma          string       // dictionary base form; identity key
	Language       string       // target language code, e.g. "es"
	Tags           []string     // grammar-concept tags, used when creating records
	Timestamp      time.Time    // moment of observation
	Correct        bool         // whether the learner got it right
	Rating         *Rating      // explicit rating; wins over the Correct mapping
	ResponseTimeMs int          // 0 when the module did not measure it
	InputMode      string       // e.g. "typed", "spoken"; optional
}

// NewReviewEvent builds an event with a fresh id and timestamp.
func NewReviewEvent(module ModuleSource, word, lemma, language string, correct bool) ReviewEvent {
	return ReviewEvent{
		EventID:   uuid.NewString(),
		Module:    module,
		Word:      word,
		Lemma:     lemma,
		Language:  language,
		Timestamp: time.Now().UTC(),
		Correct:   correct,
	}
}

// Validate checks the fields the recorder needs before any state is touched.
func (e ReviewEvent) Validate() error {
	if !e.Module.IsValid() {
		return ErrUnknownModule
	}
	if e.Lemma == "" || e.Language == "" {
		return ErrMissingIdentity
	}
	if e.Rating != nil && !e.Rating.IsValid() {
		return ErrInvalidRating
	}
	return nil
}
