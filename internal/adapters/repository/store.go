// Package repository defines the word knowledge store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// Learner identifies one (user, language) learning track.
type Learner struct {
	UserID   string
	Language string
}

// Store provides read/write access to word knowledge records.
//
// Writes are optimistic: Update compares the record's Version against the
// stored one and fails with ErrVersionConflict on a mismatch, so concurrent
// reviews of the same word can never interleave partial updates. The lock
// scope is a single (user, language, lemma) record, never wider.
type Store interface {
	// Get returns the record for the natural key.
	// Returns ErrNotFound when the word is unknown.
	Get(ctx context.Context, userID, language, lemma string) (model.WordKnowledgeRecord, error)

	// Create inserts a new record at version 1.
	// Returns ErrAlreadyExists when the key is taken.
	Create(ctx context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error)

	// Update applies rec if the stored version still equals rec.Version,
	// returning the record with its version bumped.
	// Returns ErrVersionConflict when another writer got there first.
	Update(ctx context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error)

	// ListByUser returns every record for one learning track.
	ListByUser(ctx context.Context, userID, language string) ([]model.WordKnowledgeRecord, error)

	// DueWords returns up to limit records due at the given time, hardest
	// first: never-reviewed words, then lowest ease factor, then most
	// overdue.
	DueWords(ctx context.Context, userID, language string, now time.Time, limit int) ([]model.WordKnowledgeRecord, error)

	// CountAtLeast counts the user's records with status at or above min.
	CountAtLeast(ctx context.Context, userID, language string, min model.Status) (int, error)

	// Learners enumerates every tracked (user, language) pair.
	Learners(ctx context.Context) ([]Learner, error)
}

// Compile-time interface checks.
var (
	_ Store = (*MemStore)(nil)
	_ Store = (*SQLStore)(nil)
)
