package model

import "errors"

// Sentinel kinds for domain model errors.
var (
	ErrInvalidRating   = errors.New("invalid rating")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrUnknownModule   = errors.New("unknown module source")
	ErrMissingIdentity = errors.New("event missing lemma or language")
	ErrEaseBelowFloor  = errors.New("ease factor below minimum")
	ErrNegativeCounter = errors.New("negative interval or repetition count")
	ErrDueBeforeReview = errors.New("next review precedes last review")
)
