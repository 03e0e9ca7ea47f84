// Package srs implements the spaced-repetition transition function.
//
// The scheduler is a pure function over (record, rating, now): it never
// touches a clock, a store, or the network, so it can be tested in isolation
// and replayed deterministically.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// Default scheduling constants. The ease deltas are deliberately smaller
// than canonical SM-2 (±0.2/±0.15) because the 3-point input scale is
// coarser than the original 5-point one.
const (
	defaultSeedIntervalDays = 1
	defaultMaxIntervalDays  = 365
	forgotEasePenalty       = 0.2
	hardEasePenalty         = 0.05
	easyEaseBonus           = 0.05
	hardIntervalFactor      = 0.8
)

// Threshold gates a status promotion on accumulated evidence.
type Threshold struct {
	MinRepetitions  int
	MinIntervalDays int
}

// Met reports whether the record satisfies the threshold.
func (t Threshold) Met(repetitions, intervalDays int) bool {
	return repetitions >= t.MinRepetitions && intervalDays >= t.MinIntervalDays
}

// Scheduler maps (record, rating) to an updated record.
type Scheduler struct {
	seedIntervalDays int
	maxIntervalDays  int
	knownThreshold   Threshold
	masteredThreshold Threshold
}

// New creates a scheduler with default thresholds.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		seedIntervalDays:  defaultSeedIntervalDays,
		maxIntervalDays:   defaultMaxIntervalDays,
		knownThreshold:    Threshold{MinRepetitions: 2, MinIntervalDays: 7},
		masteredThreshold: Threshold{MinRepetitions: 3, MinIntervalDays: 14},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Review returns a copy of rec advanced by one observation at the given
// time. The input record is never mutated. An out-of-range rating is a
// caller contract violation and is rejected before any arithmetic runs.
func (s *Scheduler) Review(rec model.WordKnowledgeRecord, rating model.Rating, now time.Time) (model.WordKnowledgeRecord, error) {
	if !rating.IsValid() {
		return model.WordKnowledgeRecord{}, fmt.Errorf("%w: %d", model.ErrInvalidRating, int(rating))
	}

	out := rec.Clone()

	switch rating {
	case model.RatingForgot:
		out.Repetitions = 0
		out.IntervalDays = 0
		out.EaseFactor = clampEase(rec.EaseFactor - forgotEasePenalty)
		out.Status = regress(rec.Status)

	case model.RatingHard:
		out.Repetitions = rec.Repetitions + 1
		out.IntervalDays = s.clampInterval(scaleInterval(rec.IntervalDays, rec.EaseFactor*hardIntervalFactor))
		out.EaseFactor = clampEase(rec.EaseFactor - hardEasePenalty)
		out.Status = s.promote(rec.Status, out.Repetitions, out.IntervalDays)

	case model.RatingEasy:
		out.Repetitions = rec.Repetitions + 1
		if out.Repetitions == 1 {
			out.IntervalDays = s.seedIntervalDays
		} else {
			out.IntervalDays = s.clampInterval(scaleInterval(rec.IntervalDays, rec.EaseFactor))
		}
		out.EaseFactor = rec.EaseFactor + easyEaseBonus
		out.Status = s.promote(rec.Status, out.Repetitions, out.IntervalDays)
	}

	out.LastReviewed = &now
	out.NextReviewAt = now.AddDate(0, 0, out.IntervalDays)
	out.UpdatedAt = now
	return out, nil
}

// regress drops the status one level on a failed review. The floor is
// learning: a word the learner has met is never demoted back to new.
func regress(s model.Status) model.Status {
	switch s {
	case model.StatusMastered:
		return model.StatusKnown
	case model.StatusKnown:
		return model.StatusLearning
	default:
		return model.StatusLearning
	}
}

// promote lifts the status when the evidence thresholds are met. Promotion
// is monotonic within a single review: the result is never below the level
// a successful review implies (learning).
func (s *Scheduler) promote(current model.Status, repetitions, intervalDays int) model.Status {
	next := current
	if next == model.StatusNew {
		next = model.StatusLearning
	}
	if s.masteredThreshold.Met(repetitions, intervalDays) {
		return model.StatusMastered
	}
	if s.knownThreshold.Met(repetitions, intervalDays) && next < model.StatusKnown {
		return model.StatusKnown
	}
	return next
}

// scaleInterval grows an interval by factor with a floor of one day.
func scaleInterval(intervalDays int, factor float64) int {
	scaled := int(math.Round(float64(intervalDays) * factor))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func (s *Scheduler) clampInterval(days int) int {
	if days > s.maxIntervalDays {
		return s.maxIntervalDays
	}
	return days
}

func clampEase(ef float64) float64 {
	if ef < model.MinEaseFactor {
		return model.MinEaseFactor
	}
	return ef
}
