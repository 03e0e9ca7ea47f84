// Package srs implements the spaced-repetition transition function.
package srs

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithSeedInterval sets the interval in days granted on the first
// successful repetition.
func WithSeedInterval(days int) Option {
	return func(s *Scheduler) {
		if days > 0 {
			s.seedIntervalDays = days
		}
	}
}

// WithMaxInterval caps the interval growth in days.
func WithMaxInterval(days int) Option {
	return func(s *Scheduler) {
		if days > 0 {
			s.maxIntervalDays = days
		}
	}
}

// WithKnownThreshold sets the evidence required to promote a word to known.
func WithKnownThreshold(repetitions, intervalDays int) Option {
	return func(s *Scheduler) {
		if repetitions > 0 && intervalDays > 0 {
			s.knownThreshold = Threshold{MinRepetitions: repetitions, MinIntervalDays: intervalDays}
		}
	}
}

// WithMasteredThreshold sets the evidence required to promote a word to
// mastered.
func WithMasteredThreshold(repetitions, intervalDays int) Option {
	return func(s *Scheduler) {
		if repetitions > 0 && intervalDays > 0 {
			s.masteredThreshold = Threshold{MinRepetitions: repetitions, MinIntervalDays: intervalDays}
		}
	}
}
