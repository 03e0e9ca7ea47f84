package model

import "fmt"

// Rating is the learner's recall quality on the engine's 3-point scale.
// It collapses the classic 5-point SM-2 scale into a UI-friendly one.
type Rating int

const (
	RatingForgot Rating = iota // failed to recall
	RatingHard                 // recalled with significant effort
	RatingEasy                 // recalled comfortably
)

var ratingNames = map[Rating]string{
	RatingForgot: "forgot",
	RatingHard:   "hard",
	RatingEasy:   "easy",
}

// String returns the rating name, or "Rating(n)" for invalid values.
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is one of the three defined ratings.
func (r Rating) IsValid() bool {
	return r >= RatingForgot && r <= RatingEasy
}

// ParseRating converts a rating name to a Rating.
func ParseRating(s string) (Rating, error) {
	for r, name := range ratingNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	parsed, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
