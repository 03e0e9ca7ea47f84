package model

import "fmt"

// Status is the knowledge stage of a single word for a single learner.
// The order of the constants is meaningful: promotion moves up, regression
// moves down (never below StatusLearning once a word has been reviewed).
type Status int

const (
	StatusNew Status = iota
	StatusLearning
	StatusKnown
	StatusMastered
)

var statusNames = map[Status]string{
	StatusNew:      "new",
	StatusLearning: "learning",
	StatusKnown:    "known",
	StatusMastered: "mastered",
}

// String returns the status name, or "Status(n)" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsValid reports whether s is a defined status.
func (s Status) IsValid() bool {
	return s >= StatusNew && s <= StatusMastered
}

// ParseStatus converts a status name to a Status.
func ParseStatus(v string) (Status, error) {
	for s, name := range statusNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
