package metrics

import "errors"

// Sentinel kinds for metrics errors.
var (
	ErrAlreadyRegistered = errors.New("metric already registered")
)
