package dedupe

import "errors"

// Sentinel kinds for guard errors.
var (
	ErrGuardUnavailable = errors.New("dedup guard unavailable")
)
