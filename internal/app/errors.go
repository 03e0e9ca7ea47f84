package app

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrStoreRequired = errors.New("store is required")
	ErrUserRequired  = errors.New("user id is required")
)
