package importer

import "errors"

// Sentinel kinds for importer errors.
var (
	ErrLearnerRequired = errors.New("user id and language are required")
)
