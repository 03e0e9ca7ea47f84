package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("word record not found")
	ErrAlreadyExists   = errors.New("word record already exists")
	ErrVersionConflict = errors.New("word record version conflict")
	ErrInvalidLimit    = errors.New("invalid due-words limit")
)
