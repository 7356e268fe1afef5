package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrInvalidID         = errors.New("invalid ID format")
	ErrInvalidDiscipline = errors.New("invalid discipline")
	ErrEmptyRoster       = errors.New("race roster is empty")
)
