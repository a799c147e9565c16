package model

import "errors"

// Error taxonomy surfaced by services and repositories. Callers match with
// errors.Is; wrapped messages carry the specifics.
var (
	// ErrValidation — a required field is missing or invalid. Nothing was mutated.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition — the operation requires a different current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotFound — no record with the given key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID — a rule with this id already exists.
	ErrDuplicateID = errors.New("duplicate rule id")
	// ErrDuplicateName — a system with this name already exists.
	ErrDuplicateName = errors.New("duplicate system name")
	// ErrInUse — the system is still referenced by at least one rule, archived included.
	ErrInUse = errors.New("system is in use")
)
