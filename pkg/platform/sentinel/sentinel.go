// Package sentinel holds the storage-level facts stores report. Services map
// them to domain errors; callers outside the store layer never see them raw.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
)
