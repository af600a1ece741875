package model

import "errors"

// Error kinds exposed to callers. Wrap with fmt.Errorf("%w: ...") to add
// field detail; branch with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status")
	ErrUnavailable   = errors.New("store unavailable")
)
