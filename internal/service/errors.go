package service

import "errors"

// Sentinel errors forming the error taxonomy. Services wrap these with
// context via fmt.Errorf("…: %w", Err…); controllers map them to HTTP
// statuses with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrLocked     = errors.New("attempt is locked")
	ErrBadRequest = errors.New("bad request")
)
