package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrAmbiguousID        = errors.New("ambiguous id")
	ErrInvalidImport      = errors.New("invalid import")
	ErrInvalidState       = errors.New("invalid stored state")
	ErrUnsupportedVersion = errors.New("unsupported state version")
	ErrPersist            = errors.New("persist state")
	ErrClipboard          = errors.New("clipboard unavailable")
)
