package domain

import "errors"

var (
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidTitle  = errors.New("invalid title")
	ErrInvalidType   = errors.New("invalid item type")
	ErrInvalidParent = errors.New("invalid parent")
	ErrInvalidMove   = errors.New("invalid move")
	ErrInvalidColor  = errors.New("invalid color")
)
