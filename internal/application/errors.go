package application

import "errors"

var (
	ErrConflict          = errors.New("conflict")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
