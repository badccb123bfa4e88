package library

import "errors"

// Domain errors. Operations wrap these with context, so compare with errors.Is.
var (
	ErrDuplicateKey     = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("not available or limit reached")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCorruptData      = errors.New("corrupt data")
)
