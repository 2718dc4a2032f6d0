package model

import "errors"

// Error kinds shared by the web service and the terminal checklist book.
// Callers wrap them with context and test with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
