package solver

import "errors"

// The messages double as the client-facing error text.
var (
	ErrNoFile        = errors.New("No file uploaded")
	ErrEmptyQuestion = errors.New("Question is required")
	ErrAnswerFailed  = errors.New("Failed to get a response")
	ErrSolveFailed   = errors.New("Failed to process screenshot")
)
