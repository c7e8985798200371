package langid

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model directory or one of its files
	// does not exist.
	ErrModelNotFound = errors.New("langid: model not found")

	// ErrInvalidModel indicates the model exists but is malformed.
	ErrInvalidModel = errors.New("langid: invalid model format")

	// ErrTokenizerFailed indicates tokenizer initialization failed.
	ErrTokenizerFailed = errors.New("langid: tokenizer initialization failed")
)
