package bridge

import "errors"

// Package errors. Callers match with errors.Is.
var (
	// ErrInvalidOptions indicates a required bridge dependency is missing.
	ErrInvalidOptions = errors.New("bridge: invalid options")

	// ErrInvalidTopic indicates a message arrived on a malformed topic.
	ErrInvalidTopic = errors.New("bridge: invalid topic")

	// ErrMalformedCommand indicates a command payload could not be parsed.
	ErrMalformedCommand = errors.New("bridge: malformed command")
)
