package mix

import "errors"

// Sentinel errors for remote documents and calls.
var (
	// ErrSessionNotFound is reported by the dialog service when a session id
	// is unknown, typically because the session already expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRemoteStatus marks a response whose status code is 400 or above.
	ErrRemoteStatus = errors.New("remote status error")
	// ErrMalformedResult marks a document that lacks a required structure.
	ErrMalformedResult = errors.New("malformed result")
)
