package connector

import "errors"

// Error kinds surfaced by the Connector. Failures wrap one of these along
// with the upstream error, so callers match them with errors.Is.
var (
	// ErrValidation is returned by New when required configuration is missing.
	ErrValidation = errors.New("invalid configuration")
	// ErrSessionIDMissing is returned by Start when the dialog service opened
	// a session without reporting its id.
	ErrSessionIDMissing = errors.New("session id missing from start response")
	// ErrTurnFailed wraps a failed Execute call, including the welcome turn.
	ErrTurnFailed = errors.New("dialog turn failed")
	// ErrInterpretFailed wraps a failed Interpret call.
	ErrInterpretFailed = errors.New("nlu interpretation failed")
	// ErrCloseFailed wraps a failed Stop call other than an unknown session.
	ErrCloseFailed = errors.New("failed to close session")
	// ErrInvalidState is returned when an operation is called in the wrong
	// lifecycle state.
	ErrInvalidState = errors.New("invalid session state")
)
