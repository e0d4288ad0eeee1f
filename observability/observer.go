// Package observability carries connector events (token refreshes, session
// transitions, normalization decisions) to pluggable observers. The slog
// observer is the default sink.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of an Event.
type Level int

const (
	LevelVerbose Level = iota + 1
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "VERBOSE"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// SlogLevel returns the slog level events of this severity are logged at.
// Anything above LevelWarning logs as an error.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= LevelVerbose:
		return slog.LevelDebug
	case l == LevelInfo:
		return slog.LevelInfo
	case l == LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names an event, for example "auth.token.retry". Packages declare
// their own constants.
type EventType string

// Event is one occurrence reported by the connector. Data holds the event
// attributes; it must not contain credentials or access tokens.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives connector events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
