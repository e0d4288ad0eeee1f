package connector

import "github.com/codeforequity-at/botium-connector-nuance/observability"

// Connector event types emitted across the session lifecycle.
const (
	EventSessionStart observability.EventType = "session.start"
	EventWelcome      observability.EventType = "session.welcome"
	EventReady        observability.EventType = "session.ready"
	EventTurn         observability.EventType = "session.turn"
	EventTurnError    observability.EventType = "session.turn.error"
	EventStop         observability.EventType = "session.stop"
	EventStopNotFound observability.EventType = "session.stop.notfound"
	EventError        observability.EventType = "session.error"
)
