package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
)

func TestIsIncomprehension(t *testing.T) {
	tests := []struct {
		intent string
		want   bool
	}{
		{"NO_INTENT", true},
		{"NO_MATCH", true},
		{"iBookFlight", false},
		{"", false},
		{"no_match", false},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			assert.Equal(t, tt.want, protocol.IsIncomprehension(tt.intent))
		})
	}
}

func TestMessage_JSON_OmitsOptionalFields(t *testing.T) {
	msg := protocol.NewMessage("Hi", nil)
	msg.SourceData = []any{"raw"}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"messageText":"Hi"}`, string(data))
}

func TestMessage_JSON_Full(t *testing.T) {
	msg := protocol.Message{
		MessageText: "Where do you want to go?",
		Buttons:     []protocol.Button{{Text: "Atlanta", Payload: "Atlanta"}},
		NLP: &protocol.NLP{
			Intent: protocol.Intent{
				Name:       "iBookFlight",
				Confidence: 0.99,
				Intents:    []protocol.IntentScore{{Name: "iFlightStatus", Confidence: 0.01}},
			},
			Entities: []protocol.Entity{{Name: "eDepartureDate", Value: "tomorrow", Confidence: 0.95}},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"messageText": "Where do you want to go?",
		"buttons": [{"text": "Atlanta", "payload": "Atlanta"}],
		"nlp": {
			"intent": {
				"name": "iBookFlight",
				"confidence": 0.99,
				"incomprehension": false,
				"intents": [{"name": "iFlightStatus", "confidence": 0.01}]
			},
			"entities": [{"name": "eDepartureDate", "value": "tomorrow", "confidence": 0.95}]
		}
	}`, string(data))
}
