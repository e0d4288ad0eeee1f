// Package protocol defines the flat message shape handed to the test harness
// for every bot turn segment.
package protocol

// Incomprehension intents reported by Nuance Mix when no intent matched.
const (
	IntentNoIntent = "NO_INTENT"
	IntentNoMatch  = "NO_MATCH"
)

// Button is one selectable option of an interactive choice.
type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// IntentScore is a ranked intent hypothesis.
type IntentScore struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Intent is the winning intent of an interpretation. Intents holds the
// remaining candidates in their original rank order.
type Intent struct {
	Name            string        `json:"name"`
	Confidence      float64       `json:"confidence"`
	Incomprehension bool          `json:"incomprehension"`
	Intents         []IntentScore `json:"intents,omitempty"`
}

// Entity is the first leaf value extracted for a named entity slot.
type Entity struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NLP is the intent and entity summary shared by all messages of one turn.
type NLP struct {
	Intent   Intent   `json:"intent"`
	Entities []Entity `json:"entities,omitempty"`
}

// Message is a normalized bot message. NLP is nil when no interpretation was
// requested, the interpretation failed, or it carried no candidates.
//
// SourceData holds the raw documents the message was derived from and is not
// part of the comparable shape.
type Message struct {
	MessageText string   `json:"messageText"`
	Buttons     []Button `json:"buttons,omitempty"`
	NLP         *NLP     `json:"nlp,omitempty"`
	SourceData  []any    `json:"-"`
}

// NewMessage creates a Message carrying the given text and NLP summary.
func NewMessage(text string, nlp *NLP) Message {
	return Message{MessageText: text, NLP: nlp}
}

// IsIncomprehension reports whether intent names one of the no-match intents.
func IsIncomprehension(intent string) bool {
	return intent == IntentNoIntent || intent == IntentNoMatch
}
