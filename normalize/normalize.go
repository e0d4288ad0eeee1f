// Package normalize turns raw dialog turns and NLU interpretations into the
// flat messages delivered to the test harness.
package normalize

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
	"github.com/codeforequity-at/botium-connector-nuance/entity"
	"github.com/codeforequity-at/botium-connector-nuance/mix"
	"github.com/codeforequity-at/botium-connector-nuance/observability"
)

// Normalizer event types.
const (
	EventNLPSkipped    observability.EventType = "normalize.nlp.skipped"
	EventEntitySkipped observability.EventType = "normalize.entity.skipped"
	EventMessage       observability.EventType = "normalize.message"
)

// Normalizer converts turn results into messages.
type Normalizer struct {
	mode     entity.ValueMode
	observer observability.Observer
}

// New creates a Normalizer using mode for entity values. A nil observer
// discards events.
func New(mode entity.ValueMode, observer observability.Observer) *Normalizer {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Normalizer{mode: mode, observer: observer}
}

// Normalize returns the messages of one turn: one per output message group,
// followed by one for the interactive choice when it has prompt text. All
// messages share the NLP summary derived from interp, which may be nil.
func (n *Normalizer) Normalize(ctx context.Context, turn *mix.TurnResult, interp *mix.InterpretResult) []protocol.Message {
	if turn == nil {
		return nil
	}

	nlp := n.Summarize(ctx, interp)
	source := []any{turn.Raw}
	if interp != nil {
		source = append(source, interp.Raw)
	}

	messages := make([]protocol.Message, 0, len(turn.Messages)+1)
	for _, fragments := range turn.Messages {
		msg := protocol.NewMessage(strings.Join(fragments, "\n"), cloneNLP(nlp))
		msg.SourceData = source
		messages = append(messages, msg)
	}

	if choice := turn.Choice; choice != nil && len(choice.Prompt) > 0 {
		msg := protocol.NewMessage(strings.Join(choice.Prompt, "\n"), cloneNLP(nlp))
		msg.SourceData = source
		for _, opt := range choice.Options {
			msg.Buttons = append(msg.Buttons, protocol.Button{
				Text:    opt.DisplayText,
				Payload: opt.Value,
			})
		}
		messages = append(messages, msg)
	}

	for i, msg := range messages {
		n.observer.OnEvent(ctx, observability.Event{
			Type:      EventMessage,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "normalize.Normalize",
			Data: map[string]any{
				"index":   i,
				"text":    msg.MessageText,
				"buttons": len(msg.Buttons),
				"nlp":     msg.NLP != nil,
			},
		})
	}

	return messages
}

// Summarize builds the NLP summary of an interpretation. It returns nil when
// interp is nil, reports a failed status, or has no candidates. Entities are
// read from the first candidate only.
func (n *Normalizer) Summarize(ctx context.Context, interp *mix.InterpretResult) *protocol.NLP {
	if interp == nil {
		return nil
	}
	if interp.Status.Failed() {
		n.observer.OnEvent(ctx, observability.Event{
			Type:      EventNLPSkipped,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "normalize.Summarize",
			Data: map[string]any{
				"code":    interp.Status.Code,
				"message": interp.Status.Message,
				"details": interp.Status.Details,
			},
		})
		return nil
	}
	if len(interp.Candidates) == 0 {
		return nil
	}

	first := interp.Candidates[0]
	nlp := &protocol.NLP{
		Intent: protocol.Intent{
			Name:            first.Intent,
			Confidence:      first.Confidence,
			Incomprehension: protocol.IsIncomprehension(first.Intent),
		},
	}
	for _, c := range interp.Candidates[1:] {
		nlp.Intent.Intents = append(nlp.Intent.Intents, protocol.IntentScore{
			Name:       c.Intent,
			Confidence: c.Confidence,
		})
	}

	for _, slot := range first.Slots {
		if slot.Err != nil {
			n.observer.OnEvent(ctx, observability.Event{
				Type:      EventEntitySkipped,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    "normalize.Summarize",
				Data:      map[string]any{"slot": slot.Name, "error": slot.Err.Error()},
			})
			continue
		}
		if e := entity.Extract(slot.Name, slot.Node, n.mode); e != nil {
			nlp.Entities = append(nlp.Entities, *e)
		}
	}

	return nlp
}

func cloneNLP(nlp *protocol.NLP) *protocol.NLP {
	if nlp == nil {
		return nil
	}
	c := *nlp
	c.Intent.Intents = slices.Clone(nlp.Intent.Intents)
	c.Entities = slices.Clone(nlp.Entities)
	return &c
}
