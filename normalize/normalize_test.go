package normalize_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
	"github.com/codeforequity-at/botium-connector-nuance/entity"
	"github.com/codeforequity-at/botium-connector-nuance/mix"
	"github.com/codeforequity-at/botium-connector-nuance/normalize"
	"github.com/codeforequity-at/botium-connector-nuance/observability"
)

type captureObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *captureObserver) OnEvent(_ context.Context, e observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *captureObserver) types() []observability.EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	var types []observability.EventType
	for _, e := range o.events {
		types = append(types, e.Type)
	}
	return types
}

func bookFlight() *mix.InterpretResult {
	date, _ := structpb.NewStruct(map[string]any{"date": "2024-01-01"})
	return &mix.InterpretResult{
		Status: &mix.Status{Code: 200},
		Candidates: []mix.Candidate{
			{
				Intent:     "iBookFlight",
				Confidence: 0.99,
				Slots: []mix.Slot{
					{Name: "eDepartureDate", Node: &entity.Branch{Children: []entity.Child{
						{Node: &entity.Leaf{Literal: "tomorrow", Struct: date, Confidence: 0.95}},
					}}},
					{Name: "eEmpty", Node: &entity.Branch{}},
				},
			},
			{Intent: "iFlightStatus", Confidence: 0.0005},
			{Intent: "iEntities", Confidence: 0.0001},
		},
	}
}

func TestNormalize_Ordering(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)
	turn := &mix.TurnResult{
		Messages: [][]string{{"Hi"}, {"How can I", "help?"}},
		Choice: &mix.Choice{
			Prompt:  []string{"Where do you want to go?"},
			Options: []mix.Option{{DisplayText: "Atlanta", Value: "Atlanta"}, {DisplayText: "Cleveland", Value: "CLE"}},
		},
	}

	msgs := n.Normalize(context.Background(), turn, nil)

	require.Len(t, msgs, 3)
	assert.Equal(t, "Hi", msgs[0].MessageText)
	assert.Equal(t, "How can I\nhelp?", msgs[1].MessageText)
	assert.Equal(t, "Where do you want to go?", msgs[2].MessageText)
	assert.Equal(t, []protocol.Button{
		{Text: "Atlanta", Payload: "Atlanta"},
		{Text: "Cleveland", Payload: "CLE"},
	}, msgs[2].Buttons)
	for _, m := range msgs {
		assert.Nil(t, m.NLP)
	}
	assert.Nil(t, msgs[0].Buttons)
}

func TestNormalize_NoMessages(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)

	assert.Empty(t, n.Normalize(context.Background(), &mix.TurnResult{}, bookFlight()))
	assert.Empty(t, n.Normalize(context.Background(), nil, nil))
}

func TestNormalize_ChoiceWithoutPrompt(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)
	turn := &mix.TurnResult{
		Messages: [][]string{{"only"}},
		Choice:   &mix.Choice{Options: []mix.Option{{DisplayText: "a", Value: "a"}}},
	}

	msgs := n.Normalize(context.Background(), turn, nil)

	require.Len(t, msgs, 1)
	assert.Equal(t, "only", msgs[0].MessageText)
}

func TestNormalize_ChoiceWithoutOptions(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)
	turn := &mix.TurnResult{Choice: &mix.Choice{Prompt: []string{"mockedQaText"}}}

	msgs := n.Normalize(context.Background(), turn, nil)

	require.Len(t, msgs, 1)
	assert.Equal(t, "mockedQaText", msgs[0].MessageText)
	assert.Nil(t, msgs[0].Buttons)
}

func TestNormalize_SharedNLPSummary(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)
	turn := &mix.TurnResult{
		Messages: [][]string{{"Sure."}},
		Choice: &mix.Choice{
			Prompt:  []string{"Where do you want to go?"},
			Options: []mix.Option{{DisplayText: "Atlanta", Value: "Atlanta"}},
		},
	}

	msgs := n.Normalize(context.Background(), turn, bookFlight())

	require.Len(t, msgs, 2)
	want := &protocol.NLP{
		Intent: protocol.Intent{
			Name:       "iBookFlight",
			Confidence: 0.99,
			Intents: []protocol.IntentScore{
				{Name: "iFlightStatus", Confidence: 0.0005},
				{Name: "iEntities", Confidence: 0.0001},
			},
		},
		Entities: []protocol.Entity{{Name: "eDepartureDate", Value: "tomorrow", Confidence: 0.95}},
	}
	assert.Equal(t, want, msgs[0].NLP)
	assert.Equal(t, want, msgs[1].NLP)
	assert.NotSame(t, msgs[0].NLP, msgs[1].NLP)
}

func TestNormalize_SourceData(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)
	raw, _ := structpb.NewStruct(map[string]any{"payload": map[string]any{}})
	interp := bookFlight()
	interp.Raw = raw

	msgs := n.Normalize(context.Background(), &mix.TurnResult{Messages: [][]string{{"x"}}, Raw: raw}, interp)

	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].SourceData, 2)
}

func TestSummarize_FailedStatusOmitsNLP(t *testing.T) {
	obs := &captureObserver{}
	n := normalize.New(entity.ForceLiteral, obs)
	interp := bookFlight()
	interp.Status = &mix.Status{Code: 400, Message: "bad request"}

	msgs := n.Normalize(context.Background(), &mix.TurnResult{Messages: [][]string{{"Hi"}}}, interp)

	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi", msgs[0].MessageText)
	assert.Nil(t, msgs[0].NLP)
	assert.Contains(t, obs.types(), normalize.EventNLPSkipped)
}

func TestSummarize_NoCandidates(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)

	assert.Nil(t, n.Summarize(context.Background(), &mix.InterpretResult{}))
	assert.Nil(t, n.Summarize(context.Background(), nil))
}

func TestSummarize_Incomprehension(t *testing.T) {
	n := normalize.New(entity.ForceLiteral, nil)

	for _, intent := range []string{"NO_INTENT", "NO_MATCH"} {
		t.Run(intent, func(t *testing.T) {
			nlp := n.Summarize(context.Background(), &mix.InterpretResult{
				Candidates: []mix.Candidate{{Intent: intent, Confidence: 1}},
			})
			require.NotNil(t, nlp)
			assert.True(t, nlp.Intent.Incomprehension)
			assert.Empty(t, nlp.Intent.Intents)
			assert.Nil(t, nlp.Entities)
		})
	}
}

func TestSummarize_EntitiesFromFirstCandidateOnly(t *testing.T) {
	n := normalize.New(entity.ForceStruct, nil)
	interp := bookFlight()
	interp.Candidates[1].Slots = []mix.Slot{{Name: "eOther", Node: &entity.Leaf{Literal: "ignored"}}}

	nlp := n.Summarize(context.Background(), interp)

	require.NotNil(t, nlp)
	require.Len(t, nlp.Entities, 1)
	assert.Equal(t, "eDepartureDate", nlp.Entities[0].Name)
	assert.Equal(t, `{"date":"2024-01-01"}`, nlp.Entities[0].Value)
}

func TestSummarize_SkipsMalformedSlot(t *testing.T) {
	obs := &captureObserver{}
	n := normalize.New(entity.ForceLiteral, obs)
	interp := &mix.InterpretResult{Candidates: []mix.Candidate{{
		Intent: "iBookFlight",
		Slots: []mix.Slot{
			{Name: "eBroken", Err: errors.New("bad tree")},
			{Name: "eCity", Node: &entity.Leaf{Literal: "Atlanta", Confidence: 0.8}},
		},
	}}}

	nlp := n.Summarize(context.Background(), interp)

	require.NotNil(t, nlp)
	assert.Equal(t, []protocol.Entity{{Name: "eCity", Value: "Atlanta", Confidence: 0.8}}, nlp.Entities)
	assert.Contains(t, obs.types(), normalize.EventEntitySkipped)
}
