package mix

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/session"
)

// Interpretation parameters requested from the NLU runtime.
const (
	InterpretationSingleIntent = "SINGLE_INTENT"
	DefaultMaxInterpretations  = 5
)

// DialogModelURI returns the dialog model reference for a context tag.
func DialogModelURI(contextTag string) string {
	return fmt.Sprintf("urn:nuance-mix:tag:model/%s/mix.dialog", contextTag)
}

// NLUModelURI returns the NLU model reference for a context tag and NLU
// language code (for example "eng-USA").
func NLUModelURI(contextTag, language string) string {
	return fmt.Sprintf("urn:nuance-mix:tag:model/%s/mix.nlu?=language=%s", contextTag, language)
}

// StartRequest opens a dialog session.
type StartRequest struct {
	SessionID           string
	Selector            session.Selector
	ModelURI            string
	Data                map[string]any
	SuppressLogUserData bool
	TimeoutSec          int
	UserID              string
	ClientData          map[string]string
}

// Struct encodes the request as a DialogService.Start document.
func (r *StartRequest) Struct() (*structpb.Struct, error) {
	payload := map[string]any{
		"model_ref": map[string]any{
			"uri":  r.ModelURI,
			"type": 0,
		},
	}
	if len(r.Data) > 0 {
		payload["data"] = r.Data
	}
	if r.SuppressLogUserData {
		payload["suppress_log_user_data"] = true
	}

	doc := map[string]any{
		"selector": selectorDoc(r.Selector),
		"payload":  payload,
	}
	if r.SessionID != "" {
		doc["session_id"] = r.SessionID
	}
	if r.TimeoutSec > 0 {
		doc["session_timeout_sec"] = r.TimeoutSec
	}
	if r.UserID != "" {
		doc["user_id"] = r.UserID
	}
	if len(r.ClientData) > 0 {
		doc["client_data"] = stringMap(r.ClientData)
	}
	return newStruct("start", doc)
}

// ExecuteRequest sends one user turn. An empty UserText requests the
// welcome turn.
type ExecuteRequest struct {
	SessionID string
	Selector  session.Selector
	UserText  string
}

// Struct encodes the request as a DialogService.Execute document.
func (r *ExecuteRequest) Struct() (*structpb.Struct, error) {
	payload := map[string]any{}
	if r.UserText != "" {
		payload["user_input"] = map[string]any{"user_text": r.UserText}
	}
	return newStruct("execute", map[string]any{
		"session_id": r.SessionID,
		"selector":   selectorDoc(r.Selector),
		"payload":    payload,
	})
}

// StopRequest closes a dialog session.
type StopRequest struct {
	SessionID string
}

// Struct encodes the request as a DialogService.Stop document.
func (r *StopRequest) Struct() (*structpb.Struct, error) {
	return newStruct("stop", map[string]any{"session_id": r.SessionID})
}

// InterpretRequest asks the NLU runtime to interpret one text input.
type InterpretRequest struct {
	ModelURI           string
	Text               string
	UserID             string
	ClientData         map[string]string
	ResultType         string
	MaxInterpretations int
}

// Struct encodes the request as a Runtime.Interpret document.
func (r *InterpretRequest) Struct() (*structpb.Struct, error) {
	resultType := r.ResultType
	if resultType == "" {
		resultType = InterpretationSingleIntent
	}
	maxInterpretations := r.MaxInterpretations
	if maxInterpretations <= 0 {
		maxInterpretations = DefaultMaxInterpretations
	}

	doc := map[string]any{
		"parameters": map[string]any{
			"interpretation_result_type": resultType,
			"max_interpretations":        maxInterpretations,
		},
		"model": map[string]any{"uri": r.ModelURI},
		"input": map[string]any{"text": r.Text},
	}
	if r.UserID != "" {
		doc["user_id"] = r.UserID
	}
	if len(r.ClientData) > 0 {
		doc["client_data"] = stringMap(r.ClientData)
	}
	return newStruct("interpret", doc)
}

func selectorDoc(s session.Selector) map[string]any {
	return map[string]any{
		"channel":  s.Channel,
		"language": s.Language,
		"library":  s.Library,
	}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newStruct(kind string, doc map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", kind, err)
	}
	return s, nil
}
