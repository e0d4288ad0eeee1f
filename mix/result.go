package mix

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/entity"
)

// StartResult is the decoded response of DialogService.Start.
type StartResult struct {
	Status    *Status
	SessionID string
	Raw       *structpb.Struct
}

// DecodeStartResult decodes a DialogService.Start response document.
func DecodeStartResult(doc *structpb.Struct) (*StartResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty start response", ErrMalformedResult)
	}
	return &StartResult{
		Status:    statusOf(doc),
		SessionID: text(object(doc, "payload"), "session_id"),
		Raw:       doc,
	}, nil
}

// Option is one selectable item of an interactive choice.
type Option struct {
	DisplayText string
	Value       string
}

// Choice is an interactive question with an optional list of options.
type Choice struct {
	Prompt  []string
	Options []Option
}

// TurnResult is the decoded response of DialogService.Execute. Messages
// holds one list of text fragments per output message.
type TurnResult struct {
	Status   *Status
	Messages [][]string
	Choice   *Choice
	Raw      *structpb.Struct
}

// DecodeTurnResult decodes a DialogService.Execute response document.
func DecodeTurnResult(doc *structpb.Struct) (*TurnResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty execute response", ErrMalformedResult)
	}

	result := &TurnResult{Status: statusOf(doc), Raw: doc}
	payload := object(doc, "payload")

	for _, v := range list(payload, "messages") {
		msg := v.GetStructValue()
		if msg == nil {
			continue
		}
		result.Messages = append(result.Messages, visualText(msg))
	}

	if qa := object(payload, "qa_action"); qa != nil {
		choice := &Choice{Prompt: visualText(object(qa, "message"))}
		for _, v := range list(object(qa, "selectable"), "selectable_items") {
			item := v.GetStructValue()
			if item == nil {
				continue
			}
			choice.Options = append(choice.Options, Option{
				DisplayText: text(item, "display_text"),
				Value:       text(object(item, "value"), "value"),
			})
		}
		result.Choice = choice
	}

	return result, nil
}

// Slot is a named entity of an interpretation candidate. Err is set, and
// Node is nil, when the entity tree could not be decoded.
type Slot struct {
	Name string
	Node entity.Node
	Err  error
}

// Candidate is one ranked intent hypothesis with its entities.
type Candidate struct {
	Intent     string
	Confidence float64
	Slots      []Slot
}

// InterpretResult is the decoded response of Runtime.Interpret.
type InterpretResult struct {
	Status     *Status
	Candidates []Candidate
	Raw        *structpb.Struct
}

// DecodeInterpretResult decodes a Runtime.Interpret response document.
// Only single-intent interpretations are read. Entity slots are ordered by
// name since proto maps carry no order.
func DecodeInterpretResult(doc *structpb.Struct) (*InterpretResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty interpret response", ErrMalformedResult)
	}

	result := &InterpretResult{Status: statusOf(doc), Raw: doc}
	for _, v := range list(object(doc, "result"), "interpretations") {
		single := object(v.GetStructValue(), "single_intent_interpretation")
		if single == nil {
			continue
		}
		result.Candidates = append(result.Candidates, Candidate{
			Intent:     text(single, "intent"),
			Confidence: number(single, "confidence"),
			Slots:      decodeSlots(object(single, "entities")),
		})
	}
	return result, nil
}

func decodeSlots(entities *structpb.Struct) []Slot {
	fields := entities.GetFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	slots := make([]Slot, 0, len(names))
	for _, name := range names {
		node, err := EntityNode(fields[name])
		slots = append(slots, Slot{Name: name, Node: node, Err: err})
	}
	return slots
}

// EntityNode decodes an entity document into an entity tree. An object whose
// nested "entities" collection is non-empty becomes a branch, regardless of
// any literal it carries; any other object becomes a leaf. A list becomes a
// branch of its elements.
func EntityNode(v *structpb.Value) (entity.Node, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StructValue:
		return entityObject(k.StructValue)
	case *structpb.Value_ListValue:
		return entityList(k.ListValue.GetValues())
	default:
		return nil, fmt.Errorf("%w: entity is %T, want object or list", ErrMalformedResult, v.GetKind())
	}
}

func entityObject(s *structpb.Struct) (entity.Node, error) {
	children := field(s, "entities")
	switch k := children.GetKind().(type) {
	case *structpb.Value_ListValue:
		if len(k.ListValue.GetValues()) > 0 {
			return entityList(k.ListValue.GetValues())
		}
	case *structpb.Value_StructValue:
		if len(k.StructValue.GetFields()) > 0 {
			return entityMap(k.StructValue)
		}
	}

	return &entity.Leaf{
		Literal:    text(s, "literal"),
		Struct:     object(s, "struct_value"),
		Confidence: number(s, "confidence"),
	}, nil
}

func entityList(values []*structpb.Value) (entity.Node, error) {
	branch := &entity.Branch{Children: make([]entity.Child, 0, len(values))}
	for i, v := range values {
		child, err := EntityNode(v)
		if err != nil {
			return nil, fmt.Errorf("entity[%d]: %w", i, err)
		}
		branch.Children = append(branch.Children, entity.Child{Node: child})
	}
	return branch, nil
}

func entityMap(s *structpb.Struct) (entity.Node, error) {
	fields := s.GetFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	branch := &entity.Branch{Children: make([]entity.Child, 0, len(names))}
	for _, name := range names {
		child, err := EntityNode(fields[name])
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		branch.Children = append(branch.Children, entity.Child{Name: name, Node: child})
	}
	return branch, nil
}
