package entity

import (
	"encoding/json"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
)

// Extract returns the first leaf value found in node, depth first, named
// after slot. Branches are searched child by child and never yield their own
// payload. It returns nil when nothing is extractable.
func Extract(slot string, node Node, mode ValueMode) *protocol.Entity {
	switch n := node.(type) {
	case *Branch:
		for _, child := range n.Children {
			if e := Extract(slot, child.Node, mode); e != nil {
				return e
			}
		}
		return nil
	case *Leaf:
		if n.Empty() {
			return nil
		}
		return &protocol.Entity{
			Name:       slot,
			Value:      leafValue(n, mode),
			Confidence: n.Confidence,
		}
	default:
		return nil
	}
}

func leafValue(l *Leaf, mode ValueMode) string {
	switch mode {
	case ForceLiteral:
		if l.Literal != "" {
			return l.Literal
		}
		return Serialize(l.Struct)
	case ForceStruct:
		if l.Struct != nil {
			return Serialize(l.Struct)
		}
		return l.Literal
	default:
		// Without a structured value there is nothing to serialize, so the
		// literal is used instead of an empty result.
		if l.Struct == nil {
			return l.Literal
		}
		if isComplex(l.Struct) && l.Literal != "" {
			return l.Literal
		}
		return Serialize(l.Struct)
	}
}

// isComplex reports whether the first field of s, in key order, holds a
// nested structure.
func isComplex(s *structpb.Struct) bool {
	fields := s.GetFields()
	if len(fields) == 0 {
		return false
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields[keys[0]].GetStructValue() != nil
}

// Serialize renders s as compact JSON with sorted keys. A nil struct renders
// as the empty string.
func Serialize(s *structpb.Struct) string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		data, _ = protojson.Marshal(s)
	}
	return string(data)
}
