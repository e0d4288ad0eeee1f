// Package mix maps the opaque documents exchanged with the Nuance Mix
// dialog and NLU runtimes onto typed values. Documents travel as
// google.protobuf.Struct; field names are accepted in both snake_case and
// lowerCamelCase since JSON encoders of the proto messages may emit either.
package mix

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

func field(s *structpb.Struct, name string) *structpb.Value {
	fields := s.GetFields()
	if v, ok := fields[name]; ok {
		return v
	}
	if v, ok := fields[lowerCamel(name)]; ok {
		return v
	}
	return nil
}

func lowerCamel(name string) string {
	if !strings.Contains(name, "_") {
		return name
	}
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func object(s *structpb.Struct, name string) *structpb.Struct {
	return field(s, name).GetStructValue()
}

func list(s *structpb.Struct, name string) []*structpb.Value {
	return field(s, name).GetListValue().GetValues()
}

func number(s *structpb.Struct, name string) float64 {
	v := field(s, name)
	if str, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		n, _ := strconv.ParseFloat(str.StringValue, 64)
		return n
	}
	return v.GetNumberValue()
}

// text returns a scalar field as a string, formatting numbers and booleans.
func text(s *structpb.Struct, name string) string {
	return scalar(field(s, name))
}

func scalar(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// visualText collects the text fragments of a message's visual list.
func visualText(message *structpb.Struct) []string {
	var fragments []string
	for _, v := range list(message, "visual") {
		fragments = append(fragments, text(v.GetStructValue(), "text"))
	}
	return fragments
}
