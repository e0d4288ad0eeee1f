package entity

import "fmt"

// ValueMode selects how a leaf's literal and structured value are combined
// into the extracted value.
type ValueMode string

const (
	// ForceLiteral prefers the literal and falls back to the structured value.
	ForceLiteral ValueMode = "FORCE_LITERAL"
	// ForceStruct prefers the structured value and falls back to the literal.
	ForceStruct ValueMode = "FORCE_STRUCT"
	// LiteralForComplex uses the structured value unless it nests further
	// structures, in which case the literal is used.
	LiteralForComplex ValueMode = "LITERAL_FOR_COMPLEX"
)

// ValidModes returns all recognized value modes.
func ValidModes() []ValueMode {
	return []ValueMode{ForceLiteral, ForceStruct, LiteralForComplex}
}

// ParseValueMode converts s into a ValueMode. An empty string yields
// LiteralForComplex.
func ParseValueMode(s string) (ValueMode, error) {
	if s == "" {
		return LiteralForComplex, nil
	}
	for _, m := range ValidModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown entity value mode %q", s)
}
