// Package entity extracts a single canonical value from a Nuance Mix entity
// tree. A tree is made of branches (entities with nested entities) and
// leaves (entities carrying a literal and/or a structured value).
package entity

import "google.golang.org/protobuf/types/known/structpb"

// Node is either a *Leaf or a *Branch.
type Node interface {
	node()
}

// Leaf is an entity value. Literal is the text the user said; Struct is the
// structured interpretation of it. Either may be empty.
type Leaf struct {
	Literal    string
	Struct     *structpb.Struct
	Confidence float64
}

// Branch is an entity holding nested entities. Children keep the order of an
// array, or the key order of a named mapping.
type Branch struct {
	Children []Child
}

// Child is one nested entity. Name is empty for array elements.
type Child struct {
	Name string
	Node Node
}

func (*Leaf) node()   {}
func (*Branch) node() {}

// Empty reports whether the leaf has nothing to extract.
func (l *Leaf) Empty() bool {
	return l.Literal == "" && l.Struct == nil
}
