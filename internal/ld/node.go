package ld

import "fmt"

// Node is a sealed interface over the canonical value-object variants.
// Only Scalar, Ref, *Object, and *Array implement it. Every site that
// switches on document shape does so over these four variants instead
// of probing raw maps at runtime.
type Node interface {
	node() // Sealed - only these types implement it
}

// Scalar is a literal value-object, optionally tagged with a datatype
// IRI ({"@value": V} / {"@value": V, "@type": T} in expanded form).
type Scalar struct {
	Value any    // string, int64, float64, or bool
	Type  string // datatype IRI, empty for plain literals
}

func (Scalar) node() {}

// Ref is a reference value-object ({"@id": IRI} in expanded form).
type Ref struct {
	ID string
}

func (Ref) node() {}

// Object is a map node: fully-qualified IRI to an array of
// value-objects. The @id and @type keywords are kept out of Props so
// shape checks stay exhaustive.
type Object struct {
	ID    string
	Types []string
	Props map[string][]Node
}

func (*Object) node() {}

// ArrayKind tags the container flavor of an Array node.
type ArrayKind string

const (
	KindList  ArrayKind = "@list"
	KindSet   ArrayKind = "@set"
	KindGraph ArrayKind = "@graph"
)

// Array is a list-flavored node holding a flat sequence of
// value-objects.
type Array struct {
	Kind  ArrayKind
	Items []Node
}

func (*Array) node() {}

// NewObject returns an empty map node.
func NewObject() *Object {
	return &Object{Props: map[string][]Node{}}
}

// NewArray returns an empty container node of the given kind.
func NewArray(kind ArrayKind) *Array {
	return &Array{Kind: kind, Items: []Node{}}
}

// EqualNodes compares two value-objects structurally. Object
// comparison follows the container equality contract: if both sides
// carry an identifier the identifiers decide; an identifier present on
// only one side is ignored and the shared keys are compared instead.
func EqualNodes(a, b Node) bool {
	switch av := a.(type) {
	case Scalar:
		bv, ok := b.(Scalar)
		return ok && av.Type == bv.Type && scalarEqual(av.Value, bv.Value)
	case Ref:
		bv, ok := b.(Ref)
		return ok && av.ID == bv.ID
	case *Object:
		bv, ok := b.(*Object)
		return ok && equalObjects(av, bv)
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !EqualNodes(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("ld: unknown node type %T", a))
	}
}

func equalObjects(a, b *Object) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	if len(a.Props) != len(b.Props) {
		return false
	}
	for key, avals := range a.Props {
		bvals, ok := b.Props[key]
		if !ok || len(avals) != len(bvals) {
			return false
		}
		for i := range avals {
			if !EqualNodes(avals[i], bvals[i]) {
				return false
			}
		}
	}
	return true
}

// scalarEqual tolerates the int64/float64 split that JSON decoding
// introduces for numeric literals.
func scalarEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// CloneNode returns a deep copy of a value-object.
func CloneNode(n Node) Node {
	switch v := n.(type) {
	case Scalar, Ref:
		return v
	case *Object:
		out := &Object{ID: v.ID, Types: append([]string(nil), v.Types...), Props: make(map[string][]Node, len(v.Props))}
		for key, vals := range v.Props {
			out.Props[key] = cloneSlot(vals)
		}
		return out
	case *Array:
		return &Array{Kind: v.Kind, Items: cloneSlot(v.Items)}
	default:
		panic(fmt.Sprintf("ld: unknown node type %T", n))
	}
}

func cloneSlot(vals []Node) []Node {
	out := make([]Node, len(vals))
	for i, v := range vals {
		out[i] = CloneNode(v)
	}
	return out
}
