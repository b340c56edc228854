// Package path implements the path-expression language used to
// address locations inside a linked-data document: dotted fields with
// integer or wildcard indices, such as author[0].name or keywords[*].
//
// Path values are immutable. Every operation that would change a path
// (extending it, rewriting a wildcard to a concrete index during
// resolution) returns a new value instead.
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind discriminates the three segment variants.
type SegmentKind int

const (
	KindKey SegmentKind = iota
	KindIndex
	KindWildcard
)

// Segment is one step of a path: a field name, a concrete index, or
// the wildcard marker.
type Segment struct {
	kind  SegmentKind
	key   string
	index int
}

// Key builds a field-name segment.
func Key(k string) Segment { return Segment{kind: KindKey, key: k} }

// Index builds a concrete index segment.
func Index(i int) Segment { return Segment{kind: KindIndex, index: i} }

// Wildcard is the any/append index segment.
var Wildcard = Segment{kind: KindWildcard}

// Kind returns the segment variant.
func (s Segment) Kind() SegmentKind { return s.kind }

// Name returns the field name of a key segment.
func (s Segment) Name() string { return s.key }

// Value returns the index of a concrete index segment.
func (s Segment) Value() int { return s.index }

// Equal compares two segments; a wildcard matches any concrete index.
func (s Segment) Equal(other Segment) bool {
	if s.kind == KindWildcard || other.kind == KindWildcard {
		return s.kind != KindKey && other.kind != KindKey
	}
	return s == other
}

func (s Segment) String() string {
	switch s.kind {
	case KindKey:
		return s.key
	case KindIndex:
		return "[" + strconv.Itoa(s.index) + "]"
	default:
		return "[*]"
	}
}

// Path is an immutable address into a document tree.
type Path struct {
	segs []Segment
}

// New builds a path from segments.
func New(segs ...Segment) Path {
	return Path{segs: append([]Segment(nil), segs...)}
}

// Root is the empty path.
var Root = Path{}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool { return len(p.segs) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// At returns the i-th segment.
func (p Path) At(i int) Segment { return p.segs[i] }

// Last returns the final segment. Panics on the empty path.
func (p Path) Last() Segment { return p.segs[len(p.segs)-1] }

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p.segs) == 0 {
		return Root
	}
	return Path{segs: p.segs[:len(p.segs)-1]}
}

// Child extends the path with a field-name segment.
func (p Path) Child(key string) Path { return p.extend(Key(key)) }

// Item extends the path with a concrete index segment.
func (p Path) Item(index int) Path { return p.extend(Index(index)) }

// Any extends the path with a wildcard segment.
func (p Path) Any() Path { return p.extend(Wildcard) }

func (p Path) extend(s Segment) Path {
	segs := make([]Segment, len(p.segs)+1)
	copy(segs, p.segs)
	segs[len(p.segs)] = s
	return Path{segs: segs}
}

// Slice returns the sub-path from segment i (inclusive) onward. The
// underlying segments are shared; paths are never mutated.
func (p Path) Slice(i int) Path {
	if i >= len(p.segs) {
		return Root
	}
	return Path{segs: p.segs[i:]}
}

// withIndex returns a copy of the path with segment i rewritten to a
// concrete index. Used by wildcard resolution.
func (p Path) withIndex(i, index int) Path {
	segs := append([]Segment(nil), p.segs...)
	segs[i] = Index(index)
	return Path{segs: segs}
}

// Equal compares position-wise; wildcards match any concrete index.
func (p Path) Equal(other Path) bool {
	if len(p.segs) != len(other.segs) {
		return false
	}
	for i := range p.segs {
		if !p.segs[i].Equal(other.segs[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether other is this path or a descendant of it.
func (p Path) Contains(other Path) bool {
	if len(other.segs) < len(p.segs) {
		return false
	}
	for i := range p.segs {
		if !p.segs[i].Equal(other.segs[i]) {
			return false
		}
	}
	return true
}

// String renders the path in its parsable text form.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.segs {
		if s.kind == KindKey && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Parse reads the textual form of a path. The grammar is one or more
// dot-separated fields; a field is a key (letters, digits after the
// first rune, plus @ : _ -) followed by zero or more bracketed
// indices, each an integer or *.
func Parse(text string) (Path, error) {
	if text == "" {
		return Root, fmt.Errorf("parse path: empty input")
	}
	var segs []Segment
	rest := text
	for {
		field, tail, err := parseField(rest)
		if err != nil {
			return Root, fmt.Errorf("parse path %q: %w", text, err)
		}
		segs = append(segs, field...)
		if tail == "" {
			return Path{segs: segs}, nil
		}
		if !strings.HasPrefix(tail, ".") {
			return Root, fmt.Errorf("parse path %q: unexpected %q", text, tail)
		}
		rest = tail[1:]
	}
}

// MustParse is Parse for statically known paths; it panics on error.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func parseField(text string) ([]Segment, string, error) {
	i := 0
	for i < len(text) && isKeyByte(text[i], i == 0) {
		i++
	}
	if i == 0 {
		return nil, "", fmt.Errorf("expected a key, got %q", text)
	}
	segs := []Segment{Key(text[:i])}
	rest := text[i:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated index in %q", rest)
		}
		idx := rest[1:end]
		if idx == "*" {
			segs = append(segs, Wildcard)
		} else {
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, "", fmt.Errorf("invalid index %q", idx)
			}
			segs = append(segs, Index(n))
		}
		rest = rest[end+1:]
	}
	return segs, rest, nil
}

func isKeyByte(b byte, first bool) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b == '@' || b == '_' || b == ':' || b == '-':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}
