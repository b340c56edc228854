package path

import (
	"fmt"

	"github.com/softwarepub/loam/internal/ld"
)

// ResolveOptions control how a path is walked.
type ResolveOptions struct {
	// Create instantiates missing containers along the way. The kind
	// of a created container is inferred from the next segment: a key
	// needs a map, an index or wildcard needs an array.
	Create bool

	// Query drives wildcard resolution: the first array item whose
	// named fields subset-equal the query is selected.
	Query map[string]any
}

// Resolution is the outcome of walking a path against a document.
// Resolution never mutates the path being resolved; rewritten
// wildcard indices surface in Concrete.
type Resolution struct {
	// Target is the container holding the head item.
	Target *ld.Container

	// Concrete is the input path with wildcard segments rewritten to
	// the concrete indices they resolved to.
	Concrete Path

	// Head is the final resolved segment, addressing the item inside
	// Target.
	Head Segment

	// Tail is the unresolved suffix, starting at Head. A fully
	// resolved path has a tail of exactly one segment.
	Tail Path
}

// Resolve walks a path segment by segment from the root container.
// Without Create, resolution stops early at the first missing step
// and returns the remaining suffix as the tail.
func Resolve(root *ld.Container, p Path, opts ResolveOptions) (Resolution, error) {
	if p.IsZero() {
		return Resolution{}, fmt.Errorf("resolve: empty path")
	}
	concrete := p
	cur := root

	i := 0
	for i < concrete.Len()-1 {
		seg := concrete.At(i)
		next, idx, err := descend(cur, seg, concrete, i, opts)
		if err != nil {
			return Resolution{}, err
		}
		if idx >= 0 {
			concrete = concrete.withIndex(i, idx)
		}
		if next == nil {
			break
		}
		cur = next
		i++
	}

	if i == concrete.Len()-1 {
		seg := concrete.At(i)
		if seg.Kind() == KindWildcard && cur.IsList() {
			if idx, ok := findMatch(cur, opts.Query); ok {
				concrete = concrete.withIndex(i, idx)
			} else if opts.Create {
				length, _ := cur.Len()
				concrete = concrete.withIndex(i, length)
			}
		}
	}

	return Resolution{
		Target:   cur,
		Concrete: concrete,
		Head:     concrete.At(i),
		Tail:     concrete.Slice(i),
	}, nil
}

// descend advances one step. It returns the child container, the
// concrete index a wildcard resolved to (-1 when not applicable), or
// (nil, -1, nil) when resolution must stop early.
func descend(cur *ld.Container, seg Segment, p Path, at int, opts ResolveOptions) (*ld.Container, int, error) {
	next := p.At(at + 1)
	switch seg.Kind() {
	case KindKey:
		if cur.IsList() {
			if opts.Create {
				return nil, -1, typeErrorAt(p, at, "key %q against a list container", seg.Name())
			}
			return nil, -1, nil
		}
		if !cur.Contains(seg.Name()) {
			if !opts.Create {
				return nil, -1, nil
			}
			if err := cur.Set(seg.Name(), newNodeFor(next)); err != nil {
				return nil, -1, err
			}
		}
		val, err := cur.Get(seg.Name())
		if err != nil {
			return nil, -1, err
		}
		child, ok := val.(*ld.Container)
		if !ok {
			if opts.Create {
				return nil, -1, typeErrorAt(p, at, "key %q holds a scalar, cannot descend", seg.Name())
			}
			// A scalar cannot be descended into; the remaining path
			// is returned as the unresolved tail.
			return nil, -1, nil
		}
		if child.IsList() {
			if length, _ := child.Len(); length == 0 && next.Kind() == KindKey && opts.Create {
				// An empty slot where the path needs a map node.
				if err := cur.Set(seg.Name(), ld.NewObject()); err != nil {
					return nil, -1, err
				}
				val, err = cur.Get(seg.Name())
				if err != nil {
					return nil, -1, err
				}
				child = val.(*ld.Container)
			}
		}
		return child, -1, nil

	case KindIndex:
		if !cur.IsList() {
			if opts.Create {
				return nil, -1, typeErrorAt(p, at, "index %d against a map container", seg.Value())
			}
			return nil, -1, nil
		}
		length, _ := cur.Len()
		switch {
		case seg.Value() < length:
			val, err := cur.At(seg.Value())
			if err != nil {
				return nil, -1, err
			}
			if child, ok := val.(*ld.Container); ok {
				return child, -1, nil
			}
			if opts.Create {
				return nil, -1, typeErrorAt(p, at, "index %d holds a scalar, cannot descend", seg.Value())
			}
			return nil, -1, nil
		case seg.Value() == length && opts.Create:
			if err := cur.Append(newNodeFor(next)); err != nil {
				return nil, -1, err
			}
			val, err := cur.At(seg.Value())
			if err != nil {
				return nil, -1, err
			}
			return val.(*ld.Container), -1, nil
		case opts.Create:
			return nil, -1, lookupErrorAt(p, at, "index %d out of bounds (len %d)", seg.Value(), length)
		default:
			return nil, -1, nil
		}

	default: // wildcard
		if !cur.IsList() {
			if opts.Create {
				return nil, -1, typeErrorAt(p, at, "wildcard against a map container")
			}
			return nil, -1, nil
		}
		if idx, ok := findMatch(cur, opts.Query); ok {
			val, err := cur.At(idx)
			if err != nil {
				return nil, -1, err
			}
			if child, ok := val.(*ld.Container); ok {
				return child, idx, nil
			}
			return nil, idx, nil
		}
		if !opts.Create {
			return nil, -1, nil
		}
		length, _ := cur.Len()
		if err := cur.Append(newNodeFor(next)); err != nil {
			return nil, -1, err
		}
		val, err := cur.At(length)
		if err != nil {
			return nil, -1, err
		}
		return val.(*ld.Container), length, nil
	}
}

// newNodeFor infers the container kind a segment needs to descend
// into: keys need maps, indices and wildcards need arrays.
func newNodeFor(seg Segment) ld.Node {
	if seg.Kind() == KindKey {
		return ld.NewObject()
	}
	return ld.NewArray(ld.KindList)
}

// findMatch scans a list container for the first item whose fields
// subset-equal the query. Only fields present on both sides are
// compared, and at least one must be. Repeated resolutions over an
// unchanged array always return the same index.
func findMatch(list *ld.Container, query map[string]any) (int, bool) {
	if len(query) == 0 {
		return 0, false
	}
	length, err := list.Len()
	if err != nil {
		return 0, false
	}
	for i := 0; i < length; i++ {
		val, err := list.At(i)
		if err != nil {
			continue
		}
		item, ok := val.(*ld.Container)
		if !ok || item.IsList() {
			continue
		}
		matched := 0
		ok = true
		for field, want := range query {
			if !item.Contains(field) {
				continue
			}
			got, err := item.Get(field)
			if err != nil || !queryValueEqual(got, want) {
				ok = false
				break
			}
			matched++
		}
		if ok && matched > 0 {
			return i, true
		}
	}
	return 0, false
}

func queryValueEqual(got, want any) bool {
	switch w := want.(type) {
	case string, bool:
		return got == w
	case int:
		return got == int64(w) || got == w
	case int64, float64:
		return got == w
	default:
		// Nested structures do not participate in query matching.
		return false
	}
}

// GetFrom resolves the path without creation and fetches the
// addressed value. Missing intermediate steps surface as lookup or
// type-mismatch failures.
func GetFrom(root *ld.Container, p Path) (any, error) {
	res, err := Resolve(root, p, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	if res.Tail.Len() > 1 {
		return nil, fetchError(res.Target, res.Head, res.Concrete)
	}
	return fetch(res.Target, res.Head, res.Concrete)
}

// fetch reads the head item out of its holding container.
func fetch(target *ld.Container, head Segment, p Path) (any, error) {
	switch head.Kind() {
	case KindKey:
		if target.IsList() {
			return nil, typeErrorAt(p, p.Len()-1, "key %q against a list container", head.Name())
		}
		return target.Get(head.Name())
	case KindIndex:
		if !target.IsList() {
			return nil, typeErrorAt(p, p.Len()-1, "index %d against a map container", head.Value())
		}
		return target.At(head.Value())
	default:
		return nil, lookupErrorAt(p, p.Len()-1, "no item matched the wildcard query")
	}
}

// fetchError reproduces the failure that stopped an early-terminated
// resolution, so callers see the precise cause.
func fetchError(target *ld.Container, head Segment, p Path) error {
	_, err := fetch(target, head, p)
	if err != nil {
		return err
	}
	return lookupErrorAt(p, p.Len()-1, "path not fully resolvable")
}

func typeErrorAt(p Path, at int, format string, args ...any) error {
	return &ld.ModelError{
		Code:    ld.ErrCodeTypeMismatch,
		Message: fmt.Sprintf(format, args...),
		Path:    p.Slice(0).String() + " (segment " + p.At(at).String() + ")",
	}
}

func lookupErrorAt(p Path, at int, format string, args ...any) error {
	return &ld.ModelError{
		Code:    ld.ErrCodeLookup,
		Message: fmt.Sprintf(format, args...),
		Path:    p.String() + " (segment " + p.At(at).String() + ")",
	}
}
