package merge

import (
	"reflect"

	"github.com/softwarepub/loam/internal/ld"
)

// MatchFunc reports whether an existing collection item and a
// candidate item denote the same record.
type MatchFunc func(existing, candidate any) bool

// MatchEqual matches items that are structurally equal.
func MatchEqual(existing, candidate any) bool {
	return plainEqual(existing, candidate)
}

// MatchKeys matches identity-bearing records by shared key values:
// the items match when at least one of the given fields is present on
// both sides and every shared field agrees.
func MatchKeys(keys ...string) MatchFunc {
	return func(existing, candidate any) bool {
		left := fieldsOf(existing)
		right := fieldsOf(candidate)
		if left == nil || right == nil {
			return false
		}
		active := 0
		for _, key := range keys {
			lv, lok := left(key)
			rv, rok := right(key)
			if !lok || !rok {
				continue
			}
			if !plainEqual(lv, rv) {
				return false
			}
			active++
		}
		return active > 0
	}
}

// fieldsOf adapts map-shaped values to a uniform field accessor.
func fieldsOf(v any) func(key string) (any, bool) {
	switch t := v.(type) {
	case *ld.Container:
		if t.IsList() {
			return nil
		}
		return func(key string) (any, bool) {
			if !t.Contains(key) {
				return nil, false
			}
			val, err := t.Get(key)
			if err != nil {
				return nil, false
			}
			return val, true
		}
	case map[string]any:
		return func(key string) (any, bool) {
			val, ok := t[key]
			return val, ok
		}
	default:
		return nil
	}
}

// plainEqual compares values after normalizing containers to their
// plain form and collapsing the int/int64/float64 split that JSON
// decoding introduces.
func plainEqual(a, b any) bool {
	return reflect.DeepEqual(plainify(a), plainify(b))
}

func plainify(v any) any {
	switch t := v.(type) {
	case *ld.Container:
		return plainify(t.ToPlain())
	case ld.Node:
		c, err := ld.FromNode(t)
		if err != nil {
			if s, ok := t.(ld.Scalar); ok {
				return plainify(s.Value)
			}
			if r, ok := t.(ld.Ref); ok {
				return r.ID
			}
			return t
		}
		return plainify(c.ToPlain())
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainify(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plainify(item)
		}
		return out
	default:
		return v
	}
}
