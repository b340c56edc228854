package merge

import (
	"errors"
	"sort"

	"github.com/softwarepub/loam/internal/ld"
	"github.com/softwarepub/loam/internal/path"
)

// Assign combines a new value with whatever is stored at the head of
// a resolved path. It implements path.Assigner. Conflicts come back
// as *Conflict errors; the write itself never aborts a surrounding
// pass.
func (r *Registry) Assign(target *ld.Container, concrete path.Path, value any, source string) error {
	head := concrete.Last()
	switch head.Kind() {
	case path.KindKey:
		return r.assignKey(target, concrete, head.Name(), value, source)
	case path.KindIndex:
		return r.assignIndex(target, concrete, head.Value(), value, source)
	default:
		// An unresolved wildcard means no item matched and creation
		// was off; with creation it resolves to the append position.
		return target.Append(value)
	}
}

func (r *Registry) assignKey(target *ld.Container, concrete path.Path, key string, value any, source string) error {
	if target.IsList() {
		return &ld.ModelError{
			Code:    ld.ErrCodeTypeMismatch,
			Message: "cannot set key " + key + " on a list container",
			Path:    concrete.String(),
		}
	}
	if !r.hasValue(target, key) {
		return target.Set(key, value)
	}
	old, err := target.Get(key)
	if err != nil {
		return err
	}

	facets := Facets{Path: concrete, Kinds: kindsFor(target, value), Source: source}
	action, ok := r.Select(facets)
	if !ok {
		return r.defaultMerge(target, concrete, key, old, value, source)
	}
	r.log.Debug("merge strategy selected",
		"path", concrete.String(),
		"action", string(action.Kind),
		"source", source)
	return r.apply(action, target, concrete, key, old, value, source)
}

func (r *Registry) apply(action Action, target *ld.Container, concrete path.Path, key string, old, value any, source string) error {
	switch action.Kind {
	case ActionReplace:
		if plainEqual(old, value) {
			return nil
		}
		if err := r.recordReplaced(concrete, old); err != nil {
			return err
		}
		return target.Set(key, value)

	case ActionReject:
		if plainEqual(old, value) {
			return nil
		}
		if err := r.recordRejected(concrete, value); err != nil {
			return err
		}
		return &Conflict{Path: concrete.String(), Existing: plainify(old), Incoming: plainify(value), Source: source}

	case ActionConcat:
		merged := append(asList(old), asList(value)...)
		return target.Set(key, merged)

	case ActionCollect:
		items := asList(old)
		for _, candidate := range asList(value) {
			found := false
			for _, existing := range items {
				if action.Match(existing, candidate) {
					found = true
					break
				}
			}
			if !found {
				items = append(items, candidate)
			}
		}
		if len(items) == 1 {
			return target.Set(key, items[0])
		}
		return target.Set(key, items)

	case ActionMergeSet:
		return r.mergeSet(action, target, concrete, key, old, value, source)

	default:
		return r.defaultMerge(target, concrete, key, old, value, source)
	}
}

// mergeSet appends unmatched items and recursively merges matched
// ones field by field under the same selection rules.
func (r *Registry) mergeSet(action Action, target *ld.Container, concrete path.Path, key string, old, value any, source string) error {
	existing := asList(old)
	var errs []error
	for _, candidate := range asList(value) {
		idx := -1
		for i, item := range existing {
			if action.Match(item, candidate) {
				idx = i
				break
			}
		}
		if idx < 0 {
			if err := target.AppendToSlot(key, candidate); err != nil {
				errs = append(errs, err)
				continue
			}
			existing = append(existing, candidate)
			continue
		}
		item, ok := existing[idx].(*ld.Container)
		fields, isMap := candidate.(map[string]any)
		if !ok || item.IsList() || !isMap {
			// Matched but not mergeable field-by-field; the existing
			// item wins, nothing to record.
			continue
		}
		for _, field := range sortedKeys(fields) {
			childPath := concrete.Item(idx).Child(field)
			if err := r.assignKey(item, childPath, field, fields[field], source); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// defaultMerge is the built-in last resort: merge maps field by
// field, append to arrays, keep equal scalars, and treat two
// explicit differing scalars as a conflict.
func (r *Registry) defaultMerge(target *ld.Container, concrete path.Path, key string, old, value any, source string) error {
	if plainEqual(old, value) {
		return nil
	}

	oldC, oldIsContainer := old.(*ld.Container)

	if m, ok := value.(map[string]any); ok && oldIsContainer && !oldC.IsList() {
		var errs []error
		for _, field := range sortedKeys(m) {
			childPath := concrete.Child(field)
			if err := r.assignKey(oldC, childPath, field, m[field], source); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if oldIsContainer && oldC.IsList() {
		if length, _ := oldC.Len(); length == 0 {
			return target.Set(key, value)
		}
		for _, item := range asList(value) {
			if err := target.AppendToSlot(key, item); err != nil {
				return err
			}
		}
		return nil
	}

	// Two explicit differing scalars: the first source wins and the
	// divergence is reported.
	if err := r.recordRejected(concrete, value); err != nil {
		return err
	}
	return &Conflict{Path: concrete.String(), Existing: plainify(old), Incoming: plainify(value), Source: source}
}

func (r *Registry) assignIndex(target *ld.Container, concrete path.Path, index int, value any, source string) error {
	if !target.IsList() {
		return &ld.ModelError{
			Code:    ld.ErrCodeTypeMismatch,
			Message: "cannot index into a map container",
			Path:    concrete.String(),
		}
	}
	length, err := target.Len()
	if err != nil {
		return err
	}
	switch {
	case index < length:
		old, err := target.At(index)
		if err != nil {
			return err
		}
		if m, ok := value.(map[string]any); ok {
			if item, ok := old.(*ld.Container); ok && !item.IsList() {
				var errs []error
				for _, field := range sortedKeys(m) {
					if err := r.assignKey(item, concrete.Child(field), field, m[field], source); err != nil {
						errs = append(errs, err)
					}
				}
				return errors.Join(errs...)
			}
		}
		if plainEqual(old, value) {
			return nil
		}

		facets := Facets{Path: concrete, Kinds: kindsFor(target, value), Source: source}
		if action, ok := r.Select(facets); ok {
			switch action.Kind {
			case ActionReplace:
				if err := r.recordReplaced(concrete, old); err != nil {
					return err
				}
				return target.SetAt(index, value)
			case ActionReject:
				if err := r.recordRejected(concrete, value); err != nil {
					return err
				}
				return &Conflict{Path: concrete.String(), Existing: plainify(old), Incoming: plainify(value), Source: source}
			}
		}

		if item, ok := old.(*ld.Container); ok && item.IsList() {
			for _, v := range asList(value) {
				if err := item.Append(v); err != nil {
					return err
				}
			}
			return nil
		}

		// Two explicit differing values at one index: the first
		// source wins and the divergence is reported.
		if err := r.recordRejected(concrete, value); err != nil {
			return err
		}
		return &Conflict{Path: concrete.String(), Existing: plainify(old), Incoming: plainify(value), Source: source}
	case index == length:
		return target.Append(value)
	default:
		return &ld.ModelError{
			Code:    ld.ErrCodeLookup,
			Message: "index out of bounds to set",
			Path:    concrete.String(),
		}
	}
}

// hasValue reports whether a key holds a non-empty slot. An empty
// lazily installed slot counts as absent for merge purposes.
func (r *Registry) hasValue(target *ld.Container, key string) bool {
	if !target.Contains(key) {
		return false
	}
	val, err := target.Get(key)
	if err != nil {
		return false
	}
	if c, ok := val.(*ld.Container); ok && c.IsList() {
		length, _ := c.Len()
		return length > 0
	}
	return true
}

func (r *Registry) recordReplaced(concrete path.Path, discarded any) error {
	if r.prov == nil {
		return nil
	}
	return r.prov.Replaced(concrete.String(), discarded)
}

func (r *Registry) recordRejected(concrete path.Path, discarded any) error {
	if r.prov == nil {
		return nil
	}
	return r.prov.Rejected(concrete.String(), discarded)
}

// kindsFor gathers the value-kind facets of a write: the containing
// node's type IRIs plus the shape of the incoming value.
func kindsFor(target *ld.Container, value any) []string {
	var kinds []string
	if obj, err := target.Object(); err == nil {
		kinds = append(kinds, obj.Types...)
	}
	switch v := value.(type) {
	case map[string]any:
		kinds = append(kinds, "map")
	case []any:
		kinds = append(kinds, "list")
	case *ld.Container:
		if v.IsList() {
			kinds = append(kinds, "list")
		} else {
			kinds = append(kinds, "map")
		}
	}
	return kinds
}

// asList normalizes a value to a flat item slice: containers yield
// their items, bare values become one-element lists.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case *ld.Container:
		if !t.IsList() {
			return []any{t}
		}
		length, err := t.Len()
		if err != nil {
			return nil
		}
		out := make([]any, 0, length)
		for i := 0; i < length; i++ {
			item, err := t.At(i)
			if err != nil {
				continue
			}
			out = append(out, item)
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic field order keeps repeated assemblies identical.
	sort.Strings(keys)
	return keys
}
