package ld

import (
	"encoding/json"
	"fmt"
)

// DecodeNode converts one decoded-JSON value-object in expanded form
// into its canonical Node. Returns a shape error for anything that is
// not a valid expanded value-object.
func DecodeNode(raw any) (Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, newShapeError("expected a value-object, got %T", raw)
	}

	if isJSONRef(m) {
		id, _ := m["@id"].(string)
		return Ref{ID: id}, nil
	}

	if v, ok := m["@value"]; ok {
		s := Scalar{Value: normalizeScalar(v)}
		if t, ok := m["@type"].(string); ok {
			s.Type = t
		}
		return s, nil
	}

	for _, kind := range []ArrayKind{KindList, KindSet, KindGraph} {
		items, ok := m[string(kind)]
		if !ok {
			continue
		}
		rawItems, ok := items.([]any)
		if !ok {
			return nil, newShapeError("%s must hold an array, got %T", kind, items)
		}
		arr := NewArray(kind)
		for i, item := range rawItems {
			n, err := DecodeNode(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
			}
			arr.Items = append(arr.Items, n)
		}
		return arr, nil
	}

	return decodeObject(m)
}

func decodeObject(m map[string]any) (*Object, error) {
	obj := NewObject()
	for key, raw := range m {
		switch key {
		case "@id":
			id, ok := raw.(string)
			if !ok {
				return nil, newShapeError("@id must be a string, got %T", raw)
			}
			obj.ID = id
		case "@type":
			types, err := decodeTypes(raw)
			if err != nil {
				return nil, err
			}
			obj.Types = types
		case "@context":
			// Context fragments live on the Container, not the node.
			continue
		default:
			slot, err := DecodeSlot(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj.Props[key] = slot
		}
	}
	return obj, nil
}

func decodeTypes(raw any) ([]string, error) {
	switch t := raw.(type) {
	case string:
		return []string{t}, nil
	case []any:
		types := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, newShapeError("@type entries must be strings, got %T", item)
			}
			types = append(types, s)
		}
		return types, nil
	default:
		return nil, newShapeError("@type must be a string or array, got %T", raw)
	}
}

// DecodeSlot converts the expanded-form array stored under a property
// key into a canonical slot.
func DecodeSlot(raw any) ([]Node, error) {
	items, ok := raw.([]any)
	if !ok {
		// Tolerate a bare value-object; expanded form always wraps in
		// an array but cached snapshots from older runs may not.
		n, err := DecodeNode(raw)
		if err != nil {
			return nil, err
		}
		return []Node{n}, nil
	}
	slot := make([]Node, 0, len(items))
	for i, item := range items {
		n, err := DecodeNode(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		slot = append(slot, n)
	}
	return slot, nil
}

// EncodeNode converts a canonical Node back into its expanded JSON
// form (maps and slices ready for encoding/json).
func EncodeNode(n Node) any {
	switch v := n.(type) {
	case Scalar:
		m := map[string]any{"@value": v.Value}
		if v.Type != "" {
			m["@type"] = v.Type
		}
		return m
	case Ref:
		return map[string]any{"@id": v.ID}
	case *Object:
		m := map[string]any{}
		if v.ID != "" {
			m["@id"] = v.ID
		}
		if len(v.Types) > 0 {
			m["@type"] = encodeStrings(v.Types)
		}
		for key, slot := range v.Props {
			m[key] = EncodeSlot(slot)
		}
		return m
	case *Array:
		return map[string]any{string(v.Kind): EncodeSlot(v.Items)}
	default:
		panic(fmt.Sprintf("ld: unknown node type %T", n))
	}
}

// EncodeSlot converts a slot back to its expanded-form array.
func EncodeSlot(slot []Node) []any {
	out := make([]any, len(slot))
	for i, n := range slot {
		out[i] = EncodeNode(n)
	}
	return out
}

func encodeStrings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ParseDocument decodes a JSON document already in expanded form. The
// top level may be the single-node array the expansion algorithm
// produces, or a bare node object.
func ParseDocument(data []byte) (*Object, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if arr, ok := raw.([]any); ok {
		if len(arr) != 1 {
			return nil, newShapeError("expanded document must hold exactly one node, got %d", len(arr))
		}
		raw = arr[0]
	}
	n, err := DecodeNode(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := n.(*Object)
	if !ok {
		return nil, newShapeError("document root must be a map node, got %T", n)
	}
	return obj, nil
}

func isJSONRef(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, ok := m["@id"]
	return ok
}

// normalizeScalar collapses the numeric types JSON decoding produces.
// Whole floats become int64 so values survive a cache round-trip
// without changing identity.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case int:
		return int64(n)
	}
	return v
}
