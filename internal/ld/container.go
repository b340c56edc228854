package ld

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/softwarepub/loam/internal/vocab"
)

// Container presents a map-like or list-like view over one node of an
// expanded document. Terms are expanded to fully-qualified IRIs before
// any slot access, so two prefixes of the same vocabulary term always
// address the same storage slot.
//
// A container either owns an Object node, owns an Array node, or is a
// set view aliasing one property slot of its parent's Object. Set
// views write through to the owning slot so chained mutations like
// doc.Get("author") followed by Append work without an explicit
// ensure-key step.
type Container struct {
	parent *Container
	key    string // expanded IRI into the parent, for property containers
	index  int    // position in the parent array, -1 otherwise

	local  []Fragment
	active *ActiveContext // memoized; nil means recompute

	obj       *Object
	arr       *Array
	slotOwner *Object // set view over slotOwner.Props[key] when non-nil
}

// NewDocument creates an empty root document with the CodeMeta base
// context plus any extra vocabularies.
func NewDocument(extra map[string]string) *Container {
	frags := []Fragment{Named(vocab.CodeMetaContextURL), Inline(vocab.BaseTerms())}
	if len(extra) > 0 {
		frags = append(frags, Inline(extra))
	}
	return &Container{index: -1, local: frags, obj: NewObject()}
}

// FromObject wraps an existing map node as a root container.
func FromObject(obj *Object, fragments ...Fragment) *Container {
	return &Container{index: -1, local: fragments, obj: obj}
}

// FromNode wraps any node as a root container. Scalar and Ref nodes
// are rejected: only maps and lists can be containers.
func FromNode(n Node, fragments ...Fragment) (*Container, error) {
	switch v := n.(type) {
	case *Object:
		return &Container{index: -1, local: fragments, obj: v}, nil
	case *Array:
		return &Container{index: -1, local: fragments, arr: v}, nil
	default:
		return nil, newShapeError("cannot wrap %T as a container", n)
	}
}

// IsList reports whether the container has list flavor.
func (c *Container) IsList() bool {
	return c.arr != nil || c.slotOwner != nil
}

// Node returns the canonical node backing this container. Set views
// return a synthesized set node over the aliased slot.
func (c *Container) Node() Node {
	switch {
	case c.obj != nil:
		return c.obj
	case c.arr != nil:
		return c.arr
	default:
		return &Array{Kind: KindSet, Items: c.slotItems()}
	}
}

// Object returns the backing map node, or a shape error for lists.
func (c *Container) Object() (*Object, error) {
	if c.obj == nil {
		return nil, newShapeError("container at %s is not a map node", c.Path())
	}
	return c.obj, nil
}

// Active returns the composed context in effect at this container.
// The composition is memoized and recomputed only after AddContext.
func (c *Container) Active() *ActiveContext {
	if c.active == nil {
		var parent *ActiveContext
		if c.parent != nil {
			parent = c.parent.Active()
		}
		c.active = Compose(parent, c.local)
	}
	return c.active
}

// AddContext folds a new fragment into the local context chain and
// invalidates the memoized composition. Children created before this
// call keep their snapshot; context mutation never propagates
// retroactively.
func (c *Container) AddContext(fragments ...Fragment) {
	c.local = mergeFragments(c.local, fragments)
	c.active = nil
}

// Fragments returns the local context fragments of this container.
func (c *Container) Fragments() []Fragment {
	return append([]Fragment(nil), c.local...)
}

// FullFragments returns the fragment chain from the root down to this
// container, deduplicated in order.
func (c *Container) FullFragments() []Fragment {
	if c.parent == nil {
		return c.Fragments()
	}
	return mergeFragments(c.parent.FullFragments(), c.local)
}

// Path renders the location of this container inside the document.
func (c *Container) Path() string {
	if c.parent == nil {
		return "$"
	}
	if c.index >= 0 {
		return c.parent.Path() + "[" + strconv.Itoa(c.index) + "]"
	}
	return c.parent.Path() + "." + c.parent.Active().Compact(c.key)
}

// Get reads a term from a map-flavored container. The term is
// expanded first; an absent key lazily installs an empty slot so that
// chained writes work. Keywords @id and @type are served in compacted
// form.
func (c *Container) Get(term string) (any, error) {
	if c.IsList() {
		return nil, newTypeError(c.Path(), "cannot read key %q from a list container", term)
	}
	ctx := c.Active()
	iri := ctx.Expand(term)
	switch iri {
	case "@id":
		if c.obj.ID == "" {
			return nil, newLookupError(c.Path(), "node has no @id")
		}
		return ctx.CompactID(c.obj.ID), nil
	case "@type":
		if len(c.obj.Types) == 0 {
			return nil, newLookupError(c.Path(), "node has no @type")
		}
		if len(c.obj.Types) == 1 {
			return ctx.Compact(c.obj.Types[0]), nil
		}
		types := make([]string, len(c.obj.Types))
		for i, t := range c.obj.Types {
			types[i] = ctx.Compact(t)
		}
		return types, nil
	}
	if _, ok := c.obj.Props[iri]; !ok {
		c.obj.Props[iri] = []Node{}
	}
	return c.compactSlot(iri, c.obj.Props[iri]), nil
}

// Set writes a term on a map-flavored container. Plain values are
// expanded to canonical value-objects against the effective context.
func (c *Container) Set(term string, value any) error {
	if c.IsList() {
		return newTypeError(c.Path(), "cannot set key %q on a list container", term)
	}
	ctx := c.Active()
	iri := ctx.Expand(term)
	switch iri {
	case "@id":
		id, ok := value.(string)
		if !ok {
			return newTypeError(c.Path(), "@id must be a string, got %T", value)
		}
		c.obj.ID = ctx.ExpandID(id)
		return nil
	case "@type":
		types, err := expandTypeValue(ctx, value)
		if err != nil {
			return err
		}
		c.obj.Types = types
		return nil
	case "@context":
		frags, err := ParseContextValue(value)
		if err != nil {
			return err
		}
		c.AddContext(frags...)
		return nil
	}
	slot, err := c.expandValue(iri, value)
	if err != nil {
		return err
	}
	c.obj.Props[iri] = slot
	return nil
}

// Delete removes a term's slot.
func (c *Container) Delete(term string) error {
	if c.IsList() {
		return newTypeError(c.Path(), "cannot delete key %q from a list container", term)
	}
	iri := c.Active().Expand(term)
	if _, ok := c.obj.Props[iri]; !ok {
		return newLookupError(c.Path(), "key %q not present", term)
	}
	delete(c.obj.Props, iri)
	return nil
}

// Contains reports whether a term has a slot, without installing one.
func (c *Container) Contains(term string) bool {
	if c.IsList() {
		return false
	}
	iri := c.Active().Expand(term)
	switch iri {
	case "@id":
		return c.obj.ID != ""
	case "@type":
		return len(c.obj.Types) > 0
	}
	_, ok := c.obj.Props[iri]
	return ok
}

// Keys returns the fully-qualified storage keys in sorted order.
func (c *Container) Keys() []string {
	if c.IsList() {
		return nil
	}
	keys := make([]string, 0, len(c.obj.Props))
	for key := range c.obj.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CompactKeys returns the keys compacted through the active context.
func (c *Container) CompactKeys() []string {
	ctx := c.Active()
	keys := c.Keys()
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = ctx.Compact(key)
	}
	return out
}

// Items iterates key/value pairs in sorted key order.
func (c *Container) Items() ([]string, []any) {
	keys := c.Keys()
	values := make([]any, len(keys))
	for i, key := range keys {
		values[i] = c.compactSlot(key, c.obj.Props[key])
	}
	return keys, values
}

// Len returns the number of items in a list-flavored container.
func (c *Container) Len() (int, error) {
	if !c.IsList() {
		return 0, newTypeError(c.Path(), "container is not a list")
	}
	return len(c.slotItems()), nil
}

// At reads one item of a list-flavored container. Out-of-range
// indices are a lookup failure, never coerced.
func (c *Container) At(index int) (any, error) {
	if !c.IsList() {
		return nil, newTypeError(c.Path(), "cannot index into a map container")
	}
	items := c.slotItems()
	if index < 0 || index >= len(items) {
		return nil, newLookupError(c.Path(), "index %d out of bounds (len %d)", index, len(items))
	}
	return c.compactItem(index, items[index]), nil
}

// SetAt replaces one item of a list-flavored container. Index equal
// to the current length appends.
func (c *Container) SetAt(index int, value any) error {
	if !c.IsList() {
		return newTypeError(c.Path(), "cannot index into a map container")
	}
	n, err := c.expandItem(c.key, value)
	if err != nil {
		return err
	}
	items := c.slotItems()
	switch {
	case index >= 0 && index < len(items):
		items[index] = n
		c.setSlotItems(items)
	case index == len(items):
		c.setSlotItems(append(items, n))
	default:
		return newLookupError(c.Path(), "index %d out of bounds to set (len %d)", index, len(items))
	}
	return nil
}

// Append adds a value to the end of a list-flavored container.
func (c *Container) Append(value any) error {
	if !c.IsList() {
		return newTypeError(c.Path(), "cannot append to a map container")
	}
	n, err := c.expandItem(c.key, value)
	if err != nil {
		return err
	}
	c.setSlotItems(append(c.slotItems(), n))
	return nil
}

// AppendToSlot appends one value-object to a property slot without
// replacing it, giving the slot set semantics. The slot is installed
// if absent.
func (c *Container) AppendToSlot(term string, value any) error {
	if c.IsList() {
		return newTypeError(c.Path(), "cannot append to key %q on a list container", term)
	}
	iri := c.Active().Expand(term)
	n, err := c.expandItem(iri, value)
	if err != nil {
		return err
	}
	c.obj.Props[iri] = append(c.obj.Props[iri], n)
	return nil
}

// Equal compares two containers. Map comparison follows the identity
// rule: two identifiers decide; one-sided identifiers are ignored in
// favor of shared-key comparison.
func (c *Container) Equal(other *Container) bool {
	if other == nil {
		return false
	}
	return EqualNodes(c.Node(), other.Node())
}

// ToPlain returns a fully dereferenced, container-free form suitable
// for serialization: compacted keys, unwrapped scalars, nested plain
// maps and slices.
func (c *Container) ToPlain() any {
	ctx := c.Active()
	if c.IsList() {
		items := c.slotItems()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = c.plainItem(item)
		}
		return out
	}
	out := map[string]any{}
	if c.obj.ID != "" {
		out["@id"] = ctx.CompactID(c.obj.ID)
	}
	if len(c.obj.Types) == 1 {
		out["@type"] = ctx.Compact(c.obj.Types[0])
	} else if len(c.obj.Types) > 1 {
		types := make([]any, len(c.obj.Types))
		for i, t := range c.obj.Types {
			types[i] = ctx.Compact(t)
		}
		out["@type"] = types
	}
	for key, slot := range c.obj.Props {
		short := ctx.Compact(key)
		if len(slot) == 1 {
			out[short] = c.plainItem(slot[0])
			continue
		}
		items := make([]any, len(slot))
		for i, item := range slot {
			items[i] = c.plainItem(item)
		}
		out[short] = items
	}
	return out
}

func (c *Container) plainItem(n Node) any {
	switch v := n.(type) {
	case Scalar:
		return v.Value
	case Ref:
		return c.Active().CompactID(v.ID)
	case *Object:
		return (&Container{parent: c, index: -1, obj: v}).ToPlain()
	case *Array:
		out := make([]any, len(v.Items))
		child := &Container{parent: c, index: -1, arr: v}
		for i, item := range v.Items {
			out[i] = child.plainItem(item)
		}
		return out
	default:
		panic(fmt.Sprintf("ld: unknown node type %T", n))
	}
}

// slotItems returns the flat item sequence of a list container.
func (c *Container) slotItems() []Node {
	if c.arr != nil {
		return c.arr.Items
	}
	return c.slotOwner.Props[c.key]
}

func (c *Container) setSlotItems(items []Node) {
	if c.arr != nil {
		c.arr.Items = items
		return
	}
	c.slotOwner.Props[c.key] = items
}

// compactSlot converts a property slot to its ergonomic read form: a
// single value-object unwraps, anything else becomes a set view over
// the slot itself so appends write through.
func (c *Container) compactSlot(iri string, slot []Node) any {
	if len(slot) == 1 {
		return c.compactChild(iri, -1, slot[0])
	}
	return &Container{parent: c, key: iri, index: -1, slotOwner: c.obj}
}

// compactItem converts one item of a list container; the child keeps
// the list's storage key so nested term expansion stays anchored.
func (c *Container) compactItem(index int, n Node) any {
	return c.compactChild(c.key, index, n)
}

func (c *Container) compactChild(iri string, index int, n Node) any {
	switch v := n.(type) {
	case Scalar:
		return v.Value
	case Ref:
		return c.Active().CompactID(v.ID)
	case *Object:
		return &Container{parent: c, key: iri, index: index, obj: v}
	case *Array:
		return &Container{parent: c, key: iri, index: index, arr: v}
	default:
		panic(fmt.Sprintf("ld: unknown node type %T", n))
	}
}

// expandValue converts a plain value to a canonical slot for the
// given storage key.
func (c *Container) expandValue(iri string, value any) ([]Node, error) {
	switch v := value.(type) {
	case *Container:
		// Containers passed by reference unwrap to canonical form and
		// fold their context chain into the target's.
		c.AddContext(v.Fragments()...)
		switch {
		case v.obj != nil:
			return []Node{v.obj}, nil
		case v.arr != nil:
			return []Node{v.arr}, nil
		default:
			return append([]Node(nil), v.slotItems()...), nil
		}
	case []any:
		arr := NewArray(KindList)
		for i, item := range v {
			n, err := c.expandItem(iri, item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Items = append(arr.Items, n)
		}
		return []Node{arr}, nil
	default:
		n, err := c.expandItem(iri, value)
		if err != nil {
			return nil, err
		}
		return []Node{n}, nil
	}
}

// expandItem converts one plain value to a single value-object.
func (c *Container) expandItem(iri string, value any) (Node, error) {
	switch v := value.(type) {
	case nil:
		return nil, newShapeError("cannot store nil at %s", c.Path())
	case Node:
		return v, nil
	case *Container:
		switch {
		case v.obj != nil:
			c.AddContext(v.Fragments()...)
			return v.obj, nil
		case v.arr != nil:
			c.AddContext(v.Fragments()...)
			return v.arr, nil
		default:
			return &Array{Kind: KindSet, Items: append([]Node(nil), v.slotItems()...)}, nil
		}
	case map[string]any:
		return c.expandMap(v)
	case []any:
		arr := NewArray(KindList)
		for i, item := range v {
			n, err := c.expandItem(iri, item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Items = append(arr.Items, n)
		}
		return arr, nil
	case string:
		return Scalar{Value: v}, nil
	case bool:
		return Scalar{Value: v}, nil
	case int:
		return Scalar{Value: int64(v)}, nil
	case int64, float64:
		return Scalar{Value: v}, nil
	case time.Time:
		// Times carry an explicit type tag so they survive compaction.
		return Scalar{Value: v.Format(time.RFC3339), Type: vocab.SchemaDateTime}, nil
	default:
		return nil, newShapeError("cannot expand value of type %T at %s", value, c.Path())
	}
}

// expandMap recursively expands a plain nested map against the
// effective context: this container's active context composed with
// any @context the value itself supplies.
func (c *Container) expandMap(m map[string]any) (Node, error) {
	var frags []Fragment
	if rawCtx, ok := m["@context"]; ok {
		parsed, err := ParseContextValue(rawCtx)
		if err != nil {
			return nil, err
		}
		frags = parsed
	}
	effective := Compose(c.Active(), frags)

	if rawID, ok := m["@id"]; ok && len(m) == 1 {
		id, ok := rawID.(string)
		if !ok {
			return nil, newTypeError(c.Path(), "@id must be a string, got %T", rawID)
		}
		return Ref{ID: effective.ExpandID(id)}, nil
	}
	if rawValue, ok := m["@value"]; ok {
		s := Scalar{Value: normalizeScalar(rawValue)}
		if t, ok := m["@type"].(string); ok {
			s.Type = effective.Expand(t)
		}
		return s, nil
	}

	obj := NewObject()
	child := &Container{parent: c, index: -1, local: frags, obj: obj}
	for key, raw := range m {
		if key == "@context" {
			continue
		}
		if err := child.Set(key, raw); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return obj, nil
}

func expandTypeValue(ctx *ActiveContext, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{ctx.Expand(v)}, nil
	case []string:
		out := make([]string, len(v))
		for i, t := range v {
			out[i] = ctx.Expand(t)
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, newShapeError("@type entries must be strings, got %T", item)
			}
			out = append(out, ctx.Expand(s))
		}
		return out, nil
	default:
		return nil, newShapeError("@type must be a string or string list, got %T", value)
	}
}

// ParseContextValue converts a raw @context value (string, prefix
// map, or list of either) into context fragments.
func ParseContextValue(raw any) ([]Fragment, error) {
	switch v := raw.(type) {
	case string:
		return []Fragment{Named(v)}, nil
	case map[string]string:
		return []Fragment{Inline(v)}, nil
	case map[string]any:
		terms := make(map[string]string, len(v))
		for prefix, base := range v {
			s, ok := base.(string)
			if !ok {
				// Only plain prefix mappings live in this layer;
				// scoped term definitions are skipped.
				continue
			}
			terms[prefix] = s
		}
		return []Fragment{Inline(terms)}, nil
	case []any:
		var out []Fragment
		for _, item := range v {
			frags, err := ParseContextValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, frags...)
		}
		return out, nil
	case []Fragment:
		return v, nil
	case Fragment:
		return []Fragment{v}, nil
	default:
		return nil, newShapeError("@context must be a string, map, or list, got %T", raw)
	}
}
