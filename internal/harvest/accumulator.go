package harvest

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"time"

	"github.com/softwarepub/loam/internal/ld"
	"github.com/softwarepub/loam/internal/path"
)

// Volatile provenance attributes. They are refreshed on every write
// and excluded from the attribute comparison that decides whether a
// new candidate replaces a prior one.
const (
	AttrTimestamp = "timestamp"
	AttrHarvester = "harvester"
)

// Attrs are the caller-supplied provenance attributes of a candidate
// value.
type Attrs map[string]string

// Entry is one candidate value for a logical key.
type Entry struct {
	Key   string
	Value any
	Attrs Attrs
}

// Accumulator stages the candidate values of one source. Multiple
// entries may coexist under the same key; an entry is replaced in
// place only when its stable provenance attributes match the new
// write exactly.
type Accumulator struct {
	source    string
	order     []string
	entries   map[string][]*Entry
	fragments []ld.Fragment
	timestamp string
	log       *slog.Logger
}

// New creates an empty accumulator for a named source.
func New(source string) *Accumulator {
	return &Accumulator{
		source:    source,
		entries:   map[string][]*Entry{},
		timestamp: time.Now().Format(time.RFC3339),
		log:       slog.Default().With("source", source),
	}
}

// FromEntries rebuilds an accumulator from cached state. Attributes
// are installed verbatim; the cache already carries the volatile
// attributes of the run that produced them.
func FromEntries(source string, entries []Entry, fragments []ld.Fragment) *Accumulator {
	a := New(source)
	a.fragments = append(a.fragments, fragments...)
	for _, e := range entries {
		if _, ok := a.entries[e.Key]; !ok {
			a.order = append(a.order, e.Key)
		}
		entry := e
		a.entries[e.Key] = append(a.entries[e.Key], &entry)
	}
	return a
}

// Source returns the source name.
func (a *Accumulator) Source() string { return a.source }

// AddContext records context fragments this source contributes to
// the assembled document.
func (a *Accumulator) AddContext(fragments ...ld.Fragment) {
	a.fragments = append(a.fragments, fragments...)
}

// Fragments returns the source's context fragments.
func (a *Accumulator) Fragments() []ld.Fragment {
	return append([]ld.Fragment(nil), a.fragments...)
}

// Accumulate records a candidate value for a key. A prior entry is
// replaced only when its stable attributes equal attrs exactly, so a
// re-harvest from the same origin updates instead of duplicating.
func (a *Accumulator) Accumulate(key string, value any, attrs Attrs) {
	stable, ts, harvester := a.splitVolatile(attrs)

	for _, e := range a.entries[key] {
		existing, _, _ := a.splitVolatile(e.Attrs)
		if attrsEqual(existing, stable) {
			a.log.Debug("accumulate replace", "key", key, "attrs", stable)
			e.Value = value
			e.Attrs = joinVolatile(stable, ts, harvester)
			return
		}
	}

	if _, ok := a.entries[key]; !ok {
		a.order = append(a.order, key)
	}
	a.entries[key] = append(a.entries[key], &Entry{
		Key:   key,
		Value: value,
		Attrs: joinVolatile(stable, ts, harvester),
	})
}

// AccumulateTree flattens a nested value: a map accumulates each of
// its fields under key.field, a slice each element under key[i],
// recursively, with the same attributes at every level.
func (a *Accumulator) AccumulateTree(p path.Path, value any, attrs Attrs) {
	switch v := value.(type) {
	case map[string]any:
		for _, field := range sortedFields(v) {
			a.AccumulateTree(p.Child(field), v[field], attrs)
		}
	case []any:
		for i, item := range v {
			a.AccumulateTree(p.Item(i), item, attrs)
		}
	default:
		a.Accumulate(p.String(), value, attrs)
	}
}

// AccumulateFrom bulk-accumulates a plain mapping, flattening nested
// values.
func (a *Accumulator) AccumulateFrom(data map[string]any, attrs Attrs) {
	for _, key := range sortedFields(data) {
		a.AccumulateTree(path.New(path.Key(key)), data[key], attrs)
	}
}

// Entries returns all entries: keys in first-accumulation order,
// entries per key in accumulation order.
func (a *Accumulator) Entries() []Entry {
	var out []Entry
	for _, key := range a.order {
		for _, e := range a.entries[key] {
			out = append(out, Entry{Key: e.Key, Value: e.Value, Attrs: cloneAttrs(e.Attrs)})
		}
	}
	return out
}

// Values returns the candidate values staged for a key, in
// accumulation order.
func (a *Accumulator) Values(key string) []any {
	var out []any
	for _, e := range a.entries[key] {
		out = append(out, e.Value)
	}
	return out
}

// Data returns the one agreed value for a key, cross-checking every
// staged candidate: divergent candidates are an error, because this
// accessor serves callers that need a single answer before assembly
// arbitrates. When tags is non-nil the winning entry's attributes are
// copied into it.
func (a *Accumulator) Data(key string, tags Attrs) (any, error) {
	entries := a.entries[key]
	if len(entries) == 0 {
		return nil, fmt.Errorf("harvest: no data for %q in source %s", key, a.source)
	}
	first := entries[0]
	for _, e := range entries[1:] {
		if !reflect.DeepEqual(first.Value, e.Value) {
			return nil, fmt.Errorf("harvest: divergent candidates for %q in source %s: %v vs %v",
				key, a.source, first.Value, e.Value)
		}
	}
	if tags != nil {
		for k, v := range first.Attrs {
			tags[k] = v
		}
	}
	return first.Value, nil
}

// Len returns the total number of entries.
func (a *Accumulator) Len() int {
	n := 0
	for _, es := range a.entries {
		n += len(es)
	}
	return n
}

// Drain returns all entries and clears the accumulator, so further
// processors no longer see this source's data.
func (a *Accumulator) Drain() []Entry {
	out := a.Entries()
	a.order = nil
	a.entries = map[string][]*Entry{}
	return out
}

func (a *Accumulator) splitVolatile(attrs Attrs) (stable Attrs, ts, harvester string) {
	stable = Attrs{}
	ts = a.timestamp
	harvester = a.source
	for k, v := range attrs {
		switch k {
		case AttrTimestamp:
			ts = v
		case AttrHarvester:
			harvester = v
		default:
			stable[k] = v
		}
	}
	return stable, ts, harvester
}

func joinVolatile(stable Attrs, ts, harvester string) Attrs {
	out := cloneAttrs(stable)
	out[AttrTimestamp] = ts
	out[AttrHarvester] = harvester
	return out
}

func attrsEqual(a, b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func cloneAttrs(attrs Attrs) Attrs {
	out := make(Attrs, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func sortedFields(m map[string]any) []string {
	fields := make([]string, 0, len(m))
	for k := range m {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
