package merge

import (
	"fmt"
	"log/slog"

	"github.com/softwarepub/loam/internal/path"
	"github.com/softwarepub/loam/internal/vocab"
)

// Strategy pairs a filter with a merge action. All supplied facets
// must match a write for the strategy to apply; omitted facets are
// wildcards.
type Strategy struct {
	// Path is the textual path pattern; the write's path must equal
	// or be contained in it. Empty matches every path.
	Path string

	// ValueKind restricts the strategy to writes whose containing
	// node carries this type IRI, or whose value has this shape
	// ("list" or "map"). Empty matches every kind.
	ValueKind string

	// Source restricts the strategy to writes from one entry point.
	Source string

	// Action is the merge behavior applied on a match.
	Action Action
}

// Facets describe one write for strategy selection.
type Facets struct {
	Path   path.Path
	Kinds  []string
	Source string
}

type entry struct {
	pattern   path.Path
	hasPath   bool
	valueKind string
	source    string
	action    Action
}

// Registry is a prioritized set of merge strategies. Registration
// order defines priority; the first full match wins. The zero value
// is usable and always falls back to the built-in default.
type Registry struct {
	entries []entry
	prov    *Provenance
	log     *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{log: slog.Default()}
}

// Default returns the registry used for CodeMeta assembly: collect
// type tags, concatenate runtime audit properties, and merge authors
// by identifier or e-mail instead of duplicating them.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Strategy{Path: "@type", Action: Collect(MatchEqual)})
	r.MustRegister(Strategy{Path: "loam-rt:graph", Action: Concat()})
	r.MustRegister(Strategy{Path: "loam-rt:replace", Action: Concat()})
	r.MustRegister(Strategy{Path: "loam-rt:reject", Action: Concat()})
	r.MustRegister(Strategy{
		Path:      "author",
		ValueKind: vocab.SchemaSourceCode,
		Action:    MergeSet(MatchKeys("@id", "email")),
	})
	return r
}

// Register appends a strategy. Later registrations have lower
// priority than earlier ones.
func (r *Registry) Register(s Strategy) error {
	e := entry{valueKind: s.ValueKind, source: s.Source, action: s.Action}
	if s.Path != "" {
		pattern, err := path.Parse(s.Path)
		if err != nil {
			return fmt.Errorf("register strategy: %w", err)
		}
		e.pattern = pattern
		e.hasPath = true
	}
	r.entries = append(r.entries, e)
	return nil
}

// MustRegister is Register for statically known strategies.
func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// SetProvenance attaches the recorder that receives replace/reject
// audit edges.
func (r *Registry) SetProvenance(p *Provenance) {
	r.prov = p
}

// SetLogger replaces the registry's logger.
func (r *Registry) SetLogger(log *slog.Logger) {
	r.log = log
}

// Select returns the first registered strategy whose facets all
// match, or false when only the built-in default applies.
func (r *Registry) Select(f Facets) (Action, bool) {
	for _, e := range r.entries {
		if e.hasPath && !e.pattern.Contains(f.Path) && !patternTail(e.pattern, f.Path) {
			continue
		}
		if e.valueKind != "" && !containsKind(f.Kinds, e.valueKind) {
			continue
		}
		if e.source != "" && e.source != f.Source {
			continue
		}
		return e.action, true
	}
	return Action{}, false
}

// patternTail matches single-key patterns against the final segment
// of a write path, so a strategy for "@type" applies at any depth.
func patternTail(pattern, p path.Path) bool {
	if pattern.Len() != 1 || p.IsZero() {
		return false
	}
	return pattern.At(0).Equal(p.Last())
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
