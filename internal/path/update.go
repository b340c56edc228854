package path

import (
	"github.com/softwarepub/loam/internal/ld"
)

// Assigner decides how a new value combines with whatever is already
// stored at a resolved path. The merge strategy registry implements
// this; Update stays agnostic of strategy selection.
type Assigner interface {
	Assign(target *ld.Container, concrete Path, value any, source string) error
}

// UpdateOptions carry the provenance facets of a write.
type UpdateOptions struct {
	// Source names the entry point that produced the value; strategy
	// filters can match on it.
	Source string

	// Query overrides the wildcard query. When nil and the value is a
	// map, the value's own fields serve as the query, so writing an
	// identity-bearing record finds its existing slot.
	Query map[string]any

	// Attrs are the provenance attributes recorded for this write.
	Attrs map[string]string

	// Tags, when non-nil, collects attrs per concrete path string for
	// audit purposes.
	Tags map[string]map[string]string
}

// Update resolves the path with creation enabled and delegates the
// final assignment to the given assigner. It returns the concrete
// path the write landed on.
func Update(root *ld.Container, p Path, value any, assigner Assigner, opts UpdateOptions) (Path, error) {
	query := opts.Query
	if query == nil {
		if m, ok := value.(map[string]any); ok {
			query = m
		}
	}
	res, err := Resolve(root, p, ResolveOptions{Create: true, Query: query})
	if err != nil {
		return Root, err
	}
	if err := assigner.Assign(res.Target, res.Concrete, value, opts.Source); err != nil {
		return res.Concrete, err
	}
	if opts.Tags != nil && len(opts.Attrs) > 0 {
		key := res.Concrete.String()
		if existing, ok := opts.Tags[key]; ok {
			for k, v := range opts.Attrs {
				existing[k] = v
			}
		} else {
			tag := make(map[string]string, len(opts.Attrs))
			for k, v := range opts.Attrs {
				tag[k] = v
			}
			opts.Tags[key] = tag
		}
	}
	return res.Concrete, nil
}
