package ld

import (
	"sort"
	"strings"

	"github.com/softwarepub/loam/internal/vocab"
)

// Fragment is one entry of a container's local context: either a named
// remote context (resolved against the bundled table, the merge hot
// path performs no I/O) or an inline prefix table. The empty prefix
// names the default vocabulary.
type Fragment struct {
	URL   string
	Terms map[string]string
}

// Inline builds an inline fragment from a prefix table.
func Inline(terms map[string]string) Fragment {
	return Fragment{Terms: terms}
}

// Named builds a fragment referencing a remote context document.
func Named(url string) Fragment {
	return Fragment{URL: url}
}

func (f Fragment) equal(other Fragment) bool {
	if f.URL != other.URL || len(f.Terms) != len(other.Terms) {
		return false
	}
	for k, v := range f.Terms {
		if other.Terms[k] != v {
			return false
		}
	}
	return true
}

// mergeFragments appends the entries of tail that head does not
// already carry, preserving order.
func mergeFragments(head, tail []Fragment) []Fragment {
	out := append([]Fragment(nil), head...)
	for _, f := range tail {
		seen := false
		for _, have := range out {
			if have.equal(f) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}

// ActiveContext is the composed prefix table in effect at a container.
// It is a read-only snapshot: composing a child never mutates the
// parent, and a parent changed after composition does not propagate.
type ActiveContext struct {
	vocab  string
	prefix map[string]string
}

// emptyContext is the composition seed for root containers.
var emptyContext = &ActiveContext{prefix: map[string]string{}}

// Compose derives a new active context from a parent snapshot and a
// list of local fragments, applied left to right.
func Compose(parent *ActiveContext, fragments []Fragment) *ActiveContext {
	if parent == nil {
		parent = emptyContext
	}
	if len(fragments) == 0 {
		return parent
	}
	out := &ActiveContext{
		vocab:  parent.vocab,
		prefix: make(map[string]string, len(parent.prefix)),
	}
	for k, v := range parent.prefix {
		out.prefix[k] = v
	}
	for _, f := range fragments {
		terms := f.Terms
		if f.URL != "" {
			terms = vocab.Bundled[f.URL]
		}
		for prefix, base := range terms {
			if prefix == "" {
				out.vocab = base
				continue
			}
			out.prefix[prefix] = base
		}
	}
	return out
}

// Expand resolves a term to its fully-qualified IRI. Keywords and
// absolute IRIs pass through; prefixed terms resolve against the
// prefix table; bare terms resolve against the default vocabulary.
func (c *ActiveContext) Expand(term string) string {
	if term == "" || strings.HasPrefix(term, "@") || isAbsolute(term) {
		return term
	}
	if prefix, rest, ok := strings.Cut(term, ":"); ok {
		if base, known := c.prefix[prefix]; known {
			return base + rest
		}
		return term
	}
	if c.vocab != "" {
		return c.vocab + term
	}
	return term
}

// ExpandID resolves an identifier. Identifiers never fall back to the
// default vocabulary; a bare name stays a bare (relative) name.
func (c *ActiveContext) ExpandID(id string) string {
	if id == "" || strings.HasPrefix(id, "@") || isAbsolute(id) {
		return id
	}
	if prefix, rest, ok := strings.Cut(id, ":"); ok {
		if base, known := c.prefix[prefix]; known {
			return base + rest
		}
	}
	return id
}

// Compact maps a fully-qualified IRI back to its shortest term form:
// default-vocabulary remainder first, then the longest matching
// prefix, then the IRI itself.
func (c *ActiveContext) Compact(iri string) string {
	if iri == "" || strings.HasPrefix(iri, "@") {
		return iri
	}
	if c.vocab != "" && strings.HasPrefix(iri, c.vocab) {
		rest := iri[len(c.vocab):]
		if rest != "" && !strings.ContainsAny(rest, "/#:") {
			return rest
		}
	}
	if prefix, rest, ok := c.longestPrefix(iri); ok {
		return prefix + ":" + rest
	}
	return iri
}

// CompactID maps an identifier IRI back through the prefix table only.
func (c *ActiveContext) CompactID(iri string) string {
	if prefix, rest, ok := c.longestPrefix(iri); ok {
		return prefix + ":" + rest
	}
	return iri
}

func (c *ActiveContext) longestPrefix(iri string) (prefix, rest string, ok bool) {
	// Sorted iteration keeps compaction deterministic when two
	// prefixes share a base IRI.
	names := make([]string, 0, len(c.prefix))
	for name := range c.prefix {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	for _, name := range names {
		base := c.prefix[name]
		if base == "" || !strings.HasPrefix(iri, base) || iri == base {
			continue
		}
		if best == "" || len(base) > len(c.prefix[best]) {
			best = name
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, iri[len(c.prefix[best]):], true
}

func isAbsolute(term string) bool {
	return strings.Contains(term, "://") || strings.HasPrefix(term, "urn:") ||
		strings.HasPrefix(term, "mailto:") || strings.HasPrefix(term, "doi:")
}
