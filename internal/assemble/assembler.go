package assemble

import (
	"fmt"
	"log/slog"

	"github.com/softwarepub/loam/internal/harvest"
	"github.com/softwarepub/loam/internal/ld"
	"github.com/softwarepub/loam/internal/merge"
	"github.com/softwarepub/loam/internal/path"
	"github.com/softwarepub/loam/internal/vocab"
)

// Assembler merges accumulated source data into one document.
// Sources merge in the order Merge is called; with the default
// registry the first source to claim a field wins it.
type Assembler struct {
	doc      *ld.Container
	registry *merge.Registry
	prov     *merge.Provenance
	contexts []ld.Fragment
	tags     map[string]map[string]string
	log      *slog.Logger
}

// New creates an assembler around a fresh document typed as
// schema:SoftwareSourceCode. extra adds prefix terms to the
// document's base context.
func New(registry *merge.Registry, extra map[string]string) *Assembler {
	doc := ld.NewDocument(extra)
	if err := doc.Set("@type", "SoftwareSourceCode"); err != nil {
		// a fresh document always accepts a constant type
		panic(err)
	}
	prov := merge.NewProvenance(doc)
	registry.SetProvenance(prov)
	return &Assembler{
		doc:      doc,
		registry: registry,
		prov:     prov,
		tags:     map[string]map[string]string{},
		log:      slog.Default().With("component", "assemble"),
	}
}

// Document returns the document under assembly.
func (a *Assembler) Document() *ld.Container { return a.doc }

// Provenance returns the provenance recorder attached to the
// document.
func (a *Assembler) Provenance() *merge.Provenance { return a.prov }

// Tags returns the provenance attributes recorded per concrete path.
func (a *Assembler) Tags() map[string]map[string]string { return a.tags }

// Merge folds one source's accumulator into the document. Each entry
// is one strategy-mediated write; a rejected write keeps the existing
// value and surfaces as a conflict error. Merge processes every entry
// regardless of earlier conflicts and returns all errors.
func (a *Assembler) Merge(acc *harvest.Accumulator) []error {
	a.addContexts(acc.Fragments())

	var errs []error
	for _, e := range acc.Entries() {
		p, err := path.Parse(e.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", acc.Source(), err))
			continue
		}
		concrete, err := path.Update(a.doc, p, e.Value, a.registry, path.UpdateOptions{
			Source: acc.Source(),
			Attrs:  e.Attrs,
			Tags:   a.tags,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", acc.Source(), err))
			continue
		}
		a.log.Debug("merged", "source", acc.Source(), "path", concrete.String())
	}
	return errs
}

// Finalize compacts the document to its plain JSON form and stamps
// the @context: the CodeMeta context URL, any named contexts the
// sources contributed, and a single map of their inline terms.
func (a *Assembler) Finalize() (map[string]any, error) {
	plain, ok := a.doc.ToPlain().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("assembled document is not an object")
	}
	plain["@context"] = a.contextValue()
	return plain, nil
}

// Assemble merges all accumulators in order into a new assembler.
// Conflicts do not abort assembly; they are returned alongside the
// assembler so the caller decides whether they are fatal.
func Assemble(registry *merge.Registry, accs ...*harvest.Accumulator) (*Assembler, []error) {
	a := New(registry, nil)
	var errs []error
	for _, acc := range accs {
		errs = append(errs, a.Merge(acc)...)
	}
	return a, errs
}

func (a *Assembler) addContexts(fragments []ld.Fragment) {
	for _, f := range fragments {
		if f.URL != "" && a.hasNamed(f.URL) {
			continue
		}
		a.contexts = append(a.contexts, f)
		a.doc.AddContext(f)
	}
}

func (a *Assembler) hasNamed(url string) bool {
	if url == vocab.CodeMetaContextURL {
		return true
	}
	for _, f := range a.contexts {
		if f.URL == url {
			return true
		}
	}
	return false
}

func (a *Assembler) contextValue() any {
	parts := []any{vocab.CodeMetaContextURL}
	inline := map[string]any{}
	for _, f := range a.contexts {
		if f.URL != "" {
			parts = append(parts, f.URL)
			continue
		}
		for term, iri := range f.Terms {
			inline[term] = iri
		}
	}
	if len(inline) > 0 {
		parts = append(parts, inline)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}
