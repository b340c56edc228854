package merge

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/softwarepub/loam/internal/ld"
	"github.com/softwarepub/loam/internal/vocab"
)

// nodeIRIFormat shapes the identifiers of provenance graph nodes:
// one uuid per run, a per-type counter for stable ordering.
const nodeIRIFormat = "graph://%s/%s#%d"

// Provenance records replace/reject audit edges on the document
// itself: each discarded value becomes a PropertyValue node in the
// runtime graph, referenced from the matching audit property.
type Provenance struct {
	doc     *ld.Container
	runID   uuid.UUID
	counter map[string]int
}

// NewProvenance attaches a provenance recorder to a document and
// installs the runtime prefix table on its context chain.
func NewProvenance(doc *ld.Container) *Provenance {
	doc.AddContext(ld.Inline(vocab.ProvTerms()))
	return &Provenance{
		doc:     doc,
		runID:   uuid.New(),
		counter: map[string]int{},
	}
}

// Replaced records that the value previously stored at path was
// overwritten.
func (p *Provenance) Replaced(pathStr string, discarded any) error {
	return p.record(vocab.RuntimeReplace, pathStr, discarded)
}

// Rejected records that an incoming value at path was not accepted.
func (p *Provenance) Rejected(pathStr string, discarded any) error {
	return p.record(vocab.RuntimeReject, pathStr, discarded)
}

func (p *Provenance) record(rel, pathStr string, discarded any) error {
	node := ld.NewObject()
	node.ID = p.nextNodeID("PropertyValue")
	node.Types = []string{vocab.SchemaPropertyValue}
	node.Props[vocab.SchemaName] = []ld.Node{ld.Scalar{Value: pathStr}}
	node.Props[vocab.SchemaValue] = []ld.Node{ld.Scalar{Value: renderValue(discarded)}}

	root, err := p.doc.Object()
	if err != nil {
		return err
	}
	graphSlot := root.Props[vocab.RuntimeGraph]
	var graph *ld.Array
	if len(graphSlot) == 1 {
		if arr, ok := graphSlot[0].(*ld.Array); ok {
			graph = arr
		}
	}
	if graph == nil {
		graph = ld.NewArray(ld.KindGraph)
		root.Props[vocab.RuntimeGraph] = []ld.Node{graph}
	}
	graph.Items = append(graph.Items, node)
	root.Props[rel] = append(root.Props[rel], ld.Ref{ID: node.ID})
	return nil
}

func (p *Provenance) nextNodeID(kind string) string {
	p.counter[kind]++
	return fmt.Sprintf(nodeIRIFormat, p.runID, kind, p.counter[kind])
}

// EdgeCount returns how many audit edges exist for a relation IRI.
// Used by reports and tests.
func (p *Provenance) EdgeCount(rel string) int {
	root, err := p.doc.Object()
	if err != nil {
		return 0
	}
	return len(root.Props[rel])
}

func renderValue(v any) string {
	switch t := v.(type) {
	case *ld.Container:
		b, err := ld.MarshalCanonicalValue(t.ToPlain())
		if err != nil {
			return fmt.Sprint(t.ToPlain())
		}
		return string(b)
	case map[string]any, []any:
		b, err := ld.MarshalCanonicalValue(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
