package path

import (
	"errors"
	"testing"

	"github.com/softwarepub/loam/internal/ld"
)

// setAssigner is the minimal assigner: it writes the value straight
// into the head slot, with no merge semantics.
type setAssigner struct {
	concrete Path
	source   string
	err      error
}

func (a *setAssigner) Assign(target *ld.Container, concrete Path, value any, source string) error {
	a.concrete = concrete
	a.source = source
	if a.err != nil {
		return a.err
	}
	head := concrete.Last()
	if head.Kind() == KindKey {
		return target.Set(head.Name(), value)
	}
	return target.SetAt(head.Value(), value)
}

func TestUpdate_CreatesAndDelegates(t *testing.T) {
	doc := ld.NewDocument(nil)
	asg := &setAssigner{}
	concrete, err := Update(doc, MustParse("author[*].name"), "Ada", asg, UpdateOptions{Source: "cff"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := concrete.String(); got != "author[0].name" {
		t.Errorf("concrete = %q", got)
	}
	if asg.source != "cff" {
		t.Errorf("source = %q", asg.source)
	}

	got, err := GetFrom(doc, MustParse("author[0].name"))
	if err != nil {
		t.Fatalf("GetFrom failed: %v", err)
	}
	if got != "Ada" {
		t.Errorf("written value = %v", got)
	}
}

func TestUpdate_MapValueServesAsQuery(t *testing.T) {
	doc := seedAuthors(t)
	asg := &setAssigner{}
	concrete, err := Update(doc, MustParse("author[*]"), map[string]any{
		"name":  "Grace",
		"email": "grace@example.org",
	}, asg, UpdateOptions{Source: "codemeta"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := concrete.String(); got != "author[1]" {
		t.Errorf("concrete = %q, want the matching record's slot", got)
	}
}

func TestUpdate_ExplicitQueryOverridesValue(t *testing.T) {
	doc := seedAuthors(t)
	asg := &setAssigner{}
	concrete, err := Update(doc, MustParse("author[*]"), map[string]any{"name": "Grace"}, asg, UpdateOptions{
		Source: "codemeta",
		Query:  map[string]any{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := concrete.String(); got != "author[0]" {
		t.Errorf("concrete = %q, want the explicit query's slot", got)
	}
}

func TestUpdate_RecordsTags(t *testing.T) {
	doc := ld.NewDocument(nil)
	tags := map[string]map[string]string{}
	asg := &setAssigner{}

	_, err := Update(doc, MustParse("name"), "loam", asg, UpdateOptions{
		Source: "cff",
		Attrs:  map[string]string{"harvester": "cff"},
		Tags:   tags,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	_, err = Update(doc, MustParse("name"), "loam", asg, UpdateOptions{
		Source: "codemeta",
		Attrs:  map[string]string{"local_path": "codemeta.json"},
		Tags:   tags,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, ok := tags["name"]
	if !ok {
		t.Fatalf("no tag recorded, tags = %v", tags)
	}
	if got["harvester"] != "cff" || got["local_path"] != "codemeta.json" {
		t.Errorf("tags merged wrong: %v", got)
	}
}

func TestUpdate_AssignerErrorPropagates(t *testing.T) {
	doc := ld.NewDocument(nil)
	wantErr := errors.New("assign refused")
	asg := &setAssigner{err: wantErr}

	concrete, err := Update(doc, MustParse("version"), "1.0.0", asg, UpdateOptions{
		Source: "cff",
		Attrs:  map[string]string{"harvester": "cff"},
		Tags:   map[string]map[string]string{},
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the assigner's error", err)
	}
	if got := concrete.String(); got != "version" {
		t.Errorf("concrete = %q, the landing path should still be reported", got)
	}
}

func TestUpdate_ScalarBlocksDescent(t *testing.T) {
	doc := ld.NewDocument(nil)
	asg := &setAssigner{}
	if _, err := Update(doc, MustParse("name"), "Ada", asg, UpdateOptions{Source: "cff"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	_, err := Update(doc, MustParse("name.family"), "Lovelace", asg, UpdateOptions{Source: "cff"})
	if !ld.IsTypeMismatch(err) {
		t.Fatalf("err = %v, want a type mismatch", err)
	}
	if doc.Contains("family") {
		t.Error("the blocked write must not land on the document root")
	}
	got, _ := doc.Get("name")
	if got != "Ada" {
		t.Errorf("name = %v, the scalar must survive untouched", got)
	}
}
