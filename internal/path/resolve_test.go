package path

import (
	"testing"

	"github.com/softwarepub/loam/internal/ld"
)

func seedAuthors(t *testing.T) *ld.Container {
	t.Helper()
	doc := ld.NewDocument(nil)
	err := doc.Set("author", []any{
		map[string]any{"name": "Ada", "email": "ada@example.org"},
		map[string]any{"name": "Grace", "email": "grace@example.org"},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return doc
}

func TestResolve_ConcreteIndex(t *testing.T) {
	doc := seedAuthors(t)
	res, err := Resolve(doc, MustParse("author[1].email"), ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := res.Concrete.String(); got != "author[1].email" {
		t.Errorf("Concrete = %q", got)
	}
	if !res.Head.Equal(Key("email")) {
		t.Errorf("Head = %v", res.Head)
	}
	if res.Tail.Len() != 1 {
		t.Errorf("Tail = %q, want a single segment", res.Tail)
	}
}

func TestResolve_WildcardByQuery(t *testing.T) {
	doc := seedAuthors(t)
	cases := []struct {
		query map[string]any
		want  string
	}{
		{map[string]any{"name": "Ada"}, "author[0].email"},
		{map[string]any{"name": "Grace"}, "author[1].email"},
		{map[string]any{"email": "grace@example.org"}, "author[1].email"},
	}
	for _, tc := range cases {
		res, err := Resolve(doc, MustParse("author[*].email"), ResolveOptions{Query: tc.query})
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", tc.query, err)
		}
		if got := res.Concrete.String(); got != tc.want {
			t.Errorf("Resolve(%v) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestResolve_WildcardIsStable(t *testing.T) {
	doc := seedAuthors(t)
	query := map[string]any{"name": "Grace"}
	first, err := Resolve(doc, MustParse("author[*].email"), ResolveOptions{Query: query})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := Resolve(doc, MustParse("author[*].email"), ResolveOptions{Query: query})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !first.Concrete.Equal(second.Concrete) {
		t.Errorf("repeated resolution diverged: %q vs %q", first.Concrete, second.Concrete)
	}
}

func TestResolve_WildcardNoMatchStopsEarly(t *testing.T) {
	doc := seedAuthors(t)
	res, err := Resolve(doc, MustParse("author[*].email"), ResolveOptions{
		Query: map[string]any{"name": "Nobody"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Tail.Len() != 2 {
		t.Errorf("Tail = %q, want the unresolved suffix", res.Tail)
	}
	if res.Head.Kind() != KindWildcard {
		t.Errorf("Head = %v, want the wildcard", res.Head)
	}
}

func TestResolve_MissingKeyStopsEarly(t *testing.T) {
	doc := seedAuthors(t)
	res, err := Resolve(doc, MustParse("publisher.name"), ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target != doc {
		t.Error("early stop should leave the target at the root")
	}
	if res.Tail.Len() != 2 {
		t.Errorf("Tail = %q, want the full remaining path", res.Tail)
	}
}

func TestResolve_CreateBuildsIntermediates(t *testing.T) {
	doc := ld.NewDocument(nil)
	res, err := Resolve(doc, MustParse("author[*].name"), ResolveOptions{Create: true})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := res.Concrete.String(); got != "author[0].name" {
		t.Errorf("Concrete = %q", got)
	}

	raw, err := doc.Get("author")
	if err != nil {
		t.Fatalf("Get(author) failed: %v", err)
	}
	list, ok := raw.(*ld.Container)
	if !ok || !list.IsList() {
		t.Fatalf("author = %T, want a list container", raw)
	}
	if n, _ := list.Len(); n != 1 {
		t.Errorf("author length = %d, want the appended node", n)
	}
}

func TestResolve_FinalWildcardCreateAppendsNothing(t *testing.T) {
	doc := seedAuthors(t)
	res, err := Resolve(doc, MustParse("author[*]"), ResolveOptions{
		Create: true,
		Query:  map[string]any{"name": "Nobody"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := res.Concrete.String(); got != "author[2]" {
		t.Errorf("Concrete = %q, want the append slot", got)
	}
	raw, err := doc.Get("author")
	if err != nil {
		t.Fatalf("Get(author) failed: %v", err)
	}
	if n, _ := raw.(*ld.Container).Len(); n != 2 {
		t.Errorf("author length = %d, the final wildcard must not append", n)
	}
}

func TestResolve_CreateIndexAgainstMap(t *testing.T) {
	doc := ld.NewDocument(nil)
	if err := doc.Set("author", map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_, err := Resolve(doc, MustParse("author[0].name"), ResolveOptions{Create: true})
	if !ld.IsTypeMismatch(err) {
		t.Errorf("err = %v, want a type mismatch", err)
	}
}

func TestResolve_CreateIndexOutOfBounds(t *testing.T) {
	doc := seedAuthors(t)
	_, err := Resolve(doc, MustParse("author[5].name"), ResolveOptions{Create: true})
	if !ld.IsLookup(err) {
		t.Errorf("err = %v, want a lookup failure", err)
	}
}

func TestResolve_EmptyPath(t *testing.T) {
	doc := ld.NewDocument(nil)
	if _, err := Resolve(doc, Root, ResolveOptions{}); err == nil {
		t.Error("resolving the empty path should fail")
	}
}

func TestGetFrom(t *testing.T) {
	doc := seedAuthors(t)
	got, err := GetFrom(doc, MustParse("author[0].email"))
	if err != nil {
		t.Fatalf("GetFrom failed: %v", err)
	}
	if got != "ada@example.org" {
		t.Errorf("GetFrom = %v", got)
	}
}

func TestGetFrom_KeyAgainstList(t *testing.T) {
	doc := seedAuthors(t)
	_, err := GetFrom(doc, MustParse("author.name"))
	if !ld.IsTypeMismatch(err) {
		t.Errorf("err = %v, want a type mismatch", err)
	}
}

func TestGetFrom_UnmatchedWildcard(t *testing.T) {
	doc := seedAuthors(t)
	_, err := GetFrom(doc, MustParse("author[*].email"))
	if !ld.IsLookup(err) {
		t.Errorf("err = %v, want a lookup failure", err)
	}
}

func TestResolve_CreateThroughScalarKey(t *testing.T) {
	doc := ld.NewDocument(nil)
	if err := doc.Set("name", "Ada"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_, err := Resolve(doc, MustParse("name.family"), ResolveOptions{Create: true})
	if !ld.IsTypeMismatch(err) {
		t.Errorf("err = %v, a scalar blocking the walk must be a type mismatch", err)
	}
}

func TestResolve_CreateThroughScalarIndex(t *testing.T) {
	doc := ld.NewDocument(nil)
	if err := doc.Set("keywords", []any{"metadata"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_, err := Resolve(doc, MustParse("keywords[0].label"), ResolveOptions{Create: true})
	if !ld.IsTypeMismatch(err) {
		t.Errorf("err = %v, a scalar blocking the walk must be a type mismatch", err)
	}
}
