package path

import "testing"

func TestParse_RoundTrip(t *testing.T) {
	cases := []string{
		"name",
		"@type",
		"schema:name",
		"date-released",
		"author[0].name",
		"author[*]",
		"keywords[*]",
		"author[0].affiliation[1].name",
		"a_b[2]",
		"contributor[*].email",
	}
	for _, text := range cases {
		p, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", text, err)
			continue
		}
		if got := p.String(); got != text {
			t.Errorf("Parse(%q).String() = %q", text, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"author[",
		"author[x]",
		"author[-1]",
		".name",
		"author..name",
		"name.",
		"[0]",
		"author[0]name",
	}
	for _, text := range cases {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", text)
		}
	}
}

func TestPath_String(t *testing.T) {
	p := New(Key("author"), Index(0), Key("name"))
	if got := p.String(); got != "author[0].name" {
		t.Errorf("String() = %q", got)
	}
	q := New(Key("keywords"), Wildcard)
	if got := q.String(); got != "keywords[*]" {
		t.Errorf("String() = %q", got)
	}
}

func TestPath_Immutability(t *testing.T) {
	base := MustParse("author")
	child := base.Child("name")
	item := base.Item(3)
	wild := base.Any()

	if got := base.String(); got != "author" {
		t.Errorf("base mutated to %q", got)
	}
	if got := child.String(); got != "author.name" {
		t.Errorf("Child = %q", got)
	}
	if got := item.String(); got != "author[3]" {
		t.Errorf("Item = %q", got)
	}
	if got := wild.String(); got != "author[*]" {
		t.Errorf("Any = %q", got)
	}
}

func TestSegment_Equal(t *testing.T) {
	if !Wildcard.Equal(Index(3)) {
		t.Error("wildcard should match a concrete index")
	}
	if !Index(3).Equal(Wildcard) {
		t.Error("concrete index should match a wildcard")
	}
	if Wildcard.Equal(Key("author")) {
		t.Error("wildcard must not match a key")
	}
	if Index(1).Equal(Index(2)) {
		t.Error("distinct indices must not be equal")
	}
	if !Key("name").Equal(Key("name")) {
		t.Error("identical keys must be equal")
	}
}

func TestPath_Equal(t *testing.T) {
	if !MustParse("author[*].name").Equal(MustParse("author[2].name")) {
		t.Error("wildcard path should equal its concrete form")
	}
	if MustParse("author[0]").Equal(MustParse("author[0].name")) {
		t.Error("paths of different length must not be equal")
	}
}

func TestPath_Contains(t *testing.T) {
	cases := []struct {
		parent, child string
		want          bool
	}{
		{"author", "author[0].name", true},
		{"author[*]", "author[3]", true},
		{"author[*].name", "author[1].name", true},
		{"author[0]", "author[1].name", false},
		{"author", "name", false},
		{"author[0].name", "author[0]", false},
	}
	for _, tc := range cases {
		got := MustParse(tc.parent).Contains(MustParse(tc.child))
		if got != tc.want {
			t.Errorf("Contains(%q, %q) = %v, want %v", tc.parent, tc.child, got, tc.want)
		}
	}
}

func TestPath_ParentLastSlice(t *testing.T) {
	p := MustParse("author[0].name")
	if got := p.Parent().String(); got != "author[0]" {
		t.Errorf("Parent = %q", got)
	}
	if got := p.Last(); !got.Equal(Key("name")) {
		t.Errorf("Last = %v", got)
	}
	if got := p.Slice(1).String(); got != "[0].name" {
		t.Errorf("Slice(1) = %q", got)
	}
	if !p.Slice(5).IsZero() {
		t.Error("Slice past the end should be the empty path")
	}
	if !Root.Parent().IsZero() {
		t.Error("Parent of the root should stay root")
	}
}
