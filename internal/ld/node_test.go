package ld

import "testing"

func TestEqualNodes_Scalars(t *testing.T) {
	cases := []struct {
		a, b Node
		want bool
	}{
		{Scalar{Value: "x"}, Scalar{Value: "x"}, true},
		{Scalar{Value: "x"}, Scalar{Value: "y"}, false},
		// JSON decoding splits numbers across int64/float64.
		{Scalar{Value: int64(3)}, Scalar{Value: float64(3)}, true},
		{Scalar{Value: int64(3)}, Scalar{Value: float64(3.5)}, false},
		{Scalar{Value: "x", Type: "http://schema.org/Date"}, Scalar{Value: "x"}, false},
		{Ref{ID: "a"}, Ref{ID: "a"}, true},
		{Ref{ID: "a"}, Scalar{Value: "a"}, false},
	}
	for i, tc := range cases {
		if got := EqualNodes(tc.a, tc.b); got != tc.want {
			t.Errorf("case %d: EqualNodes(%v, %v) = %v", i, tc.a, tc.b, got)
		}
	}
}

func TestEqualNodes_ObjectIdentityRule(t *testing.T) {
	withID := func(id, name string) *Object {
		o := NewObject()
		o.ID = id
		o.Props["http://schema.org/name"] = []Node{Scalar{Value: name}}
		return o
	}

	// Two identifiers decide, even over differing content.
	if !EqualNodes(withID("x", "a"), withID("x", "b")) {
		t.Error("matching ids with different props compared unequal")
	}
	if EqualNodes(withID("x", "a"), withID("y", "a")) {
		t.Error("differing ids compared equal")
	}

	// A one-sided identifier falls back to key comparison.
	if !EqualNodes(withID("x", "a"), withID("", "a")) {
		t.Error("one-sided id should not prevent structural equality")
	}
	if EqualNodes(withID("x", "a"), withID("", "b")) {
		t.Error("one-sided id hid a structural difference")
	}
}

func TestEqualNodes_Arrays(t *testing.T) {
	a := &Array{Kind: KindList, Items: []Node{Scalar{Value: "x"}, Scalar{Value: "y"}}}
	b := &Array{Kind: KindList, Items: []Node{Scalar{Value: "x"}, Scalar{Value: "y"}}}
	c := &Array{Kind: KindList, Items: []Node{Scalar{Value: "y"}, Scalar{Value: "x"}}}

	if !EqualNodes(a, b) {
		t.Error("identical arrays compared unequal")
	}
	if EqualNodes(a, c) {
		t.Error("order-swapped arrays compared equal")
	}
}

func TestCloneNode_IsDeep(t *testing.T) {
	orig := NewObject()
	orig.Props["http://schema.org/keywords"] = []Node{
		&Array{Kind: KindList, Items: []Node{Scalar{Value: "a"}}},
	}

	clone := CloneNode(orig).(*Object)
	arr := clone.Props["http://schema.org/keywords"][0].(*Array)
	arr.Items = append(arr.Items, Scalar{Value: "b"})

	origArr := orig.Props["http://schema.org/keywords"][0].(*Array)
	if len(origArr.Items) != 1 {
		t.Error("mutating the clone changed the original")
	}
}
