package merge

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsConflict(t *testing.T) {
	c := &Conflict{Path: "version", Existing: "1.0.0", Incoming: "2.0.0", Source: "codemeta"}
	if !IsConflict(c) {
		t.Error("a bare conflict must be recognized")
	}
	if !IsConflict(fmt.Errorf("codemeta: %w", c)) {
		t.Error("a wrapped conflict must be recognized")
	}
	if IsConflict(errors.New("plain failure")) {
		t.Error("an unrelated error must not be a conflict")
	}
	if IsConflict(nil) {
		t.Error("nil is not a conflict")
	}
}

func TestConflict_Error(t *testing.T) {
	c := &Conflict{Path: "license", Existing: "MIT", Incoming: "Apache-2.0", Source: "cff"}
	got := c.Error()
	want := "merge conflict at license: kept MIT, rejected Apache-2.0 (source=cff)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	c.Source = ""
	if got := c.Error(); got != "merge conflict at license: kept MIT, rejected Apache-2.0" {
		t.Errorf("Error() without source = %q", got)
	}
}
