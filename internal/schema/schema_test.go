package schema

import (
	"testing"
)

func TestNewValidator(t *testing.T) {
	if _, err := NewValidator(); err != nil {
		t.Fatalf("NewValidator() failed: %v", err)
	}
}

func TestValidate_ConformingDocument(t *testing.T) {
	v := newTestValidator(t)

	errs := v.Validate(map[string]any{
		"@context": "https://doi.org/10.5063/schema/codemeta-2.0",
		"@type":    "SoftwareSourceCode",
		"name":     "loam",
		"version":  "1.0.0",
		"author": []any{
			map[string]any{
				"@type": "Person",
				"name":  "Ada Lovelace",
				"email": "ada@example.org",
			},
		},
		"keywords": []any{"metadata", "linked-data"},
	})
	if len(errs) != 0 {
		t.Errorf("conforming document rejected: %v", errs)
	}
}

func TestValidate_WrongFieldType(t *testing.T) {
	v := newTestValidator(t)

	errs := v.Validate(map[string]any{
		"@context": "https://doi.org/10.5063/schema/codemeta-2.0",
		"@type":    "SoftwareSourceCode",
		"name":     5,
	})
	if len(errs) == 0 {
		t.Fatal("numeric name accepted")
	}
	found := false
	for _, e := range errs {
		if e.Field == "name" && e.Code == ErrMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("no mismatch reported for name: %v", errs)
	}
}

func TestValidate_MissingType(t *testing.T) {
	v := newTestValidator(t)

	errs := v.Validate(map[string]any{
		"@context": "https://doi.org/10.5063/schema/codemeta-2.0",
		"name":     "loam",
	})
	if len(errs) == 0 {
		t.Error("document without @type accepted")
	}
}

func TestValidate_UnknownFieldsPassThrough(t *testing.T) {
	v := newTestValidator(t)

	errs := v.Validate(map[string]any{
		"@context":       "https://doi.org/10.5063/schema/codemeta-2.0",
		"@type":          "SoftwareSourceCode",
		"name":           "loam",
		"loam:branch":    "main",
		"loam-rt:reject": []any{map[string]any{"@id": "graph://x/PropertyValue#1"}},
	})
	if len(errs) != 0 {
		t.Errorf("runtime and content fields rejected: %v", errs)
	}
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "version", Message: "conflicting values", Code: ErrMismatch}
	want := "[V101] version: conflicting values"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator() failed: %v", err)
	}
	return v
}
