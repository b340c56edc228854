// Package schema validates assembled documents against the CodeMeta
// vocabulary using CUE. Validation runs on the compacted JSON form,
// after assembly, and reports all mismatches rather than failing
// fast.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed codemeta.cue
var codemetaCUE string

// Validation error codes (V100-V199)
const (
	ErrNotEncodable = "V100" // document cannot be encoded as a CUE value
	ErrMismatch     = "V101" // document violates a schema constraint
)

// ValidationError represents one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validator checks compacted documents against the embedded CodeMeta
// schema. A Validator is safe for reuse across documents.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema. It fails only if the
// schema itself is broken, which is a programming error rather than a
// document problem.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(codemetaCUE, cue.Filename("codemeta.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile codemeta schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Document"))
	if !def.Exists() {
		return nil, fmt.Errorf("codemeta schema has no #Document definition")
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate checks one compacted document. It returns all violations
// found, or nil when the document conforms.
func (v *Validator) Validate(doc map[string]any) []ValidationError {
	data := v.ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return []ValidationError{{
			Code:    ErrNotEncodable,
			Message: err.Error(),
		}}
	}

	unified := v.def.Unify(data)
	err := unified.Validate(cue.Concrete(false))
	if err == nil {
		return nil
	}

	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrMismatch,
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	return out
}
