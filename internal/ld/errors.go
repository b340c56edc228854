package ld

import (
	"errors"
	"fmt"
)

// ModelError represents a failure inside the container or path
// primitives. These indicate a programming or data-integrity defect
// and are raised synchronously, unlike merge conflicts which are
// collected during assembly.
type ModelError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path locates the offending node, when known.
	Path string
}

// ErrorCode categorizes model errors.
type ErrorCode string

const (
	// ErrCodeShape indicates input data does not match the expected
	// canonical container shape.
	ErrCodeShape ErrorCode = "SHAPE_VIOLATION"

	// ErrCodeLookup indicates a key or index does not exist and
	// creation was not requested.
	ErrCodeLookup ErrorCode = "LOOKUP_FAILED"

	// ErrCodeTypeMismatch indicates an index used against a map or a
	// key used against a list.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newShapeError(format string, args ...any) *ModelError {
	return &ModelError{Code: ErrCodeShape, Message: fmt.Sprintf(format, args...)}
}

func newLookupError(path string, format string, args ...any) *ModelError {
	return &ModelError{Code: ErrCodeLookup, Message: fmt.Sprintf(format, args...), Path: path}
}

func newTypeError(path string, format string, args ...any) *ModelError {
	return &ModelError{Code: ErrCodeTypeMismatch, Message: fmt.Sprintf(format, args...), Path: path}
}

// IsLookup returns true if the error is a lookup failure.
// Uses errors.As to handle wrapped errors.
func IsLookup(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Code == ErrCodeLookup
}

// IsShape returns true if the error is a shape-validation failure.
func IsShape(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Code == ErrCodeShape
}

// IsTypeMismatch returns true if the error is a type-mismatch failure.
func IsTypeMismatch(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Code == ErrCodeTypeMismatch
}
