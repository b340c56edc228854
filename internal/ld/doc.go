// Package ld implements the canonical linked-data document model.
//
// Every property of a document node is stored in expanded form: an
// array of value-objects, each a Scalar, a Ref, an Object, or an
// Array. Storage keys are always fully-qualified IRIs; prefixed terms
// are a view supplied by the context chain, never a storage key.
//
// This package contains the node types, the context machinery, and the
// Container view. All other internal packages import ld; ld imports
// only vocab. This keeps the data model the foundational layer with no
// circular dependencies.
package ld
