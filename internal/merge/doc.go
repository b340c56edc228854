// Package merge implements the strategy registry that decides how a
// newly harvested value combines with an existing value at a document
// path.
//
// A registry is an explicit value constructed by the caller and
// passed into the assembler; there is no process-wide strategy state.
// Selection is strictly registration order: the first strategy whose
// filter fully matches a write wins, and a built-in default (replace
// scalars and maps, append to arrays) always exists as the last
// resort.
package merge
