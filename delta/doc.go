// Package delta implements the Quill Delta rich-text document model and
// its operational-transform algebra: compose, transform, diff and
// invert over sequences of insert/retain/delete operations.
//
// A Delta plays two roles with the same structure: a document (a
// sequence of insert operations) and a change to a document (any mix
// of insert, retain and delete). Every operator here is a pure
// function; Deltas are value objects and are never mutated by an
// algebraic operator.
package delta
