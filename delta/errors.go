package delta

import "errors"

// Sentinel errors returned at the algebra's API boundary. Wrap these
// with fmt.Errorf("...: %w", ...) at call sites; never a substitute
// for normalizing inputs, which the builder does silently.
var (
	// ErrExpectedDocument is returned by Diff when either side
	// contains a retain or delete operation.
	ErrExpectedDocument = errors.New("delta: expected a document (insert-only delta)")

	// ErrBaseTooShort is returned by Invert when base does not contain
	// enough content to cover the change being inverted.
	ErrBaseTooShort = errors.New("delta: base delta is too short for change")

	// ErrMalformedOp is returned by UnmarshalJSON for any op that
	// doesn't decode into exactly one of insert/retain/delete, or
	// whose embed payload isn't a single-key object.
	ErrMalformedOp = errors.New("delta: malformed operation")

	// ErrInvariant marks an internal contract violation — an iterator
	// overrun or similar state that should be unreachable given a
	// canonical Delta. It signals a bug in this package, not bad
	// caller input.
	ErrInvariant = errors.New("delta: internal invariant violated")
)
