package sparse

import "errors"

// Sentinel errors. Callers match them with errors.Is; call sites add
// context with fmt.Errorf("...: %w", ErrX).
var (
	// ErrDimensionMismatch is returned when two operands do not share a shape.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrOutOfRange indicates a row or column outside the matrix bounds.
	ErrOutOfRange = errors.New("sparse: index out of range")

	// ErrBadShape indicates a negative dimension or an entry that does not
	// fit the requested shape.
	ErrBadShape = errors.New("sparse: invalid shape")

	// ErrDuplicateEntry is returned by FromEntries when a row names the same
	// column twice.
	ErrDuplicateEntry = errors.New("sparse: duplicate column in row")

	// ErrCorrupt is returned by FromRaw/Validate when the compressed-row
	// arrays break one of the layout invariants.
	ErrCorrupt = errors.New("sparse: corrupt compressed-row layout")
)
