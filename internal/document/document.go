package document

import "errors"

// Errors returned by document operations.
var (
	ErrRangeInvalid   = errors.New("invalid line range")
	ErrDocumentClosed = errors.New("document is closed")
)

// Document is the minimal line-oriented surface the generation core
// needs from a hosting document.
//
// Line indices are 0-based. ReplaceLines operates on the half-open range
// [start, end): with start == end it is a pure insertion, with an empty
// replacement it is a pure deletion.
//
// Implementations must report Valid() == false once the document has
// been closed by its owner; all mutating callers are expected to check
// validity first and treat a closed document as a silent no-op.
type Document interface {
	// Valid reports whether the document is still open and usable.
	Valid() bool

	// LineCount returns the current number of lines.
	LineCount() int

	// Line returns the text of line i without a trailing newline.
	// Returns "" for out-of-range indices.
	Line(i int) string

	// ReplaceLines replaces lines [start, end) with the given lines.
	ReplaceLines(start, end int, lines []string) error

	// Dirty reports whether the document has unsaved changes.
	Dirty() bool

	// SetDirty sets the unsaved-changes flag.
	SetDirty(dirty bool)
}
