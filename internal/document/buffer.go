package document

import (
	"strings"
	"sync"
)

// Buffer is an in-memory Document backed by a line slice.
// All methods are thread-safe.
type Buffer struct {
	mu     sync.RWMutex
	lines  []string
	dirty  bool
	closed bool
}

// NewBuffer creates a new empty buffer containing a single empty line.
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// FromString creates a buffer from text, splitting on newlines.
// A trailing newline does not produce an extra empty line.
func FromString(text string) *Buffer {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Buffer{lines: lines}
}

// FromLines creates a buffer from a copy of the given lines.
func FromLines(lines []string) *Buffer {
	if len(lines) == 0 {
		return NewBuffer()
	}
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Buffer{lines: cp}
}

// Valid reports whether the buffer is still open.
func (b *Buffer) Valid() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed
}

// Close invalidates the buffer. Subsequent mutations are rejected and
// Valid() returns false. Close is idempotent.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns the text of line i, or "" if i is out of range.
func (b *Buffer) Line(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

// Text returns the full buffer content joined with newlines.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// ReplaceLines replaces lines [start, end) with the given lines and
// marks the buffer dirty. Callers performing scaffolding edits are
// responsible for restoring the dirty flag afterwards.
func (b *Buffer) ReplaceLines(start, end int, lines []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrDocumentClosed
	}
	if start < 0 || start > end || end > len(b.lines) {
		return ErrRangeInvalid
	}

	replaced := make([]string, 0, len(b.lines)-(end-start)+len(lines))
	replaced = append(replaced, b.lines[:start]...)
	replaced = append(replaced, lines...)
	replaced = append(replaced, b.lines[end:]...)
	b.lines = replaced
	b.dirty = true

	return nil
}

// Dirty reports whether the buffer has unsaved changes.
func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// SetDirty sets the unsaved-changes flag.
func (b *Buffer) SetDirty(dirty bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirty = dirty
}
