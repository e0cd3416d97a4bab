package document

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// File is a file-backed Document. Every successful mutation is flushed
// back to the underlying file so external viewers (an editor with
// autoread, `git commit` waiting on its message file) observe streaming
// updates as they are made.
//
// The dirty flag tracks mutations that happened since the last explicit
// SetDirty(false); flushing itself does not clear it, since the flag
// models the host's "unsaved changes" concept rather than disk state.
type File struct {
	mu     sync.RWMutex
	path   string
	lines  []string
	perm   os.FileMode
	dirty  bool
	closed bool
}

// Open loads the file at path into a File document.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return &File{path: path, lines: lines, perm: perm}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Valid reports whether the document is still open.
func (f *File) Valid() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.closed
}

// Close invalidates the document. The backing file is left as last
// flushed. Close is idempotent.
func (f *File) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// LineCount returns the number of lines.
func (f *File) LineCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.lines)
}

// Line returns the text of line i, or "" if i is out of range.
func (f *File) Line(i int) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i < 0 || i >= len(f.lines) {
		return ""
	}
	return f.lines[i]
}

// Lines returns a copy of all lines.
func (f *File) Lines() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	cp := make([]string, len(f.lines))
	copy(cp, f.lines)
	return cp
}

// Text returns the full content joined with newlines.
func (f *File) Text() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return strings.Join(f.lines, "\n")
}

// ReplaceLines replaces lines [start, end) with the given lines, marks
// the document dirty, and flushes the result to disk.
func (f *File) ReplaceLines(start, end int, lines []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrDocumentClosed
	}
	if start < 0 || start > end || end > len(f.lines) {
		return ErrRangeInvalid
	}

	replaced := make([]string, 0, len(f.lines)-(end-start)+len(lines))
	replaced = append(replaced, f.lines[:start]...)
	replaced = append(replaced, lines...)
	replaced = append(replaced, f.lines[end:]...)
	f.lines = replaced
	f.dirty = true

	return f.flushLocked()
}

// flushLocked writes the current lines to the backing file.
// Callers must hold f.mu.
func (f *File) flushLocked() error {
	content := strings.Join(f.lines, "\n") + "\n"
	if err := os.WriteFile(f.path, []byte(content), f.perm); err != nil {
		return fmt.Errorf("flush document: %w", err)
	}
	return nil
}

// Dirty reports whether the document has mutations since the last
// SetDirty(false).
func (f *File) Dirty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirty
}

// SetDirty sets the unsaved-changes flag.
func (f *File) SetDirty(dirty bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirty = dirty
}
