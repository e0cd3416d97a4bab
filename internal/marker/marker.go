package marker

import (
	"strings"

	"github.com/dshills/commitmark/internal/document"
)

// Sentinel is the reserved marker line. It is assumed not to collide
// with legitimate commit-message content.
const Sentinel = "≈≈≈ llm-commit-msg is generating a suggestion ≈≈≈"

// Insert places the marker scaffold (blank line, sentinel, blank status
// slot) at line index at. The index is clamped to the document bounds.
// No-op if the document is invalid.
func Insert(doc document.Document, at int) error {
	if !doc.Valid() {
		return nil
	}
	if at < 0 {
		at = 0
	}
	if n := doc.LineCount(); at > n {
		at = n
	}
	return preserveDirty(doc, func() error {
		return doc.ReplaceLines(at, at, []string{"", Sentinel, ""})
	})
}

// Locate scans the document for the sentinel line and returns its
// current index. Indices are recomputed on every call; callers must
// never cache them across edits.
func Locate(doc document.Document) (int, bool) {
	if !doc.Valid() {
		return 0, false
	}
	for i, n := 0, doc.LineCount(); i < n; i++ {
		if doc.Line(i) == Sentinel {
			return i, true
		}
	}
	return 0, false
}

// InsertBefore appends streamed text just before the marker. The text is
// split on newlines and the first piece is concatenated onto the line
// currently preceding the marker, so chunks that split mid-line
// reassemble correctly. No-op if the document is invalid or the marker
// is absent.
func InsertBefore(doc document.Document, text string) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	lines := strings.Split(text, "\n")
	return preserveDirty(doc, func() error {
		if m == 0 {
			// User edits removed the line above the marker.
			return doc.ReplaceLines(0, 0, lines)
		}
		lines[0] = doc.Line(m-1) + lines[0]
		return doc.ReplaceLines(m-1, m, lines)
	})
}

// SetStatus replaces the single line immediately following the marker
// with text. Callers are responsible for collapsing multi-line status
// into one representative line. No-op if the document is invalid or the
// marker is absent.
func SetStatus(doc document.Document, text string) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	return preserveDirty(doc, func() error {
		if m+1 >= doc.LineCount() {
			// Status slot was deleted by a user edit; recreate it.
			return doc.ReplaceLines(m+1, m+1, []string{text})
		}
		return doc.ReplaceLines(m+1, m+2, []string{text})
	})
}

// InsertLinesAfter inserts the given lines immediately after the marker,
// before the status slot. No-op if the document is invalid or the marker
// is absent.
func InsertLinesAfter(doc document.Document, lines []string) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	return preserveDirty(doc, func() error {
		return doc.ReplaceLines(m+1, m+1, lines)
	})
}

// RemoveWithStatus deletes the marker line and its status slot as a
// single edit. No-op if the document is invalid or the marker is absent.
func RemoveWithStatus(doc document.Document) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	return preserveDirty(doc, func() error {
		end := m + 2
		if n := doc.LineCount(); end > n {
			end = n
		}
		return doc.ReplaceLines(m, end, nil)
	})
}

// ReplaceLine replaces the marker line itself with literal text. Used
// for spawn-failure reporting before any stream data exists. No-op if
// the document is invalid or the marker is absent.
func ReplaceLine(doc document.Document, text string) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	return preserveDirty(doc, func() error {
		return doc.ReplaceLines(m, m+1, []string{text})
	})
}

// Fail replaces the marker line and its status slot with a summary line
// followed by an error block, as a single edit. No-op if the document is
// invalid or the marker is absent.
func Fail(doc document.Document, summary string, lines []string) error {
	m, ok := Locate(doc)
	if !ok {
		return nil
	}
	return preserveDirty(doc, func() error {
		end := m + 2
		if n := doc.LineCount(); end > n {
			end = n
		}
		block := make([]string, 0, len(lines)+1)
		block = append(block, summary)
		block = append(block, lines...)
		return doc.ReplaceLines(m, end, block)
	})
}

// preserveDirty runs edit and restores the document's prior dirty flag,
// keeping scaffolding edits invisible to the unsaved-changes concept.
func preserveDirty(doc document.Document, edit func() error) error {
	wasDirty := doc.Dirty()
	err := edit()
	doc.SetDirty(wasDirty)
	return err
}
