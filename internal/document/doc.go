// Package document defines the minimal capability surface the generation
// core requires from a hosting commit-message document, plus two concrete
// implementations.
//
// The core never assumes exclusive ownership of a document: the host's
// user may edit or close it at any moment between operations. The
// Document interface therefore exposes only what the marker protocol
// needs:
//
//   - line-range read (LineCount, Line)
//   - line-range replace (ReplaceLines, covering insert and delete)
//   - a mutable "has unsaved changes" flag (Dirty, SetDirty)
//   - a validity check (Valid; documents may be closed asynchronously)
//
// # Implementations
//
// Buffer is an in-memory document used by tests and embeddable hosts:
//
//	doc := document.FromString("wip\n\n# Please enter the commit message")
//	doc.ReplaceLines(0, 1, []string{"Fix parser"})
//
// File is a file-backed document for the CLI host. Every mutation is
// flushed to disk so an auto-reloading editor observes streaming updates
// as they happen.
//
// # Thread Safety
//
// Both implementations are safe for concurrent use; all methods take the
// document's lock. Higher layers additionally funnel every mutation
// through a single consumer goroutine.
package document
