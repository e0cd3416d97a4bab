// Package marker implements the sentinel-line protocol that anchors
// in-place streaming edits inside a live commit-message document.
//
// A single reserved line (the marker) is inserted into the document
// before the generator process starts. While the process runs, streamed
// stdout chunks accumulate on the line immediately preceding the marker
// and the line immediately following it holds a one-line status derived
// from stderr. On finalization the scaffolding is either removed or
// expanded into an error block.
//
// Two rules make the protocol safe against concurrent user edits:
//
//   - The marker is located by content-equality scan on every operation.
//     Line indices are never cached, because stdout insertion, status
//     updates, and user edits all shift positions between calls.
//   - Every operation is a silent no-op when the document is invalid or
//     the marker is absent, which makes late stream events idempotent
//     against an already-finalized document.
//
// All operations preserve the document's dirty flag: scaffolding edits
// are invisible to the host's "unsaved changes" concept.
package marker
