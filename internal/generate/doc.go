// Package generate orchestrates one commit-message generation run: it
// places the marker scaffold in the document, spawns the generator
// through the process supervisor, and pumps the run's stream channels
// into marker operations until the run reaches its terminal state.
//
// A single consumer goroutine per run selects across the three stream
// channels (stdout chunks, stderr chunks, exit code), so document
// mutation is never concurrent with itself and no ordering between the
// exit code and trailing stream chunks is assumed. Every mutation
// re-checks document validity and marker presence, so closing the
// document mid-run simply turns the remaining events into no-ops.
//
// Closing the document does not kill the generator. Cancellation is
// explicit: Session.Cancel sends SIGTERM to the child, and the host is
// expected to call Supervisor.Shutdown on exit.
package generate
