// Package process spawns and supervises generator child processes and
// exposes their output as independent stream channels.
//
// # Run
//
// Supervisor.Start spawns a child and returns a Run carrying three
// channels: raw stdout chunks, raw stderr chunks, and a single exit
// code. Chunk boundaries carry no semantic meaning; they may split and
// coalesce arbitrarily relative to line boundaries. Both stream
// channels are closed when their pipe reaches EOF, the exit channel
// delivers exactly one value after both pipes have been released.
//
//	run, err := supervisor.Start("llm-commit-msg", cmd)
//	if err != nil {
//	    // spawn failure: no channels, no Run
//	}
//	for chunk := range run.Stdout {
//	    // feed the document
//	}
//	code := <-run.Exit
//
// Consumers must not rely on any ordering between the last stream
// chunks and the exit code beyond channel-close semantics; a select
// across all three channels is the intended consumption pattern.
//
// # Supervisor
//
// The Supervisor tracks live runs by generated ID and supports graceful
// shutdown: SIGTERM to all children, then SIGKILL after a timeout.
//
//	supervisor := process.NewSupervisor()
//	defer supervisor.Shutdown(5 * time.Second)
//
// # Thread Safety
//
// Supervisor and Process are safe for concurrent use.
package process
