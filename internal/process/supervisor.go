package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// chunkSize is the read size for stream pumping. Chunks delivered on the
// stream channels are at most this large.
const chunkSize = 4096

// streamBuffer is the channel capacity for stdout/stderr chunks.
const streamBuffer = 16

// Sentinel errors.
var (
	// ErrRunNotFound is returned when a run ID is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrSupervisorShutdown is returned when the supervisor is shutting down.
	ErrSupervisorShutdown = errors.New("supervisor is shutting down")
)

// Run is one supervised execution of the generator, bounded by spawn
// and exit-code delivery.
//
// Stdout and Stderr carry raw decoded chunks and are closed at pipe
// EOF. Exit delivers exactly one exit code, after both pipes have been
// released, and is then closed. No ordering between trailing stream
// chunks and the exit code should be assumed beyond that.
type Run struct {
	// Process is the underlying supervised process.
	Process *Process

	// Stdout delivers raw stdout chunks.
	Stdout <-chan string

	// Stderr delivers raw stderr chunks.
	Stderr <-chan string

	// Exit delivers the exit code exactly once.
	Exit <-chan int
}

// ID returns the run's unique identifier.
func (r *Run) ID() string {
	return r.Process.ID
}

// Supervisor spawns generator processes and tracks live runs.
//
// Supervisor is safe for concurrent use.
type Supervisor struct {
	mu   sync.RWMutex
	runs map[string]*Process

	// closed indicates the supervisor has been shut down.
	closed atomic.Bool

	// maxRuns limits concurrent runs (0 = unlimited).
	maxRuns int

	// onRunExit is called after a run's exit code has been delivered.
	onRunExit func(p *Process)
}

// SupervisorOption configures a Supervisor instance.
type SupervisorOption func(*Supervisor)

// WithMaxRuns sets the maximum number of concurrent runs.
// A value of 0 (default) means unlimited.
func WithMaxRuns(max int) SupervisorOption {
	return func(s *Supervisor) {
		s.maxRuns = max
	}
}

// WithRunExitCallback sets a callback invoked after a run exits.
func WithRunExitCallback(fn func(p *Process)) SupervisorOption {
	return func(s *Supervisor) {
		s.onRunExit = fn
	}
}

// NewSupervisor creates a new process supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		runs: make(map[string]*Process),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start spawns a new supervised run of the given command.
//
// On spawn failure (binary missing, rejected by the OS) it returns an
// error, no Run, and no stream channel is ever created. On success the
// returned Run's channels are live immediately.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Run, error) {
	return s.StartWithID(uuid.New().String(), name, cmd)
}

// StartWithID spawns a run with a caller-chosen ID, useful for
// deterministic testing.
func (s *Supervisor) StartWithID(id, name string, cmd *exec.Cmd) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSupervisorShutdown
	}
	if s.maxRuns > 0 && len(s.runs) >= s.maxRuns {
		return nil, fmt.Errorf("run limit reached: %d", s.maxRuns)
	}
	if _, exists := s.runs[id]; exists {
		return nil, fmt.Errorf("run ID already exists: %s", id)
	}

	proc := newProcess(id, name, cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	proc.Stdout = stdoutPipe

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		_ = stdoutPipe.Close()
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}
	proc.Stderr = stderrPipe

	if err := proc.start(); err != nil {
		_ = stdoutPipe.Close()
		_ = stderrPipe.Close()
		return nil, err
	}

	s.runs[id] = proc

	stdoutCh := make(chan string, streamBuffer)
	stderrCh := make(chan string, streamBuffer)
	exitCh := make(chan int, 1)

	var readers sync.WaitGroup
	readers.Add(2)
	go pumpStream(proc.Stdout, stdoutCh, &readers)
	go pumpStream(proc.Stderr, stderrCh, &readers)
	go s.monitorRun(proc, &readers, exitCh)

	return &Run{
		Process: proc,
		Stdout:  stdoutCh,
		Stderr:  stderrCh,
		Exit:    exitCh,
	}, nil
}

// pumpStream reads raw chunks from a pipe until EOF or a read error and
// forwards them on ch. Read errors are not fatal to the rest of the
// pipeline; reading simply stops for that stream.
func pumpStream(r io.Reader, ch chan<- string, readers *sync.WaitGroup) {
	defer readers.Done()
	defer close(ch)

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			ch <- string(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// monitorRun reaps the process once both stream pumps have drained,
// releases the pipes unconditionally, delivers the exit code, and
// removes the run from tracking.
func (s *Supervisor) monitorRun(proc *Process, readers *sync.WaitGroup, exitCh chan<- int) {
	readers.Wait()
	proc.wait()

	// Pipes are released regardless of what the consumer does next.
	_ = proc.Close()

	exitCh <- proc.ExitCode()
	close(exitCh)

	if s.onRunExit != nil {
		func() {
			defer func() {
				// Callback panics must not take down the supervisor.
				_ = recover()
			}()
			s.onRunExit(proc)
		}()
	}

	s.mu.Lock()
	delete(s.runs, proc.ID)
	s.mu.Unlock()
}

// Get returns a live run's process by ID, or nil if not found.
func (s *Supervisor) Get(id string) *Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id]
}

// Count returns the number of live runs.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Terminate sends SIGTERM to a run by ID.
// Returns ErrRunNotFound if the run doesn't exist.
func (s *Supervisor) Terminate(id string) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrRunNotFound
	}
	if !proc.IsRunning() {
		return nil // Already exited
	}
	return proc.Terminate()
}

// Kill sends SIGKILL to a run by ID.
// Returns ErrRunNotFound if the run doesn't exist.
func (s *Supervisor) Kill(id string) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrRunNotFound
	}
	if !proc.IsRunning() {
		return nil // Already exited
	}
	return proc.Kill()
}

// Shutdown gracefully shuts down all live runs.
//
// It sends SIGTERM to every running child, waits up to timeout for them
// to exit, and kills stragglers with SIGKILL. Shutdown blocks until all
// runs have exited and been removed from tracking.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	if s.closed.Swap(true) {
		return // Already shutting down
	}

	s.mu.RLock()
	procs := make([]*Process, 0, len(s.runs))
	for _, p := range s.runs {
		procs = append(procs, p)
	}
	s.mu.RUnlock()

	if len(procs) == 0 {
		return
	}

	for _, p := range procs {
		if p.IsRunning() {
			_ = p.Terminate()
		}
	}

	done := make(chan struct{})
	go func() {
		for _, p := range procs {
			<-p.Done()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		for _, p := range procs {
			if p.IsRunning() {
				_ = p.Kill()
			}
		}
		<-done
	}

	// Wait for monitor goroutines to finish removing runs from the map.
	for {
		s.mu.RLock()
		count := len(s.runs)
		s.mu.RUnlock()
		if count == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// IsShuttingDown returns true if the supervisor is shutting down.
func (s *Supervisor) IsShuttingDown() bool {
	return s.closed.Load()
}
