package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the state of a process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Sentinel errors for process operations.
var (
	// ErrProcessNotStarted is returned when operations require a started process.
	ErrProcessNotStarted = errors.New("process not started")

	// ErrProcessAlreadyStarted is returned when starting an already started process.
	ErrProcessAlreadyStarted = errors.New("process already started")
)

// Process wraps a generator child process with lifecycle tracking.
//
// The wrapped exec.Cmd's stdout and stderr pipes are exclusively owned
// by the Process and released exactly once after exit. Process is safe
// for concurrent use.
type Process struct {
	// ID is the unique identifier for this run.
	ID string

	// Name is a human-readable name, normally the generator binary name.
	Name string

	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Stdout provides read access to the process's stdout pipe.
	Stdout io.ReadCloser

	// Stderr provides read access to the process's stderr pipe.
	Stderr io.ReadCloser

	// Started is the time the process was started.
	Started time.Time

	// done is closed when the process has been waited on.
	done chan struct{}

	// state tracks the current process state.
	state atomic.Int32

	// exitCode stores the exit code after the process exits.
	exitCode atomic.Int32

	// exitErr stores any error from Wait().
	exitErr error

	// mu protects exitErr.
	mu sync.RWMutex

	// waitOnce ensures the process is waited on only once.
	waitOnce sync.Once
}

func newProcess(id, name string, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:   id,
		Name: name,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1) // -1 indicates not exited
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code, or -1 if it has not exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns any error from waiting on the process.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process has exited and
// been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// PID returns the OS process ID, or -1 if not started.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// Signal sends a signal to the process.
// Returns an error if the process is not running.
func (p *Process) Signal(sig os.Signal) error {
	if !p.IsRunning() {
		return fmt.Errorf("process not running: %w", ErrProcessNotStarted)
	}
	if p.Cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return p.Cmd.Process.Signal(sig)
}

// Kill sends SIGKILL to the process.
func (p *Process) Kill() error {
	return p.Signal(syscall.SIGKILL)
}

// Terminate sends SIGTERM to the process.
func (p *Process) Terminate() error {
	return p.Signal(syscall.SIGTERM)
}

// start starts the process. Called by the Supervisor.
func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrProcessAlreadyStarted
	}

	if err := p.Cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))
	return nil
}

// wait reaps the process and records its exit state. Callers must not
// wait before both stream pipes have been drained to EOF; the
// Supervisor's run monitor enforces this ordering.
func (p *Process) wait() {
	p.waitOnce.Do(func() {
		err := p.Cmd.Wait()

		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
				}
			} else {
				exitCode = -1
			}
		}

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)
	})
}

// Close releases the stream pipes. It does not kill the process.
func (p *Process) Close() error {
	var errs []error

	if p.Stdout != nil {
		if err := p.Stdout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stdout: %w", err))
		}
	}
	if p.Stderr != nil {
		if err := p.Stderr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stderr: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close process I/O: %v", errs)
	}
	return nil
}
