package generate

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/commitmark/internal/config"
	"github.com/dshills/commitmark/internal/document"
	"github.com/dshills/commitmark/internal/marker"
	"github.com/dshills/commitmark/internal/process"
	"github.com/dshills/commitmark/internal/trace"
)

// CommentPrefix is the comment character of the target document type.
// It selects the marker insertion point and prefixes error-block lines.
const CommentPrefix = "#"

// Fixed leading arguments passed to the generator before any
// configured extras.
const (
	generateSubcommand = "generate"
	commentedOutFlag   = "--commented-out"
)

// Generator orchestrates generation runs against host documents.
type Generator struct {
	cfg      config.Config
	sup      *process.Supervisor
	notifier *trace.Notifier
}

// Option configures a Generator.
type Option func(*Generator)

// WithSupervisor sets the process supervisor. The caller remains
// responsible for shutting it down.
func WithSupervisor(s *process.Supervisor) Option {
	return func(g *Generator) {
		g.sup = s
	}
}

// WithNotifier sets the trace notifier run events are emitted on.
func WithNotifier(n *trace.Notifier) Option {
	return func(g *Generator) {
		g.notifier = n
	}
}

// New creates a Generator with the given configuration.
func New(cfg config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	if g.sup == nil {
		g.sup = process.NewSupervisor()
	}
	if g.notifier == nil {
		g.notifier = trace.NewNotifier()
	}
	return g
}

// Supervisor returns the underlying process supervisor.
func (g *Generator) Supervisor() *process.Supervisor {
	return g.sup
}

// Notifier returns the trace notifier.
func (g *Generator) Notifier() *trace.Notifier {
	return g.notifier
}

// Session is one generation run against one document. It is terminal
// once Done() is closed; by then the document holds either the streamed
// content, an error block, or a spawn-failure line.
type Session struct {
	runID string
	proc  *process.Process
	done  chan struct{}
}

// RunID returns the run identifier, or "" if spawning failed.
func (s *Session) RunID() string {
	return s.runID
}

// Done returns a channel closed when the run has been finalized.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the run has been finalized.
func (s *Session) Wait() {
	<-s.done
}

// Cancel sends SIGTERM to the generator. Explicit opt-in cancellation:
// closing the document alone never kills the child.
func (s *Session) Cancel() error {
	if s.proc == nil || !s.proc.IsRunning() {
		return nil
	}
	return s.proc.Terminate()
}

// Generate starts a generation run against doc and returns immediately.
//
// It inserts the marker scaffold at the insertion point (just above the
// first comment line, or at end of document), spawns the configured
// generator, and hands the run's streams to a consumer goroutine. All
// outcomes, including spawn failure, are reported inside the document;
// the returned Session is already finalized in the failure paths.
func (g *Generator) Generate(doc document.Document) *Session {
	sess := &Session{done: make(chan struct{})}

	if !doc.Valid() {
		close(sess.done)
		return sess
	}

	at := insertionPoint(doc)
	if err := marker.Insert(doc, at); err != nil {
		close(sess.done)
		return sess
	}
	g.notifier.Emit(trace.MarkerInserted, "", "line "+strconv.Itoa(at))

	args := make([]string, 0, len(g.cfg.Args)+2)
	args = append(args, generateSubcommand, commentedOutFlag)
	args = append(args, g.cfg.Args...)

	tool := toolName(g.cfg.Bin)
	run, err := g.sup.Start(tool, exec.Command(g.cfg.Bin, args...))
	if err != nil {
		g.notifier.Emit(trace.SpawnFailed, "", err.Error())
		_ = marker.ReplaceLine(doc, commentLine(tool+": failed to spawn"))
		close(sess.done)
		return sess
	}

	sess.runID = run.ID()
	sess.proc = run.Process
	g.notifier.Emit(trace.RunStarted, run.ID(), fmt.Sprintf("%s pid %d", tool, run.Process.PID()))

	go func() {
		defer close(sess.done)
		g.consume(doc, run.ID(), run.Stdout, run.Stderr, run.Exit)
	}()

	return sess
}

// consume is the single consumer for one run: it selects across the
// stream channels until all three are done, then finalizes. Exit may
// arrive before, between, or after trailing stream chunks; the loop is
// correct under any interleaving.
func (g *Generator) consume(doc document.Document, runID string, stdout, stderr <-chan string, exit <-chan int) {
	var errBuf strings.Builder
	exitCode := 0

	for stdout != nil || stderr != nil || exit != nil {
		select {
		case chunk, ok := <-stdout:
			if !ok {
				stdout = nil
				continue
			}
			_ = marker.InsertBefore(doc, chunk)
			g.notifier.Emit(trace.StdoutChunk, runID, strconv.Itoa(len(chunk))+" bytes")

		case chunk, ok := <-stderr:
			if !ok {
				stderr = nil
				continue
			}
			errBuf.WriteString(chunk)
			if line := lastLine(errBuf.String()); line != "" {
				_ = marker.SetStatus(doc, commentLine(line))
			}
			g.notifier.Emit(trace.StderrChunk, runID, strconv.Itoa(len(chunk))+" bytes")

		case code, ok := <-exit:
			if ok {
				exitCode = code
				g.notifier.Emit(trace.RunExited, runID, "exit "+strconv.Itoa(code))
			}
			exit = nil
		}
	}

	g.finalize(doc, runID, exitCode, errBuf.String())
}

// finalize is the terminal transition of a run.
//
// A non-zero exit with diagnostic text replaces the scaffolding with a
// summary line and a commented error block, left for the user to read
// and remove. Success — and, as specified, failure without diagnostics —
// silently removes the scaffolding, leaving only the streamed content.
func (g *Generator) finalize(doc document.Document, runID string, code int, stderrText string) {
	diags := nonEmptyLines(stderrText)

	if code != 0 && len(diags) > 0 {
		summary := commentLine(fmt.Sprintf("%s exited with %d", toolName(g.cfg.Bin), code))
		block := make([]string, len(diags))
		for i, line := range diags {
			block[i] = commentLine(line)
		}
		_ = marker.Fail(doc, summary, block)
		g.notifier.Emit(trace.RunFinalized, runID, "error block left in document")
		return
	}

	_ = marker.RemoveWithStatus(doc)
	g.notifier.Emit(trace.RunFinalized, runID, "scaffolding removed")
}

// insertionPoint returns the index of the first comment line, or the
// end of the document if there is none.
func insertionPoint(doc document.Document) int {
	n := doc.LineCount()
	for i := 0; i < n; i++ {
		if strings.HasPrefix(doc.Line(i), CommentPrefix) {
			return i
		}
	}
	return n
}

// toolName returns the display name of the generator binary.
func toolName(bin string) string {
	return filepath.Base(bin)
}

// commentLine prefixes a line with the comment character unless it
// already starts with one.
func commentLine(line string) string {
	if strings.HasPrefix(line, CommentPrefix) {
		return line
	}
	return CommentPrefix + " " + line
}

// lastLine returns the most recent non-empty line of the accumulated
// stderr buffer, with trailing newlines stripped.
func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] != "" {
			return lines[i]
		}
	}
	return ""
}

// nonEmptyLines splits text on newlines and drops empty lines.
func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
