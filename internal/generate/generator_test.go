package generate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/commitmark/internal/config"
	"github.com/dshills/commitmark/internal/document"
	"github.com/dshills/commitmark/internal/marker"
	"github.com/dshills/commitmark/internal/trace"
)

// fakeGenerator writes a shell script named llm-commit-msg into a temp
// dir so spawned runs match the real generator's invocation shape.
func fakeGenerator(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llm-commit-msg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing fake generator: %v", err)
	}
	return path
}

func newGenerator(t *testing.T, bin string, extra ...string) *Generator {
	t.Helper()
	cfg := config.Default()
	cfg.Bin = bin
	cfg.Args = extra
	g := New(cfg)
	t.Cleanup(func() { g.Supervisor().Shutdown(2 * time.Second) })
	return g
}

func commitDoc() *document.Buffer {
	return document.FromLines([]string{"", "# Please enter the commit message for your changes."})
}

func waitSession(t *testing.T, sess *Session) {
	t.Helper()
	select {
	case <-sess.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finalize in time")
	}
}

func TestGenerate_Success(t *testing.T) {
	bin := fakeGenerator(t, `printf 'Fix bug\n'`)
	g := newGenerator(t, bin)
	doc := commitDoc()

	waitSession(t, g.Generate(doc))

	want := []string{"", "Fix bug", "", "# Please enter the commit message for your changes."}
	if got := doc.Lines(); !equalLines(got, want) {
		t.Errorf("document = %q, want %q", got, want)
	}
	if _, ok := marker.Locate(doc); ok {
		t.Error("marker still present after successful run")
	}
	if doc.Dirty() {
		t.Error("scaffolding run dirtied the document")
	}
}

func TestGenerate_FailureWithDiagnostics(t *testing.T) {
	bin := fakeGenerator(t, `echo 'auth error: token expired' >&2; exit 2`)
	g := newGenerator(t, bin)
	doc := commitDoc()

	waitSession(t, g.Generate(doc))

	want := []string{
		"",
		"",
		"# llm-commit-msg exited with 2",
		"# auth error: token expired",
		"# Please enter the commit message for your changes.",
	}
	if got := doc.Lines(); !equalLines(got, want) {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestGenerate_SpawnFailure(t *testing.T) {
	g := newGenerator(t, "/nonexistent/llm-commit-msg")
	doc := commitDoc()

	sess := g.Generate(doc)
	waitSession(t, sess)

	if sess.RunID() != "" {
		t.Error("expected empty run ID on spawn failure")
	}

	want := []string{
		"",
		"",
		"# llm-commit-msg: failed to spawn",
		"",
		"# Please enter the commit message for your changes.",
	}
	if got := doc.Lines(); !equalLines(got, want) {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestGenerate_FailureWithoutDiagnostics(t *testing.T) {
	// Non-zero exit with empty stderr resolves like success: the
	// scaffolding is removed and no error block is left.
	bin := fakeGenerator(t, `exit 3`)
	g := newGenerator(t, bin)
	doc := commitDoc()

	waitSession(t, g.Generate(doc))

	want := []string{"", "", "# Please enter the commit message for your changes."}
	if got := doc.Lines(); !equalLines(got, want) {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestGenerate_PassesFixedAndExtraArgs(t *testing.T) {
	bin := fakeGenerator(t, `printf '%s\n' "$@"`)
	g := newGenerator(t, bin, "--model", "gpt-oss:20b")
	doc := commitDoc()

	waitSession(t, g.Generate(doc))

	want := []string{
		"",
		"generate",
		"--commented-out",
		"--model",
		"gpt-oss:20b",
		"",
		"# Please enter the commit message for your changes.",
	}
	if got := doc.Lines(); !equalLines(got, want) {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestGenerate_InvalidDocument(t *testing.T) {
	g := newGenerator(t, "/nonexistent/llm-commit-msg")
	doc := commitDoc()
	doc.Close()

	sess := g.Generate(doc)
	waitSession(t, sess)

	if sess.RunID() != "" {
		t.Error("expected no run against an invalid document")
	}
}

func TestGenerate_InsertionPoint(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{"first comment line", []string{"", "# a", "# b"}, 1},
		{"comment at top", []string{"# a"}, 0},
		{"no comments", []string{"wip", ""}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.FromLines(tt.lines)
			if got := insertionPoint(doc); got != tt.want {
				t.Errorf("insertionPoint() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerate_Cancel(t *testing.T) {
	bin := fakeGenerator(t, `exec sleep 10`)
	g := newGenerator(t, bin)
	doc := commitDoc()

	sess := g.Generate(doc)
	if sess.RunID() == "" {
		t.Fatal("expected a live run")
	}

	if err := sess.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	waitSession(t, sess)

	// Killed with no diagnostics: scaffolding removed silently.
	if _, ok := marker.Locate(doc); ok {
		t.Error("marker still present after cancelled run")
	}
}

func TestGenerate_EmitsTraceEvents(t *testing.T) {
	bin := fakeGenerator(t, `printf 'x\n'`)

	cfg := config.Default()
	cfg.Bin = bin
	notifier := trace.NewNotifier()

	seen := make(map[trace.EventType]bool)
	notifier.Subscribe(func(e trace.Event) { seen[e.Type] = true })

	g := New(cfg, WithNotifier(notifier))
	defer g.Supervisor().Shutdown(2 * time.Second)

	doc := commitDoc()
	waitSession(t, g.Generate(doc))

	for _, want := range []trace.EventType{trace.MarkerInserted, trace.RunStarted, trace.StdoutChunk, trace.RunExited, trace.RunFinalized} {
		if !seen[want] {
			t.Errorf("missing trace event %q", want)
		}
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
