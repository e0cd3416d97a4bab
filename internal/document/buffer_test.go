package document

import (
	"errors"
	"testing"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{""}},
		{"single line", "hello", []string{"hello"}},
		{"trailing newline", "hello\n", []string{"hello"}},
		{"multiple lines", "a\nb\nc", []string{"a", "b", "c"}},
		{"blank interior line", "a\n\nc\n", []string{"a", "", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := FromString(tt.text)
			if got := b.LineCount(); got != len(tt.want) {
				t.Fatalf("LineCount() = %d, want %d", got, len(tt.want))
			}
			for i, want := range tt.want {
				if got := b.Line(i); got != want {
					t.Errorf("Line(%d) = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestBuffer_ReplaceLines(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		repl       []string
		want       string
	}{
		{"replace middle", 1, 2, []string{"B"}, "a\nB\nc"},
		{"insert at start", 0, 0, []string{"x"}, "x\na\nb\nc"},
		{"insert at end", 3, 3, []string{"x"}, "a\nb\nc\nx"},
		{"delete middle", 1, 2, nil, "a\nc"},
		{"replace with more lines", 0, 1, []string{"x", "y"}, "x\ny\nb\nc"},
		{"replace everything", 0, 3, []string{"z"}, "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := FromString("a\nb\nc")
			if err := b.ReplaceLines(tt.start, tt.end, tt.repl); err != nil {
				t.Fatalf("ReplaceLines() error = %v", err)
			}
			if got := b.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if !b.Dirty() {
				t.Error("expected buffer to be dirty after edit")
			}
		})
	}
}

func TestBuffer_ReplaceLines_InvalidRange(t *testing.T) {
	b := FromString("a\nb")

	tests := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 0},
		{"start after end", 2, 1},
		{"end out of range", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.ReplaceLines(tt.start, tt.end, nil)
			if !errors.Is(err, ErrRangeInvalid) {
				t.Errorf("ReplaceLines(%d, %d) error = %v, want ErrRangeInvalid", tt.start, tt.end, err)
			}
		})
	}
}

func TestBuffer_Close(t *testing.T) {
	b := FromString("a")

	if !b.Valid() {
		t.Fatal("expected new buffer to be valid")
	}

	b.Close()

	if b.Valid() {
		t.Error("expected closed buffer to be invalid")
	}

	if err := b.ReplaceLines(0, 1, []string{"x"}); !errors.Is(err, ErrDocumentClosed) {
		t.Errorf("ReplaceLines() on closed buffer error = %v, want ErrDocumentClosed", err)
	}

	// Reads still work against the last state.
	if got := b.Line(0); got != "a" {
		t.Errorf("Line(0) = %q, want %q", got, "a")
	}

	// Close is idempotent.
	b.Close()
}

func TestBuffer_DirtyFlag(t *testing.T) {
	b := FromString("a")

	if b.Dirty() {
		t.Error("expected new buffer to be clean")
	}

	if err := b.ReplaceLines(0, 1, []string{"b"}); err != nil {
		t.Fatalf("ReplaceLines() error = %v", err)
	}
	if !b.Dirty() {
		t.Error("expected buffer to be dirty after edit")
	}

	b.SetDirty(false)
	if b.Dirty() {
		t.Error("expected buffer to be clean after SetDirty(false)")
	}
}

func TestBuffer_Line_OutOfRange(t *testing.T) {
	b := FromString("a")
	if got := b.Line(-1); got != "" {
		t.Errorf("Line(-1) = %q, want empty", got)
	}
	if got := b.Line(5); got != "" {
		t.Errorf("Line(5) = %q, want empty", got)
	}
}
