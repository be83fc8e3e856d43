package flicker

import (
	"bytes"
	"testing"
)

// TestMinimalRender mirrors spec.md §8 scenario 1.
func TestMinimalRender(t *testing.T) {
	w := NewWriter(DefaultRenderBufferThreshold)
	ops := []Op{
		{Kind: OpMove, Row: 1, Col: 1},
		{Kind: OpStyle, Style: DefaultStyle()},
		{Kind: OpText, Text: "Hi"},
	}
	out := w.ApplyOps(ops)
	out = append(out, w.Flush()...)
	if len(out) > 10 {
		t.Fatalf("expected <=10 bytes, got %d: %q", len(out), out)
	}
	if !bytes.Contains(out, []byte("\x1b[1;1H")) || !bytes.Contains(out, []byte("Hi")) {
		t.Fatalf("unexpected output: %q", out)
	}
}

// TestSGRIdempotence mirrors spec.md §8's "SGR idempotence" invariant.
func TestSGRIdempotence(t *testing.T) {
	w := NewWriter(DefaultRenderBufferThreshold)
	red := DefaultStyle().Foreground(Named(Red))
	first := w.applyStyle(red)
	if len(first) == 0 {
		t.Fatal("expected bytes for first style emission")
	}
	second := w.applyStyle(red)
	if len(second) != 0 {
		t.Fatalf("expected no bytes for repeated style, got %q", second)
	}
}

// TestAttributeRemovalForcesReset mirrors spec.md §8 scenario 3.
func TestAttributeRemovalForcesReset(t *testing.T) {
	w := NewWriter(DefaultRenderBufferThreshold)
	w.applyStyle(DefaultStyle().Bold().Italic())
	out := w.applyStyle(DefaultStyle().Bold())
	if !bytes.Contains(out, []byte("0")) {
		t.Fatalf("expected a reset code in %q", out)
	}
	if !bytes.Contains(out, []byte("1")) {
		t.Fatalf("expected the bold code in %q", out)
	}
}

func TestColorOnlyChangeEmitsOnlyColor(t *testing.T) {
	w := NewWriter(DefaultRenderBufferThreshold)
	w.applyStyle(DefaultStyle().Foreground(Named(Red)))
	out := w.applyStyle(DefaultStyle().Foreground(Named(Blue)))
	want := sgr(colorParams(Named(Blue), true, true))
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestSequenceBufferAutoFlush(t *testing.T) {
	s := NewSequenceBuffer(4)
	if chunk := s.Append([]byte("ab")); chunk != nil {
		t.Fatalf("expected no flush yet, got %q", chunk)
	}
	chunk := s.Append([]byte("cde"))
	if string(chunk) != "abcde" {
		t.Fatalf("expected auto-flush of accumulated bytes, got %q", chunk)
	}
	bytesFlushed, flushes := s.Stats()
	if bytesFlushed != 5 || flushes != 1 {
		t.Fatalf("unexpected stats: %d bytes, %d flushes", bytesFlushed, flushes)
	}
}

func TestApplyMoveNoopWhenCursorAlreadyThere(t *testing.T) {
	w := NewWriter(DefaultRenderBufferThreshold)
	w.ApplyOps([]Op{{Kind: OpMove, Row: 2, Col: 2}})
	out := w.ApplyOps([]Op{{Kind: OpMove, Row: 2, Col: 2}})
	if len(out) != 0 {
		t.Fatalf("expected no-op move, got %q", out)
	}
}
