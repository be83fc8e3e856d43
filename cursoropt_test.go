package flicker

import "testing"

func TestCursorOptimizerPicksCR(t *testing.T) {
	o := NewCursorOptimizer()
	got := o.Move(3, 40, 3, 1)
	if string(got) != "\r" {
		t.Fatalf("expected CR, got %q", got)
	}
}

func TestCursorOptimizerNeverExceedsAbsolute(t *testing.T) {
	o := NewCursorOptimizer()
	cases := [][4]int{
		{1, 1, 1, 1},
		{5, 5, 5, 10},
		{5, 5, 10, 5},
		{1, 1, 50, 80},
		{100, 100, 1, 1},
	}
	for _, c := range cases {
		absolute := len("\x1b[" + itoa(c[2]) + ";" + itoa(c[3]) + "H")
		got := o.Move(c[0], c[1], c[2], c[3])
		if len(got) > absolute {
			t.Fatalf("Move%v produced %d bytes, absolute is %d", c, len(got), absolute)
		}
	}
}

func TestCursorOptimizerHome(t *testing.T) {
	o := NewCursorOptimizer()
	got := o.Move(5, 5, 1, 1)
	if string(got) != "\x1b[H" {
		t.Fatalf("expected Home sequence, got %q", got)
	}
}

func TestCursorOptimizerOutOfRangeFallsBackToAbsolute(t *testing.T) {
	o := NewCursorOptimizer()
	got := o.Move(1, 1, 10000, 1)
	want := "\x1b[10000;1H"
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCursorOptimizerTracksBytesSaved(t *testing.T) {
	o := NewCursorOptimizer()
	o.Move(3, 40, 3, 1)
	if o.BytesSaved() <= 0 {
		t.Fatalf("expected positive bytes saved, got %d", o.BytesSaved())
	}
}
