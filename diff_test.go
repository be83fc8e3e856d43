package flicker

import "testing"

// applyDiffToFreshGrid replays Diff's ops onto a grid that starts equal
// to previous, proving diff correctness (spec.md §8).
func applyDiffToFreshGrid(previous, current *Grid) *Grid {
	rows, cols := previous.Dims()
	out := NewGrid(rows, cols)
	out.CopyFrom(previous)

	row, col := 0, 0
	for _, op := range Diff(current, previous) {
		switch op.Kind {
		case OpMove:
			row, col = op.Row, op.Col
		case OpText:
			for _, r := range op.Text {
				out.Set(row, col, Cell{Grapheme: r})
				col++
			}
		}
	}
	return out
}

func TestDiffCorrectness(t *testing.T) {
	previous := NewGrid(3, 10)
	current := NewGrid(3, 10)
	current.WriteStr(1, 1, "Hi", DefaultStyle())
	current.WriteStr(2, 3, "there", DefaultStyle().Bold())

	got := applyDiffToFreshGrid(previous, current)
	rows, cols := current.Dims()
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			wantCell := current.Get(r, c)
			gotCell := got.Get(r, c)
			if wantCell.Grapheme != gotCell.Grapheme {
				t.Fatalf("(%d,%d): got %q want %q", r, c, gotCell.Grapheme, wantCell.Grapheme)
			}
		}
	}
}

func TestDiffDeterminism(t *testing.T) {
	previous := NewGrid(2, 10)
	current := NewGrid(2, 10)
	current.WriteStr(1, 1, "abc", DefaultStyle())

	a := Diff(current, previous)
	b := Diff(current, previous)
	if len(a) != len(b) {
		t.Fatalf("op count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("op %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestDiffMergesAdjacentRuns mirrors spec.md §8 scenario 2: "AAAA" then
// "BB" with a zero-column gap merges into one styled run.
func TestDiffMergesAdjacentRuns(t *testing.T) {
	previous := NewGrid(1, 10)
	current := NewGrid(1, 10)
	red := DefaultStyle().Foreground(Named(Red))
	current.WriteStr(1, 1, "AAAA", red)
	current.WriteStr(1, 5, "BB", red)

	ops := Diff(current, previous)
	styleCount := 0
	var text string
	for _, op := range ops {
		if op.Kind == OpStyle {
			styleCount++
		}
		if op.Kind == OpText {
			text += op.Text
		}
	}
	if styleCount != 1 {
		t.Fatalf("expected exactly one style op, got %d", styleCount)
	}
	if text != "AAAABB" {
		t.Fatalf("expected merged text AAAABB, got %q", text)
	}
}

func TestDiffNoChangesProducesNoOps(t *testing.T) {
	g := NewGrid(2, 2)
	g.WriteStr(1, 1, "ab", DefaultStyle())
	g2 := NewGrid(2, 2)
	g2.CopyFrom(g)
	if ops := Diff(g2, g); len(ops) != 0 {
		t.Fatalf("expected no ops for identical grids, got %d", len(ops))
	}
}
