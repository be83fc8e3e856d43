package flicker

import "strconv"

// CursorOptimizer picks the byte-cheapest escape sequence to move the
// cursor between two positions, among the closed candidate set of
// spec.md §4.4. It never itself chooses the literal-spaces candidate —
// that additionally requires confirming the traversed cells are already
// spaces in the writer's current background style, a fact only the SGR
// writer's StyleState can confirm (open question in spec.md §9, decided
// in SPEC_FULL.md §13.3). CursorOptimizer exposes that candidate's cost
// via SpacesCost so the writer can choose it when it has that context.
type CursorOptimizer struct {
	bytesSaved int64 // cumulative bytes saved vs naive absolute positioning
}

// NewCursorOptimizer returns an optimizer with zero accumulated stats.
func NewCursorOptimizer() *CursorOptimizer { return &CursorOptimizer{} }

// candidate is one way to move the cursor: its bytes and their length.
type candidate struct {
	bytes []byte
	cost  int
}

func digits(n int) int {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

func itoa(n int) string { return strconv.Itoa(n) }

func inCursorRange(n int) bool { return n >= 1 && n <= MaxGridDimension }

// Move returns the cheapest escape sequence moving the cursor from
// (fromRow,fromCol) to (toRow,toCol), both 1-indexed. Coordinates outside
// 1..9999 fall back to absolute positioning. Ties are broken in the
// order absolute > relative > CR-based > home > spaces, matching the
// spec's stated preference for the most generally-applicable sequence at
// equal cost.
func (o *CursorOptimizer) Move(fromRow, fromCol, toRow, toCol int) []byte {
	absolute := candidate{bytes: []byte("\x1b[" + itoa(toRow) + ";" + itoa(toCol) + "H")}
	absolute.cost = len(absolute.bytes)

	if !inCursorRange(fromRow) || !inCursorRange(fromCol) ||
		!inCursorRange(toRow) || !inCursorRange(toCol) {
		return absolute.bytes
	}

	best := absolute

	switch {
	case toRow == fromRow:
		if d := toCol - fromCol; d != 0 {
			if c, ok := relative(d, 'C', 'D'); ok && c.cost < best.cost {
				best = c
			}
		}
		if toCol == 1 && 1 < best.cost {
			best = candidate{bytes: []byte("\r"), cost: 1}
		}
	case toCol == fromCol:
		if d := toRow - fromRow; d != 0 {
			if c, ok := relative(d, 'B', 'A'); ok && c.cost < best.cost {
				best = c
			}
		}
	}

	if toCol == 1 {
		if toRow == 1 && 3 < best.cost {
			best = candidate{bytes: []byte("\x1b[H"), cost: 3}
		}
		if toRow > fromRow {
			k := toRow - fromRow
			cost := 1 + 3 + digits(k)
			if cost < best.cost {
				best = candidate{bytes: []byte("\r\x1b[" + itoa(k) + "B"), cost: cost}
			}
		}
	}

	o.bytesSaved += int64(absolute.cost - best.cost)
	return best.bytes
}

// SpacesCost returns the byte cost of moving rightward on the current
// row by writing n literal spaces. The caller must confirm the traversed
// cells' background matches the writer's current style before using it.
func (o *CursorOptimizer) SpacesCost(n int) int { return n }

// BytesSaved returns the cumulative bytes saved versus always emitting
// absolute positioning, across the optimizer's lifetime.
func (o *CursorOptimizer) BytesSaved() int64 { return o.bytesSaved }

// relative builds an Up/Down/Right/Left sequence for a signed delta,
// using posLetter for a positive delta and negLetter for a negative one.
func relative(delta int, posLetter, negLetter byte) (candidate, bool) {
	n := delta
	letter := posLetter
	if n < 0 {
		n = -n
		letter = negLetter
	}
	if n == 0 {
		return candidate{}, false
	}
	b := append([]byte("\x1b["+itoa(n)), letter)
	return candidate{bytes: b, cost: 3 + digits(n)}, true
}
