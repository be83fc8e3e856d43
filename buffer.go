package flicker

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxGridDimension is the largest row or column count a Grid accepts, per
// spec.md §3 (1 ≤ rows, cols ≤ 9999).
const MaxGridDimension = 9999

// Grid is a dense row-major array of rows×cols cells, addressed
// externally 1-indexed and internally 0-indexed. Writing a wide-width
// grapheme claims two columns; the second is a continuation sentinel and
// must not be addressed independently (Cell.IsContinuation).
//
// Grounded on the teacher's Buffer (buffer.go): per-row dirty tracking
// (RowDirty/ClearDirty) is kept; Diff (diff.go) does not consult it and
// compares every row.
type Grid struct {
	cells    []Cell
	rows     int
	cols     int
	dirty    []bool // per-row; a row is dirty if any cell in it changed since the last ClearDirty
	allDirty bool
}

// NewGrid creates a rows×cols grid filled with empty cells. Dimensions
// are clamped into 1..MaxGridDimension the same way Resize clamps them.
func NewGrid(rows, cols int) *Grid {
	rows, cols = clampDim(rows), clampDim(cols)
	g := &Grid{
		cells: make([]Cell, rows*cols),
		rows:  rows,
		cols:  cols,
		dirty: make([]bool, rows),
	}
	empty := EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
	g.allDirty = true
	return g
}

func clampDim(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxGridDimension {
		return MaxGridDimension
	}
	return n
}

// Dims returns the grid's (rows, cols).
func (g *Grid) Dims() (rows, cols int) { return g.rows, g.cols }

// inBounds reports whether the 0-indexed (row,col) lies within the grid.
func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid) index(row, col int) int { return row*g.cols + col }

// Get returns the cell at the 1-indexed (row,col). Out-of-bounds reads
// return an empty cell.
func (g *Grid) Get(row, col int) Cell {
	row, col = row-1, col-1
	if !g.inBounds(row, col) {
		return EmptyCell()
	}
	return g.cells[g.index(row, col)]
}

// Set writes a cell at the 1-indexed (row,col). Out-of-bounds writes
// return ErrOutOfBounds and are otherwise a no-op, per spec.md §7.
func (g *Grid) Set(row, col int, c Cell) error {
	r, cl := row-1, col-1
	if !g.inBounds(r, cl) {
		return fmt.Errorf("%w: row=%d col=%d dims=%dx%d", ErrOutOfBounds, row, col, g.rows, g.cols)
	}
	idx := g.index(r, cl)
	g.cells[idx] = c
	g.dirty[r] = true
	return nil
}

// WriteStr writes text starting at the 1-indexed (row,col) with the given
// style, advancing by each grapheme cluster's display width. Clusters are
// segmented with uniseg rather than by Go rune, so a combining accent or an
// emoji ZWJ sequence counts as a single cell instead of splitting across
// several; the cell still stores only the cluster's base rune (Cell has no
// room for trailing combining marks), so accents are dropped rather than
// misrendered across cells. A wide cluster claims two columns; the second is
// filled with a continuation sentinel that must not be set independently.
// Columns past the last one are skipped rather than erroring, matching Set's
// per-cell semantics applied cell-by-cell.
func (g *Grid) WriteStr(row, col int, text string, style Style) {
	r := row - 1
	if r < 0 || r >= g.rows {
		return
	}
	x := col - 1
	state := -1
	for len(text) > 0 {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		if w == 0 {
			w = 1
		}
		base, _ := utf8.DecodeRuneInString(cluster)
		if x < 0 {
			x += w
			continue
		}
		if x >= g.cols {
			return
		}
		g.cells[g.index(r, x)] = Cell{Grapheme: base, Style: style}
		g.dirty[r] = true
		if w == 2 && x+1 < g.cols {
			g.cells[g.index(r, x+1)] = continuationCell(style)
		}
		x += w
	}
}

// Clear resets every cell to empty and marks every row dirty.
func (g *Grid) Clear() {
	empty := EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
	for i := range g.dirty {
		g.dirty[i] = true
	}
	g.allDirty = true
}

// Resize reallocates the grid to rows×cols, copying the overlapping
// min(rows,rows')×min(cols,cols') rectangle and clamping dimensions into
// 1..MaxGridDimension.
func (g *Grid) Resize(rows, cols int) {
	rows, cols = clampDim(rows), clampDim(cols)
	if rows == g.rows && cols == g.cols {
		return
	}
	newCells := make([]Cell, rows*cols)
	empty := EmptyCell()
	for i := range newCells {
		newCells[i] = empty
	}

	minRows, minCols := minInt(rows, g.rows), minInt(cols, g.cols)
	for r := 0; r < minRows; r++ {
		for c := 0; c < minCols; c++ {
			newCells[r*cols+c] = g.cells[r*g.cols+c]
		}
	}

	g.cells = newCells
	g.rows, g.cols = rows, cols
	g.dirty = make([]bool, rows)
	g.allDirty = true
}

// RowDirty reports whether the 0-indexed row changed since the last
// ClearDirty.
func (g *Grid) RowDirty(row int) bool {
	if g.allDirty {
		return true
	}
	if row < 0 || row >= len(g.dirty) {
		return false
	}
	return g.dirty[row]
}

// ClearDirty marks every row clean; called once per frame after diffing.
func (g *Grid) ClearDirty() {
	g.allDirty = false
	for i := range g.dirty {
		g.dirty[i] = false
	}
}

// CopyFrom replaces g's cells and dimensions with src's, reusing g's cell
// slice when the sizes match. BufferPair does not use it: Present swaps
// the grid pointers instead.
func (g *Grid) CopyFrom(src *Grid) {
	if len(g.cells) != len(src.cells) {
		g.cells = make([]Cell, len(src.cells))
	}
	copy(g.cells, src.cells)
	g.rows, g.cols = src.rows, src.cols
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// BufferPair holds the current (being written by the renderer) and
// previous (what diff compares against) grids, per spec.md §3. Present
// swaps the two pointers so exactly one previous grid is retired per
// successful render.
type BufferPair struct {
	Current  *Grid
	Previous *Grid
}

// NewBufferPair allocates a current/previous pair at rows×cols.
func NewBufferPair(rows, cols int) *BufferPair {
	return &BufferPair{Current: NewGrid(rows, cols), Previous: NewGrid(rows, cols)}
}

// Present swaps current and previous, so the frame just rendered becomes
// the baseline for the next diff.
func (p *BufferPair) Present() {
	p.Current, p.Previous = p.Previous, p.Current
}

// Resize reallocates both grids, preserving each one's overlapping
// rectangle independently.
func (p *BufferPair) Resize(rows, cols int) {
	p.Current.Resize(rows, cols)
	p.Previous.Resize(rows, cols)
}
