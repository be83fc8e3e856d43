package flicker

import (
	"bytes"

	"github.com/mattn/go-runewidth"
)

// DefaultRenderBufferThreshold is the sequence buffer's soft auto-flush
// limit in bytes, matching spec.md §4.5's default of 4 KiB.
const DefaultRenderBufferThreshold = 4 * 1024

// SequenceBuffer is an append-only byte accumulator with a soft
// auto-flush threshold.
type SequenceBuffer struct {
	buf         bytes.Buffer
	threshold   int
	totalBytes  int64
	flushCount  int64
}

// NewSequenceBuffer creates a buffer with the given soft threshold; a
// threshold <= 0 uses DefaultRenderBufferThreshold.
func NewSequenceBuffer(threshold int) *SequenceBuffer {
	if threshold <= 0 {
		threshold = DefaultRenderBufferThreshold
	}
	return &SequenceBuffer{threshold: threshold}
}

// Append adds bytes to the buffer. It returns the accumulated bytes (and
// resets the buffer) when the soft threshold was just crossed, or nil
// otherwise — mirroring the Continue/AutoFlush(bytes) contract of
// spec.md §4.5.
func (s *SequenceBuffer) Append(b []byte) []byte {
	s.buf.Write(b)
	if s.buf.Len() >= s.threshold {
		return s.Flush()
	}
	return nil
}

// Flush returns the accumulated bytes and resets the buffer.
func (s *SequenceBuffer) Flush() []byte {
	if s.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	s.totalBytes += int64(len(out))
	s.flushCount++
	s.buf.Reset()
	return out
}

// Stats reports cumulative bytes flushed and flush count.
func (s *SequenceBuffer) Stats() (bytesFlushed, flushes int64) {
	return s.totalBytes, s.flushCount
}

// Writer emits style changes as minimal SGR parameter lists, tracks
// cursor/style state across cells, and batches output into a
// SequenceBuffer. Grounded on the teacher's Screen.writeStyle/writeColor
// (screen.go), generalized into the Move/Style/Text op-stream consumer
// described in spec.md §4.5.
type Writer struct {
	seq    *SequenceBuffer
	cursor CursorState
	style  StyleState
	cur    *CursorOptimizer
}

// StyleState is the last-emitted style, or "unknown" (Known == false).
// applyStyle treats an unknown state as DefaultStyle(), the state a
// screen clear leaves the terminal in.
type StyleState struct {
	Style Style
	Known bool
}

// NewWriter creates a writer with an unknown cursor and style, ready to
// consume a frame's op stream.
func NewWriter(threshold int) *Writer {
	return &Writer{
		seq:    NewSequenceBuffer(threshold),
		cursor: UnknownCursor(),
		cur:    NewCursorOptimizer(),
	}
}

// ResetState clears cursor and style tracking, e.g. after a full clear —
// spec.md §3 invariant: CursorState after clear is Some((1,1)), StyleState
// is None. Callers that clear the screen should call MarkClearedAt(1,1)
// instead if they know the cursor physically landed at the origin.
func (w *Writer) ResetState() {
	w.cursor = UnknownCursor()
	w.style = StyleState{}
}

// MarkClearedAt records that a full clear left the cursor at (row,col)
// with unknown style.
func (w *Writer) MarkClearedAt(row, col int) {
	w.cursor = CursorState{Row: row, Col: col, Known: true}
	w.style = StyleState{}
}

// ApplyOps walks a diff op stream (diff.go), emitting bytes into the
// sequence buffer, and returns any bytes that were auto-flushed mid-walk.
// Call Flush afterward to retrieve the remainder for the frame's single
// write.
func (w *Writer) ApplyOps(ops []Op) []byte {
	var flushed []byte
	for _, op := range ops {
		var out []byte
		switch op.Kind {
		case OpMove:
			out = w.applyMove(op.Row, op.Col)
		case OpStyle:
			out = w.applyStyle(op.Style)
		case OpText:
			out = w.applyText(op.Text)
		}
		if out == nil {
			continue
		}
		if chunk := w.seq.Append(out); chunk != nil {
			flushed = append(flushed, chunk...)
		}
	}
	return flushed
}

func (w *Writer) applyMove(row, col int) []byte {
	if w.cursor.Known && w.cursor.Row == row && w.cursor.Col == col {
		return nil
	}
	var b []byte
	if !w.cursor.Known {
		b = []byte("\x1b[" + itoa(row) + ";" + itoa(col) + "H")
	} else {
		b = w.cur.Move(w.cursor.Row, w.cursor.Col, row, col)
	}
	w.cursor = CursorState{Row: row, Col: col, Known: true}
	return b
}

// applyStyle emits the minimal SGR sequence to move from the last
// emitted style to s, per spec.md §4.5's style-delta rules:
//   - no prior style: compare against DefaultStyle() (see below).
//   - identical style: emit nothing (SGR idempotence).
//   - added attributes only, same colors: emit only the added codes.
//   - any removed attribute: emit SGR 0 then the full new style.
//   - otherwise: emit the added attribute codes, if any, and the changed
//     color parameter(s).
func (w *Writer) applyStyle(s Style) []byte {
	if w.style.Known && w.style.Style.Equal(s) {
		return nil
	}

	// An unknown style state follows a screen clear, which leaves the
	// real terminal in its default SGR state, so an unknown prior style
	// is treated as an implicit DefaultStyle() baseline rather than
	// forcing an unconditional full emission.
	prev := DefaultStyle()
	if w.style.Known {
		prev = w.style.Style
	}
	removed := prev.Attr &^ s.Attr
	colorsChanged := !sameColor(prev.FG, prev.FGSet, s.FG, s.FGSet) ||
		!sameColor(prev.BG, prev.BGSet, s.BG, s.BGSet)

	var params []string
	switch {
	case removed != 0:
		params = append(params, "0")
		params = append(params, fullStyleParams(s)...)
	case colorsChanged:
		added := s.Attr &^ prev.Attr
		params = append(params, attrParams(added)...)
		if !sameColor(prev.FG, prev.FGSet, s.FG, s.FGSet) {
			params = append(params, colorParams(s.FG, s.FGSet, true)...)
		}
		if !sameColor(prev.BG, prev.BGSet, s.BG, s.BGSet) {
			params = append(params, colorParams(s.BG, s.BGSet, false)...)
		}
	default:
		added := s.Attr &^ prev.Attr
		params = attrParams(added)
	}

	w.style = StyleState{Style: s, Known: true}
	if len(params) == 0 {
		return nil
	}
	return sgr(params)
}

func (w *Writer) applyText(text string) []byte {
	w.cursor.Col += textWidth(text)
	return []byte(text)
}

func textWidth(text string) int {
	width := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			rw = 1
		}
		width += rw
	}
	return width
}

func sameColor(a Color, aSet bool, b Color, bSet bool) bool {
	if aSet != bSet {
		return false
	}
	if !aSet {
		return true
	}
	return a.Equal(b)
}

func attrParams(attrs Attribute) []string {
	var out []string
	if attrs.Has(AttrBold) {
		out = append(out, "1")
	}
	if attrs.Has(AttrDim) {
		out = append(out, "2")
	}
	if attrs.Has(AttrItalic) {
		out = append(out, "3")
	}
	if attrs.Has(AttrUnderline) {
		out = append(out, "4")
	}
	if attrs.Has(AttrBlink) {
		out = append(out, "5")
	}
	if attrs.Has(AttrReverse) {
		out = append(out, "7")
	}
	if attrs.Has(AttrHidden) {
		out = append(out, "8")
	}
	if attrs.Has(AttrStrikethrough) {
		out = append(out, "9")
	}
	return out
}

func fullStyleParams(s Style) []string {
	var out []string
	out = append(out, colorParams(s.FG, s.FGSet, true)...)
	out = append(out, colorParams(s.BG, s.BGSet, false)...)
	out = append(out, attrParams(s.Attr)...)
	return out
}

// colorParams returns the SGR parameter(s) for one color channel. An
// unset color ("inherit") contributes nothing.
func colorParams(c Color, set bool, fg bool) []string {
	if !set {
		return nil
	}
	switch c.Mode {
	case ColorDefault:
		if fg {
			return []string{"39"}
		}
		return []string{"49"}
	case ColorNamed:
		base := 30
		if !fg {
			base = 40
		}
		idx := int(c.Index)
		if idx >= 8 {
			base += 60
			idx -= 8
		}
		return []string{itoa(base + idx)}
	case ColorPalette256:
		if fg {
			return []string{"38", "5", itoa(int(c.Index))}
		}
		return []string{"48", "5", itoa(int(c.Index))}
	case ColorRGB:
		if fg {
			return []string{"38", "2", itoa(int(c.R)), itoa(int(c.G)), itoa(int(c.B))}
		}
		return []string{"48", "2", itoa(int(c.R)), itoa(int(c.G)), itoa(int(c.B))}
	}
	return nil
}

// sgr combines parameters into one `ESC [ p1 ; p2 ; … m` sequence.
func sgr(params []string) []byte {
	if len(params) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.WriteString("\x1b[")
	for i, p := range params {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(p)
	}
	b.WriteByte('m')
	return b.Bytes()
}

// Flush returns and clears any bytes accumulated since the last Flush or
// auto-flush, for the frame's single write.
func (w *Writer) Flush() []byte { return w.seq.Flush() }

// Stats reports cumulative sequence-buffer bytes and flush count.
func (w *Writer) Stats() (bytesFlushed, flushes int64) { return w.seq.Stats() }
