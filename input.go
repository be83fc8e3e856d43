package flicker

import "strings"

// inputState is the Input Decoder's state machine (spec.md §4.2).
type inputState int

const (
	stateGround inputState = iota
	stateEscape
	stateCSI
	stateSS3
	stateSGRMouse
	stateX10Mouse
	statePaste
)

const (
	pasteBeginSeq = "200~"
	pasteEndSeq   = "201~"
)

// Decoder turns a raw byte stream from the controlling tty into Events,
// holding any trailing partial sequence across calls. No teacher file
// decodes input (its router, riffkey, is a private dependency with no
// retrievable source); this state machine follows the xterm escape
// grammar directly, in the shape bubbletea's own read loop uses (read,
// decode, carry an unparsed tail), per other_examples/ tea.go.
type Decoder struct {
	state inputState

	csiParams []byte // raw digits/semicolons/intermediate bytes accumulated in CSI
	x10Bytes  []byte // accumulated bytes in X10_Mouse (button, col, row)
	paste     strings.Builder

	tail []byte // unconsumed bytes carried to the next Feed call
}

// NewDecoder returns a decoder starting in Ground state.
func NewDecoder() *Decoder { return &Decoder{} }

// Reset clears internal buffers and returns to Ground, without touching
// any events already returned from a previous Feed.
func (d *Decoder) Reset() {
	d.state = stateGround
	d.csiParams = d.csiParams[:0]
	d.x10Bytes = d.x10Bytes[:0]
	d.paste.Reset()
	d.tail = nil
}

// Feed decodes as many complete events as the combination of d's carried
// tail and b allows, returning the events; any new unconsumed tail is
// kept on d for the next call.
// Unknown sequences are dropped with an internal reset; they never
// surface an error (spec.md §4.2, Failure model).
func (d *Decoder) Feed(b []byte) []Event {
	buf := append(d.tail, b...)
	d.tail = nil

	var events []Event
	i := 0
	for i < len(buf) {
		n, ev, ok := d.step(buf[i:])
		if n == 0 {
			// Not enough bytes to resolve the current state; carry the
			// remainder forward.
			d.tail = append(d.tail, buf[i:]...)
			break
		}
		i += n
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

// FlushEscape is called by the caller after a bare-Escape timeout (spec.md
// §4.2, typically 50-100ms with no follow-up byte) to emit Key(Escape)
// and return to Ground.
func (d *Decoder) FlushEscape() (Event, bool) {
	if d.state != stateEscape {
		return Event{}, false
	}
	d.state = stateGround
	return keyEvent(KeyEscape, 0, 0), true
}

// step consumes a prefix of buf according to the current state, returning
// the number of bytes consumed (0 means "need more input"), the decoded
// event if any, and whether an event was produced.
func (d *Decoder) step(buf []byte) (int, Event, bool) {
	switch d.state {
	case stateGround:
		return d.stepGround(buf)
	case stateEscape:
		return d.stepEscape(buf)
	case stateCSI:
		return d.stepCSI(buf)
	case stateSS3:
		return d.stepSS3(buf)
	case stateSGRMouse:
		return d.stepSGRMouse(buf)
	case stateX10Mouse:
		return d.stepX10Mouse(buf)
	case statePaste:
		return d.stepPaste(buf)
	default:
		d.state = stateGround
		return 1, Event{}, false
	}
}

func (d *Decoder) stepGround(buf []byte) (int, Event, bool) {
	c := buf[0]
	switch {
	case c == 0x1b:
		d.state = stateEscape
		return 1, Event{}, false
	case c == 0x08 || c == 0x7f:
		return 1, keyEvent(KeyBackspace, 0, 0), true
	case c == 0x09:
		return 1, keyEvent(KeyTab, 0, 0), true
	case c == 0x0d:
		// A bare CR immediately followed by LF within the same Feed call
		// collapses into a single Enter event (spec.md §13.1 decision); a
		// CR with no buffered follow-up byte can't block waiting for one
		// that may never come, so it is emitted as Enter right away.
		if len(buf) >= 2 && buf[1] == 0x0a {
			return 2, keyEvent(KeyEnter, 0, 0), true
		}
		return 1, keyEvent(KeyEnter, 0, 0), true
	case c == 0x0a:
		return 1, keyEvent(KeyEnter, 0, 0), true
	case c < 0x20:
		return 1, keyEvent(KeyRune, rune(c)+'a'-1, ModCtrl), true
	case c >= 0x20 && c <= 0x7e:
		return 1, keyEvent(KeyRune, rune(c), 0), true
	default:
		return d.stepUTF8(buf)
	}
}

// stepUTF8 decodes one grapheme cluster starting at buf[0], which is a
// UTF-8 lead byte. An incomplete sequence returns 0 so the caller carries
// it in the tail until more bytes arrive.
func (d *Decoder) stepUTF8(buf []byte) (int, Event, bool) {
	n := utf8SeqLen(buf[0])
	if n == 0 {
		// Invalid lead byte; drop it.
		return 1, Event{}, false
	}
	if len(buf) < n {
		return 0, Event{}, false
	}
	r := decodeRune(buf[:n])
	return n, keyEvent(KeyRune, r, 0), true
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xe0 == 0xc0:
		return 2
	case lead&0xf0 == 0xe0:
		return 3
	case lead&0xf8 == 0xf0:
		return 4
	default:
		return 0
	}
}

func decodeRune(b []byte) rune {
	switch len(b) {
	case 1:
		return rune(b[0])
	case 2:
		return rune(b[0]&0x1f)<<6 | rune(b[1]&0x3f)
	case 3:
		return rune(b[0]&0x0f)<<12 | rune(b[1]&0x3f)<<6 | rune(b[2]&0x3f)
	default:
		return rune(b[0]&0x07)<<18 | rune(b[1]&0x3f)<<12 | rune(b[2]&0x3f)<<6 | rune(b[3]&0x3f)
	}
}

func (d *Decoder) stepEscape(buf []byte) (int, Event, bool) {
	c := buf[0]
	switch {
	case c == '[':
		d.state = stateCSI
		d.csiParams = d.csiParams[:0]
		return 1, Event{}, false
	case c == 'O':
		d.state = stateSS3
		return 1, Event{}, false
	case c >= 0x20 && c <= 0x7e:
		d.state = stateGround
		return 1, keyEvent(KeyRune, rune(c), ModAlt), true
	default:
		d.state = stateGround
		return 1, Event{}, false
	}
}

func (d *Decoder) stepSS3(buf []byte) (int, Event, bool) {
	d.state = stateGround
	switch buf[0] {
	case 'A':
		return 1, keyEvent(KeyUp, 0, 0), true
	case 'B':
		return 1, keyEvent(KeyDown, 0, 0), true
	case 'C':
		return 1, keyEvent(KeyRight, 0, 0), true
	case 'D':
		return 1, keyEvent(KeyLeft, 0, 0), true
	case 'H':
		return 1, keyEvent(KeyHome, 0, 0), true
	case 'F':
		return 1, keyEvent(KeyEnd, 0, 0), true
	case 'P', 'Q', 'R', 'S':
		return 1, keyEvent(f1Through4(buf[0]), 0, 0), true
	default:
		return 1, Event{}, false
	}
}

func f1Through4(b byte) KeyName {
	switch b {
	case 'P':
		return KeyF1
	case 'Q':
		return KeyF2
	case 'R':
		return KeyF3
	default:
		return KeyF4
	}
}

// stepCSI accumulates parameter bytes until a final byte (0x40..0x7e)
// arrives, then dispatches.
func (d *Decoder) stepCSI(buf []byte) (int, Event, bool) {
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if c == '<' && len(d.csiParams) == 0 {
			d.state = stateSGRMouse
			d.csiParams = d.csiParams[:0]
			return i + 1, Event{}, false
		}
		if c == 'M' && len(d.csiParams) == 0 {
			d.state = stateX10Mouse
			d.x10Bytes = d.x10Bytes[:0]
			return i + 1, Event{}, false
		}
		if c >= '0' && c <= '9' || c == ';' {
			d.csiParams = append(d.csiParams, c)
			continue
		}
		// Final byte.
		params := string(d.csiParams)
		d.csiParams = d.csiParams[:0]
		return i + 1, d.dispatchCSI(params, c)
	}
	// Every byte is already held in csiParams; none belongs in the tail.
	return len(buf), Event{}, false
}

func (d *Decoder) dispatchCSI(params string, final byte) (Event, bool) {
	nums := parseCSIParams(params)
	if final == '~' {
		return d.dispatchTilde(nums)
	}

	mods := Modifier(0)
	if len(nums) >= 2 {
		mods = modifierFromCSI(nums[1])
	}
	switch final {
	case 'A':
		d.state = stateGround
		return keyEvent(KeyUp, 0, mods), true
	case 'B':
		d.state = stateGround
		return keyEvent(KeyDown, 0, mods), true
	case 'C':
		d.state = stateGround
		return keyEvent(KeyRight, 0, mods), true
	case 'D':
		d.state = stateGround
		return keyEvent(KeyLeft, 0, mods), true
	case 'H':
		d.state = stateGround
		return keyEvent(KeyHome, 0, mods), true
	case 'F':
		d.state = stateGround
		return keyEvent(KeyEnd, 0, mods), true
	case 'I':
		d.state = stateGround
		return Event{Kind: EventFocus, FocusGained: true}, true
	case 'O':
		d.state = stateGround
		return Event{Kind: EventFocus, FocusGained: false}, true
	default:
		d.state = stateGround
		return Event{}, false
	}
}

// tildeKeyTable maps the leading tilde-sequence number to a key, per
// spec.md §4.2.
var tildeKeyTable = map[int]KeyName{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPageUp, 6: KeyPageDown,
	15: KeyF5, 17: KeyF6, 18: KeyF7, 19: KeyF8, 20: KeyF9, 21: KeyF10,
	23: KeyF11, 24: KeyF12,
}

func (d *Decoder) dispatchTilde(nums []int) (Event, bool) {
	d.state = stateGround
	if len(nums) == 0 {
		return Event{}, false
	}
	switch nums[0] {
	case 200:
		d.state = statePaste
		d.paste.Reset()
		return Event{}, false
	case 201:
		// Stray paste-end outside Paste state; ignore.
		return Event{}, false
	}
	name, ok := tildeKeyTable[nums[0]]
	if !ok {
		return Event{}, false
	}
	var mods Modifier
	if len(nums) >= 2 {
		mods = modifierFromCSI(nums[1])
	}
	return keyEvent(name, 0, mods), true
}

func parseCSIParams(params string) []int {
	if params == "" {
		return nil
	}
	var nums []int
	start := 0
	for i := 0; i <= len(params); i++ {
		if i == len(params) || params[i] == ';' {
			nums = append(nums, atoiOr(params[start:i], 0))
			start = i + 1
		}
	}
	return nums
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// modifierFromCSI decodes the `m-1` bit field: 1=Shift, 2=Alt, 4=Ctrl,
// 8=Meta.
func modifierFromCSI(paramM int) Modifier {
	bits := paramM - 1
	var mods Modifier
	if bits&1 != 0 {
		mods |= ModShift
	}
	if bits&2 != 0 {
		mods |= ModAlt
	}
	if bits&4 != 0 {
		mods |= ModCtrl
	}
	if bits&8 != 0 {
		mods |= ModMeta
	}
	return mods
}

func (d *Decoder) stepPaste(buf []byte) (int, Event, bool) {
	marker := "\x1b[" + pasteEndSeq
	for i := 0; i < len(buf); i++ {
		d.paste.WriteByte(buf[i])
		s := d.paste.String()
		if strings.HasSuffix(s, marker) {
			text := s[:len(s)-len(marker)]
			d.paste.Reset()
			d.state = stateGround
			return i + 1, Event{Kind: EventPaste, PasteText: text}, true
		}
	}
	return len(buf), Event{}, false
}

// stepSGRMouse consumes `Cb;Cx;Cy` followed by M (press/drag) or m
// (release).
func (d *Decoder) stepSGRMouse(buf []byte) (int, Event, bool) {
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if c == 'M' || c == 'm' {
			params := string(d.csiParams)
			d.csiParams = d.csiParams[:0]
			d.state = stateGround
			nums := parseCSIParams(params)
			if len(nums) < 3 {
				return i + 1, Event{}, false
			}
			return i + 1, decodeMouse(nums[0], nums[1], nums[2], c == 'm'), true
		}
		d.csiParams = append(d.csiParams, c)
	}
	return len(buf), Event{}, false
}

// stepX10Mouse reads three raw bytes: button, column+32, row+32.
func (d *Decoder) stepX10Mouse(buf []byte) (int, Event, bool) {
	need := 3 - len(d.x10Bytes)
	n := need
	if n > len(buf) {
		n = len(buf)
	}
	d.x10Bytes = append(d.x10Bytes, buf[:n]...)
	if len(d.x10Bytes) < 3 {
		return n, Event{}, false
	}
	button := int(d.x10Bytes[0]) - 32
	col := int(d.x10Bytes[1]) - 32
	row := int(d.x10Bytes[2]) - 32
	d.x10Bytes = d.x10Bytes[:0]
	d.state = stateGround
	release := button&0x3 == 3
	return n, decodeMouse(button, col, row, release), true
}

// decodeMouse shares the button-byte decoding between SGR and X10, per
// spec.md §4.2.
func decodeMouse(buttonByte, col, row int, release bool) Event {
	base := buttonByte & 0x3
	motion := buttonByte&0x20 != 0
	wheel := buttonByte&0x40 != 0

	var mods Modifier
	if buttonByte&0x4 != 0 {
		mods |= ModShift
	}
	if buttonByte&0x8 != 0 {
		mods |= ModAlt
	}
	if buttonByte&0x10 != 0 {
		mods |= ModCtrl
	}

	var btn MouseButton
	var action MouseAction
	switch {
	case wheel:
		btn = MouseButtonNone
		if base == 0 {
			action = MouseWheelUp
		} else {
			action = MouseWheelDown
		}
	case motion:
		action = MouseDrag
		btn = mouseButtonFromBase(base)
	case release:
		action = MouseRelease
		btn = mouseButtonFromBase(base)
	default:
		action = MousePress
		btn = mouseButtonFromBase(base)
	}

	return Event{
		Kind:        EventMouse,
		X:           col,
		Y:           row,
		MouseButton: btn,
		MouseAct:    action,
		Mods:        mods,
	}
}

func mouseButtonFromBase(base int) MouseButton {
	switch base {
	case 0:
		return MouseButtonLeft
	case 1:
		return MouseButtonMiddle
	case 2:
		return MouseButtonRight
	default:
		return MouseButtonNone
	}
}

func keyEvent(name KeyName, r rune, mods Modifier) Event {
	return Event{Kind: EventKey, Key: name, Char: r, Mods: mods}
}
