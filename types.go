// Package flicker implements the frame pipeline of a terminal UI runtime:
// raw-mode terminal control, a streaming escape-sequence input decoder, a
// double-buffered cell grid with diffing, a byte-cheapest cursor-movement
// optimizer, an SGR style-delta writer, a drift-compensating frame
// scheduler, and Elm-architecture (Model/Update/View) event dispatch.
//
// The widget/layout library, focus management, spatial hit-testing, and
// theming are out of scope; flicker consumes them only at the interfaces
// described in component.go.
package flicker

import "time"

// ColorMode identifies how a Color's channels should be interpreted.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota // terminal default, explicit reset
	ColorNamed                    // one of the 16 standard names
	ColorPalette256                // 0..255 palette index
	ColorRGB                      // 24-bit true color
)

// Color is a tagged value: Default, one of 16 standard names, a 256-entry
// palette index, or 24-bit RGB. Colors compare by structural equality.
type Color struct {
	Mode  ColorMode
	Index uint8 // Named (0-15) or Palette256 (0-255)
	R, G, B uint8
}

// Standard 16 color names, matching the ANSI SGR numbering (30-37, 90-97).
const (
	Black uint8 = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

// DefaultColor returns the explicit terminal-default color.
func DefaultColor() Color { return Color{Mode: ColorDefault} }

// Named returns one of the 16 standard colors by index (0-15).
func Named(index uint8) Color { return Color{Mode: ColorNamed, Index: index} }

// Palette256 returns a color from the 256-entry palette.
func Palette256(index uint8) Color { return Color{Mode: ColorPalette256, Index: index} }

// RGB returns a 24-bit true color.
func RGB(r, g, b uint8) Color { return Color{Mode: ColorRGB, R: r, G: g, B: b} }

// Hex returns a 24-bit true color decoded from a packed 0xRRGGBB value.
func Hex(hex uint32) Color {
	return RGB(uint8(hex>>16), uint8(hex>>8), uint8(hex))
}

// Equal reports structural equality between two colors.
func (c Color) Equal(other Color) bool { return c == other }

// Attribute is one bit of a closed set of text attributes a cell can carry.
type Attribute uint16

const (
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrikethrough
)

// Has reports whether the set contains attr.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// With returns a new set with attr added.
func (a Attribute) With(attr Attribute) Attribute { return a | attr }

// Without returns a new set with attr removed.
func (a Attribute) Without(attr Attribute) Attribute { return a &^ attr }

// Style is fg/bg colors (nil meaning "inherit") plus an attribute set.
// A Go zero value can't represent "inherit" for a non-pointer Color, so
// Style tracks presence explicitly via FGSet/BGSet — merge and equality
// both respect it.
type Style struct {
	FG    Color
	BG    Color
	FGSet bool // false means "inherit" — merge() leaves the base's FG alone
	BGSet bool
	Attr  Attribute
}

// DefaultStyle returns the explicit terminal-default style: no inherit,
// default colors, no attributes.
func DefaultStyle() Style {
	return Style{FG: DefaultColor(), BG: DefaultColor(), FGSet: true, BGSet: true}
}

// Foreground returns a copy of s with an explicit foreground color.
func (s Style) Foreground(c Color) Style { s.FG, s.FGSet = c, true; return s }

// Background returns a copy of s with an explicit background color.
func (s Style) Background(c Color) Style { s.BG, s.BGSet = c, true; return s }

// Bold returns a copy of s with AttrBold set.
func (s Style) Bold() Style { s.Attr = s.Attr.With(AttrBold); return s }

// Dim returns a copy of s with AttrDim set.
func (s Style) Dim() Style { s.Attr = s.Attr.With(AttrDim); return s }

// Italic returns a copy of s with AttrItalic set.
func (s Style) Italic() Style { s.Attr = s.Attr.With(AttrItalic); return s }

// Underline returns a copy of s with AttrUnderline set.
func (s Style) Underline() Style { s.Attr = s.Attr.With(AttrUnderline); return s }

// Reverse returns a copy of s with AttrReverse set.
func (s Style) Reverse() Style { s.Attr = s.Attr.With(AttrReverse); return s }

// Strikethrough returns a copy of s with AttrStrikethrough set.
func (s Style) Strikethrough() Style { s.Attr = s.Attr.With(AttrStrikethrough); return s }

// Merge combines base and override: override's explicitly-set colors win,
// attrs union. Neither argument is mutated.
func Merge(base, override Style) Style {
	out := base
	if override.FGSet {
		out.FG, out.FGSet = override.FG, true
	}
	if override.BGSet {
		out.BG, out.BGSet = override.BG, true
	}
	out.Attr = base.Attr | override.Attr
	return out
}

// Equal reports structural equality between two styles.
func (s Style) Equal(other Style) bool { return s == other }

// wideContinuation is the sentinel rune occupying the second column
// claimed by a wide grapheme. It must never be addressed independently.
const wideContinuation rune = 0

// Cell is one user-perceived character (width 1 or 2) plus its style.
// Graphemes wider than one rune (flags, ZWJ sequences) are stored as their
// first rune here; the cell records no width, and a wide grapheme's second
// column holds a continuation cell.
type Cell struct {
	Grapheme rune
	Style    Style
}

// EmptyCell returns a single space with default style.
func EmptyCell() Cell { return Cell{Grapheme: ' ', Style: DefaultStyle()} }

// Equal reports whether two cells have the same grapheme and style.
func (c Cell) Equal(other Cell) bool { return c == other }

// continuationCell marks the second column of a wide grapheme.
func continuationCell(style Style) Cell { return Cell{Grapheme: wideContinuation, Style: style} }

// IsContinuation reports whether c is a wide-grapheme continuation
// sentinel, which must not be addressed independently.
func (c Cell) IsContinuation() bool { return c.Grapheme == wideContinuation }

// KeyName identifies a non-printable or named key.
type KeyName int

const (
	KeyNone KeyName = iota
	KeyRune         // Event.Char holds the printable rune or grapheme
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier is a bitset of key/mouse modifiers.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// Has reports whether the set contains mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// MouseAction identifies what happened to the mouse.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseDrag
	MouseWheelUp
	MouseWheelDown
)

// MouseButton identifies which button was involved, when applicable.
type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
)

// EventKind discriminates the Event union.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventFocus
	EventResize
	EventPaste
	EventTick
)

// Event is the tagged union produced by the input decoder and the
// terminal controller's resize signal, and consumed by the dispatcher.
type Event struct {
	Kind EventKind
	TimestampMS int64 // monotonic milliseconds

	// EventKey
	Key  KeyName
	Char rune // valid when Key == KeyRune; the decoded grapheme
	Mods Modifier

	// EventMouse
	MouseAct    MouseAction
	MouseButton MouseButton
	X, Y        int

	// EventFocus
	FocusGained bool

	// EventResize
	Rows, Cols int

	// EventPaste
	PasteText string

	// EventTick
	IntervalMS int64
}

// Message is opaque to the runtime: carried from event-decoder functions
// (Component.EventToMsg) to Component.Update.
type Message any

// Command is a declarative side-effect request. The core recognizes Quit;
// all other commands are handed to an external executor (see
// CommandExecutor in component.go).
type Command interface {
	isCommand()
}

// Quit requests application shutdown.
type Quit struct{ Reason string }

func (Quit) isCommand() {}

// After requests msg be delivered after the given delay.
type After struct {
	Delay time.Duration
	Msg   Message
}

func (After) isCommand() {}

// Task requests fn run asynchronously; its result is delivered as a
// message targeting the originating component.
type Task struct {
	Run func() Message
}

func (Task) isCommand() {}
