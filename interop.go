package flicker

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// StyleFromLipgloss converts a lipgloss.Style's foreground, background,
// and text attributes into a flicker Style. It exists solely at the
// render-tree-flattener boundary (spec.md §6): external layout layers
// built with lipgloss can hand their styles to a Flattener without
// reimplementing color parsing, but flicker's own core never imports
// lipgloss for anything but this conversion.
func StyleFromLipgloss(s lipgloss.Style) Style {
	out := DefaultStyle()
	if fg := s.GetForeground(); fg != lipgloss.NoColor() {
		if c, ok := colorFromLipgloss(fg); ok {
			out = out.Foreground(c)
		}
	}
	if bg := s.GetBackground(); bg != lipgloss.NoColor() {
		if c, ok := colorFromLipgloss(bg); ok {
			out = out.Background(c)
		}
	}
	if s.GetBold() {
		out = out.Bold()
	}
	if s.GetFaint() {
		out = out.Dim()
	}
	if s.GetItalic() {
		out = out.Italic()
	}
	if s.GetUnderline() {
		out = out.Underline()
	}
	if s.GetReverse() {
		out = out.Reverse()
	}
	if s.GetStrikethrough() {
		out = out.Strikethrough()
	}
	return out
}

// colorFromLipgloss decodes a lipgloss.TerminalColor's string form: a
// bare decimal (ANSI/256 index) or a "#rrggbb" hex literal.
func colorFromLipgloss(c lipgloss.TerminalColor) (Color, bool) {
	s := c.(interface{ String() string }).String()
	if s == "" {
		return Color{}, false
	}
	if s[0] == '#' {
		hex, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, false
		}
		return Hex(uint32(hex)), true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Color{}, false
	}
	if n < 16 {
		return Named(uint8(n)), true
	}
	return Palette256(uint8(n)), true
}
