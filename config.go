package flicker

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Backend selects how the terminal is acquired, per spec.md §6.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendRaw    Backend = "raw"
	BackendCooked Backend = "cooked"
	BackendTest   Backend = "test"
)

// CharacterSet selects which glyph set the external widget layer may
// draw box-drawing characters from.
type CharacterSet string

const (
	CharsetUnicode CharacterSet = "unicode"
	CharsetASCII   CharacterSet = "ascii"
)

// MouseTrackingName is the TOML-facing spelling of a MouseMode.
type MouseTrackingName string

const (
	MouseTrackingNone  MouseTrackingName = "none"
	MouseTrackingClick MouseTrackingName = "click"
	MouseTrackingDrag  MouseTrackingName = "drag"
	MouseTrackingAll   MouseTrackingName = "all"
)

// Config is the process-start configuration table of spec.md §6,
// loaded from TOML the way the teacher's cmd/ demos load their own
// settings files, with github.com/BurntSushi/toml promoted from an
// indirect bubbletea dependency to flicker's own direct config loader.
type Config struct {
	Backend               Backend           `toml:"backend"`
	CharacterSet          CharacterSet      `toml:"character_set"`
	FallbackCharacterSet  CharacterSet      `toml:"fallback_character_set"`
	FPS                   int               `toml:"fps"`
	AlternateScreen       bool              `toml:"alternate_screen"`
	HideCursor            bool              `toml:"hide_cursor"`
	MouseTracking         MouseTrackingName `toml:"mouse_tracking"`
	RenderBufferThreshold int               `toml:"render_buffer_threshold"`
	MessageQueueCap       int               `toml:"message_queue_cap"`
}

// DefaultConfig returns the configuration documented in spec.md §6.
func DefaultConfig() Config {
	return Config{
		Backend:               BackendAuto,
		CharacterSet:          CharsetUnicode,
		FallbackCharacterSet:  CharsetASCII,
		FPS:                   DefaultFPS,
		AlternateScreen:       true,
		HideCursor:            true,
		MouseTracking:         MouseTrackingNone,
		RenderBufferThreshold: DefaultRenderBufferThreshold,
		MessageQueueCap:       DefaultMessageQueueCap,
	}
}

// LoadConfig reads a TOML file at path, starting from DefaultConfig and
// overriding whichever keys are present.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// mouseModeFromName maps the TOML spelling to a MouseMode.
func mouseModeFromName(name MouseTrackingName) MouseMode {
	switch name {
	case MouseTrackingClick:
		return MouseClick
	case MouseTrackingDrag:
		return MouseDrag
	case MouseTrackingAll:
		return MouseAll
	default:
		return MouseNone
	}
}

// TerminalOptions converts the relevant Config fields into
// TerminalOptions.
func (c Config) TerminalOptions() TerminalOptions {
	return TerminalOptions{
		Backend:         c.Backend,
		AlternateScreen: c.AlternateScreen,
		HideCursor:      c.HideCursor,
		MouseTracking:   mouseModeFromName(c.MouseTracking),
	}
}
