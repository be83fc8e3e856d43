package flicker

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// MouseMode selects which xterm mouse-tracking protocol is active, per
// spec.md §4.1. None disables mouse reporting entirely.
type MouseMode int

const (
	MouseNone MouseMode = iota
	MouseClick
	MouseDrag
	MouseAll
)

// mouseModeCode maps a MouseMode to its xterm private-mode number.
func mouseModeCode(m MouseMode) int {
	switch m {
	case MouseClick:
		return 1000
	case MouseDrag:
		return 1002
	case MouseAll:
		return 1003
	default:
		return 0
	}
}

// TerminalOptions configures Terminal.Init, per spec.md §4.1.
type TerminalOptions struct {
	Backend         Backend // raw-mode acquisition policy, per spec.md §6
	AlternateScreen bool
	HideCursor      bool
	MouseTracking   MouseMode
	ExplicitSize    *TerminalSize // bypasses size detection when non-nil
}

// DefaultTerminalOptions returns backend=auto, alternate_screen=true,
// hide_cursor=true, mouse_tracking=None, no explicit size.
func DefaultTerminalOptions() TerminalOptions {
	return TerminalOptions{Backend: BackendAuto, AlternateScreen: true, HideCursor: true, MouseTracking: MouseNone}
}

// wantsRawMode resolves a Backend against the controlling tty, per
// spec.md §6: raw always acquires raw mode, cooked never does, test
// never touches the tty at all, and auto probes with term.IsTerminal.
func (t *Terminal) wantsRawMode() bool {
	switch t.opts.Backend {
	case BackendRaw:
		return true
	case BackendCooked, BackendTest:
		return false
	default: // BackendAuto and the zero value
		return term.IsTerminal(t.fd)
	}
}

// TerminalSize is a terminal's dimensions in character cells.
type TerminalSize struct {
	Rows, Cols int
}

// ResizeCallback is invoked with the new size whenever the controlled
// terminal reports a size change.
type ResizeCallback func(TerminalSize)

// Terminal owns raw-mode entry/exit, the alternate screen, cursor
// visibility, mouse tracking, and resize-signal delivery for one
// controlling tty. Grounded on the teacher's Screen (screen.go):
// EnterRawMode/ExitRawMode's termios manipulation and handleSignals'
// SIGWINCH handling survive generalized into Init/Shutdown and a
// registered-callback list instead of a single hardcoded channel.
type Terminal struct {
	mu sync.Mutex

	fd     int
	out    *os.File
	logger *log.Logger

	opts      TerminalOptions
	active    bool
	origTerm  *unix.Termios
	size      TerminalSize
	mouseMode MouseMode

	sigCh     chan os.Signal
	stopSig   chan struct{}
	callbacks []ResizeCallback
}

// NewTerminal returns a controller writing escape sequences to out and
// issuing its ioctls against out's own file descriptor. logger
// receives step failures during shutdown; pass nil to discard them.
func NewTerminal(out *os.File, logger *log.Logger) *Terminal {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Terminal{fd: int(out.Fd()), out: out, logger: logger}
}

// Init acquires raw mode, optionally enters the alternate screen, hides
// the cursor, and enables the requested mouse mode. If a prior run's
// crash-recovery flag is set, the defensive cleanup sequence is emitted
// first, per spec.md §4.1.
func (t *Terminal) Init(opts TerminalOptions) (TerminalSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rawModeFlagSet() {
		t.writeDefensiveCleanup()
	}

	size, err := t.detectSize(opts.ExplicitSize)
	if err != nil {
		return TerminalSize{}, err
	}
	t.size = size
	t.opts = opts

	// The test backend never touches the controlling tty at all: no
	// termios, no signals, no escape sequences, per spec.md §6.
	if opts.Backend == BackendTest {
		t.active = true
		return size, nil
	}

	if t.wantsRawMode() {
		termios, err := unix.IoctlGetTermios(t.fd, ioctlGetTermios)
		if err != nil {
			return TerminalSize{}, fmt.Errorf("%w: get termios: %v", ErrTerminalUnavailable, err)
		}
		t.origTerm = termios

		raw := *termios
		raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
		raw.Oflag &^= unix.OPOST
		raw.Cflag |= unix.CS8
		raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
		raw.Cc[unix.VMIN] = 1
		raw.Cc[unix.VTIME] = 0

		if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &raw); err != nil {
			return TerminalSize{}, fmt.Errorf("%w: set raw mode: %v", ErrTerminalUnavailable, err)
		}

		if err := setRawModeFlag(); err != nil {
			t.logger.Printf("flicker: %v", err)
		}
	}
	t.active = true

	t.sigCh = make(chan os.Signal, 1)
	t.stopSig = make(chan struct{})
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go t.watchResize()

	if opts.AlternateScreen {
		t.write("\x1b[?1049h")
		t.write("\x1b[2J")
		t.write("\x1b[H")
	}
	if opts.HideCursor {
		t.write("\x1b[?25l")
	}
	t.write("\x1b[?2004h")
	if opts.MouseTracking != MouseNone {
		t.writeEnableMouse(opts.MouseTracking)
	}
	t.mouseMode = opts.MouseTracking

	return size, nil
}

// Shutdown restores the terminal. Each step is independently guarded: a
// failure is logged and the remaining steps still run, per spec.md §4.1's
// shutdown sequence.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}

	t.writeDisableAllMouse()
	t.write("\x1b[?2004l")
	t.write("\x1b[?25h")
	t.write("\x1b[0m")
	if t.opts.AlternateScreen {
		t.write("\x1b[?1049l")
	}

	if t.stopSig != nil {
		signal.Stop(t.sigCh)
		close(t.stopSig)
	}

	if t.origTerm != nil {
		if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, t.origTerm); err != nil {
			t.logger.Printf("flicker: restore termios: %v", err)
		}
	}

	if err := clearRawModeFlag(); err != nil {
		t.logger.Printf("flicker: %v", err)
	}
	t.active = false
}

// Size returns the cached terminal size.
func (t *Terminal) Size() TerminalSize {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// RefreshSize re-queries the tty and updates the cached size.
func (t *Terminal) RefreshSize() (TerminalSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	size, err := t.detectSize(nil)
	if err != nil {
		return TerminalSize{}, err
	}
	t.size = size
	return size, nil
}

// EnableMouse switches to mode, disabling any previously active mode
// first.
func (t *Terminal) EnableMouse(mode MouseMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeDisableAllMouse()
	if mode != MouseNone {
		t.writeEnableMouse(mode)
	}
	t.mouseMode = mode
}

// DisableMouse turns off mouse reporting entirely.
func (t *Terminal) DisableMouse() {
	t.EnableMouse(MouseNone)
}

// SetCursorShape emits the DECSCUSR sequence selecting the terminal's
// cursor shape, grounded on the teacher's Screen.SetCursorShape.
func (t *Terminal) SetCursorShape(shape CursorShape) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.write(fmt.Sprintf("\x1b[%d q", int(shape)))
}

// SetCursorColor emits an OSC 12 request to recolor the cursor. Only RGB
// colors are honored, matching the teacher's BufferCursorColor, which
// likewise skips non-RGB colors rather than guessing a palette mapping.
func (t *Terminal) SetCursorColor(c Color) {
	if c.Mode != ColorRGB {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.write(fmt.Sprintf("\x1b]12;#%02x%02x%02x\x07", c.R, c.G, c.B))
}

// OnResize registers cb to be called with the new size whenever a
// SIGWINCH changes it.
func (t *Terminal) OnResize(cb ResizeCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, cb)
}

func (t *Terminal) watchResize() {
	for {
		select {
		case <-t.stopSig:
			return
		case <-t.sigCh:
			t.mu.Lock()
			size, err := t.detectSize(nil)
			if err == nil && size != t.size {
				t.size = size
				cbs := append([]ResizeCallback(nil), t.callbacks...)
				t.mu.Unlock()
				for _, cb := range cbs {
					cb(size)
				}
			} else {
				t.mu.Unlock()
			}
		}
	}
}

// detectSize follows spec.md §4.1's order: explicit override, then tty
// ioctl, then LINES/COLUMNS environment variables, then error.
func (t *Terminal) detectSize(explicit *TerminalSize) (TerminalSize, error) {
	if explicit != nil {
		return *explicit, nil
	}

	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err == nil && ws.Row > 0 && ws.Col > 0 {
		return TerminalSize{Rows: int(ws.Row), Cols: int(ws.Col)}, nil
	}

	rows, rowsOK := envDim("LINES")
	cols, colsOK := envDim("COLUMNS")
	if rowsOK && colsOK {
		return TerminalSize{Rows: rows, Cols: cols}, nil
	}

	return TerminalSize{}, ErrSizeDetectionFailed
}

func envDim(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > MaxGridDimension {
		return 0, false
	}
	return n, true
}

func (t *Terminal) write(s string) {
	if _, err := t.out.WriteString(s); err != nil {
		t.logger.Printf("flicker: write: %v", err)
	}
}

func (t *Terminal) writeEnableMouse(mode MouseMode) {
	code := mouseModeCode(mode)
	if code == 0 {
		return
	}
	t.write(fmt.Sprintf("\x1b[?%dh", code))
	t.write("\x1b[?1006h")
}

// writeDisableAllMouse turns off every mouse mode and SGR extended
// coordinates defensively, regardless of which one is believed active,
// per spec.md §4.1's shutdown sequence step 1.
func (t *Terminal) writeDisableAllMouse() {
	t.write("\x1b[?1006l")
	t.write("\x1b[?1003l")
	t.write("\x1b[?1002l")
	t.write("\x1b[?1000l")
}

// writeDefensiveCleanup is the sequence emitted on startup when a prior
// run's crash-recovery flag is found set: show cursor, leave alt screen,
// disable every mouse mode, full reset.
func (t *Terminal) writeDefensiveCleanup() {
	t.writeDisableAllMouse()
	t.write("\x1b[?25h")
	t.write("\x1b[?1049l")
	t.write("\x1bc")
}
