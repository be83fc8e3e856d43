package flicker

import (
	"fmt"
	"os"
	"path/filepath"
)

// rawModeFlagPath is the process-wide persistent flag the Terminal
// Controller uses to detect a previous run that crashed while the
// terminal was in raw mode, per spec.md §4.1 ("Crash recovery") and §6
// ("Persisted state"). A plain file under the OS temp dir plays the role
// the teacher's screen.go never needed, since its own process always
// shared one in-memory Screen with the terminal it owned.
var rawModeFlagPath = filepath.Join(os.TempDir(), "flicker-raw-mode-active")

// rawModeFlagSet reports whether the flag file exists.
func rawModeFlagSet() bool {
	_, err := os.Stat(rawModeFlagPath)
	return err == nil
}

// setRawModeFlag creates the flag file, idempotently.
func setRawModeFlag() error {
	f, err := os.OpenFile(rawModeFlagPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create raw-mode flag: %v", ErrTerminalUnavailable, err)
	}
	return f.Close()
}

// clearRawModeFlag removes the flag file. Removing an already-absent flag
// is not an error.
func clearRawModeFlag() error {
	err := os.Remove(rawModeFlagPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: clear raw-mode flag: %v", ErrTerminalUnavailable, err)
	}
	return nil
}
