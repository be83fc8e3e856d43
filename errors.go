package flicker

import "errors"

// Sentinel errors for the error kinds in the core's propagation policy.
// Init-time errors (TerminalUnavailable, SizeDetectionFailed) are returned
// to the caller. Runtime errors (OutOfBounds, IoWriteFailed,
// InputDecodeFailed, QueueOverflow, CommandFailed) are recovered locally;
// they are exposed here so callers that install a logger or want to
// assert on behavior in tests can match them with errors.Is.
var (
	// ErrTerminalUnavailable means no tty is present or raw mode could
	// not be entered. Fatal at init.
	ErrTerminalUnavailable = errors.New("flicker: terminal unavailable")

	// ErrSizeDetectionFailed means no size-detection source (ioctl, env)
	// yielded usable dimensions.
	ErrSizeDetectionFailed = errors.New("flicker: size detection failed")

	// ErrOutOfBounds means a write targeted a cell outside the grid.
	ErrOutOfBounds = errors.New("flicker: cell out of bounds")

	// ErrIoWriteFailed means a write to the tty was rejected.
	ErrIoWriteFailed = errors.New("flicker: tty write failed")

	// ErrInputDecodeFailed means the decoder saw a byte pattern it could
	// not interpret; the decoder resets and continues.
	ErrInputDecodeFailed = errors.New("flicker: input decode failed")

	// ErrQueueOverflow means a message was dropped because the queue was
	// at capacity.
	ErrQueueOverflow = errors.New("flicker: message queue overflow")

	// ErrCommandFailed means a forwarded command's executor reported
	// failure; delivered to the originating component as a message, never
	// surfaced by the core itself.
	ErrCommandFailed = errors.New("flicker: command failed")
)
