// ABOUTME: Host terminal abstraction: raw mode, size queries, output, resize notifications
// ABOUTME: Host implements it against the real tty; Virtual is the test fake

package terminal

// Host abstracts the invoking terminal. The overlay writes frames through
// it, switches it into raw mode while running, and learns about resizes.
type Host interface {
	// EnterRawMode switches stdin to raw mode so keystrokes arrive
	// unbuffered and unechoed. Idempotent.
	EnterRawMode() error
	// ExitRawMode restores the state saved by EnterRawMode. Idempotent
	// and safe to call without a prior EnterRawMode.
	ExitRawMode() error
	// Size returns the terminal dimensions in rows and columns.
	Size() (rows, cols int, err error)
	Write(p []byte) (n int, err error)
	// OnResize registers fn to be called with the new size whenever the
	// terminal is resized. Only one callback is supported.
	OnResize(fn func(rows, cols int))
}

// Cursor visibility sequences, written around the overlay's lifetime.
const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// HideCursor makes the host cursor invisible while the overlay runs.
func HideCursor(h Host) {
	_, _ = h.Write([]byte(hideCursor))
}

// ShowCursor restores host cursor visibility.
func ShowCursor(h Host) {
	_, _ = h.Write([]byte(showCursor))
}
