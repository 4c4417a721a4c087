// ABOUTME: RestoreOnPanic recovers from panics, restores the host terminal, and reports the stack
// ABOUTME: Deferred at the top of main so a crash never leaves the tty raw or the cursor hidden

package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RestoreOnPanic should be deferred at the top of main. On panic it shows
// the cursor, exits raw mode, prints the panic value and stack trace, then
// exits with code 1. Without this a crash mid-overlay leaves the user's
// shell in raw mode with an invisible cursor.
func RestoreOnPanic(h Host) {
	r := recover()
	if r == nil {
		return
	}

	ShowCursor(h)
	_ = h.ExitRawMode()

	fmt.Fprintf(os.Stderr, "\npanic: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}
