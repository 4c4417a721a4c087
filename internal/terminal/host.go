// ABOUTME: ProcessHost implements Host against the real tty via golang.org/x/term
// ABOUTME: Raw mode state is saved on entry and restored exactly once on exit

package terminal

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ProcessHost is the real host terminal backed by os.Stdin/os.Stdout.
type ProcessHost struct {
	mu       sync.Mutex
	oldState *term.State
	resizeFn func(rows, cols int)
}

// NewProcessHost returns a ProcessHost ready for use.
func NewProcessHost() *ProcessHost {
	return &ProcessHost{}
}

// EnterRawMode switches stdin to raw mode, saving the previous state.
// Calling it again while already raw is a no-op.
func (h *ProcessHost) EnterRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.oldState != nil {
		return nil
	}
	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	h.oldState = state
	return nil
}

// ExitRawMode restores the terminal to the state saved by EnterRawMode.
func (h *ProcessHost) ExitRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.oldState == nil {
		return nil
	}
	if err := term.Restore(int(os.Stdin.Fd()), h.oldState); err != nil {
		return fmt.Errorf("exiting raw mode: %w", err)
	}
	h.oldState = nil
	return nil
}

// Size returns the current terminal dimensions in rows and columns.
func (h *ProcessHost) Size() (rows, cols int, err error) {
	w, ht, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return ht, w, nil
}

// Write sends bytes to os.Stdout.
func (h *ProcessHost) Write(p []byte) (int, error) {
	n, err := os.Stdout.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to stdout: %w", err)
	}
	return n, nil
}

// OnResize registers a callback invoked when the terminal is resized.
// Platform-specific signal handling is set up by startResizeListener.
func (h *ProcessHost) OnResize(fn func(rows, cols int)) {
	h.mu.Lock()
	h.resizeFn = fn
	h.mu.Unlock()

	h.startResizeListener()
}
