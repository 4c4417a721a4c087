// ABOUTME: Unix-specific SIGWINCH handling for ProcessHost resize events
// ABOUTME: A goroutine listens for SIGWINCH and reports the new size to the callback

//go:build unix

package terminal

import (
	"os"
	"os/signal"
	"syscall"
)

// startResizeListener sets up a SIGWINCH handler that calls the resize
// callback with the new terminal dimensions. A failed size query keeps
// the last known size by simply not invoking the callback.
func (h *ProcessHost) startResizeListener() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)

	go func() {
		for range sigCh {
			h.mu.Lock()
			fn := h.resizeFn
			h.mu.Unlock()

			if fn == nil {
				continue
			}

			rows, cols, err := h.Size()
			if err != nil {
				continue
			}
			fn(rows, cols)
		}
	}()
}
