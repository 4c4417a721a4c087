// ABOUTME: Virtual implements Host for testing without a real tty
// ABOUTME: Captures frames in a buffer and lets tests drive resize events

package terminal

import (
	"bytes"
	"sync"
)

// Virtual is a fake Host for unit tests. It records written frames and
// tracks raw-mode transitions.
type Virtual struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	rows, cols int
	raw        bool
	enterCount int
	exitCount  int
	resizeFn   func(rows, cols int)
}

// NewVirtual returns a Virtual host with the given dimensions.
func NewVirtual(rows, cols int) *Virtual {
	return &Virtual{rows: rows, cols: cols}
}

// EnterRawMode records a raw-mode entry.
func (v *Virtual) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.raw = true
	v.enterCount++
	return nil
}

// ExitRawMode records a raw-mode exit.
func (v *Virtual) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.raw = false
	v.exitCount++
	return nil
}

// Size returns the configured dimensions.
func (v *Virtual) Size() (rows, cols int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rows, v.cols, nil
}

// Write appends data to the internal buffer.
func (v *Virtual) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buf.Write(p)
}

// OnResize stores the resize callback.
func (v *Virtual) OnResize(fn func(rows, cols int)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resizeFn = fn
}

// --- Test helpers (not part of Host) ---

// Output returns everything written so far.
func (v *Virtual) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buf.String()
}

// Reset clears the captured output.
func (v *Virtual) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buf.Reset()
}

// IsRawMode reports whether raw mode is currently active.
func (v *Virtual) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw
}

// EnterCount returns how many times EnterRawMode was called.
func (v *Virtual) EnterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enterCount
}

// ExitCount returns how many times ExitRawMode was called.
func (v *Virtual) ExitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exitCount
}

// SetSize updates the dimensions and fires the resize callback, if any.
func (v *Virtual) SetSize(rows, cols int) {
	v.mu.Lock()
	v.rows = rows
	v.cols = cols
	fn := v.resizeFn
	v.mu.Unlock()

	if fn != nil {
		fn(rows, cols)
	}
}
