// ABOUTME: Windows stub for ProcessHost resize handling
// ABOUTME: Placeholder; Windows resize detection needs ReadConsoleInput

//go:build windows

package terminal

// startResizeListener is a no-op on Windows. Console resize events would
// require SetConsoleMode plus ReadConsoleInput, which the overlay does
// not implement yet.
func (h *ProcessHost) startResizeListener() {}
