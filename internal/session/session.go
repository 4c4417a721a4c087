// ABOUTME: Session owns a pty pair and the child process running inside it
// ABOUTME: Built on creack/pty; read errors after slave close are normalized to EOF

package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/mauromedda/detach/internal/log"
)

// SpawnError reports a failure to launch the child: command missing, not
// executable, or pty allocation failure. It is fatal to the overlay.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Session is a child process attached to a pseudo-terminal. The master
// side is owned by the session; Read and Write move bytes between the
// overlay and the child.
type Session struct {
	cmd  *os.Process
	ptmx *os.File
	name string

	done     chan struct{}
	exitCode int

	closeOnce sync.Once
	waitCmd   *exec.Cmd
}

// Spawn allocates a pty of the given size, starts name with args inside
// it, and begins reaping the child in the background. The returned error
// is always a *SpawnError on failure.
func Spawn(name string, args []string, rows, cols int) (*Session, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()

	ptmx, err := pty.StartWithSize(cmd, winsize(rows, cols))
	if err != nil {
		return nil, &SpawnError{Command: name, Err: err}
	}

	s := &Session{
		cmd:     cmd.Process,
		ptmx:    ptmx,
		name:    name,
		done:    make(chan struct{}),
		waitCmd: cmd,
	}
	go s.reap()
	return s, nil
}

// reap waits for the child and records its exit code. Death by signal
// maps to 128+signal, the shell convention.
func (s *Session) reap() {
	err := s.waitCmd.Wait()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				code = 128 + int(ws.Signal())
			}
		} else {
			code = 1
		}
	}
	s.exitCode = code
	log.Debug("child %s exited with code %d", s.name, code)
	close(s.done)
}

// Read returns child output from the pty master. Once the child has
// exited it drains any buffered output, then reports io.EOF. Linux
// returns EIO from the master when the slave side closes; that and any
// other post-exit error are normalized to EOF per the implicit-exit rule.
func (s *Session) Read(p []byte) (int, error) {
	n, err := s.ptmx.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = io.EOF
	}
	return n, err
}

// Write forwards host keystrokes to the child's input.
func (s *Session) Write(p []byte) (int, error) {
	n, err := s.ptmx.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to child: %w", err)
	}
	return n, nil
}

// Resize updates the kernel window size; the child receives SIGWINCH and
// re-flows its own output. Failure is non-fatal: the last size stands.
func (s *Session) Resize(rows, cols int) error {
	if err := pty.Setsize(s.ptmx, winsize(rows, cols)); err != nil {
		return fmt.Errorf("resizing pty: %w", err)
	}
	return nil
}

// Done is closed once the child has been reaped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Exited reports whether the child has terminated, without blocking.
func (s *Session) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the child's exit code. Valid only after Done is closed.
func (s *Session) ExitCode() int {
	<-s.done
	return s.exitCode
}

// Close releases the pty master and, if the child is still alive, kills
// and reaps it. Idempotent.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.ptmx.Close()
		if !s.Exited() {
			log.Debug("killing child %s on close", s.name)
			_ = s.cmd.Kill()
		}
		<-s.done
	})
	return err
}

func winsize(rows, cols int) *pty.Winsize {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
}
