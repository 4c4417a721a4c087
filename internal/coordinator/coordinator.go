// ABOUTME: Coordinator wires pty output, host input, resize signals, and the render tick
// ABOUTME: Single select loop owns both screen models; cleanup clears the overlay on every exit path

package coordinator

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/detach/internal/log"
	"github.com/mauromedda/detach/internal/overlay"
	"github.com/mauromedda/detach/internal/session"
	"github.com/mauromedda/detach/internal/terminal"
	"github.com/mauromedda/detach/pkg/vterm"
)

const (
	// DefaultMaxHeight caps how many host rows the overlay may claim.
	DefaultMaxHeight = 15
	// DefaultInterval is the render cadence; output bursts between ticks
	// are coalesced into one frame.
	DefaultInterval = 50 * time.Millisecond

	// interruptExitCode follows the shell convention for SIGINT.
	interruptExitCode = 130

	fallbackRows = 24
	fallbackCols = 80
)

// ChildSession is the slice of session.Session the coordinator drives,
// split out so tests can substitute a scripted fake.
type ChildSession interface {
	io.Reader
	io.Writer
	Resize(rows, cols int) error
	Done() <-chan struct{}
	ExitCode() int
	Close() error
}

// Spawner launches a child session; the default is session.Spawn.
type Spawner func(name string, args []string, rows, cols int) (ChildSession, error)

func defaultSpawner(name string, args []string, rows, cols int) (ChildSession, error) {
	return session.Spawn(name, args, rows, cols)
}

// Options configures a Coordinator.
type Options struct {
	Command string
	Args    []string

	// MaxHeight caps the overlay height in rows; 0 means DefaultMaxHeight.
	MaxHeight int
	// Interval is the render cadence; 0 means DefaultInterval.
	Interval time.Duration

	Host  terminal.Host
	Input io.Reader // host keyboard, normally os.Stdin
	Spawn Spawner   // nil means session.Spawn
}

// Coordinator runs one overlay session: it owns the child session and
// both screen models exclusively, so no locking is needed anywhere in
// the render path.
type Coordinator struct {
	opts Options
}

// New returns a Coordinator for the given options.
func New(opts Options) *Coordinator {
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Spawn == nil {
		opts.Spawn = defaultSpawner
	}
	return &Coordinator{opts: opts}
}

// Run drives the session from spawn to teardown and returns the child's
// exit code. A spawn failure is returned as an error before anything is
// painted; every later failure is absorbed into draining so the overlay
// region is always cleared. Cancelling ctx tears the overlay down and
// reports the interrupt exit code.
func (c *Coordinator) Run(ctx context.Context) (int, error) {
	host := c.opts.Host

	rows, cols, err := host.Size()
	if err != nil || rows < 1 || cols < 1 {
		log.Warn("host size unavailable (%v), assuming %dx%d", err, fallbackRows, fallbackCols)
		rows, cols = fallbackRows, fallbackCols
	}

	sess, err := c.opts.Spawn(c.opts.Command, c.opts.Args, rows, cols)
	if err != nil {
		return 0, err
	}

	childScreen := vterm.NewScreen(rows, cols)
	parser := vterm.NewParser(childScreen)
	comp := overlay.New(cols)

	if err := host.EnterRawMode(); err != nil {
		// Not fatal: stdin may not be a tty (piped invocations).
		log.Debug("raw mode unavailable: %v", err)
	}
	terminal.HideCursor(host)

	loopCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(loopCtx)

	// Guaranteed teardown: clear the claimed rows, restore the cursor and
	// cooked mode, reap the child. Runs on every exit route out of Run.
	defer func() {
		if frame := comp.Clear(); frame != nil {
			_, _ = host.Write(frame)
		}
		terminal.ShowCursor(host)
		_ = host.ExitRawMode()
		cancel()
		_ = sess.Close()
		_ = g.Wait()
	}()

	outCh := make(chan []byte, 64)
	g.Go(func() error {
		defer close(outCh)
		buf := make([]byte, 4096)
		for {
			n, err := sess.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case outCh <- data:
				case <-gctx.Done():
					return nil
				}
			}
			if err != nil {
				return nil // EOF or pipe error: implicit exit signal
			}
		}
	})

	// Host keyboard. The read on a real stdin cannot be interrupted, so
	// this goroutine is not part of the errgroup; it dies with the process.
	inCh := make(chan []byte, 8)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := c.opts.Input.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case inCh <- data:
				case <-loopCtx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// Resize notifications, coalesced: only the latest pending size counts.
	type size struct{ rows, cols int }
	resizeCh := make(chan size, 1)
	host.OnResize(func(r, co int) {
		select {
		case <-resizeCh:
		default:
		}
		resizeCh <- size{rows: r, cols: co}
	})

	maxRows := c.viewportCap(rows)
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	interrupted := false
	running := true
	for running {
		select {
		case <-ctx.Done():
			interrupted = true
			running = false

		case data, ok := <-outCh:
			if !ok {
				running = false
				break
			}
			parser.Feed(data)

		case data := <-inCh:
			if _, err := sess.Write(data); err != nil {
				log.Debug("forwarding input: %v", err)
			}

		case sz := <-resizeCh:
			rows, cols = sz.rows, sz.cols
			maxRows = c.viewportCap(rows)
			if err := sess.Resize(rows, cols); err != nil {
				log.Debug("resize: %v", err)
			}
			parser.Resize(rows, cols)
			if frame := comp.Resize(cols); frame != nil {
				_, _ = host.Write(frame)
			}

		case <-sess.Done():
			running = false

		case <-ticker.C:
			feedPending(parser, outCh)
			if frame := comp.Render(childScreen, maxRows); frame != nil {
				_, _ = host.Write(frame)
			}
		}
	}

	// Draining: flush whatever the child managed to write, paint it once,
	// then let the deferred teardown clear the region.
	c.drain(parser, outCh)
	if frame := comp.Render(childScreen, maxRows); frame != nil {
		_, _ = host.Write(frame)
	}

	if interrupted {
		return interruptExitCode, nil
	}

	select {
	case <-sess.Done():
		return sess.ExitCode(), nil
	default:
		// Reader saw EOF but the child is not reaped yet; Close (in the
		// deferred teardown) reaps it, so wait briefly here.
	}
	_ = sess.Close()
	return sess.ExitCode(), nil
}

// viewportCap bounds the overlay height: never the whole terminal, so the
// park line below the overlay always exists.
func (c *Coordinator) viewportCap(hostRows int) int {
	m := c.opts.MaxHeight
	if hostRows-1 < m {
		m = hostRows - 1
	}
	if m < 1 {
		m = 1
	}
	return m
}

// feedPending applies all buffered child output without blocking, so a
// render never lags the data it is allowed to show.
func feedPending(parser *vterm.Parser, outCh <-chan []byte) {
	for {
		select {
		case data, ok := <-outCh:
			if !ok {
				return
			}
			parser.Feed(data)
		default:
			return
		}
	}
}

// drain consumes remaining output after the running phase ends, bounded
// so an interrupt with a still-chatty child cannot stall teardown.
func (c *Coordinator) drain(parser *vterm.Parser, outCh <-chan []byte) {
	timeout := time.After(500 * time.Millisecond)
	for {
		select {
		case data, ok := <-outCh:
			if !ok {
				return
			}
			parser.Feed(data)
		case <-timeout:
			return
		}
	}
}
