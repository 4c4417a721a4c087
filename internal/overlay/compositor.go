// ABOUTME: Compositor diffs the child screen against what is painted on the host
// ABOUTME: Emits minimal frames pinned to the bottom rows; Clear restores the host on teardown

package overlay

import (
	"github.com/mauromedda/detach/internal/log"
	"github.com/mauromedda/detach/pkg/vterm"
)

// Compositor owns the painted model: its record of what the overlay region
// of the host terminal currently shows. Render reconciles it with the
// child model; Clear hands the claimed rows back.
//
// Between frames the host cursor is parked at column 0 of the line just
// below the painted region, so host-side writes (and the final shell
// prompt) land in a predictable place.
type Compositor struct {
	painted *vterm.Screen
	rows    int // lines currently claimed on the host
	cols    int
}

// New returns a Compositor for a host terminal of the given width.
func New(cols int) *Compositor {
	if cols < 1 {
		cols = 1
	}
	return &Compositor{cols: cols}
}

// Rows reports how many host lines the overlay currently claims.
func (c *Compositor) Rows() int { return c.rows }

// Render diffs child against the painted model and returns the frame that
// reconciles the host terminal, at most maxRows tall. An already-identical
// painted model yields an empty frame. The viewport is the last maxRows
// rows of the child's used region, so the freshest output stays visible.
func (c *Compositor) Render(child *vterm.Screen, maxRows int) []byte {
	used := child.UsedRows()
	n := min(used, maxRows, child.Rows())
	if n < 0 {
		n = 0
	}
	top := used - n

	f := newFrame(c.rows, 0)

	// Shrink: blank rows the overlay no longer needs. They stay claimed
	// visually empty until teardown; host content below them has already
	// scrolled away and cannot be restored mid-run.
	if n < c.rows {
		for i := n; i < c.rows; i++ {
			f.moveTo(i, 0)
			f.eraseLine()
		}
	}

	// Grow: claim fresh lines below the current region.
	if n > c.rows {
		f.moveTo(c.rows, 0)
		for i := c.rows; i < n; i++ {
			f.newline()
		}
	}

	if n == 0 {
		c.painted = nil
	} else if c.painted == nil {
		c.painted = vterm.NewScreen(n, c.cols)
	} else {
		c.painted.Resize(n, c.cols)
	}

	// Cell diff. Wide cells advance by their width; their continuation
	// columns are compared as the blank cells both models store there.
	for i := 0; i < n; i++ {
		childRow := top + i
		for col := 0; col < c.cols; {
			cc := child.Cell(childRow, col)
			w := cc.Width()
			if pc := c.painted.Cell(i, col); pc != cc {
				f.moveTo(i, col)
				f.setStyle(cc.Style)
				f.writeCell(cc)
				c.painted.SetCell(i, col, cc)
				if w == 2 && col+1 < c.cols {
					c.painted.SetCell(i, col+1, child.Cell(childRow, col+1))
				}
			}
			col += w
		}
	}

	c.rows = n
	return f.finish(n)
}

// Clear erases exactly the claimed rows and resets the painted model,
// leaving the cursor where the overlay's top row was. Returns nil when
// nothing is painted.
func (c *Compositor) Clear() []byte {
	if c.rows == 0 {
		return nil
	}
	log.Debug("clearing %d overlay rows", c.rows)

	f := newFrame(c.rows, 0)
	for i := c.rows - 1; i >= 0; i-- {
		f.moveTo(i, 0)
		f.eraseLine()
	}
	c.rows = 0
	c.painted = nil
	return f.buf.Bytes()
}

// Resize adapts to a new host width: the claimed region is cleared so the
// next Render repaints from scratch at the new geometry. Returns the
// clearing frame (possibly nil).
func (c *Compositor) Resize(cols int) []byte {
	if cols < 1 {
		cols = 1
	}
	frame := c.Clear()
	c.cols = cols
	return frame
}
