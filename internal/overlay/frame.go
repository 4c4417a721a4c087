// ABOUTME: Frame builder: accumulates relative cursor moves, SGR changes, and cell writes
// ABOUTME: Tracks emitted position/style so redundant instructions are never written

package overlay

import (
	"bytes"
	"strconv"

	"github.com/mauromedda/detach/pkg/vterm"
)

// frame accumulates the host-terminal instructions for one render tick.
// Positions are relative to the overlay: row 0 is the overlay's top line
// and row == height is the park line below the overlay. Only relative
// movement is emitted so the overlay floats with the host's scrollback.
type frame struct {
	buf bytes.Buffer

	row, col int
	style    vterm.Style
	styled   bool // an SGR has been emitted this frame
}

func newFrame(row, col int) *frame {
	return &frame{row: row, col: col}
}

// moveTo emits the minimal relative movement from the current position.
func (f *frame) moveTo(row, col int) {
	if row < f.row {
		f.csiNum(f.row-row, 'A')
	} else if row > f.row {
		f.csiNum(row-f.row, 'B')
	}
	f.row = row

	if col != f.col {
		f.buf.WriteByte('\r')
		if col > 0 {
			f.csiNum(col, 'C')
		}
		f.col = col
	}
}

func (f *frame) csiNum(n int, final byte) {
	f.buf.WriteString("\x1b[")
	f.buf.Write(strconv.AppendInt(nil, int64(n), 10))
	f.buf.WriteByte(final)
}

// setStyle emits an SGR only when the style differs from the last one
// emitted. The sequence is reset-prefixed so no attribute-off bookkeeping
// is needed.
func (f *frame) setStyle(st vterm.Style) {
	if f.styled && st == f.style {
		return
	}
	if !f.styled && st.IsDefault() {
		// Terminal is already at the default rendition between frames.
		f.style = st
		f.styled = true
		return
	}
	appendSGR(&f.buf, st)
	f.style = st
	f.styled = true
}

// writeCell emits the cell's content (a space for blanks) and advances the
// tracked column by the cell's display width.
func (f *frame) writeCell(c vterm.Cell) {
	if c.Content == "" {
		f.buf.WriteByte(' ')
	} else {
		f.buf.WriteString(c.Content)
	}
	f.col += c.Width()
}

// eraseLine blanks the current line without moving the cursor.
func (f *frame) eraseLine() {
	f.buf.WriteString("\x1b[2K")
}

// newline claims the next host line, clearing whatever it held.
func (f *frame) newline() {
	f.buf.WriteString("\r\n\x1b[2K")
	f.row++
	f.col = 0
}

// finish resets the rendition if any SGR was emitted and parks the cursor
// at (parkRow, 0). Returns nil when the frame is empty.
func (f *frame) finish(parkRow int) []byte {
	if f.buf.Len() == 0 {
		return nil
	}
	if f.styled && !f.style.IsDefault() {
		f.buf.WriteString("\x1b[0m")
	}
	f.moveTo(parkRow, 0)
	return f.buf.Bytes()
}

// appendSGR writes the full reset-prefixed SGR sequence for a style.
func appendSGR(b *bytes.Buffer, st vterm.Style) {
	b.WriteString("\x1b[0")
	if st.Attr&vterm.AttrBold != 0 {
		b.WriteString(";1")
	}
	if st.Attr&vterm.AttrDim != 0 {
		b.WriteString(";2")
	}
	if st.Attr&vterm.AttrItalic != 0 {
		b.WriteString(";3")
	}
	if st.Attr&vterm.AttrUnderline != 0 {
		b.WriteString(";4")
	}
	if st.Attr&vterm.AttrInverse != 0 {
		b.WriteString(";7")
	}
	appendColor(b, st.Fg, true)
	appendColor(b, st.Bg, false)
	b.WriteByte('m')
}

// appendColor writes one color's SGR parameters, if it is not the default.
func appendColor(b *bytes.Buffer, c vterm.Color, foreground bool) {
	switch c.Mode {
	case vterm.ColorDefault:
		return
	case vterm.ColorANSI:
		n := int(c.Index)
		base := 30
		if n >= 8 {
			base = 90
			n -= 8
		}
		if !foreground {
			base += 10
		}
		b.WriteByte(';')
		b.Write(strconv.AppendInt(nil, int64(base+n), 10))
	case vterm.Color256:
		if foreground {
			b.WriteString(";38;5;")
		} else {
			b.WriteString(";48;5;")
		}
		b.Write(strconv.AppendInt(nil, int64(c.Index), 10))
	case vterm.ColorRGB:
		if foreground {
			b.WriteString(";38;2;")
		} else {
			b.WriteString(";48;2;")
		}
		b.Write(strconv.AppendInt(nil, int64(c.R), 10))
		b.WriteByte(';')
		b.Write(strconv.AppendInt(nil, int64(c.G), 10))
		b.WriteByte(';')
		b.Write(strconv.AppendInt(nil, int64(c.B), 10))
	}
}
