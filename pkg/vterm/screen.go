// ABOUTME: Screen is a fixed-size grid of styled cells plus cursor and pending style
// ABOUTME: Pure data structure; all operations clamp instead of failing and perform no I/O

package vterm

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const tabStop = 8

// Erase scopes for EraseDisplay and EraseLine, matching CSI J/K parameters.
const (
	EraseToEnd   = 0 // cursor to end of screen/line
	EraseToStart = 1 // start of screen/line to cursor
	EraseAll     = 2 // whole screen/line
)

// Screen models a terminal display: a rows×cols grid of cells, a cursor,
// and the pending style applied to the next written character.
type Screen struct {
	rows, cols int
	cells      [][]Cell

	curRow, curCol int
	cursorVisible  bool
	pending        Style

	// wrapPending defers the wrap after writing into the last column, so
	// an exactly-full line followed by CR/LF does not produce a blank row.
	wrapPending bool

	// lastCell remembers where the previous grapheme base landed so
	// zero-width combining marks can be merged into it.
	lastRow, lastCol int
	hasLast          bool
}

// NewScreen returns a blank screen with the cursor at the origin.
// Dimensions below 1 are raised to 1.
func NewScreen(rows, cols int) *Screen {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	s := &Screen{rows: rows, cols: cols, cursorVisible: true}
	s.cells = make([][]Cell, rows)
	for i := range s.cells {
		s.cells[i] = make([]Cell, cols)
	}
	return s
}

// Rows returns the grid height.
func (s *Screen) Rows() int { return s.rows }

// Cols returns the grid width.
func (s *Screen) Cols() int { return s.cols }

// Cursor returns the current cursor position.
func (s *Screen) Cursor() (row, col int) { return s.curRow, s.curCol }

// CursorVisible reports whether the cursor should be shown.
func (s *Screen) CursorVisible() bool { return s.cursorVisible }

// ShowCursor toggles cursor visibility.
func (s *Screen) ShowCursor(show bool) { s.cursorVisible = show }

// Pending returns the style applied to the next written character.
func (s *Screen) Pending() Style { return s.pending }

// SetPending replaces the pending style.
func (s *Screen) SetPending(st Style) { s.pending = st }

// Cell returns the cell at (row, col), or a zero cell when out of bounds.
func (s *Screen) Cell(row, col int) Cell {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return Cell{}
	}
	return s.cells[row][col]
}

// SetCell overwrites the cell at (row, col). Out-of-bounds positions are
// ignored. Used by the compositor to sync its painted model.
func (s *Screen) SetCell(row, col int, c Cell) {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return
	}
	s.cells[row][col] = c
}

// WriteRune places r at the cursor with the pending style and advances the
// cursor, wrapping at the right edge and scrolling the grid up one row when
// advancing past the last row. Zero-width runes merge into the previously
// written cell. Wide runes occupy two columns and wrap early when they do
// not fit.
func (s *Screen) WriteRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining mark: attach to the last written grapheme base.
		if s.hasLast {
			s.cells[s.lastRow][s.lastCol].Content += string(r)
		}
		return
	}

	if s.wrapPending || s.curCol+w > s.cols {
		s.wrap()
	}

	s.cells[s.curRow][s.curCol] = Cell{Content: string(r), Style: s.pending}
	s.lastRow, s.lastCol = s.curRow, s.curCol
	s.hasLast = true
	if w == 2 && s.curCol+1 < s.cols {
		// Continuation half of a wide rune stays blank; the compositor
		// skips it because the wide rune covers both columns.
		s.cells[s.curRow][s.curCol+1] = Cell{Style: s.pending}
	}

	s.curCol += w
	if s.curCol >= s.cols {
		// Park on the last column and wrap lazily on the next write.
		s.curCol = s.cols - 1
		s.wrapPending = true
	}
}

func (s *Screen) wrap() {
	s.wrapPending = false
	s.curCol = 0
	s.curRow++
	if s.curRow >= s.rows {
		s.scrollUp()
		s.curRow = s.rows - 1
	}
}

func (s *Screen) scrollUp() {
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = make([]Cell, s.cols)
	if s.hasLast {
		s.lastRow--
		if s.lastRow < 0 {
			s.hasLast = false
		}
	}
}

// MoveCursor places the cursor at (row, col), clamped into bounds.
func (s *Screen) MoveCursor(row, col int) {
	s.wrapPending = false
	s.curRow = clamp(row, 0, s.rows-1)
	s.curCol = clamp(col, 0, s.cols-1)
}

// CursorUp moves the cursor up n rows, clamped at the top.
func (s *Screen) CursorUp(n int) { s.MoveCursor(s.curRow-max(n, 1), s.curCol) }

// CursorDown moves the cursor down n rows, clamped at the bottom.
func (s *Screen) CursorDown(n int) { s.MoveCursor(s.curRow+max(n, 1), s.curCol) }

// CursorForward moves the cursor right n columns, clamped at the edge.
func (s *Screen) CursorForward(n int) { s.MoveCursor(s.curRow, s.curCol+max(n, 1)) }

// CursorBack moves the cursor left n columns, clamped at column 0.
func (s *Screen) CursorBack(n int) { s.MoveCursor(s.curRow, s.curCol-max(n, 1)) }

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.wrapPending = false
	s.curCol = 0
}

// LineFeed advances the cursor one row, scrolling at the bottom.
// The column is preserved; CRLF arrives as two control bytes.
func (s *Screen) LineFeed() {
	s.wrapPending = false
	s.curRow++
	if s.curRow >= s.rows {
		s.scrollUp()
		s.curRow = s.rows - 1
	}
}

// Backspace moves the cursor back one column without erasing.
func (s *Screen) Backspace() {
	s.wrapPending = false
	if s.curCol > 0 {
		s.curCol--
	}
}

// Tab advances the cursor to the next 8-column stop, clamped at the edge.
func (s *Screen) Tab() {
	next := (s.curCol/tabStop + 1) * tabStop
	s.curCol = clamp(next, 0, s.cols-1)
}

// Resize reallocates the grid to rows×cols, preserving the top-left
// min(old,new) region and clamping the cursor. No cell outside the new
// bounds survives.
func (s *Screen) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if rows == s.rows && cols == s.cols {
		return
	}

	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
		if i < s.rows {
			copy(cells[i], s.cells[i])
		}
	}
	s.cells = cells
	s.rows, s.cols = rows, cols
	s.curRow = clamp(s.curRow, 0, rows-1)
	s.curCol = clamp(s.curCol, 0, cols-1)
	s.hasLast = false
	s.wrapPending = false
}

// EraseDisplay clears cells per scope (EraseToEnd, EraseToStart, EraseAll)
// to blank cells carrying the pending style's background.
func (s *Screen) EraseDisplay(scope int) {
	blank := s.blankCell()
	switch scope {
	case EraseToEnd:
		s.eraseLineSpan(s.curRow, s.curCol, s.cols, blank)
		for r := s.curRow + 1; r < s.rows; r++ {
			s.eraseLineSpan(r, 0, s.cols, blank)
		}
	case EraseToStart:
		s.eraseLineSpan(s.curRow, 0, s.curCol+1, blank)
		for r := 0; r < s.curRow; r++ {
			s.eraseLineSpan(r, 0, s.cols, blank)
		}
	case EraseAll:
		for r := 0; r < s.rows; r++ {
			s.eraseLineSpan(r, 0, s.cols, blank)
		}
	}
}

// EraseLine clears cells on the cursor row per scope.
func (s *Screen) EraseLine(scope int) {
	blank := s.blankCell()
	switch scope {
	case EraseToEnd:
		s.eraseLineSpan(s.curRow, s.curCol, s.cols, blank)
	case EraseToStart:
		s.eraseLineSpan(s.curRow, 0, s.curCol+1, blank)
	case EraseAll:
		s.eraseLineSpan(s.curRow, 0, s.cols, blank)
	}
}

func (s *Screen) eraseLineSpan(row, from, to int, blank Cell) {
	from = clamp(from, 0, s.cols)
	to = clamp(to, 0, s.cols)
	for c := from; c < to; c++ {
		s.cells[row][c] = blank
	}
}

// blankCell is what erase operations write: empty content with the
// pending background so colored erases (common in full-screen programs)
// survive into the model.
func (s *Screen) blankCell() Cell {
	return Cell{Style: Style{Bg: s.pending.Bg}}
}

// UsedRows returns the number of rows from the top through the last
// non-blank row. Styled whitespace counts as content so reverse-video
// bars and colored fills keep their rows claimed.
func (s *Screen) UsedRows() int {
	for r := s.rows - 1; r >= 0; r-- {
		for c := 0; c < s.cols; c++ {
			if !s.cells[r][c].IsBlank() {
				return r + 1
			}
		}
	}
	return 0
}

// Line returns the text content of one row with trailing blanks trimmed.
func (s *Screen) Line(row int) string {
	if row < 0 || row >= s.rows {
		return ""
	}
	var b strings.Builder
	for c := 0; c < s.cols; c++ {
		cell := s.cells[row][c]
		if cell.Content == "" {
			b.WriteByte(' ')
		} else {
			b.WriteString(cell.Content)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Text returns the whole used region as newline-joined rows.
func (s *Screen) Text() string {
	used := s.UsedRows()
	lines := make([]string, used)
	for r := 0; r < used; r++ {
		lines[r] = s.Line(r)
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
