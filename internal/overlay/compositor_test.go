// ABOUTME: Tests for the diff compositor: empty frames, minimal updates, grow/shrink, clear
// ABOUTME: Asserts frame contents as raw escape strings against a hand-built child screen

package overlay

import (
	"strings"
	"testing"

	"github.com/mauromedda/detach/pkg/vterm"
)

func childScreen(t *testing.T, cols int, lines ...string) *vterm.Screen {
	t.Helper()
	s := vterm.NewScreen(max(len(lines), 1), cols)
	p := vterm.NewParser(s)
	for i, line := range lines {
		if i > 0 {
			p.Feed([]byte("\r\n"))
		}
		p.Feed([]byte(line))
	}
	return s
}

func TestRender_FirstFrameClaimsRowsAndPaintsText(t *testing.T) {
	t.Parallel()
	c := New(10)
	child := childScreen(t, 10, "hello")

	frame := string(c.Render(child, 5))

	if !strings.Contains(frame, "hello") {
		t.Errorf("frame %q missing text", frame)
	}
	if !strings.Contains(frame, "\r\n") {
		t.Errorf("frame %q should claim a host line", frame)
	}
	if c.Rows() != 1 {
		t.Errorf("Rows() = %d, want 1", c.Rows())
	}
}

func TestRender_IdenticalModelsProduceEmptyFrame(t *testing.T) {
	t.Parallel()
	c := New(10)
	child := childScreen(t, 10, "hello")

	if first := c.Render(child, 5); len(first) == 0 {
		t.Fatal("first frame unexpectedly empty")
	}
	if second := c.Render(child, 5); len(second) != 0 {
		t.Errorf("second frame = %q, want empty", second)
	}
}

func TestRender_SingleCellChangeIsMinimal(t *testing.T) {
	t.Parallel()
	c := New(20)
	child := childScreen(t, 20, "status: ok")
	c.Render(child, 5)

	// Change one cell: "ok" -> "Ok".
	child.MoveCursor(0, 8)
	child.WriteRune('O')

	frame := string(c.Render(child, 5))

	if !strings.Contains(frame, "O") {
		t.Fatalf("frame %q missing updated cell", frame)
	}
	// Minimal update: the unchanged text must not be re-sent.
	if strings.Contains(frame, "status") {
		t.Errorf("frame %q repaints unchanged cells", frame)
	}
	if got := strings.Count(frame, "O"); got != 1 {
		t.Errorf("frame %q writes the cell %d times, want 1", frame, got)
	}
}

func TestRender_GrowsWithOutput(t *testing.T) {
	t.Parallel()
	c := New(10)

	c.Render(childScreen(t, 10, "one"), 5)
	if c.Rows() != 1 {
		t.Fatalf("Rows() = %d, want 1", c.Rows())
	}

	frame := string(c.Render(childScreen(t, 10, "one", "two"), 5))
	if c.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", c.Rows())
	}
	if !strings.Contains(frame, "two") {
		t.Errorf("frame %q missing new row text", frame)
	}
	if strings.Contains(frame, "one") {
		t.Errorf("frame %q repaints unchanged first row", frame)
	}
}

func TestRender_ViewportClampsToMaxRows(t *testing.T) {
	t.Parallel()
	c := New(10)
	child := childScreen(t, 10, "l1", "l2", "l3", "l4", "l5")

	frame := string(c.Render(child, 2))

	if c.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", c.Rows())
	}
	// Only the last two used rows are in the viewport.
	if strings.Contains(frame, "l1") || strings.Contains(frame, "l3") {
		t.Errorf("frame %q contains rows above the viewport", frame)
	}
	if !strings.Contains(frame, "l4") || !strings.Contains(frame, "l5") {
		t.Errorf("frame %q missing viewport rows", frame)
	}
}

func TestRender_StyleEmittedOnlyOnChange(t *testing.T) {
	t.Parallel()
	c := New(20)
	child := childScreen(t, 20, "\x1b[31mred red\x1b[0m")

	frame := string(c.Render(child, 5))

	// All nine cells share one style: a single SGR must cover them.
	if got := strings.Count(frame, "\x1b[0;31m"); got != 1 {
		t.Errorf("frame %q has %d red SGRs, want 1", frame, got)
	}
	// Rendition is reset before parking the cursor.
	if !strings.Contains(frame, "\x1b[0m") {
		t.Errorf("frame %q does not reset the rendition", frame)
	}
}

func TestRender_ShrinkBlanksAbandonedRows(t *testing.T) {
	t.Parallel()
	c := New(10)
	c.Render(childScreen(t, 10, "one", "two", "three"), 5)

	// Child clears the screen down to one used row.
	frame := string(c.Render(childScreen(t, 10, "one"), 5))

	if c.Rows() != 1 {
		t.Errorf("Rows() = %d, want 1", c.Rows())
	}
	if !strings.Contains(frame, "\x1b[2K") {
		t.Errorf("frame %q does not blank abandoned rows", frame)
	}
}

func TestClear_ErasesExactlyClaimedRows(t *testing.T) {
	t.Parallel()
	c := New(10)
	c.Render(childScreen(t, 10, "one", "two"), 5)

	frame := string(c.Clear())

	if got := strings.Count(frame, "\x1b[2K"); got != 2 {
		t.Errorf("Clear() erases %d rows, want 2: %q", got, frame)
	}
	if got := strings.Count(frame, "\x1b[1A"); got != 2 {
		t.Errorf("Clear() moves up %d times, want 2: %q", got, frame)
	}
	if c.Rows() != 0 {
		t.Errorf("Rows() after Clear = %d, want 0", c.Rows())
	}

	// Idempotent: nothing left to clear.
	if again := c.Clear(); again != nil {
		t.Errorf("second Clear() = %q, want nil", again)
	}
}

func TestClear_NilWhenNothingPainted(t *testing.T) {
	t.Parallel()
	c := New(10)

	if frame := c.Clear(); frame != nil {
		t.Errorf("Clear() = %q, want nil", frame)
	}
}

func TestResize_ForcesRepaint(t *testing.T) {
	t.Parallel()
	c := New(10)
	child := childScreen(t, 10, "hello")
	c.Render(child, 5)

	clearFrame := c.Resize(20)
	if len(clearFrame) == 0 {
		t.Fatal("Resize() returned no clearing frame")
	}

	child.Resize(1, 20)
	frame := string(c.Render(child, 5))
	if !strings.Contains(frame, "hello") {
		t.Errorf("post-resize frame %q does not repaint", frame)
	}
}

func TestRender_EmptyChildPaintsNothing(t *testing.T) {
	t.Parallel()
	c := New(10)

	if frame := c.Render(vterm.NewScreen(5, 10), 5); frame != nil {
		t.Errorf("Render() on blank child = %q, want nil", frame)
	}
	if c.Rows() != 0 {
		t.Errorf("Rows() = %d, want 0", c.Rows())
	}
}

func TestRender_WideRunes(t *testing.T) {
	t.Parallel()
	c := New(10)
	child := childScreen(t, 10, "世界")

	frame := string(c.Render(child, 5))

	if !strings.Contains(frame, "世界") {
		t.Errorf("frame %q missing wide text", frame)
	}

	// Repaint is still empty when nothing changed.
	if second := c.Render(child, 5); len(second) != 0 {
		t.Errorf("second frame = %q, want empty", second)
	}
}
