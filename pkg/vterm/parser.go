// ABOUTME: Byte-oriented escape sequence interpreter feeding a Screen
// ABOUTME: States: ground, escape, CSI, OSC; unknown sequences are consumed without desync

package vterm

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInter // ESC with intermediates, e.g. charset designators ESC ( B
	stateCSI
	stateOSC
)

const (
	ctrlBEL = 0x07
	ctrlBS  = 0x08
	ctrlTAB = 0x09
	ctrlLF  = 0x0a
	ctrlVT  = 0x0b
	ctrlFF  = 0x0c
	ctrlCR  = 0x0d
	ctrlESC = 0x1b
	ctrlDEL = 0x7f
)

// Parser consumes raw child output incrementally and mutates a Screen.
// A sequence or multi-byte rune split across Feed calls produces the same
// screen as feeding it whole; malformed sequences are discarded and the
// parser returns to ground.
type Parser struct {
	screen *Screen
	state  parserState

	partial []byte // incomplete UTF-8 rune across Feed boundaries
	params  []byte // raw CSI parameter bytes
	inter   []byte // CSI intermediate bytes
	oscESC  bool   // saw ESC inside OSC, expecting ST terminator
}

// NewParser returns a Parser writing into screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{screen: screen}
}

// Screen returns the screen this parser mutates.
func (p *Parser) Screen() *Screen { return p.screen }

// Resize forwards a size change to the screen. In-flight sequence state is
// independent of the grid size and survives the resize.
func (p *Parser) Resize(rows, cols int) {
	p.screen.Resize(rows, cols)
}

// Feed processes a chunk of child output. It never fails; anything it does
// not understand is consumed silently.
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		switch p.state {
		case stateGround:
			p.ground(b)
		case stateEscape:
			p.escape(b)
		case stateEscapeInter:
			// Single final byte after ESC-intermediate; discard whole sequence.
			p.state = stateGround
		case stateCSI:
			p.csi(b)
		case stateOSC:
			p.osc(b)
		}
	}
}

func (p *Parser) ground(b byte) {
	if b >= 0x20 && b != ctrlDEL {
		p.text(b)
		return
	}

	// Control byte interrupts any partial rune.
	p.partial = p.partial[:0]

	switch b {
	case ctrlESC:
		p.state = stateEscape
	case ctrlCR:
		p.screen.CarriageReturn()
	case ctrlLF, ctrlVT, ctrlFF:
		p.screen.LineFeed()
	case ctrlBS:
		p.screen.Backspace()
	case ctrlTAB:
		p.screen.Tab()
	default:
		// BEL and the rest of C0 have no visual effect.
	}
}

// text reassembles UTF-8 across Feed boundaries and writes decoded runes.
func (p *Parser) text(b byte) {
	p.partial = append(p.partial, b)
	for len(p.partial) > 0 {
		if !utf8.FullRune(p.partial) {
			if len(p.partial) >= utf8.UTFMax {
				p.partial = p.partial[1:]
				continue
			}
			return // wait for the rest of the rune
		}
		r, size := utf8.DecodeRune(p.partial)
		p.partial = p.partial[size:]
		if r == utf8.RuneError && size == 1 {
			continue // invalid byte, drop it
		}
		p.screen.WriteRune(r)
	}
}

func (p *Parser) escape(b byte) {
	switch {
	case b == '[':
		p.params = p.params[:0]
		p.inter = p.inter[:0]
		p.state = stateCSI
	case b == ']':
		p.oscESC = false
		p.state = stateOSC
	case b >= 0x20 && b <= 0x2f:
		// Charset designators and similar; one final byte follows.
		p.state = stateEscapeInter
	case b == ctrlESC:
		// ESC ESC: stay in escape for the second one.
	default:
		// Two-byte escape (ESC 7, ESC =, ESC M, ...): unsupported, discard.
		p.state = stateGround
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= 0x30 && b <= 0x3f:
		if len(p.params) < 64 {
			p.params = append(p.params, b)
		}
	case b >= 0x20 && b <= 0x2f:
		if len(p.inter) < 4 {
			p.inter = append(p.inter, b)
		}
	case b >= 0x40 && b <= 0x7e:
		p.state = stateGround
		if len(p.inter) == 0 {
			p.dispatchCSI(b)
		}
		// Sequences with intermediates are outside the supported subset.
	case b == ctrlESC:
		// Aborted sequence; restart escape parsing.
		p.state = stateEscape
	default:
		// Malformed byte inside CSI: abandon the sequence.
		p.state = stateGround
	}
}

func (p *Parser) osc(b byte) {
	// OSC payloads (titles, hyperlinks, palette queries) are consumed and
	// discarded. Terminated by BEL or ST (ESC \).
	switch {
	case b == ctrlBEL:
		p.state = stateGround
	case p.oscESC:
		p.oscESC = false
		if b == '\\' {
			p.state = stateGround
		} else if b == ctrlESC {
			p.oscESC = true
		}
	case b == ctrlESC:
		p.oscESC = true
	}
}

// dispatchCSI applies a completed CSI sequence to the screen. Parameters
// are parsed once into ints and dispatched in a single switch.
func (p *Parser) dispatchCSI(final byte) {
	raw := string(p.params)
	private := strings.HasPrefix(raw, "?")
	if private {
		raw = raw[1:]
	} else if len(raw) > 0 && (raw[0] == '>' || raw[0] == '<' || raw[0] == '=') {
		// Other private markers: not part of the supported subset.
		return
	}
	args := splitParams(raw)

	if private {
		// DECSET/DECRST: only cursor visibility is honored.
		if final == 'h' || final == 'l' {
			for _, n := range args {
				if n == 25 {
					p.screen.ShowCursor(final == 'h')
				}
			}
		}
		return
	}

	s := p.screen
	switch final {
	case 'A':
		s.CursorUp(arg(args, 0, 1))
	case 'B':
		s.CursorDown(arg(args, 0, 1))
	case 'C':
		s.CursorForward(arg(args, 0, 1))
	case 'D':
		s.CursorBack(arg(args, 0, 1))
	case 'G':
		s.MoveCursor(s.curRow, arg(args, 0, 1)-1)
	case 'H', 'f':
		s.MoveCursor(arg(args, 0, 1)-1, arg(args, 1, 1)-1)
	case 'J':
		s.EraseDisplay(arg(args, 0, 0))
	case 'K':
		s.EraseLine(arg(args, 0, 0))
	case 'm':
		p.sgr(args)
	default:
		// Unsupported final byte: the sequence was already consumed.
	}
}

// splitParams parses semicolon-separated CSI parameters. Empty and
// malformed fields become 0 so defaults apply; colon sub-parameters are
// folded in as separators, which is good enough for the SGR forms we keep.
func splitParams(raw string) []int {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ":", ";")
	fields := strings.Split(raw, ";")
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			n = 0
		}
		out[i] = n
	}
	return out
}

// arg returns args[i], or def when the parameter is absent or zero.
func arg(args []int, i, def int) int {
	if i >= len(args) || args[i] == 0 {
		return def
	}
	return args[i]
}

// sgr applies Select Graphic Rendition parameters to the pending style.
func (p *Parser) sgr(args []int) {
	st := p.screen.Pending()
	if len(args) == 0 {
		args = []int{0}
	}

	for i := 0; i < len(args); i++ {
		n := args[i]
		switch {
		case n == 0:
			st = Style{}
		case n == 1:
			st.Attr |= AttrBold
		case n == 2:
			st.Attr |= AttrDim
		case n == 3:
			st.Attr |= AttrItalic
		case n == 4:
			st.Attr |= AttrUnderline
		case n == 7:
			st.Attr |= AttrInverse
		case n == 22:
			st.Attr &^= AttrBold | AttrDim
		case n == 23:
			st.Attr &^= AttrItalic
		case n == 24:
			st.Attr &^= AttrUnderline
		case n == 27:
			st.Attr &^= AttrInverse
		case n >= 30 && n <= 37:
			st.Fg = ANSIColor(uint8(n - 30))
		case n >= 90 && n <= 97:
			st.Fg = ANSIColor(uint8(n - 90 + 8))
		case n == 39:
			st.Fg = Color{}
		case n >= 40 && n <= 47:
			st.Bg = ANSIColor(uint8(n - 40))
		case n >= 100 && n <= 107:
			st.Bg = ANSIColor(uint8(n - 100 + 8))
		case n == 49:
			st.Bg = Color{}
		case n == 38:
			c, used, ok := extendedColor(args[i+1:])
			if !ok {
				p.screen.SetPending(st)
				return // malformed extended color: drop the rest
			}
			st.Fg = c
			i += used
		case n == 48:
			c, used, ok := extendedColor(args[i+1:])
			if !ok {
				p.screen.SetPending(st)
				return
			}
			st.Bg = c
			i += used
		}
	}
	p.screen.SetPending(st)
}

// extendedColor parses the tail of a 38/48 parameter: 5;N or 2;R;G;B.
// Returns the color, how many parameters were consumed, and validity.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) >= 2 && rest[0] == 5 {
		return IndexedColor(uint8(clamp(rest[1], 0, 255))), 2, true
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return RGBColor(
			uint8(clamp(rest[1], 0, 255)),
			uint8(clamp(rest[2], 0, 255)),
			uint8(clamp(rest[3], 0, 255)),
		), 4, true
	}
	return Color{}, 0, false
}
