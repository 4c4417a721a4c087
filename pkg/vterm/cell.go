// ABOUTME: Cell, Style, and Color value types for the virtual screen grid
// ABOUTME: Zero values mean "blank cell, default style" so fresh grids need no initialization

package vterm

import "github.com/rivo/uniseg"

// ColorMode selects how a Color value is interpreted.
type ColorMode uint8

const (
	// ColorDefault is the terminal's default foreground or background.
	ColorDefault ColorMode = iota
	// ColorANSI is one of the 16 base colors (value 0-15).
	ColorANSI
	// Color256 is an indexed color from the 256-color palette.
	Color256
	// ColorRGB is a 24-bit truecolor value.
	ColorRGB
)

// Color is a terminal color in one of the supported encodings.
// The zero value is the terminal default.
type Color struct {
	Mode    ColorMode
	Index   uint8 // ColorANSI (0-15) or Color256 (0-255)
	R, G, B uint8 // ColorRGB only
}

// ANSIColor returns a base-16 color. Values above 15 are masked.
func ANSIColor(n uint8) Color {
	return Color{Mode: ColorANSI, Index: n & 0x0f}
}

// IndexedColor returns a 256-palette color.
func IndexedColor(n uint8) Color {
	return Color{Mode: Color256, Index: n}
}

// RGBColor returns a truecolor value.
func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorRGB, R: r, G: g, B: b}
}

// Attr is a bitmask of text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrInverse
)

// Style is the rendition applied to a cell: colors plus attributes.
// The zero value is the default rendition.
type Style struct {
	Fg   Color
	Bg   Color
	Attr Attr
}

// IsDefault reports whether the style is the default rendition.
func (s Style) IsDefault() bool {
	return s == Style{}
}

// Cell is one character position on the screen. Content holds a single
// grapheme (base rune plus any combining marks); empty means blank.
// Cells are plain comparable values so the compositor can diff with ==.
type Cell struct {
	Content string
	Style   Style
}

// IsBlank reports whether the cell shows nothing but (possibly styled)
// background: no content, or only whitespace with no rendition.
func (c Cell) IsBlank() bool {
	return (c.Content == "" || c.Content == " ") && c.Style.IsDefault()
}

// Width returns the cell's display width in columns. Blank cells count as
// one column; grapheme clusters are measured whole so a base rune plus
// combining marks still reports the width of the composed glyph.
func (c Cell) Width() int {
	if c.Content == "" {
		return 1
	}
	w := uniseg.StringWidth(c.Content)
	if w < 1 {
		w = 1
	}
	return w
}
