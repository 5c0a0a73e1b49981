/*
DESCRIPTION
  bitmap.go provides the built-in 8x8 bitmap glyph table used as a fallback
  when no TrueType face is available (see §4.5 and §7's "Overlay errors ...
  degrade to the bitmap fallback").

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package overlay

// GlyphSize is the width and height, in pixels, of one unscaled bitmap
// glyph cell.
const GlyphSize = 8

// glyph is an 8x8 bitmap: glyph[row] has bit (7-col) set where the pixel at
// (col, row) is foreground.
type glyph [GlyphSize]byte

// glyphRows builds a glyph from 8 strings of '0'/'1', most significant
// (leftmost) pixel first. Any character other than '1' is treated as off.
func glyphRows(rows [GlyphSize]string) glyph {
	var g glyph
	for r, row := range rows {
		var b byte
		for c := 0; c < GlyphSize && c < len(row); c++ {
			b <<= 1
			if row[c] == '1' {
				b |= 1
			}
		}
		g[r] = b
	}
	return g
}

// unknownGlyph is used for any printable rune without a table entry: a thin
// outlined box, distinguishable from both space and a filled block.
var unknownGlyph = glyphRows([8]string{
	"00000000",
	"01111110",
	"01000010",
	"01000010",
	"01000010",
	"01000010",
	"01111110",
	"00000000",
})

// glyphs holds the built-in bitmap font: space, digits, uppercase letters
// and a handful of punctuation marks commonly used in vocabulary/stats
// overlay text. Lowercase letters are folded to uppercase before lookup.
var glyphs = map[rune]glyph{
	' ': glyphRows([8]string{
		"00000000", "00000000", "00000000", "00000000",
		"00000000", "00000000", "00000000", "00000000",
	}),
	'0': glyphRows([8]string{
		"00111100", "01000110", "01001010", "01010010",
		"01100010", "01000110", "00111100", "00000000",
	}),
	'1': glyphRows([8]string{
		"00011000", "00111000", "00011000", "00011000",
		"00011000", "00011000", "01111110", "00000000",
	}),
	'2': glyphRows([8]string{
		"00111100", "01000010", "00000010", "00001100",
		"00110000", "01000000", "01111110", "00000000",
	}),
	'3': glyphRows([8]string{
		"01111110", "00000100", "00001000", "00000100",
		"00000010", "01000010", "00111100", "00000000",
	}),
	'4': glyphRows([8]string{
		"00001100", "00010100", "00100100", "01000100",
		"01111110", "00000100", "00000100", "00000000",
	}),
	'5': glyphRows([8]string{
		"01111110", "01000000", "01111100", "00000010",
		"00000010", "01000010", "00111100", "00000000",
	}),
	'6': glyphRows([8]string{
		"00011100", "00100000", "01000000", "01111100",
		"01000010", "01000010", "00111100", "00000000",
	}),
	'7': glyphRows([8]string{
		"01111110", "00000010", "00000100", "00001000",
		"00010000", "00010000", "00010000", "00000000",
	}),
	'8': glyphRows([8]string{
		"00111100", "01000010", "01000010", "00111100",
		"01000010", "01000010", "00111100", "00000000",
	}),
	'9': glyphRows([8]string{
		"00111100", "01000010", "01000010", "00111110",
		"00000010", "00000100", "00111000", "00000000",
	}),
	'A': glyphRows([8]string{
		"00011000", "00100100", "01000010", "01000010",
		"01111110", "01000010", "01000010", "00000000",
	}),
	'B': glyphRows([8]string{
		"01111100", "01000010", "01000010", "01111100",
		"01000010", "01000010", "01111100", "00000000",
	}),
	'C': glyphRows([8]string{
		"00111100", "01000010", "01000000", "01000000",
		"01000000", "01000010", "00111100", "00000000",
	}),
	'D': glyphRows([8]string{
		"01111000", "01000100", "01000010", "01000010",
		"01000010", "01000100", "01111000", "00000000",
	}),
	'E': glyphRows([8]string{
		"01111110", "01000000", "01000000", "01111100",
		"01000000", "01000000", "01111110", "00000000",
	}),
	'F': glyphRows([8]string{
		"01111110", "01000000", "01000000", "01111100",
		"01000000", "01000000", "01000000", "00000000",
	}),
	'G': glyphRows([8]string{
		"00111100", "01000010", "01000000", "01001110",
		"01000010", "01000010", "00111100", "00000000",
	}),
	'H': glyphRows([8]string{
		"01000010", "01000010", "01000010", "01111110",
		"01000010", "01000010", "01000010", "00000000",
	}),
	'I': glyphRows([8]string{
		"00111000", "00010000", "00010000", "00010000",
		"00010000", "00010000", "00111000", "00000000",
	}),
	'J': glyphRows([8]string{
		"00001110", "00000100", "00000100", "00000100",
		"01000100", "01000100", "00111000", "00000000",
	}),
	'K': glyphRows([8]string{
		"01000010", "01000100", "01001000", "01110000",
		"01001000", "01000100", "01000010", "00000000",
	}),
	'L': glyphRows([8]string{
		"01000000", "01000000", "01000000", "01000000",
		"01000000", "01000000", "01111110", "00000000",
	}),
	'M': glyphRows([8]string{
		"01000010", "01100110", "01011010", "01000010",
		"01000010", "01000010", "01000010", "00000000",
	}),
	'N': glyphRows([8]string{
		"01000010", "01100010", "01010010", "01001010",
		"01000110", "01000010", "01000010", "00000000",
	}),
	'O': glyphRows([8]string{
		"00111100", "01000010", "01000010", "01000010",
		"01000010", "01000010", "00111100", "00000000",
	}),
	'P': glyphRows([8]string{
		"01111100", "01000010", "01000010", "01111100",
		"01000000", "01000000", "01000000", "00000000",
	}),
	'Q': glyphRows([8]string{
		"00111100", "01000010", "01000010", "01000010",
		"01001010", "01000100", "00111010", "00000000",
	}),
	'R': glyphRows([8]string{
		"01111100", "01000010", "01000010", "01111100",
		"01001000", "01000100", "01000010", "00000000",
	}),
	'S': glyphRows([8]string{
		"00111110", "01000000", "01000000", "00111100",
		"00000010", "00000010", "01111100", "00000000",
	}),
	'T': glyphRows([8]string{
		"01111110", "00010000", "00010000", "00010000",
		"00010000", "00010000", "00010000", "00000000",
	}),
	'U': glyphRows([8]string{
		"01000010", "01000010", "01000010", "01000010",
		"01000010", "01000010", "00111100", "00000000",
	}),
	'V': glyphRows([8]string{
		"01000010", "01000010", "01000010", "01000010",
		"00100100", "00100100", "00011000", "00000000",
	}),
	'W': glyphRows([8]string{
		"01000010", "01000010", "01000010", "01000010",
		"01011010", "01100110", "01000010", "00000000",
	}),
	'X': glyphRows([8]string{
		"01000010", "00100100", "00011000", "00011000",
		"00011000", "00100100", "01000010", "00000000",
	}),
	'Y': glyphRows([8]string{
		"01000010", "00100100", "00011000", "00010000",
		"00010000", "00010000", "00010000", "00000000",
	}),
	'Z': glyphRows([8]string{
		"01111110", "00000100", "00001000", "00010000",
		"00100000", "01000000", "01111110", "00000000",
	}),
	'.': glyphRows([8]string{
		"00000000", "00000000", "00000000", "00000000",
		"00000000", "00011000", "00011000", "00000000",
	}),
	':': glyphRows([8]string{
		"00000000", "00011000", "00011000", "00000000",
		"00011000", "00011000", "00000000", "00000000",
	}),
	'-': glyphRows([8]string{
		"00000000", "00000000", "00000000", "01111110",
		"00000000", "00000000", "00000000", "00000000",
	}),
	'_': glyphRows([8]string{
		"00000000", "00000000", "00000000", "00000000",
		"00000000", "00000000", "01111110", "00000000",
	}),
	'%': glyphRows([8]string{
		"01100010", "01100100", "00001000", "00010000",
		"00100000", "01001100", "10001100", "00000000",
	}),
	'/': glyphRows([8]string{
		"00000010", "00000100", "00001000", "00010000",
		"00100000", "01000000", "10000000", "00000000",
	}),
}

// Glyph returns the bitmap glyph for r, folding lowercase letters to
// uppercase, and falling back to unknownGlyph for any printable rune outside
// the table.
func Glyph(r rune) glyph {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if g, ok := glyphs[r]; ok {
		return g
	}
	return unknownGlyph
}
