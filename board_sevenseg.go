// board_sevenseg.go - Seven-segment digit decoding

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

// Segment order inside a digit. The element catalog stores a digit as
// NUM_SEG consecutive segment elements in this order.
const (
	SEG_A = iota
	SEG_B
	SEG_C
	SEG_D
	SEG_E
	SEG_F
	SEG_G
	SEG_DP

	NUM_SEG    = 8
	NUM_DIGITS = 4
)

// r7segsMapping lights the standard glyphs for 0-F.
var r7segsMapping = [16][NUM_SEG]uint8{
	//  A  B  C  D  E  F  G  DP
	{1, 1, 1, 1, 1, 1, 0, 0}, // 0
	{0, 1, 1, 0, 0, 0, 0, 0}, // 1
	{1, 1, 0, 1, 1, 0, 1, 0}, // 2
	{1, 1, 1, 1, 0, 0, 1, 0}, // 3
	{0, 1, 1, 0, 0, 1, 1, 0}, // 4
	{1, 0, 1, 1, 0, 1, 1, 0}, // 5
	{1, 0, 1, 1, 1, 1, 1, 0}, // 6
	{1, 1, 1, 0, 0, 0, 0, 0}, // 7
	{1, 1, 1, 1, 1, 1, 1, 0}, // 8
	{1, 1, 1, 1, 0, 1, 1, 0}, // 9
	{1, 1, 1, 0, 1, 1, 1, 0}, // A
	{0, 0, 1, 1, 1, 1, 1, 0}, // b
	{1, 0, 0, 1, 1, 1, 0, 0}, // C
	{0, 1, 1, 1, 1, 0, 1, 0}, // d
	{1, 0, 0, 1, 1, 1, 1, 0}, // E
	{1, 0, 0, 0, 1, 1, 1, 0}, // F
}

// sevenSegDigits returns the glyph index of every digit, digit 0 being the
// least significant.
func sevenSegDigits(mode, val uint32) [NUM_DIGITS]uint8 {
	var out [NUM_DIGITS]uint8
	switch mode {
	case R7SEGS_CTL_RAW:
		for d := range NUM_DIGITS {
			out[d] = uint8(val % 10)
			val /= 10
		}
	case R7SEGS_CTL_HALF_HIGH:
		val >>= 16
		fallthrough
	default:
		for d := range NUM_DIGITS {
			out[d] = uint8(val & 0xF)
			val >>= 4
		}
	}
	return out
}

// decodeSevenSeg returns the segment states of all digits for val shown in
// the given mode.
func decodeSevenSeg(mode, val uint32) [NUM_DIGITS][NUM_SEG]uint8 {
	var segs [NUM_DIGITS][NUM_SEG]uint8
	for d, glyph := range sevenSegDigits(mode, val) {
		segs[d] = r7segsMapping[glyph]
	}
	return segs
}

// update7Seg re-decodes the stored value into the segment elements.
func (d *BoardDevice) update7Seg() {
	v := d.variant
	if !v.HasSevenSegs() {
		return
	}
	segs := decodeSevenSeg(d.sevenSegMode, d.sevenSegValue)
	digits := v.Segments.Len() / NUM_SEG
	for digit := range digits {
		base := v.Segments.First + digit*NUM_SEG
		for seg := range NUM_SEG {
			d.periphState[base+seg] = segs[digit][seg]
		}
	}
	d.boardInvalidate |= INVAL_7SEGS
}
