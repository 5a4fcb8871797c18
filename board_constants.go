// board_constants.go - CEP Board Peripheral and Framebuffer Constants

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_constants.go - CEP Board Peripheral and Framebuffer Constants

This file defines the register offsets, control values and display geometry
for the CEP board device. The device exposes two register banks and a video
RAM window:

  Peripheral bank (0x20 bytes): LEDs, switches/push-buttons, push-button
  control, seven-segment value and seven-segment control.

  Control bank (8 bytes, RISC-V board only): HDMI video mode and frame
  buffer address.

Switch/Button Register Layout (REG_SWITCHES, read-only):
  RISC-V: bits 19-16 = PUSHBTN3..0, bits 15-4 = 0, bits 3-0 = SWITCH3..0
  MIPS:   bits 11-8  = PUSHBTN3..0, bits 7-0 = SWITCH7..0

In interrupt mode a read of REG_SWITCHES acknowledges: every button state is
cleared as it is read and the push-button IRQ is lowered.
*/

package main

// =============================================================================
// Peripheral Bank Offsets
// =============================================================================

const (
	REG_LEDS        = 0x00 // Write: one bit per LED, LED0 in bit 0
	REG_SWITCHES    = 0x04 // Read: push-buttons and switches (see layout above)
	REG_PUSHBTN_CTL = 0x08 // Write: PUSHBTN_CTL_POLL or PUSHBTN_CTL_INT
	REG_7SEGS       = 0x0C // Write: value shown on the seven-segment digits
	REG_7SEGS_CTL   = 0x10 // Write: R7SEGS_CTL_* display mode

	PERIPH_BANK_SIZE = 0x20
)

// =============================================================================
// Control Bank Offsets (RISC-V board)
// =============================================================================

const (
	REG_MODE = 0x00 // HDMI video mode code
	REG_ADDR = 0x04 // Frame buffer base address (stored, not used for composition)

	CTRL_BANK_SIZE = 0x08
)

// =============================================================================
// Control Register Values
// =============================================================================

const (
	PUSHBTN_CTL_POLL = 0x0 // Software polls REG_SWITCHES
	PUSHBTN_CTL_INT  = 0x1 // IRQ on press, acknowledged by reading REG_SWITCHES
)

const (
	R7SEGS_CTL_HALF_LOW  = 0x0 // Hex display of bits 15-0
	R7SEGS_CTL_HALF_HIGH = 0x1 // Hex display of bits 31-16
	R7SEGS_CTL_RAW       = 0x2 // Decimal display of the full value
)

// PUSHBTN_PERSISTENCE is the number of board redraw ticks a button stays lit
// after an interrupt-mode press, even when software acknowledges at once.
const PUSHBTN_PERSISTENCE = 3

// =============================================================================
// Keyboard Scancodes (PC set 1)
// =============================================================================

const (
	KBD_RELEASE_DIFF = 0x80

	KBD_CODE_LEFT  = 0x4B
	KBD_CODE_RIGHT = 0x4D
	KBD_CODE_HIGH  = 0x48
	KBD_CODE_DOWN  = 0x50
	KBD_CODE_SPACE = 0x39

	KBD_CODE_LEFT_RELEASE  = KBD_RELEASE_DIFF + KBD_CODE_LEFT
	KBD_CODE_RIGHT_RELEASE = KBD_RELEASE_DIFF + KBD_CODE_RIGHT
	KBD_CODE_HIGH_RELEASE  = KBD_RELEASE_DIFF + KBD_CODE_HIGH
	KBD_CODE_DOWN_RELEASE  = KBD_RELEASE_DIFF + KBD_CODE_DOWN
	KBD_CODE_SPACE_RELEASE = KBD_RELEASE_DIFF + KBD_CODE_SPACE
)

// =============================================================================
// Mouse
// =============================================================================

const (
	MOUSE_EVENT_LBUTTON = 0x01
	MOUSE_EVENT_RBUTTON = 0x02
	MOUSE_EVENT_MBUTTON = 0x04

	// Host pointers report absolute positions in 0..MOUSE_ABS_MAX on each axis
	MOUSE_ABS_SHIFT = 15
	MOUSE_ABS_MAX   = 1<<MOUSE_ABS_SHIFT - 1
)

// =============================================================================
// HDMI Video Modes (RISC-V board)
// =============================================================================

const (
	HDMI_MODE_720P    = 4
	HDMI_MODE_DEFAULT = HDMI_MODE_720P

	VRAM_WIDTH  = 1920
	VRAM_HEIGHT = 1080

	VRAM_WIDTH_EFFECTIVE_DEFAULT  = 1280
	VRAM_HEIGHT_EFFECTIVE_DEFAULT = 720

	VRAM_BYTES_PER_PIXEL = 4
	VRAM_SIZE            = VRAM_WIDTH * VRAM_HEIGHT * VRAM_BYTES_PER_PIXEL
)

// HDMIMode is one entry of the supported video mode table.
type HDMIMode struct {
	Code   uint32
	Width  int
	Height int
}

// hdmiModes lists every mode code the RISC-V board accepts.
var hdmiModes = map[uint32]HDMIMode{
	4:  {Code: 4, Width: 1280, Height: 720},
	19: {Code: 19, Width: 1920, Height: 1080},
	32: {Code: 32, Width: 1920, Height: 1080},
	33: {Code: 33, Width: 1920, Height: 1080},
	34: {Code: 34, Width: 1920, Height: 1080},
}

// =============================================================================
// Monochrome Frame Buffer (MIPS board)
// =============================================================================

const (
	MONO_WIDTH  = 640
	MONO_HEIGHT = 480
	MONO_SIZE   = MONO_WIDTH * MONO_HEIGHT / 8
)

// =============================================================================
// Invalidation Categories
// =============================================================================

// Invalidate is a per-surface set of visual categories that need redrawing.
type Invalidate uint32

const (
	INVAL_FB       Invalidate = 1 << 0
	INVAL_LEDS     Invalidate = 1 << 1
	INVAL_7SEGS    Invalidate = 1 << 2
	INVAL_SWITCHES Invalidate = 1 << 3
	INVAL_PUSHBTN  Invalidate = 1 << 4
	INVAL_ALL_ELT             = INVAL_FB | INVAL_LEDS | INVAL_7SEGS | INVAL_SWITCHES | INVAL_PUSHBTN

	// Background redraw implies redrawing everything on top of it
	INVAL_BG  Invalidate = 1 << 5
	INVAL_ALL            = INVAL_ALL_ELT | INVAL_BG
)

// =============================================================================
// Refresh
// =============================================================================

const (
	BOARD_REFRESH_RATE = 60
)
