// board_device.go - CEP Board Peripheral and Framebuffer Device

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_device.go - CEP Board Peripheral and Framebuffer Device

BoardDevice is the single context object of one board: register banks,
element states, push-button interrupt protocol, seven-segment decoding,
video mode selection, video RAM and the per-surface invalidation masks.
Every entry point (register access, redraw, input event) takes the device
explicitly; there is no global state.

The device does no locking. Its owner serialises every call (see
BoardMachine), so the device always sees a single logical thread.

Register access is width agnostic: any size is accepted and the value is
treated as an integer of that width. Offsets outside the defined registers
read as zero and ignore writes.
*/

package main

import "fmt"

type BoardDevice struct {
	variant *BoardVariant
	irq     IRQLine
	vram    *VideoMemory

	// Per element state, indexed by element ID: 0 or 1
	periphState []uint8
	// Per push-button redraw ticks left, indexed by element ID
	persistence []int

	pushbtnMode   uint32
	sevenSegMode  uint32
	sevenSegValue uint32

	regMode uint32
	regAddr uint32

	boardInvalidate Invalidate
	fbInvalidate    Invalidate

	// Input translator state
	lastButtons uint32
	wasIn       *GuiElement

	// Cached host pixel converters, dropped by InvalidateFormat
	boardConv *pixelConverter
	fbConv    *pixelConverter
}

// NewBoardDevice builds a device in its reset state.
func NewBoardDevice(variant *BoardVariant, irq IRQLine) *BoardDevice {
	d := &BoardDevice{
		variant:     variant,
		irq:         irq,
		vram:        NewVideoMemory(variant.VRAMSize),
		periphState: make([]uint8, len(variant.Elements)),
		persistence: make([]int, len(variant.Elements)),
	}
	d.Reset()
	return d
}

func (d *BoardDevice) Variant() *BoardVariant { return d.variant }

// VideoMemory returns the guest visible frame buffer storage.
func (d *BoardDevice) VideoMemory() *VideoMemory { return d.vram }

func sizeMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(size)) - 1
}

// =============================================================================
// Peripheral bank
// =============================================================================

// HandlePeriphRead serves a guest load from the peripheral bank. A read of
// REG_SWITCHES in interrupt mode acknowledges pending buttons.
func (d *BoardDevice) HandlePeriphRead(offset uint32, size int) uint64 {
	var v uint32
	switch offset {
	case REG_SWITCHES:
		v = d.readSwitches()
	}
	return uint64(v) & sizeMask(size)
}

// PeekPeriph returns what a guest read would see without side effects.
func (d *BoardDevice) PeekPeriph(offset uint32) uint32 {
	switch offset {
	case REG_LEDS:
		return d.LEDs()
	case REG_SWITCHES:
		return d.packSwitches(false)
	case REG_PUSHBTN_CTL:
		return d.pushbtnMode
	case REG_7SEGS:
		return d.sevenSegValue
	case REG_7SEGS_CTL:
		return d.sevenSegMode
	}
	return 0
}

// HandlePeriphWrite serves a guest store to the peripheral bank.
func (d *BoardDevice) HandlePeriphWrite(offset uint32, value uint64, size int) {
	val := uint32(value & sizeMask(size))
	switch offset {
	case REG_LEDS:
		d.writeLEDs(val)
	case REG_PUSHBTN_CTL:
		d.writePushbtnCtl(val)
	case REG_7SEGS:
		if d.variant.HasSevenSegs() {
			d.sevenSegValue = val
			d.update7Seg()
		}
	case REG_7SEGS_CTL:
		if d.variant.HasSevenSegs() && val <= R7SEGS_CTL_RAW {
			d.sevenSegMode = val
			d.update7Seg()
		}
	}
}

func (d *BoardDevice) writeLEDs(val uint32) {
	leds := d.variant.LEDs
	for id := leds.First; id <= leds.Last; id++ {
		d.periphState[id] = uint8(val & 1)
		val >>= 1
	}
	d.boardInvalidate |= INVAL_LEDS
}

func (d *BoardDevice) writePushbtnCtl(val uint32) {
	if val != PUSHBTN_CTL_POLL && val != PUSHBTN_CTL_INT {
		return
	}
	d.pushbtnMode = val
	d.irq.Lower()
}

func (d *BoardDevice) readSwitches() uint32 {
	v := d.packSwitches(d.pushbtnMode == PUSHBTN_CTL_INT)
	if d.pushbtnMode == PUSHBTN_CTL_INT {
		d.irq.Lower()
	}
	return v
}

// packSwitches builds REG_SWITCHES: buttons in the high group, the variant
// gap, then switches with SWITCH0 in bit 0. With ack set every button is
// cleared as it is read.
func (d *BoardDevice) packSwitches(ack bool) uint32 {
	v := d.variant
	var val uint32
	for id := v.PushButtons.Last; id >= v.PushButtons.First; id-- {
		val = val<<1 | uint32(d.periphState[id])
		if ack {
			d.periphState[id] = 0
		}
	}
	val <<= v.SwitchGap
	for id := v.Switches.Last; id >= v.Switches.First; id-- {
		val = val<<1 | uint32(d.periphState[id])
	}
	return val
}

// =============================================================================
// Control bank
// =============================================================================

func (d *BoardDevice) HandleCtrlRead(offset uint32, size int) uint64 {
	var v uint32
	switch offset {
	case REG_MODE:
		v = d.regMode
	case REG_ADDR:
		v = d.regAddr
	}
	return uint64(v) & sizeMask(size)
}

// PeekCtrl has no side effects; reads of the control bank never do.
func (d *BoardDevice) PeekCtrl(offset uint32) uint32 {
	return uint32(d.HandleCtrlRead(offset, 4))
}

func (d *BoardDevice) HandleCtrlWrite(offset uint32, value uint64, size int) {
	val := uint32(value & sizeMask(size))
	switch offset {
	case REG_MODE:
		d.setVideoMode(val)
	case REG_ADDR:
		d.regAddr = val
	}
}

func (d *BoardDevice) setVideoMode(code uint32) {
	if _, ok := hdmiModes[code]; !ok {
		fmt.Printf("ERROR: Unsupported HDMI mode (%d), switching to 720p mode (%d)\n", code, HDMI_MODE_DEFAULT)
		code = HDMI_MODE_DEFAULT
	}
	if code != d.regMode {
		d.fbInvalidate |= INVAL_ALL
	}
	d.regMode = code
}

// VideoMode returns the mode selected through REG_MODE.
func (d *BoardDevice) VideoMode() HDMIMode {
	return hdmiModes[d.regMode]
}

// FramebufferSize is the logical frame buffer surface size.
func (d *BoardDevice) FramebufferSize() (w, h int) {
	if !d.variant.HasCtrlBank {
		return d.variant.FixedWidth, d.variant.FixedHeight
	}
	m := d.VideoMode()
	return m.Width, m.Height
}

// effectiveVRAMSize is the part of video RAM the current mode displays.
func (d *BoardDevice) effectiveVRAMSize() int {
	w, h := d.FramebufferSize()
	if d.variant.VRAMFormat == VRAMFormatMono1 {
		return w * h / 8
	}
	return w * h * VRAM_BYTES_PER_PIXEL
}

// =============================================================================
// State views
// =============================================================================

// LEDs packs the LED states, LED0 in bit 0.
func (d *BoardDevice) LEDs() uint32 {
	return d.packRange(d.variant.LEDs)
}

// Switches packs the switch states, SWITCH0 in bit 0.
func (d *BoardDevice) Switches() uint32 {
	return d.packRange(d.variant.Switches)
}

// Buttons packs the live push-button states, PUSHBTN0 in bit 0.
func (d *BoardDevice) Buttons() uint32 {
	return d.packRange(d.variant.PushButtons)
}

func (d *BoardDevice) packRange(r ElementRange) uint32 {
	var v uint32
	for id := r.Last; id >= r.First; id-- {
		v = v<<1 | uint32(d.periphState[id])
	}
	return v
}

// Segments packs the segments of one digit, SEG_A in bit 0.
func (d *BoardDevice) Segments(digit int) uint8 {
	if digit < 0 || digit >= d.variant.Segments.Len()/NUM_SEG {
		return 0
	}
	base := d.variant.Segments.First + digit*NUM_SEG
	var v uint8
	for seg := NUM_SEG - 1; seg >= 0; seg-- {
		v = v<<1 | d.periphState[base+seg]
	}
	return v
}

// ElementState returns the register-visible state of an element.
func (d *BoardDevice) ElementState(id int) uint8 { return d.periphState[id] }

// Persistence returns the redraw ticks left on a push-button.
func (d *BoardDevice) Persistence(id int) int { return d.persistence[id] }

func (d *BoardDevice) PushbtnMode() uint32   { return d.pushbtnMode }
func (d *BoardDevice) SevenSegMode() uint32  { return d.sevenSegMode }
func (d *BoardDevice) SevenSegValue() uint32 { return d.sevenSegValue }

func (d *BoardDevice) BoardInvalid() Invalidate       { return d.boardInvalidate }
func (d *BoardDevice) FramebufferInvalid() Invalidate { return d.fbInvalidate }

// elementLit reports whether the element is drawn with its on image.
// Push-buttons stay lit while persistence runs.
func (d *BoardDevice) elementLit(e *GuiElement) bool {
	if d.periphState[e.ID] != 0 {
		return true
	}
	return e.Kind == ElementPushButton && d.persistence[e.ID] != 0
}
