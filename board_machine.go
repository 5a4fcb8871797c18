// board_machine.go - Board glue: device, bus, interrupt line and host surfaces

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_machine.go - Board glue: device, bus, interrupt line and host surfaces

BoardMachine wires one BoardDevice onto a MachineBus at the variant's
addresses, owns the interrupt line and the two host surfaces, and
serialises every entry point on a single mutex. Guest accesses, host input,
scripts and the refresh loop may run on different goroutines; the device
behind the mutex still sees one logical thread.

Memory map (riscv):

  0x30000000-0x3000001F  peripheral bank
  0x70000000-0x70000007  control bank
  0x80000000-0x807E8FFF  video RAM (1920x1080x4)

Memory map (mips):

  0x10000000-0x1000001F  peripheral bank
  0x10002000-0x100115FF  video RAM (640x480 mono)
*/

package main

import (
	"image"
	"sync"
)

const (
	VIEW_BOARD       = 0
	VIEW_FRAMEBUFFER = 1
)

type BoardMachine struct {
	mu sync.Mutex

	variant *BoardVariant
	bus     *MachineBus
	device  *BoardDevice
	irq     *InterruptLine

	boardSurface *MemorySurface
	fbSurface    *MemorySurface

	frames uint64
}

// NewBoardMachine builds and maps a board. bpp is the host surface depth.
// onIRQ, if set, sees every interrupt line transition.
func NewBoardMachine(variant *BoardVariant, bpp int, onIRQ func(level bool)) *BoardMachine {
	m := &BoardMachine{
		variant: variant,
		bus:     NewMachineBus(),
		irq:     NewInterruptLine(onIRQ),
	}
	m.device = NewBoardDevice(variant, m.irq)

	layout := variant.Layout
	m.bus.MapIO("periph", layout.PeriphBase, layout.PeriphBase+PERIPH_BANK_SIZE-1,
		m.device.HandlePeriphRead, m.device.HandlePeriphWrite)
	if variant.HasCtrlBank {
		m.bus.MapIO("ctrl", layout.CtrlBase, layout.CtrlBase+CTRL_BANK_SIZE-1,
			m.device.HandleCtrlRead, m.device.HandleCtrlWrite)
	}
	m.bus.MapRAM("vram", layout.VRAMBase, m.device.VideoMemory())
	m.bus.SealMappings()

	bg := variant.Background
	fbW, fbH := m.device.FramebufferSize()
	m.boardSurface = NewMemorySurface(bg.Width, bg.Height, bpp)
	m.fbSurface = NewMemorySurface(fbW, fbH, bpp)
	return m
}

func (m *BoardMachine) Variant() *BoardVariant { return m.variant }
func (m *BoardMachine) IRQ() *InterruptLine    { return m.irq }

// Read is a guest load through the bus.
func (m *BoardMachine) Read(addr uint32, size int) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.Read(addr, size)
}

// Write is a guest store through the bus.
func (m *BoardMachine) Write(addr uint32, value uint64, size int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.Write(addr, value, size)
}

func (m *BoardMachine) Read32(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.Read32(addr)
}

func (m *BoardMachine) Write32(addr uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus.Write32(addr, value)
}

func (m *BoardMachine) MouseEvent(absX, absY, absZ int, buttons uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device.MouseEvent(absX, absY, absZ, buttons)
}

func (m *BoardMachine) KeyEvent(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device.KeyEvent(code)
}

// WithDevice runs fn with exclusive access to the device.
func (m *BoardMachine) WithDevice(fn func(d *BoardDevice)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.device)
}

// Tick runs one board and one frame buffer redraw pass. An error means the
// host surface format is unusable and the machine cannot continue.
func (m *BoardMachine) Tick() (board, fb image.Rectangle, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	board, err = m.device.RedrawBoard(m.boardSurface)
	if err != nil {
		return board, fb, err
	}
	fb, err = m.device.RedrawFramebuffer(m.fbSurface)
	if err != nil {
		return board, fb, err
	}
	m.frames++
	return board, fb, nil
}

// Frames counts completed Tick passes.
func (m *BoardMachine) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// SetBitsPerPixel switches both host surfaces to a new depth.
func (m *BoardMachine) SetBitsPerPixel(bpp int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boardSurface.SetBitsPerPixel(bpp)
	m.fbSurface.SetBitsPerPixel(bpp)
	m.device.InvalidateFormat()
}

// Invalidate forces a full redraw of both surfaces, e.g. after the host
// window was exposed.
func (m *BoardMachine) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device.InvalidateBoard()
	m.device.InvalidateFramebuffer()
}

// Snapshot copies a view into dst, reallocating it when the size changed.
func (m *BoardMachine) Snapshot(view int, dst *image.RGBA) *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.boardSurface
	if view == VIEW_FRAMEBUFFER {
		s = m.fbSurface
	}
	if dst == nil || dst.Bounds().Dx() != s.Width() || dst.Bounds().Dy() != s.Height() {
		return s.ToRGBA()
	}
	s.CopyRGBA(dst)
	return dst
}

// ViewSize returns the current size of a view.
func (m *BoardMachine) ViewSize(view int) (w, h int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if view == VIEW_FRAMEBUFFER {
		return m.fbSurface.Width(), m.fbSurface.Height()
	}
	return m.boardSurface.Width(), m.boardSurface.Height()
}
