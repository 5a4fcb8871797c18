// component_reset.go - Reset() methods for the board components (hard reset support)

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

// BoardDevice.Reset restores the device to power-on state.
// Preserves: variant, irq, vram contents, cached pixel converters.
func (d *BoardDevice) Reset() {
	clear(d.periphState)
	clear(d.persistence)

	d.pushbtnMode = PUSHBTN_CTL_POLL
	d.sevenSegMode = R7SEGS_CTL_HALF_LOW
	d.sevenSegValue = 0
	d.update7Seg()

	d.regMode = HDMI_MODE_DEFAULT
	d.regAddr = 0

	d.lastButtons = 0
	d.wasIn = nil

	d.irq.Lower()

	d.boardInvalidate = INVAL_ALL
	d.fbInvalidate = INVAL_ALL
}

// BoardMachine.Reset performs a hard reset of the whole board: device
// registers, video RAM and interrupt line.
func (m *BoardMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.device.Reset()
	m.bus.Reset()
	m.irq.Reset()
	m.frames = 0
}
