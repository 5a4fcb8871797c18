// debug_ioview.go - I/O register view for the CEP board

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strings"
)

// IORegisterDesc describes one memory-mapped register.
type IORegisterDesc struct {
	Name   string
	Addr   uint32
	Width  int    // bytes
	Access string // "RO", "WO", "RW"
}

// IODeviceDesc groups registers by device.
type IODeviceDesc struct {
	Name      string
	Bank      string // "periph" or "ctrl"
	Registers []IORegisterDesc
}

// boardIODevices lists the register banks of a variant at its bus
// addresses. REG_LEDS and the seven-segment registers are write-only on the
// bus; the view shows the latched values.
func boardIODevices(v *BoardVariant) map[string]*IODeviceDesc {
	p := v.Layout.PeriphBase
	periph := &IODeviceDesc{
		Name: "Peripherals",
		Bank: "periph",
		Registers: []IORegisterDesc{
			{"LEDS", p + REG_LEDS, 4, "WO"},
			{"SWITCHES", p + REG_SWITCHES, 4, "RO"},
			{"PUSHBTN_CTL", p + REG_PUSHBTN_CTL, 4, "WO"},
		},
	}
	if v.HasSevenSegs() {
		periph.Registers = append(periph.Registers,
			IORegisterDesc{"7SEGS", p + REG_7SEGS, 4, "WO"},
			IORegisterDesc{"7SEGS_CTL", p + REG_7SEGS_CTL, 4, "WO"},
		)
	}
	devices := map[string]*IODeviceDesc{"periph": periph}

	if v.HasCtrlBank {
		c := v.Layout.CtrlBase
		devices["ctrl"] = &IODeviceDesc{
			Name: "Video Control",
			Bank: "ctrl",
			Registers: []IORegisterDesc{
				{"MODE", c + REG_MODE, 4, "RW"},
				{"ADDR", c + REG_ADDR, 4, "RW"},
			},
		}
	}
	return devices
}

// listIODevices returns the device names of a variant in display order.
func listIODevices(v *BoardVariant) []string {
	if v.HasCtrlBank {
		return []string{"periph", "ctrl"}
	}
	return []string{"periph"}
}

// formatIOView renders the registers of one device. Values come from the
// side-effect free peek path, so viewing never acknowledges a button.
func formatIOView(d *BoardDevice, deviceName string) []string {
	v := d.Variant()
	dev, ok := boardIODevices(v)[deviceName]
	if !ok {
		return []string{fmt.Sprintf("Unknown device: %s", deviceName)}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("--- %s Registers ---", dev.Name))

	for _, reg := range dev.Registers {
		var val uint32
		switch dev.Bank {
		case "ctrl":
			val = d.PeekCtrl(reg.Addr - v.Layout.CtrlBase)
		default:
			val = d.PeekPeriph(reg.Addr - v.Layout.PeriphBase)
		}
		lines = append(lines, fmt.Sprintf("  %-16s ($%08X) = $%08X [%d] %s", reg.Name, reg.Addr, val, val, reg.Access))
	}
	return lines
}

// formatBoardView renders every register bank followed by the element
// states, as printed by -regs and the Lua regs() call.
func formatBoardView(d *BoardDevice) string {
	var sb strings.Builder
	for _, name := range listIODevices(d.Variant()) {
		for _, line := range formatIOView(d, name) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	v := d.Variant()
	sb.WriteString("--- Board State ---\n")
	fmt.Fprintf(&sb, "  %-16s %s\n", "LEDS", bitString(d.LEDs(), v.LEDs.Len()))
	fmt.Fprintf(&sb, "  %-16s %s\n", "SWITCHES", bitString(d.Switches(), v.Switches.Len()))
	fmt.Fprintf(&sb, "  %-16s %s\n", "PUSHBTNS", bitString(d.Buttons(), v.PushButtons.Len()))
	if v.HasSevenSegs() {
		digits := v.Segments.Len() / NUM_SEG
		segs := make([]string, 0, digits)
		for digit := digits - 1; digit >= 0; digit-- {
			segs = append(segs, fmt.Sprintf("%02X", d.Segments(digit)))
		}
		fmt.Fprintf(&sb, "  %-16s %s\n", "7SEG DIGITS", strings.Join(segs, " "))
	}
	if v.HasCtrlBank {
		w, h := d.FramebufferSize()
		fmt.Fprintf(&sb, "  %-16s %dx%d\n", "FRAMEBUFFER", w, h)
	}
	return sb.String()
}

// bitString prints the low n bits of v, most significant first.
func bitString(v uint32, n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%0*b", n, v&(1<<uint(n)-1))
}
