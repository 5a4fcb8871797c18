// board_input.go - Host mouse and keyboard translation

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import "fmt"

// MouseEvent takes an absolute pointer position in 0..MOUSE_ABS_MAX on each
// axis and the host button mask. Only left-button edges act on the board.
func (d *BoardDevice) MouseEvent(absX, absY, absZ int, buttons uint32) {
	bg := d.variant.Background
	x := absX * bg.Width >> MOUSE_ABS_SHIFT
	y := absY * bg.Height >> MOUSE_ABS_SHIFT

	edge := buttons ^ d.lastButtons
	d.lastButtons = buttons
	if edge&MOUSE_EVENT_LBUTTON == 0 {
		return
	}

	level := uint8(buttons & MOUSE_EVENT_LBUTTON)
	var newWasIn *GuiElement
	for i := range d.variant.Elements {
		e := &d.variant.Elements[i]
		if !e.Clickable {
			continue
		}
		if e.Contains(x, y) {
			d.clickEvent(e, level)
			newWasIn = e
		} else if e == d.wasIn {
			// Released outside the element it was pressed on
			d.clickEvent(e, 0)
		}
	}
	d.wasIn = newWasIn
}

func (d *BoardDevice) clickEvent(e *GuiElement, level uint8) {
	switch e.Kind {
	case ElementSwitch:
		if level != 0 {
			d.ToggleSwitch(e.ID - d.variant.Switches.First)
		}
	case ElementPushButton:
		d.PressButton(e.ID-d.variant.PushButtons.First, level)
	default:
		panic(fmt.Sprintf("click on element %d of kind %s", e.ID, e.Kind))
	}
}

// KeyEvent takes a PC set 1 scancode. Up and space both drive PUSHBTN2.
func (d *BoardDevice) KeyEvent(code int) {
	switch code {
	case KBD_CODE_LEFT:
		d.PressButton(1, 1)
	case KBD_CODE_LEFT_RELEASE:
		d.PressButton(1, 0)
	case KBD_CODE_RIGHT:
		d.PressButton(0, 1)
	case KBD_CODE_RIGHT_RELEASE:
		d.PressButton(0, 0)
	case KBD_CODE_HIGH, KBD_CODE_SPACE:
		d.PressButton(2, 1)
	case KBD_CODE_HIGH_RELEASE, KBD_CODE_SPACE_RELEASE:
		d.PressButton(2, 0)
	case KBD_CODE_DOWN:
		d.PressButton(3, 1)
	case KBD_CODE_DOWN_RELEASE:
		d.PressButton(3, 0)
	}
}

// PressButton drives push-button n (0 = PUSHBTN0) to level. In poll mode the
// state follows the level. In interrupt mode only a press acts: it latches
// the button, starts persistence and raises the IRQ; the latch is cleared by
// reading REG_SWITCHES.
func (d *BoardDevice) PressButton(n int, level uint8) {
	btns := d.variant.PushButtons
	if n < 0 || n >= btns.Len() {
		return
	}
	id := btns.First + n
	if level != 0 {
		level = 1
	}

	if d.pushbtnMode == PUSHBTN_CTL_INT {
		if level != 0 {
			d.irq.Raise()
			d.persistence[id] = PUSHBTN_PERSISTENCE
			d.periphState[id] = 1
		}
	} else {
		d.periphState[id] = level
	}
	d.boardInvalidate |= INVAL_PUSHBTN
}

// ToggleSwitch flips switch n (0 = SWITCH0).
func (d *BoardDevice) ToggleSwitch(n int) {
	sws := d.variant.Switches
	if n < 0 || n >= sws.Len() {
		return
	}
	d.periphState[sws.First+n] ^= 1
	d.boardInvalidate |= INVAL_SWITCHES
}

// SetSwitch drives switch n (0 = SWITCH0) to level.
func (d *BoardDevice) SetSwitch(n int, level uint8) {
	sws := d.variant.Switches
	if n < 0 || n >= sws.Len() {
		return
	}
	if level != 0 {
		level = 1
	}
	d.periphState[sws.First+n] = level
	d.boardInvalidate |= INVAL_SWITCHES
}

// ButtonElement returns the catalog element of push-button n.
func (d *BoardDevice) ButtonElement(n int) *GuiElement {
	return d.variant.Element(d.variant.PushButtons.First + n)
}

// SwitchElement returns the catalog element of switch n.
func (d *BoardDevice) SwitchElement(n int) *GuiElement {
	return d.variant.Element(d.variant.Switches.First + n)
}

// absPointerPosition converts a board pixel position into the absolute
// 0..MOUSE_ABS_MAX pointer range, aiming at the pixel centre. Positions
// outside the w x h view are clamped to its edge.
func absPointerPosition(x, y, w, h int) (absX, absY int) {
	toAbs := func(p, size int) int {
		if size <= 0 {
			return 0
		}
		p = max(0, min(p, size-1))
		return ((2*p + 1) << MOUSE_ABS_SHIFT) / (2 * size)
	}
	return toAbs(x, w), toAbs(y, h)
}
