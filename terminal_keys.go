// terminal_keys.go - Raw terminal byte stream to board scancodes

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
)

// Terminals report key presses only, so the host synthesises the release
// code after TERMINAL_KEY_HOLD_MS.
const (
	TERMINAL_KEY_HOLD_MS = 120

	termKeyCtrlC = 0x03
	termKeyEsc   = 0x1B
)

type termDecodeState int

const (
	termStateGround termDecodeState = iota
	termStateEsc
	termStateCSI
)

// terminalKeyDecoder turns raw stdin bytes into PC set 1 make codes:
// arrow keys (ESC [ A-D) and space. Ctrl-C and 'q' request quit.
type terminalKeyDecoder struct {
	state termDecodeState
}

// Feed consumes one byte. It returns the make code of a completed key, if
// any, and whether the user asked to quit.
func (d *terminalKeyDecoder) Feed(b byte) (code int, ok bool, quit bool) {
	switch d.state {
	case termStateEsc:
		if b == '[' || b == 'O' {
			d.state = termStateCSI
			return 0, false, false
		}
		d.state = termStateGround
		return d.ground(b)
	case termStateCSI:
		d.state = termStateGround
		switch b {
		case 'A':
			return KBD_CODE_HIGH, true, false
		case 'B':
			return KBD_CODE_DOWN, true, false
		case 'C':
			return KBD_CODE_RIGHT, true, false
		case 'D':
			return KBD_CODE_LEFT, true, false
		}
		return 0, false, false
	}
	return d.ground(b)
}

// keyReleaser sends the make code at once and the release code after hold.
// A repeated press while held extends the hold instead of pressing again.
type keyReleaser struct {
	mu     sync.Mutex
	input  BoardInputHandler
	hold   time.Duration
	timers map[int]*time.Timer
}

func newKeyReleaser(input BoardInputHandler, hold time.Duration) *keyReleaser {
	return &keyReleaser{
		input:  input,
		hold:   hold,
		timers: make(map[int]*time.Timer),
	}
}

func (r *keyReleaser) press(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, held := r.timers[code]; held && t.Stop() {
		t.Reset(r.hold)
		return
	}
	r.input.KeyEvent(code)
	r.timers[code] = time.AfterFunc(r.hold, func() { r.release(code) })
}

func (r *keyReleaser) release(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.timers, code)
	r.input.KeyEvent(code + KBD_RELEASE_DIFF)
}

// flush releases every held key immediately.
func (r *keyReleaser) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, t := range r.timers {
		if t.Stop() {
			r.input.KeyEvent(code + KBD_RELEASE_DIFF)
		}
		delete(r.timers, code)
	}
}

func (d *terminalKeyDecoder) ground(b byte) (int, bool, bool) {
	switch b {
	case termKeyEsc:
		d.state = termStateEsc
	case ' ':
		return KBD_CODE_SPACE, true, false
	case termKeyCtrlC, 'q', 'Q':
		return 0, false, true
	}
	return 0, false, false
}
