// interrupt_line.go - Level-triggered interrupt output

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import "sync/atomic"

// IRQLine is the single interrupt output of a device. Raising a raised line
// or lowering a low one is harmless.
type IRQLine interface {
	Raise()
	Lower()
}

// InterruptLine records the line level and the number of edges. An optional
// callback sees every level transition, e.g. to forward to a CPU core.
type InterruptLine struct {
	level  atomic.Bool
	raises atomic.Uint64
	lowers atomic.Uint64

	onChange func(level bool)
}

func NewInterruptLine(onChange func(level bool)) *InterruptLine {
	return &InterruptLine{onChange: onChange}
}

func (l *InterruptLine) Raise() {
	if l.level.CompareAndSwap(false, true) {
		l.raises.Add(1)
		if l.onChange != nil {
			l.onChange(true)
		}
	}
}

func (l *InterruptLine) Lower() {
	if l.level.CompareAndSwap(true, false) {
		l.lowers.Add(1)
		if l.onChange != nil {
			l.onChange(false)
		}
	}
}

// Level reports whether the line is asserted.
func (l *InterruptLine) Level() bool { return l.level.Load() }

// Raises returns the number of rising edges seen so far.
func (l *InterruptLine) Raises() uint64 { return l.raises.Load() }

// Lowers returns the number of falling edges seen so far.
func (l *InterruptLine) Lowers() uint64 { return l.lowers.Load() }

// Reset drops the line without notifying and clears the edge counters.
func (l *InterruptLine) Reset() {
	l.level.Store(false)
	l.raises.Store(0)
	l.lowers.Store(0)
}
