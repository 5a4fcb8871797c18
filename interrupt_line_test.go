package main

import "testing"

func TestInterruptLine_EdgesOnly(t *testing.T) {
	var seen []bool
	l := NewInterruptLine(func(level bool) { seen = append(seen, level) })

	l.Lower()
	l.Raise()
	l.Raise()
	l.Lower()
	l.Lower()
	l.Raise()

	if len(seen) != 3 || !seen[0] || seen[1] || !seen[2] {
		t.Fatalf("transitions %v, expected [true false true]", seen)
	}
	if l.Raises() != 2 || l.Lowers() != 1 {
		t.Fatalf("raises %d lowers %d", l.Raises(), l.Lowers())
	}
	if !l.Level() {
		t.Fatal("line should be high")
	}
}

func TestInterruptLine_ResetSilent(t *testing.T) {
	calls := 0
	l := NewInterruptLine(func(bool) { calls++ })
	l.Raise()
	l.Reset()
	if l.Level() || l.Raises() != 0 || l.Lowers() != 0 {
		t.Fatalf("reset left level %v raises %d lowers %d", l.Level(), l.Raises(), l.Lowers())
	}
	if calls != 1 {
		t.Fatalf("reset notified: %d callbacks", calls)
	}
}
