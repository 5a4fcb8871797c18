//go:build !headless

package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenKeyScancode(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		code int
		ok   bool
	}{
		{ebiten.KeyArrowLeft, KBD_CODE_LEFT, true},
		{ebiten.KeyArrowRight, KBD_CODE_RIGHT, true},
		{ebiten.KeyArrowUp, KBD_CODE_HIGH, true},
		{ebiten.KeyArrowDown, KBD_CODE_DOWN, true},
		{ebiten.KeySpace, KBD_CODE_SPACE, true},
		{ebiten.KeyA, 0, false},
		{ebiten.KeyEnter, 0, false},
	}
	for _, tc := range tests {
		code, ok := ebitenKeyScancode(tc.key)
		if code != tc.code || ok != tc.ok {
			t.Fatalf("ebitenKeyScancode(%v) = %#x,%v, expected %#x,%v", tc.key, code, ok, tc.code, tc.ok)
		}
	}
}

func TestEbitenKeyScancode_DrivesButtons(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	for _, key := range []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyArrowLeft, ebiten.KeyArrowUp, ebiten.KeyArrowDown} {
		code, _ := ebitenKeyScancode(key)
		d.KeyEvent(code)
	}
	if got := d.Buttons(); got != 0xF {
		t.Fatalf("buttons 0x%X after all arrows, expected 0xF", got)
	}
}
