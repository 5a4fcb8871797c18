package main

import (
	"errors"
	"testing"
	"time"
)

func newTestCompositor(t *testing.T, name string) (*BoardMachine, *HeadlessVideoOutput, *VideoCompositor) {
	t.Helper()
	m := newTestMachine(t, name)
	out := NewHeadlessVideoOutput()
	if err := out.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m, out, NewVideoCompositor(m, out)
}

func TestCompositor_FramePublishesChangedViews(t *testing.T) {
	m, out, c := newTestCompositor(t, "riscv")

	if err := c.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if out.ViewUpdates(VIEW_BOARD) != 1 || out.ViewUpdates(VIEW_FRAMEBUFFER) != 1 {
		t.Fatalf("first frame updates board %d fb %d", out.ViewUpdates(VIEW_BOARD), out.ViewUpdates(VIEW_FRAMEBUFFER))
	}

	// Idle tick publishes nothing
	c.Frame()
	if out.GetFrameCount() != 2 {
		t.Fatalf("idle frame published: count %d", out.GetFrameCount())
	}

	m.Write32(m.Variant().Layout.PeriphBase+REG_LEDS, 0x1)
	c.Frame()
	if out.ViewUpdates(VIEW_BOARD) != 2 || out.ViewUpdates(VIEW_FRAMEBUFFER) != 1 {
		t.Fatalf("LED change updates board %d fb %d", out.ViewUpdates(VIEW_BOARD), out.ViewUpdates(VIEW_FRAMEBUFFER))
	}
	if c.Ticks() != 3 {
		t.Fatalf("Ticks() = %d", c.Ticks())
	}

	led0 := m.Variant().Element(m.Variant().LEDs.First)
	img := out.View(VIEW_BOARD)
	ir, ig, ib := led0.Images[STA_ON].RGBAt(6, 5)
	if px := img.RGBAAt(led0.X+6, led0.Y+5); px.R != ir || px.G != ig || px.B != ib {
		t.Fatalf("published LED0 pixel %+v, expected lit colour %02X%02X%02X", px, ir, ig, ib)
	}
}

func TestCompositor_NotStartedOutputSkipped(t *testing.T) {
	m := newTestMachine(t, "mips")
	out := NewHeadlessVideoOutput()
	c := NewVideoCompositor(m, out)
	if err := c.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if out.GetFrameCount() != 0 {
		t.Fatal("stopped output received frames")
	}
}

func TestCompositor_ErrorIsSticky(t *testing.T) {
	m, _, c := newTestCompositor(t, "riscv")
	m.SetBitsPerPixel(24)

	err := c.Frame()
	var verr *VideoError
	if !errors.As(err, &verr) {
		t.Fatalf("Frame at 24bpp: %v, expected *VideoError", err)
	}
	m.SetBitsPerPixel(32)
	if c.Frame() != err || c.Err() != err {
		t.Fatal("compositor recovered from a fatal error")
	}
}

func TestCompositor_LoopStopsOnError(t *testing.T) {
	m, _, c := newTestCompositor(t, "mips")
	m.SetBitsPerPixel(12)
	c.Start()
	select {
	case <-c.Stopped():
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop kept running after a fatal error")
	}
	if c.Err() == nil {
		t.Fatal("Err() is nil after the loop stopped")
	}
}

func TestCompositor_StartStop(t *testing.T) {
	_, out, c := newTestCompositor(t, "riscv")
	c.Start()
	deadline := time.After(2 * time.Second)
	for out.ViewUpdates(VIEW_BOARD) == 0 {
		select {
		case <-deadline:
			t.Fatal("refresh loop never published")
		case <-time.After(COMPOSITOR_REFRESH_INTERVAL):
		}
	}
	c.Stop()
	c.Stop()
	select {
	case <-c.Stopped():
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
	if c.Err() != nil {
		t.Fatalf("Err() = %v", c.Err())
	}
}
