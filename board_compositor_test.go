package main

import (
	"errors"
	"image"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func newBoardSurface(d *BoardDevice, bpp int) *MemorySurface {
	bg := d.variant.Background
	return NewMemorySurface(bg.Width, bg.Height, bpp)
}

// surfaceRGB reads back one 32bpp surface pixel.
func surfaceRGB(s *MemorySurface, x, y int) (r, g, b uint8) {
	p := s.Data()[y*s.Stride()+x*4:]
	return p[2], p[1], p[0]
}

// elementShows reports whether the surface shows img at the element
// position, pixel for pixel.
func elementShows(s *MemorySurface, e *GuiElement, img *BoardImage) bool {
	for y := range img.Height {
		for x := range img.Width {
			r, g, b := surfaceRGB(s, e.X+x, e.Y+y)
			ir, ig, ib := img.RGBAt(x, y)
			if r != ir || g != ig || b != ib {
				return false
			}
		}
	}
	return true
}

func rangeBounds(v *BoardVariant, r ElementRange) image.Rectangle {
	var box image.Rectangle
	for id := r.First; id <= r.Last; id++ {
		box = box.Union(v.Elements[id].Bounds())
	}
	return box
}

func TestRedrawBoard_FirstPassDrawsEverything(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := newBoardSurface(d, 32)

	box, err := d.RedrawBoard(s)
	if err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	bg := d.variant.Background
	if box != image.Rect(0, 0, bg.Width, bg.Height) {
		t.Fatalf("first pass box %v, expected whole background", box)
	}
	if d.BoardInvalid() != 0 {
		t.Fatalf("mask 0x%X after redraw, expected 0", d.BoardInvalid())
	}
	for i := range d.variant.Elements {
		e := &d.variant.Elements[i]
		if !elementShows(s, e, e.Images[STA_OFF]) {
			t.Fatalf("element %d (%s) not drawn off after reset", e.ID, e.Kind)
		}
	}
	if r, g, b := surfaceRGB(s, 0, 0); [3]uint8{r, g, b} != [3]uint8(bgPixel(bg, 0, 0)) {
		t.Fatalf("background pixel (0,0) = %02X%02X%02X", r, g, b)
	}
}

func bgPixel(img *BoardImage, x, y int) [3]uint8 {
	r, g, b := img.RGBAt(x, y)
	return [3]uint8{r, g, b}
}

func TestRedrawBoard_NothingChanged(t *testing.T) {
	d, _ := newTestBoard(t, "mips")
	s := newBoardSurface(d, 32)
	d.RedrawBoard(s)
	updates := s.Updates()

	box, err := d.RedrawBoard(s)
	if err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	if !box.Empty() {
		t.Fatalf("idle pass reported %v", box)
	}
	if s.Updates() != updates {
		t.Fatal("idle pass notified the host")
	}
}

func TestRedrawBoard_LEDsEndToEnd(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := newBoardSurface(d, 32)
	if _, err := d.RedrawBoard(s); err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	s.TakeUpdate()

	d.HandlePeriphWrite(REG_LEDS, 0xF, 4)
	if d.BoardInvalid() != INVAL_LEDS {
		t.Fatalf("mask 0x%X after LED write, expected INVAL_LEDS", d.BoardInvalid())
	}

	box, err := d.RedrawBoard(s)
	if err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	want := rangeBounds(d.variant, d.variant.LEDs)
	if box != want || box != image.Rect(3, 5, 63, 15) {
		t.Fatalf("LED redraw box %v, expected LED row %v", box, want)
	}
	if got := s.TakeUpdate(); got != box {
		t.Fatalf("host saw %v, device reported %v", got, box)
	}
	if d.BoardInvalid() != 0 {
		t.Fatalf("mask 0x%X after redraw", d.BoardInvalid())
	}
	for id := d.variant.LEDs.First; id <= d.variant.LEDs.Last; id++ {
		e := d.variant.Element(id)
		if !elementShows(s, e, e.Images[STA_ON]) {
			t.Fatalf("LED element %d not drawn lit", id)
		}
	}
}

func TestRedrawBoard_BoxIsUnionOfCategories(t *testing.T) {
	d, _ := newTestBoard(t, "mips")
	s := newBoardSurface(d, 32)
	d.RedrawBoard(s)

	d.HandlePeriphWrite(REG_7SEGS, 0x8888, 4)
	d.ToggleSwitch(0)
	box, _ := d.RedrawBoard(s)

	want := rangeBounds(d.variant, d.variant.Segments).Union(rangeBounds(d.variant, d.variant.Switches))
	if box != want {
		t.Fatalf("box %v, expected %v", box, want)
	}
	if !elementShows(s, d.SwitchElement(0), d.SwitchElement(0).Images[STA_ON]) {
		t.Fatal("SWITCH0 not drawn on")
	}
	for seg := range NUM_SEG {
		e := d.variant.Element(d.variant.Segments.First + seg)
		img := e.Images[STA_ON]
		if seg == SEG_DP {
			img = e.Images[STA_OFF]
		}
		if !elementShows(s, e, img) {
			t.Fatalf("digit 0 segment %d wrong", seg)
		}
	}
}

func TestRedrawBoard_PersistenceDecay(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := newBoardSurface(d, 32)
	d.RedrawBoard(s)
	d.HandlePeriphWrite(REG_PUSHBTN_CTL, PUSHBTN_CTL_INT, 4)

	btn := d.ButtonElement(0)
	btnRow := rangeBounds(d.variant, d.variant.PushButtons)

	d.PressButton(0, 1)
	d.HandlePeriphRead(REG_SWITCHES, 4) // immediate acknowledge

	var boxes []image.Rectangle
	var lit []bool
	for range PUSHBTN_PERSISTENCE + 1 {
		box, err := d.RedrawBoard(s)
		if err != nil {
			t.Fatalf("RedrawBoard: %v", err)
		}
		boxes = append(boxes, box)
		lit = append(lit, elementShows(s, btn, btn.Images[STA_ON]))
	}

	wantBoxes := []image.Rectangle{btnRow, {}, btnRow, {}}
	wantLit := []bool{true, true, false, false}
	for i := range wantBoxes {
		if boxes[i] != wantBoxes[i] || lit[i] != wantLit[i] {
			t.Fatalf("tick %d: box %v lit %v, expected box %v lit %v\n%s", i, boxes[i], lit[i], wantBoxes[i], wantLit[i], spew.Sdump(boxes, lit))
		}
	}
	if d.Persistence(btn.ID) != 0 {
		t.Fatalf("persistence %d after decay", d.Persistence(btn.ID))
	}
}

func TestRedrawBoard_ResizeForcesFullRedraw(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := NewMemorySurface(10, 10, 32)
	d.RedrawBoard(s)
	d.HandlePeriphWrite(REG_LEDS, 1, 4)

	s.Resize(20, 20)
	box, err := d.RedrawBoard(s)
	if err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	bg := d.variant.Background
	if s.Width() != bg.Width || s.Height() != bg.Height {
		t.Fatalf("surface %dx%d, expected %dx%d", s.Width(), s.Height(), bg.Width, bg.Height)
	}
	if box != image.Rect(0, 0, bg.Width, bg.Height) {
		t.Fatalf("resize box %v", box)
	}
}

func TestRedrawBoard_UnsupportedDepth(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := newBoardSurface(d, 24)
	_, err := d.RedrawBoard(s)
	var verr *VideoError
	if !errors.As(err, &verr) {
		t.Fatalf("24bpp surface: err %v, expected *VideoError", err)
	}
	if _, err := d.RedrawFramebuffer(NewMemorySurface(1, 1, 12)); !errors.As(err, &verr) {
		t.Fatalf("12bpp framebuffer surface: err %v, expected *VideoError", err)
	}
}

func TestRedrawBoard_HostDepths(t *testing.T) {
	for _, bpp := range []int{8, 15, 16, 32} {
		d, _ := newTestBoard(t, "mips")
		s := newBoardSurface(d, bpp)
		if _, err := d.RedrawBoard(s); err != nil {
			t.Fatalf("%dbpp: %v", bpp, err)
		}
		conv, err := newPixelConverter(bpp)
		if err != nil {
			t.Fatalf("newPixelConverter(%d): %v", bpp, err)
		}
		bg := d.variant.Background
		want := make([]byte, conv.bytesPerPixel)
		r, g, b := bg.RGBAt(0, 0)
		conv.put(want, 0, r, g, b)
		if got := s.Data()[:conv.bytesPerPixel]; string(got) != string(want) {
			t.Fatalf("%dbpp pixel (0,0) = % X, expected % X", bpp, got, want)
		}
	}
}

func TestRedrawBoard_FormatChange(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := newBoardSurface(d, 32)
	d.RedrawBoard(s)

	s.SetBitsPerPixel(16)
	d.InvalidateFormat()
	box, err := d.RedrawBoard(s)
	if err != nil {
		t.Fatalf("RedrawBoard: %v", err)
	}
	if d.boardConv.bpp != 16 {
		t.Fatalf("converter still %dbpp", d.boardConv.bpp)
	}
	if box.Empty() {
		t.Fatal("format change did not redraw")
	}
}

func TestRedrawFramebuffer_XRGB32(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := NewMemorySurface(1, 1, 32)

	box, err := d.RedrawFramebuffer(s)
	if err != nil {
		t.Fatalf("RedrawFramebuffer: %v", err)
	}
	if box != image.Rect(0, 0, 1280, 720) {
		t.Fatalf("first pass box %v", box)
	}

	d.VideoMemory().Write(0, 0x00FF0000, 4)
	d.VideoMemory().Write((719*1280+1279)*4, 0x000000FF, 4)
	box, _ = d.RedrawFramebuffer(s)
	if box != image.Rect(0, 0, 1280, 720) {
		t.Fatalf("dirty pass box %v", box)
	}
	if got := s.Data()[:4]; string(got) != "\x00\x00\xFF\x00" {
		t.Fatalf("pixel (0,0) bytes % X", got)
	}
	img := s.ToRGBA()
	if c := img.RGBAAt(0, 0); c.R != 0xFF || c.G != 0 || c.B != 0 {
		t.Fatalf("pixel (0,0) = %+v, expected red", c)
	}
	if c := img.RGBAAt(1279, 719); c.B != 0xFF || c.R != 0 {
		t.Fatalf("pixel (1279,719) = %+v, expected blue", c)
	}

	if box, _ := d.RedrawFramebuffer(s); !box.Empty() {
		t.Fatalf("clean pass box %v", box)
	}
}

func TestRedrawFramebuffer_WritesOutsideModeIgnored(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := NewMemorySurface(1280, 720, 32)
	d.RedrawFramebuffer(s)

	d.VideoMemory().Write(1280*720*4+8, 0xFFFFFF, 4)
	if box, _ := d.RedrawFramebuffer(s); !box.Empty() {
		t.Fatalf("write past the 720p window redrew %v", box)
	}
}

func TestRedrawFramebuffer_ModeChangeResizes(t *testing.T) {
	d, _ := newTestBoard(t, "riscv")
	s := NewMemorySurface(1280, 720, 32)
	d.RedrawFramebuffer(s)

	d.HandleCtrlWrite(REG_MODE, 19, 4)
	box, err := d.RedrawFramebuffer(s)
	if err != nil {
		t.Fatalf("RedrawFramebuffer: %v", err)
	}
	if s.Width() != 1920 || s.Height() != 1080 || box != image.Rect(0, 0, 1920, 1080) {
		t.Fatalf("surface %dx%d box %v after switching to 1080p", s.Width(), s.Height(), box)
	}
}

func TestRedrawFramebuffer_Mono(t *testing.T) {
	d, _ := newTestBoard(t, "mips")
	s := NewMemorySurface(MONO_WIDTH, MONO_HEIGHT, 16)
	d.RedrawFramebuffer(s)

	d.VideoMemory().Write(0, 0x80, 1)
	d.VideoMemory().Write(MONO_WIDTH/8, 0x01, 1) // (7,1)
	box, err := d.RedrawFramebuffer(s)
	if err != nil {
		t.Fatalf("RedrawFramebuffer: %v", err)
	}
	if box != image.Rect(0, 0, MONO_WIDTH, MONO_HEIGHT) {
		t.Fatalf("box %v", box)
	}
	img := s.ToRGBA()
	checks := []struct {
		x, y  int
		white bool
	}{
		{0, 0, true},
		{1, 0, false},
		{7, 1, true},
		{6, 1, false},
		{639, 479, false},
	}
	for _, c := range checks {
		px := img.RGBAAt(c.x, c.y)
		if (px.R == 0xFF && px.G == 0xFF && px.B == 0xFF) != c.white {
			t.Fatalf("pixel (%d,%d) = %+v, white=%v expected", c.x, c.y, px, c.white)
		}
	}
}

func TestInvalidateEntryPoints(t *testing.T) {
	d, _ := newTestBoard(t, "mips")
	bs := newBoardSurface(d, 32)
	fs := NewMemorySurface(MONO_WIDTH, MONO_HEIGHT, 32)
	d.RedrawBoard(bs)
	d.RedrawFramebuffer(fs)

	d.InvalidateBoard()
	if box, _ := d.RedrawBoard(bs); box != image.Rect(0, 0, bs.Width(), bs.Height()) {
		t.Fatalf("InvalidateBoard redraw %v", box)
	}
	if box, _ := d.RedrawFramebuffer(fs); !box.Empty() {
		t.Fatal("InvalidateBoard touched the framebuffer")
	}
	d.InvalidateFramebuffer()
	if box, _ := d.RedrawFramebuffer(fs); box.Empty() {
		t.Fatal("InvalidateFramebuffer did not redraw")
	}
}

func BenchmarkRedrawBoard_LEDs(b *testing.B) {
	d, _ := newTestBoard(b, "mips")
	s := newBoardSurface(d, 32)
	d.RedrawBoard(s)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.HandlePeriphWrite(REG_LEDS, uint64(i), 4)
		d.RedrawBoard(s)
	}
}

func BenchmarkRedrawFramebuffer_720p(b *testing.B) {
	d, _ := newTestBoard(b, "riscv")
	s := NewMemorySurface(1280, 720, 32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.VideoMemory().Write(0, uint64(i), 4)
		d.RedrawFramebuffer(s)
	}
}
