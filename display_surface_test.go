package main

import (
	"errors"
	"image"
	"testing"
)

func TestPixelConverter_Packing(t *testing.T) {
	tests := []struct {
		bpp     int
		r, g, b uint8
		want    []byte
	}{
		{32, 0x12, 0x34, 0x56, []byte{0x56, 0x34, 0x12, 0x00}},
		{16, 0xFF, 0x00, 0x00, []byte{0x00, 0xF8}},
		{16, 0x00, 0xFF, 0x00, []byte{0xE0, 0x07}},
		{16, 0x00, 0x00, 0xFF, []byte{0x1F, 0x00}},
		{15, 0xFF, 0x00, 0x00, []byte{0x00, 0x7C}},
		{15, 0x00, 0xFF, 0x00, []byte{0xE0, 0x03}},
		{15, 0xFF, 0xFF, 0xFF, []byte{0xFF, 0x7F}},
		{8, 0xFF, 0x00, 0x00, []byte{0xE0}},
		{8, 0x00, 0xFF, 0x00, []byte{0x1C}},
		{8, 0x00, 0x00, 0xFF, []byte{0x03}},
	}
	for _, tc := range tests {
		conv, err := newPixelConverter(tc.bpp)
		if err != nil {
			t.Fatalf("newPixelConverter(%d): %v", tc.bpp, err)
		}
		buf := make([]byte, conv.bytesPerPixel)
		conv.put(buf, 0, tc.r, tc.g, tc.b)
		if string(buf) != string(tc.want) {
			t.Fatalf("%dbpp rgb(%02X,%02X,%02X) = % X, expected % X", tc.bpp, tc.r, tc.g, tc.b, buf, tc.want)
		}
	}
}

func TestPixelConverter_UnknownDepth(t *testing.T) {
	for _, bpp := range []int{0, 1, 4, 12, 24, 64} {
		_, err := newPixelConverter(bpp)
		var verr *VideoError
		if !errors.As(err, &verr) {
			t.Fatalf("%dbpp: err %v, expected *VideoError", bpp, err)
		}
	}
}

func TestUnpackPixel_FullScale(t *testing.T) {
	for _, bpp := range []int{8, 15, 16, 32} {
		conv, _ := newPixelConverter(bpp)
		buf := make([]byte, conv.bytesPerPixel)
		conv.put(buf, 0, 0xFF, 0xFF, 0xFF)
		if r, g, b := unpackPixel(bpp, buf); r != 0xFF || g != 0xFF || b != 0xFF {
			t.Fatalf("%dbpp white unpacks to %02X%02X%02X", bpp, r, g, b)
		}
		conv.put(buf, 0, 0, 0, 0)
		if r, g, b := unpackPixel(bpp, buf); r != 0 || g != 0 || b != 0 {
			t.Fatalf("%dbpp black unpacks to %02X%02X%02X", bpp, r, g, b)
		}
	}
}

func TestMemorySurface_Geometry(t *testing.T) {
	s := NewMemorySurface(10, 4, 15)
	if s.Stride() != 20 || len(s.Data()) != 80 {
		t.Fatalf("15bpp 10x4: stride %d len %d", s.Stride(), len(s.Data()))
	}
	s.SetBitsPerPixel(32)
	if s.Stride() != 40 || len(s.Data()) != 160 {
		t.Fatalf("32bpp 10x4: stride %d len %d", s.Stride(), len(s.Data()))
	}
	s.Resize(3, 3)
	if s.Width() != 3 || s.Height() != 3 || len(s.Data()) != 36 {
		t.Fatalf("resize: %dx%d len %d", s.Width(), s.Height(), len(s.Data()))
	}
}

func TestMemorySurface_UpdateUnion(t *testing.T) {
	s := NewMemorySurface(100, 100, 32)
	s.Update(image.Rect(0, 0, 10, 10))
	s.Update(image.Rect(50, 50, 60, 70))
	if got := s.TakeUpdate(); got != image.Rect(0, 0, 60, 70) {
		t.Fatalf("union %v", got)
	}
	if got := s.TakeUpdate(); !got.Empty() {
		t.Fatalf("TakeUpdate did not clear: %v", got)
	}
	if s.Updates() != 2 {
		t.Fatalf("Updates() = %d", s.Updates())
	}
}

func TestMemorySurface_CopyRGBA(t *testing.T) {
	s := NewMemorySurface(2, 1, 32)
	conv, _ := newPixelConverter(32)
	conv.put(s.Data(), 4, 0x11, 0x22, 0x33)
	img := s.ToRGBA()
	if c := img.RGBAAt(1, 0); c.R != 0x11 || c.G != 0x22 || c.B != 0x33 || c.A != 0xFF {
		t.Fatalf("pixel (1,0) = %+v", c)
	}
	if c := img.RGBAAt(0, 0); c.R != 0 || c.A != 0xFF {
		t.Fatalf("pixel (0,0) = %+v", c)
	}
}
