// display_surface.go - Host display surfaces and pixel format conversion

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image"
)

// DisplaySurface is a host-owned pixel buffer. The device only borrows it
// for the duration of a redraw call.
type DisplaySurface interface {
	Width() int
	Height() int
	BitsPerPixel() int
	Stride() int
	Data() []byte
	// Resize reallocates the surface; contents are undefined afterwards.
	Resize(w, h int)
	// Update tells the host which rectangle changed.
	Update(r image.Rectangle)
}

// pixelConverter packs 8-bit RGB into the host pixel format.
type pixelConverter struct {
	bpp           int
	bytesPerPixel int
	pack          func(r, g, b uint8) uint32
}

func newPixelConverter(bpp int) (*pixelConverter, error) {
	c := &pixelConverter{bpp: bpp}
	switch bpp {
	case 8:
		c.bytesPerPixel = 1
		c.pack = func(r, g, b uint8) uint32 {
			return uint32(r>>5)<<5 | uint32(g>>5)<<2 | uint32(b>>6)
		}
	case 15:
		c.bytesPerPixel = 2
		c.pack = func(r, g, b uint8) uint32 {
			return uint32(r>>3)<<10 | uint32(g>>3)<<5 | uint32(b>>3)
		}
	case 16:
		c.bytesPerPixel = 2
		c.pack = func(r, g, b uint8) uint32 {
			return uint32(r>>3)<<11 | uint32(g>>2)<<5 | uint32(b>>3)
		}
	case 32:
		c.bytesPerPixel = 4
		c.pack = func(r, g, b uint8) uint32 {
			return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		}
	default:
		return nil, &VideoError{
			Operation: "pixel format negotiation",
			Details:   fmt.Sprintf("unsupported host depth %d bpp", bpp),
		}
	}
	return c, nil
}

// put writes one pixel little-endian at byte offset off.
func (c *pixelConverter) put(buf []byte, off int, r, g, b uint8) {
	p := c.pack(r, g, b)
	switch c.bytesPerPixel {
	case 4:
		buf[off+3] = byte(p >> 24)
		buf[off+2] = byte(p >> 16)
		fallthrough
	case 2:
		buf[off+1] = byte(p >> 8)
		fallthrough
	default:
		buf[off] = byte(p)
	}
}

// MemorySurface is a DisplaySurface backed by a byte slice. The viewer and
// tests use it as the host side of both board views.
type MemorySurface struct {
	width  int
	height int
	bpp    int
	data   []byte

	updated image.Rectangle
	updates int
}

func NewMemorySurface(w, h, bpp int) *MemorySurface {
	s := &MemorySurface{bpp: bpp}
	s.Resize(w, h)
	return s
}

func (s *MemorySurface) Width() int        { return s.width }
func (s *MemorySurface) Height() int       { return s.height }
func (s *MemorySurface) BitsPerPixel() int { return s.bpp }
func (s *MemorySurface) Data() []byte      { return s.data }

func (s *MemorySurface) Stride() int {
	return s.width * bytesPerPixel(s.bpp)
}

func (s *MemorySurface) Resize(w, h int) {
	s.width, s.height = w, h
	s.data = make([]byte, w*h*bytesPerPixel(s.bpp))
	s.updated = image.Rectangle{}
}

// SetBitsPerPixel changes the host format. The device must be told through
// InvalidateFormat.
func (s *MemorySurface) SetBitsPerPixel(bpp int) {
	s.bpp = bpp
	s.Resize(s.width, s.height)
}

func (s *MemorySurface) Update(r image.Rectangle) {
	s.updated = s.updated.Union(r)
	s.updates++
}

// TakeUpdate returns the union of the rectangles reported since the last
// call and clears it.
func (s *MemorySurface) TakeUpdate() image.Rectangle {
	r := s.updated
	s.updated = image.Rectangle{}
	return r
}

// Updates counts every Update call.
func (s *MemorySurface) Updates() int { return s.updates }

// ToRGBA unpacks the surface into an RGBA image for display or export.
func (s *MemorySurface) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	s.CopyRGBA(img)
	return img
}

// CopyRGBA unpacks into dst, which must have the surface size.
func (s *MemorySurface) CopyRGBA(dst *image.RGBA) {
	bpp := bytesPerPixel(s.bpp)
	stride := s.Stride()
	for y := range s.height {
		row := s.data[y*stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := range s.width {
			r, g, b := unpackPixel(s.bpp, row[x*bpp:])
			o := x * 4
			out[o] = r
			out[o+1] = g
			out[o+2] = b
			out[o+3] = 0xFF
		}
	}
}

func bytesPerPixel(bpp int) int {
	return (bpp + 7) / 8
}

// unpackPixel inverts pixelConverter.pack, expanding reduced channels to
// 8 bits by bit replication.
func unpackPixel(bpp int, p []byte) (r, g, b uint8) {
	switch bpp {
	case 8:
		v := p[0]
		r = v >> 5 << 5
		r |= r>>3 | r>>6
		g = (v >> 2 & 7) << 5
		g |= g>>3 | g>>6
		b = (v & 3) << 6
		b |= b>>2 | b>>4 | b>>6
	case 15:
		v := uint16(p[0]) | uint16(p[1])<<8
		r = uint8(v>>10&0x1F) << 3
		g = uint8(v>>5&0x1F) << 3
		b = uint8(v&0x1F) << 3
		r |= r >> 5
		g |= g >> 5
		b |= b >> 5
	case 16:
		v := uint16(p[0]) | uint16(p[1])<<8
		r = uint8(v>>11&0x1F) << 3
		g = uint8(v>>5&0x3F) << 2
		b = uint8(v&0x1F) << 3
		r |= r >> 5
		g |= g >> 6
		b |= b >> 5
	case 32:
		r, g, b = p[2], p[1], p[0]
	}
	return r, g, b
}
