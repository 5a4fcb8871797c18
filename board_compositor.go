// board_compositor.go - Dirty-Region Board and Framebuffer Compositor

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_compositor.go - Dirty-Region Board and Framebuffer Compositor

The device draws two independent host surfaces once per refresh tick:

  Board view:       background artwork plus every LED, switch, push-button
                    and segment sprite. Only invalidated categories are
                    redrawn and only their bounding box is reported.
  Framebuffer view: video RAM converted to the host pixel format. Any dirty
                    page in the displayed range redraws the whole surface.

Push-button persistence decays at the start of every board pass, so a
button pressed in interrupt mode stays lit for PUSHBTN_PERSISTENCE ticks
even when software acknowledges at once.
*/

package main

import (
	"fmt"
	"image"
)

type categoryRange struct {
	inval Invalidate
	r     ElementRange
}

// categoryRanges pairs each element category with its ID range.
func (d *BoardDevice) categoryRanges() [4]categoryRange {
	v := d.variant
	return [4]categoryRange{
		{INVAL_LEDS, v.LEDs},
		{INVAL_7SEGS, v.Segments},
		{INVAL_SWITCHES, v.Switches},
		{INVAL_PUSHBTN, v.PushButtons},
	}
}

// RedrawBoard brings the board surface up to date and returns the rectangle
// reported to the host, empty when nothing changed.
func (d *BoardDevice) RedrawBoard(s DisplaySurface) (image.Rectangle, error) {
	bg := d.variant.Background
	if s.Width() != bg.Width || s.Height() != bg.Height {
		s.Resize(bg.Width, bg.Height)
		d.boardInvalidate |= INVAL_ALL
	}

	if d.boardConv == nil || d.boardConv.bpp != s.BitsPerPixel() {
		conv, err := newPixelConverter(s.BitsPerPixel())
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("board redraw: %w", err)
		}
		d.boardConv = conv
	}

	d.decayPersistence()

	if d.boardInvalidate&INVAL_BG != 0 {
		drawImage(s, d.boardConv, bg, 0, 0)
		d.boardInvalidate = INVAL_ALL
	}

	box := d.redrawBounds()
	for _, c := range d.categoryRanges() {
		if d.boardInvalidate&c.inval == 0 {
			continue
		}
		for id := c.r.First; id <= c.r.Last; id++ {
			e := &d.variant.Elements[id]
			img := e.Images[STA_OFF]
			if d.elementLit(e) {
				img = e.Images[STA_ON]
			}
			drawImage(s, d.boardConv, img, e.X, e.Y)
		}
	}

	if !box.Empty() {
		s.Update(box)
	}
	d.boardInvalidate = 0
	return box, nil
}

func (d *BoardDevice) decayPersistence() {
	btns := d.variant.PushButtons
	for id := btns.First; id <= btns.Last; id++ {
		if d.persistence[id] == 0 {
			continue
		}
		d.persistence[id]--
		if d.persistence[id] == 0 {
			d.boardInvalidate |= INVAL_PUSHBTN
		}
	}
}

// redrawBounds is the union of every invalid category, or the whole
// background when it is invalid.
func (d *BoardDevice) redrawBounds() image.Rectangle {
	bg := d.variant.Background
	if d.boardInvalidate&INVAL_BG != 0 {
		return image.Rect(0, 0, bg.Width, bg.Height)
	}
	var box image.Rectangle
	for _, c := range d.categoryRanges() {
		if d.boardInvalidate&c.inval == 0 {
			continue
		}
		for id := c.r.First; id <= c.r.Last; id++ {
			box = box.Union(d.variant.Elements[id].Bounds())
		}
	}
	return box
}

// drawImage blits img at (x, y), clipped to the surface.
func drawImage(s DisplaySurface, conv *pixelConverter, img *BoardImage, x, y int) {
	data := s.Data()
	stride := s.Stride()
	bpp := conv.bytesPerPixel
	for iy := range img.Height {
		sy := y + iy
		if sy < 0 || sy >= s.Height() {
			continue
		}
		src := img.Pix[iy*img.Width*4:]
		for ix := range img.Width {
			sx := x + ix
			if sx < 0 || sx >= s.Width() {
				continue
			}
			p := src[ix*4:]
			conv.put(data, sy*stride+sx*bpp, p[0], p[1], p[2])
		}
	}
}

// RedrawFramebuffer converts video RAM onto the frame buffer surface when
// it changed and returns the rectangle reported to the host.
func (d *BoardDevice) RedrawFramebuffer(s DisplaySurface) (image.Rectangle, error) {
	w, h := d.FramebufferSize()
	if s.Width() != w || s.Height() != h {
		s.Resize(w, h)
		d.fbInvalidate |= INVAL_ALL
	}

	if d.fbConv == nil || d.fbConv.bpp != s.BitsPerPixel() {
		conv, err := newPixelConverter(s.BitsPerPixel())
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("framebuffer redraw: %w", err)
		}
		d.fbConv = conv
	}

	if d.vram.SnapshotAndClearDirty(0, d.effectiveVRAMSize()) {
		d.fbInvalidate |= INVAL_BG
	}

	var box image.Rectangle
	if d.fbInvalidate&INVAL_BG != 0 {
		d.drawVRAM(s, d.fbConv, w, h)
		box = image.Rect(0, 0, w, h)
		s.Update(box)
	}
	d.fbInvalidate = 0
	return box, nil
}

func (d *BoardDevice) drawVRAM(s DisplaySurface, conv *pixelConverter, w, h int) {
	src := d.vram.Bytes()
	dst := s.Data()
	stride := s.Stride()
	bpp := conv.bytesPerPixel

	switch d.variant.VRAMFormat {
	case VRAMFormatXRGB32:
		rowBytes := w * VRAM_BYTES_PER_PIXEL
		for y := range h {
			row := src[y*rowBytes : (y+1)*rowBytes]
			if conv.bpp == 32 {
				copy(dst[y*stride:], row)
				continue
			}
			for x := range w {
				p := row[x*4:]
				conv.put(dst, y*stride+x*bpp, p[2], p[1], p[0])
			}
		}
	case VRAMFormatMono1:
		for y := range h {
			for x := range w {
				bit := y*w + x
				var c uint8
				if src[bit>>3]&(0x80>>(bit&7)) != 0 {
					c = 0xFF
				}
				conv.put(dst, y*stride+x*bpp, c, c, c)
			}
		}
	}
}

// InvalidateBoard forces a full board redraw on the next tick.
func (d *BoardDevice) InvalidateBoard() { d.boardInvalidate |= INVAL_ALL }

// InvalidateFramebuffer forces a full frame buffer redraw on the next tick.
func (d *BoardDevice) InvalidateFramebuffer() { d.fbInvalidate |= INVAL_ALL }

// InvalidateFormat drops the cached pixel converters after the host changed
// its surface format.
func (d *BoardDevice) InvalidateFormat() {
	d.boardConv = nil
	d.fbConv = nil
	d.boardInvalidate |= INVAL_ALL
	d.fbInvalidate |= INVAL_ALL
}
