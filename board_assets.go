// board_assets.go - Procedural board artwork

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// BoardImage is an immutable RGBA sprite blitted by the board compositor.
type BoardImage struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA, 4 bytes per pixel, row stride Width*4
}

// RGBAt returns the colour of pixel (x, y).
func (b *BoardImage) RGBAt(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

func imageFromContext(dc *gg.Context) *BoardImage {
	src := dc.Image()
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return &BoardImage{
		Width:  rgba.Bounds().Dx(),
		Height: rgba.Bounds().Dy(),
		Pix:    rgba.Pix,
	}
}

var (
	pcbColor     = colornames.Darkslategray
	silkColor    = colornames.Lightgray
	padColor     = colornames.Darkgoldenrod
	ledOffColor  = colornames.Dimgray
	ledOnColor   = colornames.Lime
	swBodyColor  = colornames.Black
	swKnobColor  = colornames.Whitesmoke
	btnOffColor  = colornames.Gray
	btnOnColor   = colornames.Red
	btnRimColor  = colornames.Black
	segOffColor  = colornames.Maroon
	segOnColor   = colornames.Red
	digitBgColor = colornames.Black
)

// Sprites are drawn over the PCB colour so every pixel is opaque.
func newSprite(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetColor(pcbColor)
	dc.Clear()
	return dc
}

type segGeom struct {
	dx, dy int
	w, h   int
}

// Segment offsets relative to the top-left corner of segment A.
var segmentGeometry = [NUM_SEG]segGeom{
	SEG_A:  {0, 0, 9, 2},
	SEG_B:  {9, 0, 3, 11},
	SEG_C:  {9, 13, 3, 9},
	SEG_D:  {0, 22, 9, 2},
	SEG_E:  {-4, 13, 3, 9},
	SEG_F:  {-4, 0, 3, 11},
	SEG_G:  {-1, 11, 10, 2},
	SEG_DP: {13, 22, 2, 2},
}

type boardArt struct {
	led, ledOn *BoardImage
	sw, swOn   *BoardImage
	btn, btnOn *BoardImage
	seg        [NUM_SEG][2]*BoardImage
}

var (
	boardArtOnce   sync.Once
	boardArtCached *boardArt
)

// loadBoardArt renders the element sprites once per process.
func loadBoardArt() *boardArt {
	boardArtOnce.Do(func() {
		art := &boardArt{
			led:   drawLED(ledOffColor),
			ledOn: drawLED(ledOnColor),
			sw:    drawSwitch(false),
			swOn:  drawSwitch(true),
			btn:   drawButton(btnOffColor),
			btnOn: drawButton(btnOnColor),
		}
		for seg := range NUM_SEG {
			g := segmentGeometry[seg]
			art.seg[seg][STA_OFF] = drawSegment(g.w, g.h, segOffColor)
			art.seg[seg][STA_ON] = drawSegment(g.w, g.h, segOnColor)
		}
		boardArtCached = art
	})
	return boardArtCached
}

func drawLED(c color.Color) *BoardImage {
	dc := newSprite(12, 10)
	dc.DrawRoundedRectangle(1, 1, 10, 8, 2)
	dc.SetColor(c)
	dc.Fill()
	return imageFromContext(dc)
}

// Knob up means on.
func drawSwitch(on bool) *BoardImage {
	dc := newSprite(12, 22)
	dc.DrawRectangle(2, 1, 8, 20)
	dc.SetColor(swBodyColor)
	dc.Fill()
	knobY := 12.0
	if on {
		knobY = 2
	}
	dc.DrawRectangle(3, knobY, 6, 8)
	dc.SetColor(swKnobColor)
	dc.Fill()
	return imageFromContext(dc)
}

func drawButton(c color.Color) *BoardImage {
	dc := newSprite(20, 20)
	dc.DrawRectangle(1, 1, 18, 18)
	dc.SetColor(btnRimColor)
	dc.Fill()
	dc.DrawCircle(10, 10, 6.5)
	dc.SetColor(c)
	dc.Fill()
	return imageFromContext(dc)
}

func drawSegment(w, h int, c color.Color) *BoardImage {
	dc := gg.NewContext(w, h)
	dc.SetColor(c)
	dc.Clear()
	return imageFromContext(dc)
}

// drawBoardBackground renders the PCB with a silk-screen frame, solder pads
// under every element and a dark window behind the seven-segment digits.
func drawBoardBackground(w, h int, elems []GuiElement) *BoardImage {
	dc := newSprite(w, h)

	dc.SetLineWidth(1)
	dc.SetColor(silkColor)
	dc.DrawRectangle(0.5, 0.5, float64(w-1), float64(h-1))
	dc.Stroke()

	var digits image.Rectangle
	for i := range elems {
		e := &elems[i]
		r := e.Bounds()
		switch e.Kind {
		case ElementSegment:
			digits = digits.Union(r)
		case ElementPushButton:
			dc.SetColor(padColor)
			dc.DrawRectangle(float64(r.Min.X)-1, float64(r.Min.Y)-1, float64(r.Dx())+2, float64(r.Dy())+2)
			dc.Fill()
		}
	}
	if !digits.Empty() {
		digits = digits.Inset(-2)
		dc.SetColor(digitBgColor)
		dc.DrawRectangle(float64(digits.Min.X), float64(digits.Min.Y), float64(digits.Dx()), float64(digits.Dy()))
		dc.Fill()
	}
	return imageFromContext(dc)
}
