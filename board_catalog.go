// board_catalog.go - Board Element Catalog and Variants

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_catalog.go - Board Element Catalog and Variants

Each board variant carries an explicit element table indexed by element ID.
Elements of one kind occupy a contiguous ID range, recorded as an
ElementRange, so that register packing and redraw bounding boxes can scan a
range instead of filtering the whole table.

Variants:

  riscv - Zybo style board: 4 LEDs above 4 slide switches, 4 push-buttons on
          the side, 32-bit HDMI frame buffer with selectable video mode.
  mips  - 8 LEDs, 8 slide switches, 4 push-buttons and 4 seven-segment
          digits, 1-bit monochrome frame buffer, no control bank.

Element IDs (riscv):

  0-3   LED0..LED3        (LED0 rightmost)
  4-7   SWITCH0..SWITCH3
  8-11  PUSHBTN0..PUSHBTN3

Element IDs (mips):

  0-7   LED0..LED7
  8-39  7SEG0_a..7SEG3_dp (8 segments per digit, digit 0 rightmost)
  40-47 SWITCH0..SWITCH7
  48-51 PUSHBTN0..PUSHBTN3
*/

package main

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// ElementKind identifies the behaviour of a board element.
type ElementKind int

const (
	ElementLED ElementKind = iota
	ElementSwitch
	ElementPushButton
	ElementSegment
)

func (k ElementKind) String() string {
	switch k {
	case ElementLED:
		return "led"
	case ElementSwitch:
		return "switch"
	case ElementPushButton:
		return "pushbtn"
	case ElementSegment:
		return "7seg"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	STA_OFF = 0
	STA_ON  = 1
)

// GuiElement is one drawable, possibly clickable, element of the board.
type GuiElement struct {
	ID        int
	Kind      ElementKind
	X         int
	Y         int
	Images    [2]*BoardImage // STA_OFF, STA_ON
	Clickable bool
}

// Bounds returns the board rectangle covered by the element.
func (e *GuiElement) Bounds() image.Rectangle {
	img := e.Images[STA_OFF]
	return image.Rect(e.X, e.Y, e.X+img.Width, e.Y+img.Height)
}

// Contains reports whether the board pixel (x, y) lies on the element.
func (e *GuiElement) Contains(x, y int) bool {
	img := e.Images[STA_OFF]
	return x >= e.X && y >= e.Y && x < e.X+img.Width && y < e.Y+img.Height
}

// ElementRange is an inclusive range of element IDs. First > Last means empty.
type ElementRange struct {
	First int
	Last  int
}

func (r ElementRange) Len() int {
	if r.First > r.Last {
		return 0
	}
	return r.Last - r.First + 1
}

func (r ElementRange) Empty() bool { return r.Len() == 0 }

func (r ElementRange) Contains(id int) bool { return id >= r.First && id <= r.Last }

var emptyRange = ElementRange{First: 0, Last: -1}

// VRAMFormat is the pixel encoding of the device video memory.
type VRAMFormat int

const (
	VRAMFormatXRGB32 VRAMFormat = iota // little-endian 0x00RRGGBB words
	VRAMFormatMono1                    // 1 bit per pixel, MSB first, 1 = white
)

// BoardLayout holds the bus addresses the board glue maps the device at.
type BoardLayout struct {
	PeriphBase uint32
	CtrlBase   uint32 // 0 when the variant has no control bank
	VRAMBase   uint32
}

// BoardVariant parameterises the device: element catalog, register layout
// and frame buffer format.
type BoardVariant struct {
	Name        string
	Description string

	Background *BoardImage
	Elements   []GuiElement

	LEDs        ElementRange
	Segments    ElementRange
	Switches    ElementRange
	PushButtons ElementRange

	// Zero bits inserted between the push-button and switch groups of
	// REG_SWITCHES. Guest visible, differs per board.
	SwitchGap uint

	HasCtrlBank bool

	VRAMFormat VRAMFormat
	VRAMSize   int
	// Frame buffer geometry when there is no control bank to select a mode
	FixedWidth  int
	FixedHeight int

	Layout BoardLayout
}

// HasSevenSegs reports whether the board carries seven-segment digits.
func (v *BoardVariant) HasSevenSegs() bool { return !v.Segments.Empty() }

// Element returns the element with the given ID.
func (v *BoardVariant) Element(id int) *GuiElement { return &v.Elements[id] }

// catalogBuilder appends elements in ID order.
type catalogBuilder struct {
	elems []GuiElement
}

func (b *catalogBuilder) add(kind ElementKind, x, y int, off, on *BoardImage, clickable bool) int {
	id := len(b.elems)
	b.elems = append(b.elems, GuiElement{
		ID:        id,
		Kind:      kind,
		X:         x,
		Y:         y,
		Images:    [2]*BoardImage{off, on},
		Clickable: clickable,
	})
	return id
}

func (b *catalogBuilder) led(x, y int, art *boardArt) int {
	return b.add(ElementLED, x, y, art.led, art.ledOn, false)
}

func (b *catalogBuilder) sw(x, y int, art *boardArt) int {
	return b.add(ElementSwitch, x, y, art.sw, art.swOn, true)
}

func (b *catalogBuilder) pushbtn(x, y int, art *boardArt) int {
	return b.add(ElementPushButton, x, y, art.btn, art.btnOn, true)
}

// digit adds the eight segments of one digit whose segment A sits at (x, y).
func (b *catalogBuilder) digit(x, y int, art *boardArt) int {
	first := len(b.elems)
	for seg := range NUM_SEG {
		g := segmentGeometry[seg]
		b.add(ElementSegment, x+g.dx, y+g.dy, art.seg[seg][STA_OFF], art.seg[seg][STA_ON], false)
	}
	return first
}

// NewRISCVVariant builds the Zybo style RISC-V board.
func NewRISCVVariant() *BoardVariant {
	art := loadBoardArt()
	b := &catalogBuilder{}

	v := &BoardVariant{
		Name:        "riscv",
		Description: "RISC-V CEP board: 4 LEDs, 4 switches, 4 push-buttons, HDMI frame buffer",
		SwitchGap:   12,
		HasCtrlBank: true,
		VRAMFormat:  VRAMFormatXRGB32,
		VRAMSize:    VRAM_SIZE,
		Layout: BoardLayout{
			PeriphBase: 0x30000000,
			CtrlBase:   0x70000000,
			VRAMBase:   0x80000000,
		},
	}

	v.LEDs.First = b.led(51, 5, art)
	b.led(35, 5, art)
	b.led(19, 5, art)
	v.LEDs.Last = b.led(3, 5, art)

	v.Segments = emptyRange

	v.Switches.First = b.sw(50, 29, art)
	b.sw(34, 29, art)
	b.sw(18, 29, art)
	v.Switches.Last = b.sw(2, 29, art)

	v.PushButtons.First = b.pushbtn(152, 30, art)
	b.pushbtn(127, 30, art)
	b.pushbtn(102, 30, art)
	v.PushButtons.Last = b.pushbtn(77, 30, art)

	v.Elements = b.elems
	v.Background = drawBoardBackground(180, 56, v.Elements)
	validateCatalog(v)
	return v
}

// NewMIPSVariant builds the board with seven-segment digits and a
// monochrome frame buffer.
func NewMIPSVariant() *BoardVariant {
	art := loadBoardArt()
	b := &catalogBuilder{}

	v := &BoardVariant{
		Name:        "mips",
		Description: "MIPS CEP board: 8 LEDs, 8 switches, 4 push-buttons, 4 seven-segment digits, monochrome frame buffer",
		SwitchGap:   0,
		HasCtrlBank: false,
		VRAMFormat:  VRAMFormatMono1,
		VRAMSize:    MONO_SIZE,
		FixedWidth:  MONO_WIDTH,
		FixedHeight: MONO_HEIGHT,
		Layout: BoardLayout{
			PeriphBase: 0x10000000,
			VRAMBase:   0x10002000,
		},
	}

	v.LEDs.First = len(b.elems)
	for i := range 8 {
		v.LEDs.Last = b.led(115-16*i, 5, art)
	}

	v.Segments.First = len(b.elems)
	for d := range NUM_DIGITS {
		b.digit(92-24*d, 60, art)
	}
	v.Segments.Last = len(b.elems) - 1

	v.Switches.First = len(b.elems)
	for i := range 8 {
		v.Switches.Last = b.sw(114-16*i, 29, art)
	}

	v.PushButtons.First = len(b.elems)
	for i := range 4 {
		v.PushButtons.Last = b.pushbtn(215-25*i, 30, art)
	}

	v.Elements = b.elems
	v.Background = drawBoardBackground(250, 92, v.Elements)
	validateCatalog(v)
	return v
}

var boardVariants = map[string]func() *BoardVariant{
	"riscv": NewRISCVVariant,
	"mips":  NewMIPSVariant,
}

// LookupVariant returns a freshly built variant by name.
func LookupVariant(name string) (*BoardVariant, error) {
	build, ok := boardVariants[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown board variant %q (available: %s)", name, strings.Join(variantNames(), ", "))
	}
	return build(), nil
}

func variantNames() []string {
	names := make([]string, 0, len(boardVariants))
	for name := range boardVariants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateCatalog panics if the element table breaks the contiguous range
// invariant or an element falls outside the background.
func validateCatalog(v *BoardVariant) {
	check := func(r ElementRange, kind ElementKind) {
		for id := r.First; id <= r.Last; id++ {
			if id < 0 || id >= len(v.Elements) {
				panic(fmt.Sprintf("board %s: %s range [%d,%d] outside catalog", v.Name, kind, r.First, r.Last))
			}
			if v.Elements[id].Kind != kind {
				panic(fmt.Sprintf("board %s: element %d is %s, expected %s", v.Name, id, v.Elements[id].Kind, kind))
			}
		}
	}
	check(v.LEDs, ElementLED)
	check(v.Segments, ElementSegment)
	check(v.Switches, ElementSwitch)
	check(v.PushButtons, ElementPushButton)

	if total := v.LEDs.Len() + v.Segments.Len() + v.Switches.Len() + v.PushButtons.Len(); total != len(v.Elements) {
		panic(fmt.Sprintf("board %s: ranges cover %d of %d elements", v.Name, total, len(v.Elements)))
	}
	if v.Segments.Len()%NUM_SEG != 0 || v.Segments.Len() > NUM_DIGITS*NUM_SEG {
		panic(fmt.Sprintf("board %s: %d segments is not a whole number of digits", v.Name, v.Segments.Len()))
	}

	bg := image.Rect(0, 0, v.Background.Width, v.Background.Height)
	for i := range v.Elements {
		e := &v.Elements[i]
		if e.ID != i {
			panic(fmt.Sprintf("board %s: element at index %d has ID %d", v.Name, i, e.ID))
		}
		if !e.Bounds().In(bg) {
			panic(fmt.Sprintf("board %s: element %d at %v outside background %v", v.Name, i, e.Bounds(), bg))
		}
	}
}
