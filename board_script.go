// board_script.go - Lua scripting of the CEP board

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
board_script.go - Lua scripting of the CEP board

A BoardScript drives a BoardMachine the way guest software and a user at the
viewer would: bus loads and stores, button presses, switch toggles, host key
and mouse events, and refresh ticks. Used by -script for demos and by tests
for end-to-end checks.

Lua API:

  write(addr, value [, size])   bus store, size in bytes (default 4)
  read(addr [, size])           bus load, nil when unmapped
  fill(addr, words, value)      store value to consecutive 32-bit words
  press(n) / release(n)         drive PUSHBTNn
  toggle(n)                     flip SWITCHn
  click(kind, n)                left click on "switch" or "button" n
  key(code)                     PC set 1 scancode
  mouse(x, y, buttons)          absolute pointer event (0..32767)
  frame([n])                    run n refresh ticks (default 1)
  irq()                         interrupt line level
  leds() / switches() / buttons()   packed element states
  segments(digit)               packed segments of one digit (SEG_A = bit 0)
  regs()                        formatted register view
  reset()                       hard reset
  sleep(ms)                     wall clock delay
  log(...)                      print to the script output

Globals: PERIPH, CTRL, VRAM (bank bases), FB_WIDTH, FB_HEIGHT, VARIANT and
every REG_*, PUSHBTN_CTL_*, R7SEGS_CTL_* and KBD_* constant.
*/

package main

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func init() {
	compiledFeatures = append(compiledFeatures, "lua:gopher-lua")
}

//go:embed scripts/demo.lua
var demoScript string

type BoardScript struct {
	L          *lua.LState
	machine    *BoardMachine
	compositor *VideoCompositor
	out        io.Writer
}

// NewBoardScript creates a Lua state bound to machine. compositor runs the
// refresh ticks requested by frame().
func NewBoardScript(machine *BoardMachine, compositor *VideoCompositor, out io.Writer) *BoardScript {
	s := &BoardScript{
		L:          lua.NewState(),
		machine:    machine,
		compositor: compositor,
		out:        out,
	}
	s.registerGlobals()
	return s
}

func (s *BoardScript) Close() {
	s.L.Close()
}

// RunString executes a Lua chunk.
func (s *BoardScript) RunString(src string) error {
	if err := s.L.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// RunFile executes a Lua file.
func (s *BoardScript) RunFile(path string) error {
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("lua %s: %w", path, err)
	}
	return nil
}

// RunDemo executes the built-in demo script.
func (s *BoardScript) RunDemo() error {
	return s.RunString(demoScript)
}

func (s *BoardScript) registerGlobals() {
	L := s.L
	v := s.machine.Variant()

	funcs := map[string]lua.LGFunction{
		"write":    s.luaWrite,
		"read":     s.luaRead,
		"fill":     s.luaFill,
		"press":    s.luaPress,
		"release":  s.luaRelease,
		"toggle":   s.luaToggle,
		"click":    s.luaClick,
		"key":      s.luaKey,
		"mouse":    s.luaMouse,
		"frame":    s.luaFrame,
		"irq":      s.luaIRQ,
		"leds":     s.luaPacked(func(d *BoardDevice) uint32 { return d.LEDs() }),
		"switches": s.luaPacked(func(d *BoardDevice) uint32 { return d.Switches() }),
		"buttons":  s.luaPacked(func(d *BoardDevice) uint32 { return d.Buttons() }),
		"segments": s.luaSegments,
		"regs":     s.luaRegs,
		"reset":    s.luaReset,
		"sleep":    s.luaSleep,
		"log":      s.luaLog,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	consts := map[string]uint32{
		"PERIPH": v.Layout.PeriphBase,
		"CTRL":   v.Layout.CtrlBase,
		"VRAM":   v.Layout.VRAMBase,

		"REG_LEDS":        REG_LEDS,
		"REG_SWITCHES":    REG_SWITCHES,
		"REG_PUSHBTN_CTL": REG_PUSHBTN_CTL,
		"REG_7SEGS":       REG_7SEGS,
		"REG_7SEGS_CTL":   REG_7SEGS_CTL,
		"REG_MODE":        REG_MODE,
		"REG_ADDR":        REG_ADDR,

		"PUSHBTN_CTL_POLL":     PUSHBTN_CTL_POLL,
		"PUSHBTN_CTL_INT":      PUSHBTN_CTL_INT,
		"R7SEGS_CTL_HALF_LOW":  R7SEGS_CTL_HALF_LOW,
		"R7SEGS_CTL_HALF_HIGH": R7SEGS_CTL_HALF_HIGH,
		"R7SEGS_CTL_RAW":       R7SEGS_CTL_RAW,

		"KBD_CODE_LEFT":    KBD_CODE_LEFT,
		"KBD_CODE_RIGHT":   KBD_CODE_RIGHT,
		"KBD_CODE_HIGH":    KBD_CODE_HIGH,
		"KBD_CODE_DOWN":    KBD_CODE_DOWN,
		"KBD_CODE_SPACE":   KBD_CODE_SPACE,
		"KBD_RELEASE_DIFF": KBD_RELEASE_DIFF,
	}
	for name, val := range consts {
		L.SetGlobal(name, lua.LNumber(val))
	}

	var fbW, fbH int
	s.machine.WithDevice(func(d *BoardDevice) { fbW, fbH = d.FramebufferSize() })
	L.SetGlobal("FB_WIDTH", lua.LNumber(fbW))
	L.SetGlobal("FB_HEIGHT", lua.LNumber(fbH))
	L.SetGlobal("VARIANT", lua.LString(v.Name))
	L.SetGlobal("SEVEN_SEGS", lua.LBool(v.HasSevenSegs()))
}

func checkSize(L *lua.LState, n int) int {
	size := L.OptInt(n, 4)
	switch size {
	case 1, 2, 4, 8:
		return size
	}
	L.ArgError(n, "size must be 1, 2, 4 or 8")
	return 0
}

func checkAddr(L *lua.LState, n int) uint32 {
	return uint32(L.CheckInt64(n))
}

func (s *BoardScript) luaWrite(L *lua.LState) int {
	addr := checkAddr(L, 1)
	value := uint64(L.CheckInt64(2))
	size := checkSize(L, 3)
	if !s.machine.Write(addr, value, size) {
		L.RaiseError("write to unmapped address 0x%08X", addr)
	}
	return 0
}

func (s *BoardScript) luaRead(L *lua.LState) int {
	addr := checkAddr(L, 1)
	size := checkSize(L, 2)
	value, ok := s.machine.Read(addr, size)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(value))
	return 1
}

func (s *BoardScript) luaFill(L *lua.LState) int {
	addr := checkAddr(L, 1)
	words := L.CheckInt(2)
	value := uint64(uint32(L.CheckInt64(3)))
	for i := range words {
		if !s.machine.Write(addr+uint32(i)*4, value, 4) {
			L.RaiseError("fill reached unmapped address 0x%08X", addr+uint32(i)*4)
		}
	}
	return 0
}

func (s *BoardScript) luaPress(L *lua.LState) int {
	n := L.CheckInt(1)
	s.machine.WithDevice(func(d *BoardDevice) { d.PressButton(n, 1) })
	return 0
}

func (s *BoardScript) luaRelease(L *lua.LState) int {
	n := L.CheckInt(1)
	s.machine.WithDevice(func(d *BoardDevice) { d.PressButton(n, 0) })
	return 0
}

func (s *BoardScript) luaToggle(L *lua.LState) int {
	n := L.CheckInt(1)
	s.machine.WithDevice(func(d *BoardDevice) { d.ToggleSwitch(n) })
	return 0
}

// luaClick presses and releases the left button over the centre of an
// element, going through the mouse translator.
func (s *BoardScript) luaClick(L *lua.LState) int {
	kind := strings.ToLower(L.CheckString(1))
	n := L.CheckInt(2)
	v := s.machine.Variant()

	var r ElementRange
	switch kind {
	case "switch":
		r = v.Switches
	case "button":
		r = v.PushButtons
	default:
		L.ArgError(1, "kind must be \"switch\" or \"button\"")
		return 0
	}
	if n < 0 || n >= r.Len() {
		L.ArgError(2, fmt.Sprintf("%s %d does not exist", kind, n))
		return 0
	}

	b := v.Element(r.First + n).Bounds()
	c := b.Min.Add(b.Max).Div(2)
	absX, absY := absPointerPosition(c.X, c.Y, v.Background.Width, v.Background.Height)
	s.machine.MouseEvent(absX, absY, 0, MOUSE_EVENT_LBUTTON)
	s.machine.MouseEvent(absX, absY, 0, 0)
	return 0
}

func (s *BoardScript) luaKey(L *lua.LState) int {
	s.machine.KeyEvent(L.CheckInt(1))
	return 0
}

func (s *BoardScript) luaMouse(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	buttons := uint32(L.OptInt(3, 0))
	s.machine.MouseEvent(x, y, 0, buttons)
	return 0
}

func (s *BoardScript) luaFrame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for range n {
		var err error
		if s.compositor != nil {
			err = s.compositor.Frame()
		} else {
			_, _, err = s.machine.Tick()
		}
		if err != nil {
			L.RaiseError("frame: %v", err)
		}
	}
	return 0
}

func (s *BoardScript) luaIRQ(L *lua.LState) int {
	L.Push(lua.LBool(s.machine.IRQ().Level()))
	return 1
}

func (s *BoardScript) luaPacked(get func(d *BoardDevice) uint32) lua.LGFunction {
	return func(L *lua.LState) int {
		var v uint32
		s.machine.WithDevice(func(d *BoardDevice) { v = get(d) })
		L.Push(lua.LNumber(v))
		return 1
	}
}

func (s *BoardScript) luaSegments(L *lua.LState) int {
	digit := L.CheckInt(1)
	var v uint8
	s.machine.WithDevice(func(d *BoardDevice) { v = d.Segments(digit) })
	L.Push(lua.LNumber(v))
	return 1
}

func (s *BoardScript) luaRegs(L *lua.LState) int {
	var view string
	s.machine.WithDevice(func(d *BoardDevice) { view = formatBoardView(d) })
	L.Push(lua.LString(view))
	return 1
}

func (s *BoardScript) luaReset(L *lua.LState) int {
	s.machine.Reset()
	return 0
}

func (s *BoardScript) luaSleep(L *lua.LState) int {
	time.Sleep(time.Duration(L.CheckInt(1)) * time.Millisecond)
	return 0
}

func (s *BoardScript) luaLog(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(s.out, strings.Join(parts, " "))
	return 0
}
