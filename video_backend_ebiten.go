//go:build !headless

// video_backend_ebiten.go - Ebiten board viewer

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:ebiten")
}

const statusBarHeight = 16

type EbitenOutput struct {
	running     bool
	fullscreen  bool
	scale       int
	title       string
	refreshRate int

	bufferMutex sync.RWMutex
	view        int
	frames      [2]*image.RGBA
	windows     [2]*ebiten.Image
	dirty       [2]bool
	frameCount  uint64
	vsyncChan   chan struct{}
	done        chan struct{}

	input       BoardInputHandler
	lastAbsX    int
	lastAbsY    int
	lastButtons uint32

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool

	hardResetHandler func()
	resetInProgress  atomic.Bool
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		scale:         3,
		title:         "CEP Board",
		refreshRate:   BOARD_REFRESH_RATE,
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
		lastAbsX:      -1,
		lastAbsY:      -1,
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.bufferMutex.Lock()
	eo.done = make(chan struct{})
	eo.bufferMutex.Unlock()
	eo.running = true
	w, h := eo.layoutSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(eo.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running = false
			eo.bufferMutex.RLock()
			done := eo.done
			eo.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.bufferMutex.RLock()
	done := eo.done
	eo.bufferMutex.RUnlock()
	return done
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	eo.scale = ClampScale(config.Scale)
	if config.Title != "" {
		eo.title = config.Title
	}
	if config.RefreshRate > 0 {
		eo.refreshRate = config.RefreshRate
	}
	if config.View == VIEW_BOARD || config.View == VIEW_FRAMEBUFFER {
		eo.view = config.View
	}
	eo.showStatusBar = config.StatusBar
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{
		Title:       eo.title,
		Scale:       eo.scale,
		RefreshRate: eo.refreshRate,
		View:        eo.view,
		StatusBar:   eo.showStatusBar,
	}
}

func (eo *EbitenOutput) UpdateView(view int, frame *image.RGBA) error {
	if view != VIEW_BOARD && view != VIEW_FRAMEBUFFER {
		return &VideoError{Operation: "view update", Details: fmt.Sprintf("unknown view %d", view)}
	}
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	dst := eo.frames[view]
	if dst == nil || dst.Bounds() != frame.Bounds() {
		dst = image.NewRGBA(frame.Bounds())
		eo.frames[view] = dst
		if eo.windows[view] != nil {
			eo.windows[view].Deallocate()
			eo.windows[view] = nil
		}
	}
	copy(dst.Pix, frame.Pix)
	eo.dirty[view] = true
	return nil
}

func (eo *EbitenOutput) SetInputHandler(h BoardInputHandler) {
	eo.bufferMutex.Lock()
	eo.input = h
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetHardResetHandler(fn func()) {
	eo.bufferMutex.Lock()
	eo.hardResetHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&eo.frameCount)
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		eo.setView(VIEW_BOARD)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		eo.setView(VIEW_FRAMEBUFFER)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		eo.bufferMutex.RLock()
		next := 1 - eo.view
		eo.bufferMutex.RUnlock()
		eo.setView(next)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		eo.copyViewToClipboard()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		eo.bufferMutex.Unlock()
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.layoutSize())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		if eo.resetInProgress.CompareAndSwap(false, true) {
			eo.bufferMutex.RLock()
			handler := eo.hardResetHandler
			eo.bufferMutex.RUnlock()
			if handler != nil {
				go func() {
					defer eo.resetInProgress.Store(false)
					handler()
				}()
			} else {
				eo.resetInProgress.Store(false)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}
	eo.handleKeyboardInput()
	eo.handleMouseInput()
	return nil
}

func (eo *EbitenOutput) setView(view int) {
	eo.bufferMutex.Lock()
	eo.view = view
	eo.bufferMutex.Unlock()
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.layoutSize())
	}
}

func (eo *EbitenOutput) handleKeyboardInput() {
	eo.bufferMutex.RLock()
	handler := eo.input
	eo.bufferMutex.RUnlock()
	if handler == nil {
		return
	}
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if code, ok := ebitenKeyScancode(key); ok {
			handler.KeyEvent(code)
		}
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		if code, ok := ebitenKeyScancode(key); ok {
			handler.KeyEvent(code + KBD_RELEASE_DIFF)
		}
	}
}

// ebitenKeyScancode maps host keys to the PC set 1 make codes the board
// understands.
func ebitenKeyScancode(key ebiten.Key) (int, bool) {
	switch key {
	case ebiten.KeyArrowLeft:
		return KBD_CODE_LEFT, true
	case ebiten.KeyArrowRight:
		return KBD_CODE_RIGHT, true
	case ebiten.KeyArrowUp:
		return KBD_CODE_HIGH, true
	case ebiten.KeyArrowDown:
		return KBD_CODE_DOWN, true
	case ebiten.KeySpace:
		return KBD_CODE_SPACE, true
	default:
		return 0, false
	}
}

// Mouse input only reaches the board while the board view is shown.
func (eo *EbitenOutput) handleMouseInput() {
	eo.bufferMutex.RLock()
	handler := eo.input
	view := eo.view
	frame := eo.frames[VIEW_BOARD]
	scale := eo.scale
	eo.bufferMutex.RUnlock()
	if handler == nil || view != VIEW_BOARD || frame == nil {
		return
	}

	cx, cy := ebiten.CursorPosition()
	b := frame.Bounds()
	absX, absY := absPointerPosition(cx/scale, cy/scale, b.Dx(), b.Dy())

	var buttons uint32
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		buttons |= MOUSE_EVENT_LBUTTON
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		buttons |= MOUSE_EVENT_RBUTTON
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		buttons |= MOUSE_EVENT_MBUTTON
	}

	if absX == eo.lastAbsX && absY == eo.lastAbsY && buttons == eo.lastButtons {
		return
	}
	eo.lastAbsX, eo.lastAbsY, eo.lastButtons = absX, absY, buttons
	handler.MouseEvent(absX, absY, 0, buttons)
}

func (eo *EbitenOutput) copyViewToClipboard() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	if !eo.clipboardOK {
		return
	}
	eo.bufferMutex.RLock()
	frame := eo.frames[eo.view]
	var buf bytes.Buffer
	var err error
	if frame != nil {
		err = png.Encode(&buf, frame)
	}
	eo.bufferMutex.RUnlock()
	if frame == nil {
		return
	}
	if err != nil {
		fmt.Printf("Viewer: PNG encode failed: %v\n", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	eo.bufferMutex.Lock()
	view := eo.view
	frame := eo.frames[view]
	scale := eo.viewScale(view)
	showStatusBar := eo.showStatusBar
	var win *ebiten.Image
	if frame != nil {
		if eo.windows[view] == nil {
			b := frame.Bounds()
			eo.windows[view] = ebiten.NewImage(b.Dx(), b.Dy())
			eo.dirty[view] = true
		}
		win = eo.windows[view]
		if eo.dirty[view] {
			win.WritePixels(frame.Pix)
			eo.dirty[view] = false
		}
	}
	eo.bufferMutex.Unlock()

	if win != nil {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(float64(scale), float64(scale))
		screen.DrawImage(win, opts)
	}
	if showStatusBar {
		eo.drawStatusBar(screen, view)
	}

	atomic.AddUint64(&eo.frameCount, 1)
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) viewScale(view int) int {
	if view == VIEW_FRAMEBUFFER {
		return 1
	}
	return eo.scale
}

func (eo *EbitenOutput) layoutSize() (int, int) {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	frame := eo.frames[eo.view]
	if frame == nil {
		return 640, 480
	}
	s := eo.viewScale(eo.view)
	return frame.Bounds().Dx() * s, frame.Bounds().Dy() * s
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.layoutSize()
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image, view int) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if statusBarHeight >= h {
		return
	}
	y := h - statusBarHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(w), statusBarHeight, color.RGBA{0, 0, 0, 180})

	face := basicfont.Face7x13
	label := "BOARD"
	if view == VIEW_FRAMEBUFFER {
		label = "FRAMEBUFFER"
	}
	text.Draw(screen, label, face, 4, y+12, color.RGBA{0, 220, 90, 255})

	legend := "F1/F2 View  F9 Copy  F10 Reset  F12 Status"
	legendW := text.BoundString(face, legend).Dx()
	legendX := max(w-legendW-4, 4+text.BoundString(face, label).Dx()+8)
	text.Draw(screen, legend, face, legendX, y+12, color.RGBA{160, 160, 160, 255})
}
