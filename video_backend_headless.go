// video_backend_headless.go - Windowless video output for scripted and CI runs

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"image"
	"sync"
	"sync/atomic"
)

// HeadlessVideoOutput keeps the last frame of each view in memory.
type HeadlessVideoOutput struct {
	mu      sync.Mutex
	started bool
	config  DisplayConfig
	views   [2]*image.RGBA
	updates [2]uint64
	input   BoardInputHandler
	done    chan struct{}
	closed  sync.Once

	frameCount uint64
}

func NewHeadlessVideoOutput() *HeadlessVideoOutput {
	return &HeadlessVideoOutput{
		config: DisplayConfig{Scale: 1, RefreshRate: BOARD_REFRESH_RATE},
		done:   make(chan struct{}),
	}
}

func (h *HeadlessVideoOutput) Start() error {
	h.mu.Lock()
	h.started = true
	h.mu.Unlock()
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.mu.Lock()
	h.started = false
	h.mu.Unlock()
	return nil
}

func (h *HeadlessVideoOutput) Close() error {
	h.closed.Do(func() { close(h.done) })
	return h.Stop()
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *HeadlessVideoOutput) Done() <-chan struct{} { return h.done }

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	h.mu.Lock()
	config.Scale = ClampScale(config.Scale)
	h.config = config
	h.mu.Unlock()
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config
}

func (h *HeadlessVideoOutput) UpdateView(view int, frame *image.RGBA) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	dst := h.views[view]
	if dst == nil || dst.Bounds() != frame.Bounds() {
		dst = image.NewRGBA(frame.Bounds())
		h.views[view] = dst
	}
	copy(dst.Pix, frame.Pix)
	h.updates[view]++
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *HeadlessVideoOutput) SetInputHandler(in BoardInputHandler) {
	h.mu.Lock()
	h.input = in
	h.mu.Unlock()
}

// InputHandler returns the handler host input would be delivered to.
func (h *HeadlessVideoOutput) InputHandler() BoardInputHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.input
}

// View returns the last frame of a view, nil before the first update.
func (h *HeadlessVideoOutput) View(view int) *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.views[view]
}

// ViewUpdates counts UpdateView calls for one view.
func (h *HeadlessVideoOutput) ViewUpdates(view int) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updates[view]
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}
