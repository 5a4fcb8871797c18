// video_interface.go - Host viewer interface for the CEP board

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

// VideoError provides detailed error context for video operations
type VideoError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

func (e *VideoError) Unwrap() error { return e.Err }

// DisplayConfig contains hardware-independent configuration
type DisplayConfig struct {
	Title       string
	Scale       int // Integer scaling factor of the board view
	RefreshRate int // Target refresh rate in Hz
	View        int // VIEW_BOARD or VIEW_FRAMEBUFFER shown at start
	StatusBar   bool
}

// BoardInputHandler receives host input already translated to the board
// protocol: absolute pointer position in 0..MOUSE_ABS_MAX and PC set 1
// scancodes with release codes.
type BoardInputHandler interface {
	MouseEvent(absX, absY, absZ int, buttons uint32)
	KeyEvent(code int)
}

// VideoOutput defines the minimal interface that viewers must implement
type VideoOutput interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
	// Done is closed when the user closes the viewer
	Done() <-chan struct{}

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	// UpdateView copies a new frame of one view; frame is not retained
	UpdateView(view int, frame *image.RGBA) error
	SetInputHandler(h BoardInputHandler)

	GetFrameCount() uint64
}

const (
	MIN_SCALE = 1
	MAX_SCALE = 8
)

// ClampScale limits the board view scale to what fits a desktop window.
func ClampScale(scale int) int {
	return max(MIN_SCALE, min(scale, MAX_SCALE))
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN   = iota // Pure Go Ebiten window
	VIDEO_BACKEND_HEADLESS        // No window, frames are counted only
)

// NewVideoOutput creates a new video output instance using the specified backend
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	case VIDEO_BACKEND_HEADLESS:
		return NewHeadlessVideoOutput(), nil
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
