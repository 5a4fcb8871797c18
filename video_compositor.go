// video_compositor.go - Board refresh driver

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

/*
video_compositor.go - Board refresh driver

The compositor is the host-driven periodic timer of the board. Every tick
it runs one board pass and one frame buffer pass on the machine and hands
the views that changed to the VideoOutput.

Signal Flow:
1. Guest stores and host input mutate the BoardDevice through BoardMachine
2. Compositor ticks at BOARD_REFRESH_RATE
3. Machine redraws the invalid parts of both surfaces
4. Changed views are unpacked to RGBA and sent to the VideoOutput

                 ┌──────────────┐     ┌─────────────┐     ┌─────────┐
  CPU / host ──→ │ BoardMachine │ ──→ │ Compositor  │ ──→ │ Display │
                 └──────────────┘     └─────────────┘     └─────────┘

A redraw error means the host pixel format is unusable. The loop stops,
the error is kept for Err and Stopped is closed.
*/

package main

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// Compositor constants
const (
	COMPOSITOR_REFRESH_RATE     = BOARD_REFRESH_RATE
	COMPOSITOR_REFRESH_INTERVAL = time.Second / COMPOSITOR_REFRESH_RATE
)

type VideoCompositor struct {
	mutex   sync.Mutex
	machine *BoardMachine
	output  VideoOutput

	frames  [2]*image.RGBA
	err     error
	ticks   uint64
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewVideoCompositor creates a new compositor for machine
func NewVideoCompositor(machine *BoardMachine, output VideoOutput) *VideoCompositor {
	return &VideoCompositor{
		machine: machine,
		output:  output,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the refresh loop
func (c *VideoCompositor) Start() error {
	go c.refreshLoop()
	return nil
}

// Stop halts the refresh loop. Safe to call more than once.
func (c *VideoCompositor) Stop() {
	c.once.Do(func() { close(c.done) })
}

// Stopped is closed when the refresh loop has exited.
func (c *VideoCompositor) Stopped() <-chan struct{} {
	return c.stopped
}

// refreshLoop runs the compositor at 60Hz
func (c *VideoCompositor) refreshLoop() {
	defer close(c.stopped)

	ticker := time.NewTicker(COMPOSITOR_REFRESH_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.Frame(); err != nil {
				fmt.Printf("Compositor: fatal: %v\n", err)
				return
			}
		}
	}
}

// Frame runs one refresh tick synchronously. Headless runs and scripts
// step the board with it.
func (c *VideoCompositor) Frame() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}
	board, fb, err := c.machine.Tick()
	if err != nil {
		c.err = err
		return err
	}
	c.ticks++

	if !board.Empty() {
		c.publish(VIEW_BOARD)
	}
	if !fb.Empty() {
		c.publish(VIEW_FRAMEBUFFER)
	}
	return nil
}

func (c *VideoCompositor) publish(view int) {
	c.frames[view] = c.machine.Snapshot(view, c.frames[view])
	if c.output == nil || !c.output.IsStarted() {
		return
	}
	if err := c.output.UpdateView(view, c.frames[view]); err != nil {
		fmt.Printf("Compositor: Error updating view %d: %v\n", view, err)
	}
}

// Err returns the error that stopped the compositor, if any.
func (c *VideoCompositor) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.err
}

// Ticks counts successful refresh ticks.
func (c *VideoCompositor) Ticks() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.ticks
}
