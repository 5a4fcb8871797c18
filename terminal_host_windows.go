//go:build windows

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "terminal:raw-windows")
}

// TerminalHost reads raw stdin and feeds arrow/space keys to the board as
// push-button scancodes. Only instantiated in main.go for interactive use.
type TerminalHost struct {
	input        BoardInputHandler
	onQuit       func()
	keys         terminalKeyDecoder
	releases     *keyReleaser
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter that reads stdin into input.
// onQuit runs when the user presses Ctrl-C or q.
func NewTerminalHost(input BoardInputHandler, onQuit func()) *TerminalHost {
	return &TerminalHost{
		input:    input,
		onQuit:   onQuit,
		releases: newKeyReleaser(input, TERMINAL_KEY_HOLD_MS*time.Millisecond),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start sets stdin to raw mode and begins reading in a goroutine.
// Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if n > 0 {
				code, ok, quit := h.keys.Feed(buf[0])
				if quit {
					if h.onQuit != nil {
						go h.onQuit()
					}
				} else if ok {
					h.releases.press(code)
				}
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// Stop terminates the stdin reading goroutine and restores terminal state.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	h.releases.flush()
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
