//go:build !windows

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "terminal:raw")
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
	nonblockSet  bool
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

// Start sets stdin to non-blocking raw mode and begins reading in a
// goroutine. Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				h.feed(buf[0])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
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

func (h *TerminalHost) feed(b byte) {
	code, ok, quit := h.keys.Feed(b)
	if quit {
		if h.onQuit != nil {
			go h.onQuit()
		}
		return
	}
	if ok {
		h.releases.press(code)
	}
}

// Stop terminates the stdin reading goroutine and restores stdin to blocking mode.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	h.releases.flush()
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
