// main.go - Main entry point for the CEP board emulator

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"
	"sync"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ▄████▄  ▓█████  ██▓███      ▄▄▄▄    ▒█████   ▄▄▄       ██▀███  ▓█████▄\033[0m\n\033[38;2;255;80;147m▒██▀ ▀█  ▓█   ▀ ▓██░  ██▒   ▓█████▄ ▒██▒  ██▒▒████▄    ▓██ ▒ ██▒▒██▀ ██▌\033[0m\n\033[38;2;255;140;147m▒▓█    ▄ ▒███   ▓██░ ██▓▒   ▒██▒ ▄██▒██░  ██▒▒██  ▀█▄  ▓██ ░▄█ ▒░██   █▌\033[0m\n\033[38;2;255;200;147m▒▓▓▄ ▄██▒▒▓█  ▄ ▒██▄█▓▒ ▒   ▒██░█▀  ▒██   ██░░██▄▄▄▄██ ▒██▀▀█▄  ░▓█▄   ▌\033[0m\n\033[38;2;255;255;147m▒ ▓███▀ ░░▒████▒▒██▒ ░  ░   ░▓█  ▀█▓░ ████▓▒░ ▓█   ▓██▒░██▓ ▒██▒░▒████▓\033[0m")
	fmt.Println("\nAn emulated FPGA teaching board: LEDs, switches, push-buttons, seven-segment digits and a frame buffer.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("License: GPLv3 or later")
}

// BoardConfig carries the parsed command line.
type BoardConfig struct {
	Variant  string
	Headless bool
	Frames   int
	Script   string
	Demo     bool
	Scale    int
	BPP      int
	Snapshot string
	Terminal bool
	Regs     bool
	Features bool
	Quiet    bool
}

// parseBoardConfig parses args (without the program name). flag.ErrHelp is
// returned unchanged after the usage text has been printed.
func parseBoardConfig(args []string, usageOut io.Writer) (BoardConfig, error) {
	cfg := BoardConfig{}

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&cfg.Variant, "variant", "riscv", "Board variant ("+strings.Join(variantNames(), "|")+")")
	flagSet.BoolVar(&cfg.Headless, "headless", false, "Run without a window")
	flagSet.IntVar(&cfg.Frames, "frames", 1, "Refresh ticks to run in headless mode")
	flagSet.StringVar(&cfg.Script, "script", "", "Lua script to run against the board")
	flagSet.BoolVar(&cfg.Demo, "demo", false, "Run the built-in demo script")
	flagSet.IntVar(&cfg.Scale, "scale", 3, "Board view scale factor")
	flagSet.IntVar(&cfg.BPP, "bpp", 32, "Host surface depth (8, 15, 16 or 32)")
	flagSet.StringVar(&cfg.Snapshot, "snapshot", "", "Write <prefix>_board.png and <prefix>_fb.png on exit")
	flagSet.BoolVar(&cfg.Terminal, "terminal", false, "Read arrow keys and space from the terminal")
	flagSet.BoolVar(&cfg.Regs, "regs", false, "Print the register view on exit")
	flagSet.BoolVar(&cfg.Features, "features", false, "Print version and compiled features")
	flagSet.BoolVar(&cfg.Quiet, "quiet", false, "Do not print the banner")

	flagSet.Usage = func() {
		flagSet.SetOutput(usageOut)
		fmt.Fprintln(usageOut, "Usage: ./cepboard [-variant riscv|mips] [-headless -frames N] [-script file.lua|-demo] [-snapshot prefix] [-regs]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}
	if flagSet.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	if cfg.Script != "" && cfg.Demo {
		return cfg, errors.New("-script and -demo are mutually exclusive")
	}
	if cfg.Frames < 0 {
		return cfg, fmt.Errorf("-frames must not be negative, got %d", cfg.Frames)
	}
	if _, err := newPixelConverter(cfg.BPP); err != nil {
		return cfg, err
	}
	cfg.Scale = ClampScale(cfg.Scale)
	return cfg, nil
}

func main() {
	cfg, err := parseBoardConfig(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Features {
		printFeatures()
		return
	}
	if !cfg.Quiet {
		boilerPlate()
	}
	if err := runBoard(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runBoard builds the machine described by cfg and runs it until the
// viewer closes, the user quits or the headless frame count is reached.
func runBoard(cfg BoardConfig) error {
	variant, err := LookupVariant(cfg.Variant)
	if err != nil {
		return err
	}
	machine := NewBoardMachine(variant, cfg.BPP, nil)

	backend := VIDEO_BACKEND_EBITEN
	if cfg.Headless {
		backend = VIDEO_BACKEND_HEADLESS
	}
	output, err := NewVideoOutput(backend)
	if err != nil {
		return err
	}
	defer output.Close()

	if err := output.SetDisplayConfig(DisplayConfig{
		Title:       fmt.Sprintf("CEP Board (%s)", variant.Name),
		Scale:       cfg.Scale,
		RefreshRate: COMPOSITOR_REFRESH_RATE,
		View:        VIEW_BOARD,
		StatusBar:   true,
	}); err != nil {
		return err
	}
	output.SetInputHandler(machine)
	if r, ok := output.(interface{ SetHardResetHandler(func()) }); ok {
		r.SetHardResetHandler(machine.Reset)
	}

	compositor := NewVideoCompositor(machine, output)

	var script *BoardScript
	if cfg.Script != "" || cfg.Demo {
		script = NewBoardScript(machine, compositor, os.Stdout)
		defer script.Close()
	}

	if cfg.Headless {
		err = runHeadless(cfg, output, compositor, script)
	} else {
		err = runWindowed(cfg, machine, output, compositor, script)
	}
	if err != nil {
		return err
	}

	if cfg.Regs {
		machine.WithDevice(func(d *BoardDevice) { fmt.Print(formatBoardView(d)) })
	}
	if cfg.Snapshot != "" {
		if err := writeSnapshots(machine, cfg.Snapshot); err != nil {
			return err
		}
	}
	return nil
}

func runScript(cfg BoardConfig, script *BoardScript) error {
	if cfg.Demo {
		return script.RunDemo()
	}
	return script.RunFile(cfg.Script)
}

func runHeadless(cfg BoardConfig, output VideoOutput, compositor *VideoCompositor, script *BoardScript) error {
	if err := output.Start(); err != nil {
		return err
	}
	if script != nil {
		if err := runScript(cfg, script); err != nil {
			return err
		}
	}
	for range cfg.Frames {
		if err := compositor.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func runWindowed(cfg BoardConfig, machine *BoardMachine, output VideoOutput, compositor *VideoCompositor, script *BoardScript) error {
	if err := output.Start(); err != nil {
		return err
	}
	if err := compositor.Start(); err != nil {
		return err
	}
	defer compositor.Stop()

	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }

	if cfg.Terminal {
		host := NewTerminalHost(machine, requestQuit)
		host.Start()
		defer host.Stop()
	}

	scriptErr := make(chan error, 1)
	if script != nil {
		go func() { scriptErr <- runScript(cfg, script) }()
	}

	select {
	case <-output.Done():
	case <-compositor.Stopped():
	case <-quit:
	case err := <-scriptErr:
		if err != nil {
			return err
		}
		// Keep the window up after a script finishes
		select {
		case <-output.Done():
		case <-compositor.Stopped():
		case <-quit:
		}
	}

	compositor.Stop()
	return compositor.Err()
}

// writeSnapshots saves both views as PNG files named after prefix.
func writeSnapshots(machine *BoardMachine, prefix string) error {
	views := []struct {
		view int
		name string
	}{
		{VIEW_BOARD, "board"},
		{VIEW_FRAMEBUFFER, "fb"},
	}
	for _, v := range views {
		path := fmt.Sprintf("%s_%s.png", prefix, v.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		err = png.Encode(f, machine.Snapshot(v.view, nil))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", path, err)
		}
		fmt.Printf("Snapshot written to %s\n", path)
	}
	return nil
}
