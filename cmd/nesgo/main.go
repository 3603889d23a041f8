// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nesgo/internal/app"
	"nesgo/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file")
		configFile  = flag.String("config", "", "Path to configuration file")
		headless    = flag.Bool("headless", false, "Run without a GUI window")
		frames      = flag.Int("frames", 0, "Headless mode only: stop after this many frames (0 runs until interrupted)")
		showVersion = flag.Bool("version", false, "Print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		version.PrintBuildInfo()
		return
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "usage: nesgo -rom path/to/game.nes [-config path] [-headless] [-frames N]")
		os.Exit(2)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *headless)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	if err := application.LoadROM(*romFile); err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}

	if *headless {
		runHeadless(application, *frames)
		return
	}

	if err := application.Run(); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

// runHeadless drives the emulator frame-by-frame without a window,
// for automation and testing.
func runHeadless(application *app.Application, frames int) {
	if frames <= 0 {
		for {
			application.Bus.RunFrame()
		}
	}

	for i := 0; i < frames; i++ {
		application.Bus.RunFrame()
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("interrupt received, shutting down")
		os.Exit(0)
	}()
}
