package app

import (
	"fmt"
	"log"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/graphics"
	"nesgo/internal/input"
)

// Application owns the emulator bus, the graphics backend, and the
// glue between them: loading ROMs, driving one frame per host tick,
// and translating host input events into controller button state.
type Application struct {
	config  *Config
	Bus     *bus.Bus
	backend graphics.Backend
	window  graphics.Window

	romPath string
	running bool
	paused  bool
}

// NewApplication creates an Application from a config file path,
// selecting the graphics backend named in the loaded config.
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an Application, forcing the
// headless backend when headless is true regardless of config.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	cfg, err := LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if headless {
		cfg.Video.Backend = "headless"
	}

	app := &Application{
		config: cfg,
		Bus:    bus.New(),
	}

	if err := app.initializeGraphics(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initializeGraphics() error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("creating graphics backend: %w", err)
	}

	gcfg := graphics.Config{
		WindowTitle:  "nesgo",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Headless:     backendType == graphics.BackendHeadless,
	}
	if err := backend.Initialize(gcfg); err != nil {
		return fmt.Errorf("initializing graphics backend: %w", err)
	}

	window, err := backend.CreateWindow(gcfg.WindowTitle, gcfg.WindowWidth, gcfg.WindowHeight)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	app.backend = backend
	app.window = window
	return nil
}

// LoadROM loads an iNES ROM file and resets the bus around it.
func (app *Application) LoadROM(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM %s: %w", path, err)
	}

	app.Bus.LoadCartridge(cart)
	app.romPath = path

	if app.config.Audio.Enabled {
		if err := app.backend.SetupAudio(app.Bus.APU, app.config.Audio.SampleRate, app.config.Audio.Volume); err != nil {
			log.Printf("audio setup failed, continuing without sound: %v", err)
		}
	}

	return nil
}

// Run drives the emulator until the window closes. On the
// Ebitengine backend this hands control to ebiten's own blocking
// game loop; on headless backends it drives frames itself.
func (app *Application) Run() error {
	app.running = true

	type runner interface {
		SetUpdateFunc(func() error)
		Run() error
	}
	if r, ok := app.window.(runner); ok {
		r.SetUpdateFunc(app.tick)
		return r.Run()
	}

	for app.running && !app.window.ShouldClose() {
		if err := app.tick(); err != nil {
			return err
		}
	}
	return nil
}

// tick advances the emulator by one frame and presents it, called
// once per host frame whether driven by ebiten or our own loop.
func (app *Application) tick() error {
	if app.paused {
		app.processInput()
		return nil
	}

	app.Bus.RunFrame()

	frame := app.Bus.GetFrameBuffer()
	if err := app.window.RenderFrame(frame); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}

	app.processInput()
	return nil
}

func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.running = false
		case graphics.InputEventTypeButton:
			controller, button := mapGraphicsButton(event.Button)
			if button != 0 {
				app.Bus.SetControllerButton(controller, button, event.Pressed)
			}
		}
	}
}

// mapGraphicsButton translates a host-reported button into the
// controller port and NES button bit it represents.
func mapGraphicsButton(b graphics.Button) (controller int, button input.Button) {
	switch b {
	case graphics.ButtonA:
		return 1, input.ButtonA
	case graphics.ButtonB:
		return 1, input.ButtonB
	case graphics.ButtonSelect:
		return 1, input.ButtonSelect
	case graphics.ButtonStart:
		return 1, input.ButtonStart
	case graphics.ButtonUp:
		return 1, input.ButtonUp
	case graphics.ButtonDown:
		return 1, input.ButtonDown
	case graphics.ButtonLeft:
		return 1, input.ButtonLeft
	case graphics.ButtonRight:
		return 1, input.ButtonRight
	case graphics.Button2A:
		return 2, input.ButtonA
	case graphics.Button2B:
		return 2, input.ButtonB
	case graphics.Button2Select:
		return 2, input.ButtonSelect
	case graphics.Button2Start:
		return 2, input.ButtonStart
	case graphics.Button2Up:
		return 2, input.ButtonUp
	case graphics.Button2Down:
		return 2, input.ButtonDown
	case graphics.Button2Left:
		return 2, input.ButtonLeft
	case graphics.Button2Right:
		return 2, input.ButtonRight
	default:
		return 0, 0
	}
}

// SetControllerButtons sets all eight button states for a controller
// port (1 or 2), used by tests driving the emulator without a real
// input backend.
func (app *Application) SetControllerButtons(controller int, buttons [8]bool) {
	app.Bus.SetControllerButtons(controller, buttons)
}

// Pause suspends emulator stepping while still polling input.
func (app *Application) Pause() { app.paused = true }

// Resume resumes emulator stepping after Pause.
func (app *Application) Resume() { app.paused = false }

// Reset resets the currently loaded cartridge's emulator state.
func (app *Application) Reset() { app.Bus.Reset() }

// Stop ends the run loop at the next tick.
func (app *Application) Stop() { app.running = false }

// IsRunning reports whether the run loop is active.
func (app *Application) IsRunning() bool { return app.running }

// IsPaused reports whether emulator stepping is suspended.
func (app *Application) IsPaused() bool { return app.paused }

// GetConfig returns the application's configuration.
func (app *Application) GetConfig() *Config { return app.config }

// GetROMPath returns the path of the currently loaded ROM, or "" if
// none has been loaded.
func (app *Application) GetROMPath() string { return app.romPath }

// Cleanup releases the graphics backend's resources.
func (app *Application) Cleanup() error {
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			return err
		}
	}
	if app.backend != nil {
		return app.backend.Cleanup()
	}
	return nil
}
