//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitengineBackend implements Backend using Ebitengine.
type EbitengineBackend struct {
	initialized bool
	config      Config
	audioCtx    *audio.Context
	audioPlayer *audio.Player
}

// EbitengineWindow implements Window for Ebitengine.
type EbitengineWindow struct {
	title   string
	width   int
	height  int
	game       *ebitengineGame
	running    bool
	events     []InputEvent
	updateFunc func() error
}

// ebitengineGame implements ebiten.Game, translating Update/Draw
// callbacks into the Window's event queue and frame presentation.
type ebitengineGame struct {
	window      *EbitengineWindow
	frameImage  *ebiten.Image
	windowWidth int
	windowHeight int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend.
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("ebitengine backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	if b.config.Headless {
		return nil, fmt.Errorf("cannot create a window in headless mode")
	}

	game := &ebitengineGame{
		frameImage:   ebiten.NewImage(256, 240),
		windowWidth:  width,
		windowHeight: height,
	}
	window := &EbitengineWindow{title: title, width: width, height: height, game: game, running: true}
	game.window = window

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	ebiten.SetScreenFilterEnabled(b.config.Filter == "linear")

	return window, nil
}

func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *EbitengineBackend) IsHeadless() bool { return b.config.Headless }

func (b *EbitengineBackend) GetName() string { return "Ebitengine" }

// SetupAudio creates an ebiten audio context (if one doesn't already
// exist) and starts a looping player streaming from source.
func (b *EbitengineBackend) SetupAudio(source SampleSource, sampleRate int, volume float32) error {
	if b.audioCtx == nil {
		b.audioCtx = audio.NewContext(sampleRate)
	}

	player, err := b.audioCtx.NewPlayer(NewAudioStream(source, sampleRate, volume))
	if err != nil {
		return fmt.Errorf("creating audio player: %w", err)
	}
	b.audioPlayer = player
	b.audioPlayer.Play()
	return nil
}

func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

func (w *EbitengineWindow) GetSize() (width, height int) { return w.width, w.height }

func (w *EbitengineWindow) ShouldClose() bool { return !w.running }

func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

func (w *EbitengineWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	pix := make([]byte, 256*240*4)
	for i, pixel := range frameBuffer {
		pix[i*4] = uint8(pixel >> 16)
		pix[i*4+1] = uint8(pixel >> 8)
		pix[i*4+2] = uint8(pixel)
		pix[i*4+3] = 255
	}
	w.game.frameImage.WritePixels(pix)
	return nil
}

func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop, blocking until the window
// closes.
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	return ebiten.RunGame(w.game)
}

// SetUpdateFunc installs the per-frame emulator driver, called once
// per Ebitengine Update tick (60Hz).
func (w *EbitengineWindow) SetUpdateFunc(update func() error) {
	w.updateFunc = update
}

func (g *ebitengineGame) Update() error {
	if g.window == nil {
		return nil
	}
	g.processInput()
	if g.window.updateFunc != nil {
		return g.window.updateFunc()
	}
	return nil
}

func (g *ebitengineGame) Draw(screen *ebiten.Image) {
	if g.frameImage == nil {
		screen.Fill(color.Black)
		return
	}
	op := &ebiten.DrawImageOptions{}
	scaleX := float64(g.windowWidth) / 256
	scaleY := float64(g.windowHeight) / 240
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	offsetX := (float64(g.windowWidth) - 256*scale) / 2
	offsetY := (float64(g.windowHeight) - 240*scale) / 2
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.Fill(color.Black)
	screen.DrawImage(g.frameImage, op)
}

func (g *ebitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

var keyMappings = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyW:          KeyW,
	ebiten.KeyA:          KeyA,
	ebiten.KeyS:          KeyS,
	ebiten.KeyD:          KeyD,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
}

var buttonMappings = map[Key]Button{
	KeyUp:    ButtonUp,
	KeyDown:  ButtonDown,
	KeyLeft:  ButtonLeft,
	KeyRight: ButtonRight,
	KeyW:     ButtonUp,
	KeyS:     ButtonDown,
	KeyA:     ButtonLeft,
	KeyD:     ButtonRight,
	KeyJ:     ButtonA,
	KeyK:     ButtonB,
	KeyEnter: ButtonStart,
	KeySpace: ButtonSelect,
}

func (g *ebitengineGame) processInput() {
	if g.window == nil {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}

	for ebitenKey, key := range keyMappings {
		button, mapped := buttonMappings[key]
		if !mapped {
			continue
		}
		if inpututil.IsKeyJustPressed(ebitenKey) {
			g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeButton, Button: button, Pressed: true})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeButton, Button: button, Pressed: false})
		}
	}
}
