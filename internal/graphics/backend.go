// Package graphics abstracts the video/input presentation layer so
// internal/app can drive either a real window or a headless backend
// for testing without touching the emulation core.
package graphics

// Backend represents a graphics rendering backend.
type Backend interface {
	Initialize(config Config) error
	CreateWindow(title string, width, height int) (Window, error)
	Cleanup() error
	IsHeadless() bool
	GetName() string

	// SetupAudio starts playback pulled from source at sampleRate,
	// scaled by volume (0.0-1.0). Headless backends no-op.
	SetupAudio(source SampleSource, sampleRate int, volume float32) error
}

// SampleSource is the APU's output surface as seen by the audio
// sink: a buffer of raw float32 PCM, one sample per CPU cycle, that the
// APU fills during emulation and AudioStream downsamples.
type SampleSource interface {
	GetSamples() []float32
}

// Window represents a rendering window bound to a backend.
type Window interface {
	SetTitle(title string)
	GetSize() (width, height int)
	ShouldClose() bool
	PollEvents() []InputEvent
	RenderFrame(frameBuffer [256 * 240]uint32) error
	Cleanup() error
}

// Config contains configuration for graphics backends.
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	Filter      string // "nearest", "linear"
	AspectRatio string // "4:3", "stretch"

	Headless bool
}

// InputEvent represents an input event from the window.
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Button  Button
	Pressed bool
}

// InputEventType represents the type of input event.
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys the host backend can report.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
)

// Button represents controller buttons for both NES controller ports.
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	Button2A
	Button2B
	Button2Select
	Button2Start
	Button2Up
	Button2Down
	Button2Left
	Button2Right
)

// BackendType names the available graphics backend implementations.
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
)

// CreateBackend creates a graphics backend of the specified type,
// defaulting to the real GUI backend for unrecognized types.
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	default:
		return NewEbitengineBackend(), nil
	}
}
