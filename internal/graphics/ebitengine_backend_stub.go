//go:build headless
// +build headless

package graphics

import "fmt"

// EbitengineBackend stub for headless builds, where the real backend
// (and its ebiten dependency) is compiled out entirely.
type EbitengineBackend struct{}

// EbitengineWindow stub for headless builds.
type EbitengineWindow struct{}

// NewEbitengineBackend creates a stub backend for headless builds.
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

func (b *EbitengineBackend) Initialize(config Config) error {
	return fmt.Errorf("ebitengine backend not available in headless build")
}

func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, fmt.Errorf("ebitengine backend not available in headless build")
}

func (b *EbitengineBackend) Cleanup() error { return nil }

func (b *EbitengineBackend) IsHeadless() bool { return true }

func (b *EbitengineBackend) GetName() string { return "Ebitengine-Stub" }

func (b *EbitengineBackend) SetupAudio(source SampleSource, sampleRate int, volume float32) error {
	return fmt.Errorf("ebitengine backend not available in headless build")
}

func (w *EbitengineWindow) SetTitle(title string)          {}
func (w *EbitengineWindow) GetSize() (width, height int)   { return 0, 0 }
func (w *EbitengineWindow) ShouldClose() bool              { return true }
func (w *EbitengineWindow) PollEvents() []InputEvent       { return nil }
func (w *EbitengineWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	return fmt.Errorf("ebitengine backend not available in headless build")
}
func (w *EbitengineWindow) Cleanup() error { return nil }
