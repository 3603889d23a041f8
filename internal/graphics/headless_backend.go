package graphics

// HeadlessBackend implements Backend without opening a real window,
// used for tests and for running ROMs without a display attached.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements Window for headless operation: it keeps
// the last rendered frame for inspection instead of presenting it.
type HeadlessWindow struct {
	title       string
	width       int
	height      int
	running     bool
	frameCount  int
	lastFrame   [256 * 240]uint32
}

// NewHeadlessBackend creates a new headless graphics backend.
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

func (b *HeadlessBackend) Initialize(config Config) error {
	b.config = config
	b.initialized = true
	return nil
}

func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	return &HeadlessWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
	}, nil
}

func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *HeadlessBackend) IsHeadless() bool { return true }

func (b *HeadlessBackend) GetName() string { return "Headless" }

// SetupAudio is a no-op: headless runs produce no sound output.
func (b *HeadlessBackend) SetupAudio(source SampleSource, sampleRate int, volume float32) error {
	return nil
}

func (w *HeadlessWindow) SetTitle(title string) { w.title = title }

func (w *HeadlessWindow) GetSize() (width, height int) { return w.width, w.height }

func (w *HeadlessWindow) ShouldClose() bool { return !w.running }

func (w *HeadlessWindow) PollEvents() []InputEvent { return nil }

// RenderFrame records the frame for later inspection rather than
// presenting it; tests read it back via LastFrame.
func (w *HeadlessWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	w.frameCount++
	w.lastFrame = frameBuffer
	return nil
}

// LastFrame returns the most recently rendered frame buffer.
func (w *HeadlessWindow) LastFrame() [256 * 240]uint32 {
	return w.lastFrame
}

// FrameCount returns how many frames have been rendered.
func (w *HeadlessWindow) FrameCount() int {
	return w.frameCount
}

func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}
