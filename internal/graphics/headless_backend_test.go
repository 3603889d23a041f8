package graphics

import "testing"

func TestHeadlessBackendReportsItself(t *testing.T) {
	b := NewHeadlessBackend()
	if !b.IsHeadless() {
		t.Fatal("expected headless backend to report IsHeadless true")
	}
	if b.GetName() != "Headless" {
		t.Fatalf("expected name Headless, got %s", b.GetName())
	}
	if err := b.Initialize(Config{WindowTitle: "nesgo"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := b.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
}

func TestHeadlessWindowTracksFramesAndSize(t *testing.T) {
	b := NewHeadlessBackend()
	window, err := b.CreateWindow("nesgo", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}

	w, h := window.GetSize()
	if w != 256 || h != 240 {
		t.Fatalf("expected size 256x240, got %dx%d", w, h)
	}
	if window.ShouldClose() {
		t.Fatal("freshly created window should not report ShouldClose")
	}

	hw, ok := window.(*HeadlessWindow)
	if !ok {
		t.Fatal("expected *HeadlessWindow from headless backend")
	}
	if hw.FrameCount() != 0 {
		t.Fatalf("expected zero frames initially, got %d", hw.FrameCount())
	}

	var frame [256 * 240]uint32
	frame[0] = 0xFF0000FF
	if err := window.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if hw.FrameCount() != 1 {
		t.Fatalf("expected one frame rendered, got %d", hw.FrameCount())
	}
	if hw.LastFrame()[0] != 0xFF0000FF {
		t.Fatalf("expected last frame to retain pixel data, got %#x", hw.LastFrame()[0])
	}

	if err := window.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if !window.ShouldClose() {
		t.Fatal("expected ShouldClose true after Cleanup")
	}
}

func TestHeadlessWindowPollEventsIsEmpty(t *testing.T) {
	b := NewHeadlessBackend()
	window, _ := b.CreateWindow("nesgo", 256, 240)
	if events := window.PollEvents(); events != nil {
		t.Fatalf("expected no input events from a headless window, got %v", events)
	}
}

func TestHeadlessBackendSetupAudioIsNoop(t *testing.T) {
	b := NewHeadlessBackend()
	if err := b.SetupAudio(nil, 44100, 0.5); err != nil {
		t.Fatalf("expected no error from headless SetupAudio, got %v", err)
	}
}

func TestCreateBackendSelectsHeadless(t *testing.T) {
	b, err := CreateBackend(BackendHeadless)
	if err != nil {
		t.Fatalf("CreateBackend failed: %v", err)
	}
	if !b.IsHeadless() {
		t.Fatal("expected BackendHeadless to produce a headless backend")
	}
}
