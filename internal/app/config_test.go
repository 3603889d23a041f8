package app

import (
	"path/filepath"
	"testing"
)

func TestNewConfigHasSaneDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		t.Fatal("expected non-zero default window dimensions")
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("expected default sample rate 44100, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Video.Backend != "ebitengine" {
		t.Fatalf("expected default backend ebitengine, got %s", cfg.Video.Backend)
	}
}

func TestLoadFromFileFallsBackToDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("expected no error for a missing config file, got %v", err)
	}
	if cfg.Window.Scale != NewConfig().Window.Scale {
		t.Fatal("expected defaults when the config file does not exist")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := NewConfig()
	cfg.Audio.Volume = 0.25
	cfg.Window.Width = 1024

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Audio.Volume != 0.25 {
		t.Fatalf("expected volume 0.25, got %v", loaded.Audio.Volume)
	}
	if loaded.Window.Width != 1024 {
		t.Fatalf("expected width 1024, got %d", loaded.Window.Width)
	}
}
