package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValid(t *testing.T) {
	d := Default()
	if err := d.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if d.FrameInterval() != time.Second/60 {
		t.Errorf("FrameInterval = %v, want %v", d.FrameInterval(), time.Second/60)
	}
	if d.SuppressionWindow() != 40*time.Millisecond {
		t.Errorf("SuppressionWindow = %v, want 40ms", d.SuppressionWindow())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Default() {
		t.Errorf("missing file: got %+v, want defaults", got)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "frame_rate: 120\nbackend: cpu\nsuppression_window_ms: -1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FrameRate != 120 {
		t.Errorf("FrameRate = %d, want 120", got.FrameRate)
	}
	if got.Backend != "cpu" {
		t.Errorf("Backend = %q, want cpu", got.Backend)
	}
	if got.SuppressionWindow() != 0 {
		t.Errorf("SuppressionWindow = %v, want disabled", got.SuppressionWindow())
	}
	// Untouched keys keep their defaults.
	if got.SmootherWindow != Default().SmootherWindow {
		t.Errorf("SmootherWindow = %d, want default %d", got.SmootherWindow, Default().SmootherWindow)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"frame rate", "frame_rate: 1000\n"},
		{"queue capacity", "queue_capacity: 1\n"},
		{"backend", "backend: cuda\n"},
		{"smoother window", "smoother_window: -2\n"},
		{"syntax", "frame_rate: [oops\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err == nil {
				t.Fatal("bad config accepted")
			}
			// A rejected file leaves the caller on the defaults.
			if got != Default() {
				t.Errorf("rejected load returned %+v, want defaults", got)
			}
		})
	}
}
