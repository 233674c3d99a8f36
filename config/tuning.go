package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning is the pipeline tuning policy. Keys absent from the YAML
// file keep their defaults; present values must pass validation.
type Tuning struct {
	// SuppressionWindowMs is the duplicate pointer-down suppression
	// window in milliseconds. Negative or zero disables suppression;
	// omit the key to keep the default.
	SuppressionWindowMs int `yaml:"suppression_window_ms"`

	// NativeMissRetries is the number of consecutive empty native
	// drains tolerated before the pipeline falls back to the windowed
	// pointer channel.
	NativeMissRetries int `yaml:"native_miss_retries"`

	// SmootherWindow is the pressure smoothing window in samples.
	SmootherWindow int `yaml:"smoother_window"`

	// SpeedWindow is the speed sensor smoothing window in samples.
	SpeedWindow int `yaml:"speed_window"`

	// FrameRate is the display cadence in frames per second.
	FrameRate int `yaml:"frame_rate"`

	// QueueCapacity bounds the per-frame sample queue.
	QueueCapacity int `yaml:"queue_capacity"`

	// Backend is the preferred accumulator backend ("wgpu", "cpu").
	// Empty selects by priority.
	Backend string `yaml:"backend"`
}

// Default returns the built-in tuning policy.
func Default() Tuning {
	return Tuning{
		SuppressionWindowMs: 40,
		NativeMissRetries:   3,
		SmootherWindow:      3,
		SpeedWindow:         3,
		FrameRate:           60,
		QueueCapacity:       512,
	}
}

// Load reads a tuning file and merges it over the defaults. A missing
// file is not an error; the defaults apply.
func Load(path string) (Tuning, error) {
	t := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := t.UnmarshalBytes(data); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return t, nil
}

// UnmarshalBytes merges YAML bytes over the receiver and validates the
// result.
func (t *Tuning) UnmarshalBytes(data []byte) error {
	if err := yaml.Unmarshal(data, t); err != nil {
		return err
	}
	return t.Validate()
}

// Validate rejects out-of-range values.
func (t *Tuning) Validate() error {
	if t.SuppressionWindowMs < -1 {
		return fmt.Errorf("suppression_window_ms %d out of range", t.SuppressionWindowMs)
	}
	if t.NativeMissRetries < 0 {
		return fmt.Errorf("native_miss_retries %d out of range", t.NativeMissRetries)
	}
	if t.SmootherWindow < 1 || t.SmootherWindow > 64 {
		return fmt.Errorf("smoother_window %d out of range [1, 64]", t.SmootherWindow)
	}
	if t.SpeedWindow < 1 || t.SpeedWindow > 64 {
		return fmt.Errorf("speed_window %d out of range [1, 64]", t.SpeedWindow)
	}
	if t.FrameRate < 1 || t.FrameRate > 240 {
		return fmt.Errorf("frame_rate %d out of range [1, 240]", t.FrameRate)
	}
	if t.QueueCapacity < 16 {
		return fmt.Errorf("queue_capacity %d below minimum 16", t.QueueCapacity)
	}
	switch t.Backend {
	case "", "cpu", "wgpu":
	default:
		return fmt.Errorf("unknown backend %q", t.Backend)
	}
	return nil
}

// SuppressionWindow returns the window as a duration. A disabled
// window comes back as zero.
func (t Tuning) SuppressionWindow() time.Duration {
	if t.SuppressionWindowMs < 0 {
		return 0
	}
	return time.Duration(t.SuppressionWindowMs) * time.Millisecond
}

// FrameInterval returns the tick period for the configured frame rate.
func (t Tuning) FrameInterval() time.Duration {
	return time.Second / time.Duration(t.FrameRate)
}
