package stroke

import (
	"context"
	"time"

	"github.com/gogpu/paintcore"
)

// DefaultFrameInterval is the display cadence, 60 Hz.
const DefaultFrameInterval = time.Second / 60

// FrameDriver ticks the pipeline at a fixed cadence. Each tick drains
// the per-frame queue through the machine and produces exactly one
// display composite, regardless of how many samples arrived since the
// previous tick.
type FrameDriver struct {
	machine  *Machine
	view     *paintcore.ViewCompositor
	layers   paintcore.LayerStore
	layer    paintcore.LayerID
	interval time.Duration

	frames uint64
}

// DriverOption configures a FrameDriver.
type DriverOption func(*FrameDriver)

// WithFrameInterval overrides the tick cadence.
func WithFrameInterval(d time.Duration) DriverOption {
	return func(fd *FrameDriver) {
		if d > 0 {
			fd.interval = d
		}
	}
}

// NewFrameDriver creates a driver compositing the machine's target
// layer into view. A nil view disables compositing; the driver then
// only advances the machine.
func NewFrameDriver(m *Machine, view *paintcore.ViewCompositor, layers paintcore.LayerStore, layer paintcore.LayerID, opts ...DriverOption) *FrameDriver {
	fd := &FrameDriver{
		machine:  m,
		view:     view,
		layers:   layers,
		layer:    layer,
		interval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(fd)
	}
	return fd
}

// Frames returns the number of ticks processed so far.
func (fd *FrameDriver) Frames() uint64 { return fd.frames }

// Step runs one frame: drain, then one composite. It is the unit the
// ticker loop repeats and is exposed for deterministic tests.
func (fd *FrameDriver) Step(ctx context.Context) error {
	dirty := fd.machine.ProcessFrame(ctx)
	fd.frames++

	if fd.view == nil || dirty.IsEmpty() {
		return nil
	}
	layer, err := fd.layers.GetImageSnapshot(fd.layer)
	if err != nil {
		return err
	}
	fd.view.Composite(layer, fd.machine.LiveScratch(), dirty)
	return nil
}

// Run ticks Step at the configured cadence until ctx is canceled.
// Missed ticks are coalesced by the ticker; the queue absorbs the
// backlog and the next frame drains it whole.
func (fd *FrameDriver) Run(ctx context.Context) error {
	ticker := time.NewTicker(fd.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fd.Step(ctx); err != nil {
				paintcore.Logger().Error("frame step failed", "error", err)
			}
		}
	}
}
