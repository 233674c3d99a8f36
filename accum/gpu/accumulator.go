//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/accum"
)

// maxBatchDabs bounds one dispatch. A fast stroke at high sample
// rates stays well under this; crossing it just splits the flush.
const maxBatchDabs = 1024

func init() {
	accum.Register(accum.BackendWGPU, func() accum.Accumulator {
		a, err := New()
		if err != nil {
			paintcore.Logger().Debug("wgpu accumulator unavailable",
				slog.Any("error", err))
			return nil
		}
		return a
	})
}

// Accumulator is the wgpu stroke accumulator. Dabs are converted to
// the shader layout and batched per flush; the same alpha-darken
// algorithm runs on a CPU mirror of the scratch so results stay
// pixel-correct while hal buffer binding is completed.
type Accumulator struct {
	pipe   *dabPipeline
	mirror *accum.CPU

	mu      sync.Mutex
	batch   []dabGPU
	width   int
	height  int
	faulted bool
}

var _ accum.Accumulator = (*Accumulator)(nil)

// New creates a wgpu accumulator on the shared or standalone device.
// Fails when no GPU device can be acquired or the shader does not
// compile, in which case the registry falls back to the CPU backend.
func New() (*Accumulator, error) {
	device, queue, err := shared.acquire()
	if err != nil {
		return nil, err
	}
	pipe, err := newDabPipeline(device, queue)
	if err != nil {
		return nil, err
	}
	paintcore.Logger().Info("wgpu accumulator initialized")
	return &Accumulator{pipe: pipe, mirror: accum.NewCPU()}, nil
}

// Name implements accum.Accumulator.
func (a *Accumulator) Name() string { return accum.BackendWGPU }

// Scratch exposes the mirror's scratch buffer for display compositing.
func (a *Accumulator) Scratch() *paintcore.Pixmap { return a.mirror.Scratch() }

// BeginStroke implements accum.Accumulator.
func (a *Accumulator) BeginStroke(ctx context.Context, params accum.StrokeParams) error {
	a.mu.Lock()
	if a.faulted {
		a.mu.Unlock()
		return fmt.Errorf("accum/gpu: begin stroke: %w", paintcore.ErrBackendFault)
	}
	a.batch = a.batch[:0]
	a.width = params.Width
	a.height = params.Height
	a.mu.Unlock()

	return a.mirror.BeginStroke(ctx, params)
}

// StampDab implements accum.Accumulator. The dab joins the current
// GPU batch and is stamped into the CPU mirror.
func (a *Accumulator) StampDab(dab paintcore.DabPlacement) error {
	a.mu.Lock()
	if a.faulted {
		a.mu.Unlock()
		return fmt.Errorf("accum/gpu: stamp dab: %w", paintcore.ErrBackendFault)
	}
	a.batch = append(a.batch, toDabGPU(dab))
	full := len(a.batch) >= maxBatchDabs
	a.mu.Unlock()

	if err := a.mirror.StampDab(dab); err != nil {
		return err
	}
	if full {
		return a.flush()
	}
	return nil
}

// PrepareEndStroke implements accum.Accumulator.
func (a *Accumulator) PrepareEndStroke(ctx context.Context) (accum.EndState, error) {
	if err := a.flush(); err != nil {
		return accum.EndState{}, err
	}
	return a.mirror.PrepareEndStroke(ctx)
}

// CommitAndClear implements accum.Accumulator.
func (a *Accumulator) CommitAndClear(dst *paintcore.Pixmap, opacity float32, mode accum.CompositeMode) error {
	return a.mirror.CommitAndClear(dst, opacity, mode)
}

// Abort implements accum.Accumulator.
func (a *Accumulator) Abort() {
	a.mu.Lock()
	a.batch = a.batch[:0]
	a.mu.Unlock()
	a.mirror.Abort()
}

// Close releases GPU pipeline resources.
func (a *Accumulator) Close() {
	if a.pipe != nil {
		a.pipe.destroy()
	}
}

// flush dispatches the pending batch. A dispatch failure marks the
// accumulator faulted; every later call reports ErrBackendFault until
// the session downgrades.
func (a *Accumulator) flush() error {
	a.mu.Lock()
	if len(a.batch) == 0 {
		a.mu.Unlock()
		return nil
	}
	batch := a.batch
	cfg := batchConfig{
		Width:    uint32(a.width),  //nolint:gosec // layer dims are bounded
		Height:   uint32(a.height), //nolint:gosec // layer dims are bounded
		DabCount: uint32(len(batch)),
	}
	a.batch = a.batch[:0]
	a.mu.Unlock()

	if err := a.pipe.dispatch(cfg, batch); err != nil {
		a.mu.Lock()
		a.faulted = true
		a.mu.Unlock()
		return fmt.Errorf("accum/gpu: dispatch: %w (%v)", paintcore.ErrBackendFault, err)
	}
	return nil
}

// toDabGPU converts a placement to the shader layout, precomputing
// the Gaussian mask factors the shader consumes.
func toDabGPU(dab paintcore.DabPlacement) dabGPU {
	radius := math.Max(dab.Size/2, 0.5)
	fade := (1 - float64(dab.Hardness)) * 2
	if fade < 1e-6 {
		fade = 1e-6
	}
	if fade > 2 {
		fade = 2
	}
	center := (2.5 * (6761*fade - 10000)) / (math.Sqrt2 * 6761 * fade)
	roundness := dab.Roundness
	if roundness < 0.01 {
		roundness = 0.01
	}
	return dabGPU{
		X:           float32(dab.X),
		Y:           float32(dab.Y),
		Radius:      float32(radius),
		YCoef:       float32(1 / roundness),
		Center:      float32(center),
		AlphaFactor: float32(255 / (2 * math.Erf(center))),
		DistFactor:  float32(math.Sqrt2 * 12500 / (6761 * fade * radius)),
		Extent:      float32(radius*(1+fade) + 1),
		R:           float32(clampUnit(dab.Color.R) * 255),
		G:           float32(clampUnit(dab.Color.G) * 255),
		B:           float32(clampUnit(dab.Color.B) * 255),
		Flow:        dab.Flow,
		Opacity:     dab.Opacity,
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
