package accum

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/paintcore"
)

func init() {
	Register(BackendCPU, func() Accumulator { return NewCPU() })
}

// gaussKey caches the Gaussian factors per brush shape, since every
// dab of a typical stroke shares them.
type gaussKey struct {
	hardness  float32
	radius    float64
	roundness float64
}

// CPU is the software accumulator backend. Dabs are rendered into an
// off-layer scratch pixmap with alpha-darken compositing; the scratch
// is blended onto the destination in one atomic commit.
type CPU struct {
	// sem holds one token per uncommitted stroke. BeginStroke
	// acquires it and only CommitAndClear or Abort release it, so a
	// new stroke cannot open while a finished one awaits commit.
	sem chan struct{}

	mu       sync.Mutex
	scratch  *paintcore.Pixmap
	dirty    paintcore.Rect
	stamping bool
	holding  bool

	lastKey    gaussKey
	lastParams gaussParams
	haveParams bool
}

var _ Accumulator = (*CPU)(nil)

// NewCPU returns a software accumulator.
func NewCPU() *CPU {
	return &CPU{sem: make(chan struct{}, 1)}
}

// Name implements Accumulator.
func (c *CPU) Name() string { return BackendCPU }

// Scratch exposes the live scratch buffer for display compositing.
// The accumulator retains ownership; callers must not hold the
// returned pixmap across strokes.
func (c *CPU) Scratch() *paintcore.Pixmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scratch
}

// BeginStroke implements Accumulator. It blocks until any uncommitted
// stroke is resolved, then clears the scratch for the new stroke.
func (c *CPU) BeginStroke(ctx context.Context, params StrokeParams) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("accum: begin stroke: %w", ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scratch == nil || c.scratch.Width() != params.Width || c.scratch.Height() != params.Height {
		c.scratch = paintcore.NewPixmap(params.Width, params.Height)
	} else {
		c.scratch.ClearRect(c.dirty)
	}
	c.dirty = paintcore.Rect{}
	c.stamping = true
	c.holding = true
	return nil
}

// StampDab implements Accumulator.
func (c *CPU) StampDab(dab paintcore.DabPlacement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stamping {
		return paintcore.ErrNoActiveStroke
	}

	var touched paintcore.Rect
	if dab.Mask == paintcore.MaskTexture && dab.Texture != nil {
		touched = renderTextureDab(c.scratch, dab)
	} else {
		touched = renderSoftDab(c.scratch, dab, c.params(dab))
	}
	c.dirty = c.dirty.Union(touched)
	return nil
}

// params returns the cached Gaussian factors for the dab's shape,
// recomputing only when the shape changes.
func (c *CPU) params(dab paintcore.DabPlacement) gaussParams {
	key := gaussKey{hardness: dab.Hardness, radius: dab.Size / 2, roundness: dab.Roundness}
	if !c.haveParams || key != c.lastKey {
		c.lastParams = newGaussParams(key.hardness, key.radius, key.roundness)
		c.lastKey = key
		c.haveParams = true
	}
	return c.lastParams
}

// PrepareEndStroke implements Accumulator. The CPU backend has no
// batched work to flush; it closes the stroke to further stamps and
// hands back the dirty rect while keeping the finishing lock held.
func (c *CPU) PrepareEndStroke(ctx context.Context) (EndState, error) {
	if err := ctx.Err(); err != nil {
		return EndState{}, fmt.Errorf("accum: prepare end stroke: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stamping {
		return EndState{}, paintcore.ErrNoActiveStroke
	}
	c.stamping = false
	return EndState{Dirty: c.dirty, Scratch: c.scratch}, nil
}

// CommitAndClear implements Accumulator. Composite onto dst and clear
// the scratch in one step; there is no yield point between them, so an
// observer sees either the pre-commit or the post-commit state.
func (c *CPU) CommitAndClear(dst *paintcore.Pixmap, opacity float32, mode CompositeMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.holding {
		return paintcore.ErrNoActiveStroke
	}

	if dst != nil && !c.dirty.IsEmpty() {
		compositeScratch(dst, c.scratch, c.dirty, opacity, mode)
	}
	c.scratch.ClearRect(c.dirty)
	c.dirty = paintcore.Rect{}
	c.stamping = false
	c.holding = false
	<-c.sem

	paintcore.Logger().Debug("stroke committed",
		slog.String("backend", BackendCPU),
		slog.String("mode", mode.String()))
	return nil
}

// Abort implements Accumulator. Safe to call at any time, including
// when no stroke is open.
func (c *CPU) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scratch != nil {
		c.scratch.ClearRect(c.dirty)
	}
	c.dirty = paintcore.Rect{}
	c.stamping = false
	if c.holding {
		c.holding = false
		<-c.sem
	}
}
