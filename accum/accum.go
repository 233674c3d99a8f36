package accum

import (
	"context"

	"github.com/gogpu/paintcore"
)

// CompositeMode selects how the scratch buffer is blended onto the
// destination layer at commit time.
type CompositeMode int

const (
	// ModeSourceOver is normal paint: scratch over destination.
	ModeSourceOver CompositeMode = iota
	// ModeMultiply darkens the destination by the scratch color.
	ModeMultiply
	// ModeErase removes destination alpha where the scratch has paint.
	ModeErase
)

// String returns the mode name.
func (m CompositeMode) String() string {
	switch m {
	case ModeSourceOver:
		return "source-over"
	case ModeMultiply:
		return "multiply"
	case ModeErase:
		return "erase"
	default:
		return "unknown"
	}
}

// StrokeParams sizes the scratch buffer for one stroke. The scratch
// matches the destination layer so dab coordinates map one to one.
type StrokeParams struct {
	Width  int
	Height int
}

// EndState is the result of preparing a stroke for commit: the dirty
// region touched by the stroke and a handle to the scratch pixels.
// The destination layer has not been modified yet.
type EndState struct {
	Dirty   paintcore.Rect
	Scratch *paintcore.Pixmap
}

// Accumulator is the per-stroke paint buffer contract.
//
// Lifecycle: BeginStroke, any number of StampDab, then either
// PrepareEndStroke followed by exactly one CommitAndClear, or Abort.
// Between PrepareEndStroke and CommitAndClear the accumulator holds a
// finishing lock; a BeginStroke issued in that window blocks until the
// pending commit or abort releases it, so a tailgating stroke can
// never interleave with an uncommitted one.
type Accumulator interface {
	// BeginStroke clears the scratch and opens a new stroke. It
	// blocks while a previous stroke is still uncommitted; ctx
	// bounds the wait.
	BeginStroke(ctx context.Context, params StrokeParams) error

	// StampDab renders one dab into the scratch buffer.
	StampDab(dab paintcore.DabPlacement) error

	// PrepareEndStroke flushes any batched work and returns the
	// stroke's dirty rect and scratch handle. The destination is
	// untouched; the finishing lock is now held.
	PrepareEndStroke(ctx context.Context) (EndState, error)

	// CommitAndClear composites the scratch onto dst at the stroke
	// opacity ceiling, clears the scratch, and releases the finishing
	// lock. The composite and the clear are one uninterruptible step.
	CommitAndClear(dst *paintcore.Pixmap, opacity float32, mode CompositeMode) error

	// Abort discards the scratch and releases the finishing lock
	// without touching the destination.
	Abort()

	// Name identifies the backend ("cpu", "wgpu").
	Name() string
}
