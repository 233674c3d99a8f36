package accum

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/paintcore"
)

func testDab(x, y float64) paintcore.DabPlacement {
	return paintcore.DabPlacement{
		X: x, Y: y, Size: 20, Roundness: 1,
		Flow: 1, Opacity: 1, Hardness: 0.8,
		Color: paintcore.RGB(1, 0, 0),
	}
}

func TestCPULifecycle(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()

	if err := c.BeginStroke(ctx, StrokeParams{Width: 100, Height: 100}); err != nil {
		t.Fatalf("BeginStroke: %v", err)
	}
	if err := c.StampDab(testDab(50, 50)); err != nil {
		t.Fatalf("StampDab: %v", err)
	}

	dst := paintcore.NewPixmap(100, 100)
	end, err := c.PrepareEndStroke(ctx)
	if err != nil {
		t.Fatalf("PrepareEndStroke: %v", err)
	}
	if end.Dirty.IsEmpty() {
		t.Fatal("dirty rect empty after stamping")
	}
	// Destination untouched until commit.
	if dst.GetPixel(50, 50).A != 0 {
		t.Fatal("destination modified before commit")
	}

	if err := c.CommitAndClear(dst, 1, ModeSourceOver); err != nil {
		t.Fatalf("CommitAndClear: %v", err)
	}
	if dst.GetPixel(50, 50).A == 0 {
		t.Error("destination not painted after commit")
	}
	// Scratch cleared by the commit.
	if end.Scratch.GetPixel(50, 50).A != 0 {
		t.Error("scratch not cleared after commit")
	}
}

func TestCPUStampWithoutBegin(t *testing.T) {
	c := NewCPU()
	if err := c.StampDab(testDab(0, 0)); !errors.Is(err, paintcore.ErrNoActiveStroke) {
		t.Errorf("err = %v, want ErrNoActiveStroke", err)
	}
}

func TestCPUStampAfterPrepareRejected(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	if err := c.BeginStroke(ctx, StrokeParams{Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PrepareEndStroke(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.StampDab(testDab(5, 5)); !errors.Is(err, paintcore.ErrNoActiveStroke) {
		t.Errorf("stamp after prepare: err = %v, want ErrNoActiveStroke", err)
	}
	c.Abort()
}

// A new stroke must not open while the previous one sits between
// PrepareEndStroke and CommitAndClear.
func TestCPUTailgatingStrokeBlocks(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := c.StampDab(testDab(25, 25)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PrepareEndStroke(ctx); err != nil {
		t.Fatal(err)
	}

	// Second BeginStroke with a short deadline: must time out.
	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := c.BeginStroke(shortCtx, StrokeParams{Width: 50, Height: 50}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("tailgating begin err = %v, want deadline exceeded", err)
	}

	// After commit the lock is free again.
	dst := paintcore.NewPixmap(50, 50)
	if err := c.CommitAndClear(dst, 1, ModeSourceOver); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatalf("begin after commit: %v", err)
	}
	c.Abort()
}

func TestCPUAbortLeavesDestination(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	dst := paintcore.NewPixmap(50, 50)
	before := dst.Clone()

	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := c.StampDab(testDab(25, 25)); err != nil {
		t.Fatal(err)
	}
	c.Abort()

	if !dst.Equal(before) {
		t.Error("abort modified the destination")
	}
	// Lock released: the next stroke opens immediately.
	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatalf("begin after abort: %v", err)
	}
	c.Abort()
}

func TestCPUAbortIdleIsNoop(t *testing.T) {
	c := NewCPU()
	c.Abort()
	c.Abort()
	if err := c.BeginStroke(context.Background(), StrokeParams{Width: 10, Height: 10}); err != nil {
		t.Fatalf("begin after idle aborts: %v", err)
	}
}

func TestCPUCommitOpacityCeiling(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := c.StampDab(testDab(25, 25)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PrepareEndStroke(ctx); err != nil {
		t.Fatal(err)
	}
	dst := paintcore.NewPixmap(50, 50)
	if err := c.CommitAndClear(dst, 0.5, ModeSourceOver); err != nil {
		t.Fatal(err)
	}
	if got := dst.GetPixel(25, 25).A; got > 0.51 {
		t.Errorf("committed alpha = %v, want <= 0.5", got)
	}
}

func TestCPUCommitErase(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	dst := paintcore.NewPixmap(50, 50)
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			dst.SetPixel(x, y, paintcore.RGB(0, 0, 1))
		}
	}

	if err := c.BeginStroke(ctx, StrokeParams{Width: 50, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := c.StampDab(testDab(25, 25)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PrepareEndStroke(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.CommitAndClear(dst, 1, ModeErase); err != nil {
		t.Fatal(err)
	}

	if got := dst.GetPixel(25, 25).A; got > 0.1 {
		t.Errorf("erased center alpha = %v, want near 0", got)
	}
	if got := dst.GetPixel(2, 2).A; got != 1 {
		t.Errorf("untouched pixel alpha = %v, want 1", got)
	}
}

func TestCPUScratchReuseAcrossStrokes(t *testing.T) {
	c := NewCPU()
	ctx := context.Background()
	dst := paintcore.NewPixmap(60, 60)

	for i := 0; i < 3; i++ {
		if err := c.BeginStroke(ctx, StrokeParams{Width: 60, Height: 60}); err != nil {
			t.Fatal(err)
		}
		if err := c.StampDab(testDab(30, 30)); err != nil {
			t.Fatal(err)
		}
		if _, err := c.PrepareEndStroke(ctx); err != nil {
			t.Fatal(err)
		}
		if err := c.CommitAndClear(dst, 1, ModeSourceOver); err != nil {
			t.Fatal(err)
		}
	}
	if dst.GetPixel(30, 30).A == 0 {
		t.Error("repeated strokes left no paint")
	}
}
