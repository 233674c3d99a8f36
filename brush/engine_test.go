package brush

import (
	"math"
	"testing"

	"github.com/gogpu/paintcore"
)

func testBrush() paintcore.BrushConfig {
	return paintcore.BrushConfig{
		Size:      10,
		Roundness: 1,
		Hardness:  0.8,
		Spacing:   0.5,
		Opacity:   1,
		Flow:      1,
		Color:     paintcore.RGB(0, 0, 0),
	}
}

func sample(phase paintcore.Phase, x, y float64, pressure float32, timeUs uint64) paintcore.InputSample {
	return paintcore.InputSample{
		X: x, Y: y,
		Pressure:   pressure,
		HostTimeUs: timeUs,
		StrokeID:   1,
		Source:     paintcore.SourcePointer,
		Phase:      phase,
	}
}

// A straight 20-unit stroke with a spacing threshold of 5 must produce
// exactly five dabs: the pen-down dab plus four spacing crossings, the
// last of which lands on the pen-up position with zero pressure.
func TestEngineStraightLineSpacing(t *testing.T) {
	cfg := testBrush()
	cfg.PressureOpacity = true
	e := NewEngine(paintcore.StaticBrush{Config: cfg},
		WithSmootherWindow(1))

	var dabs []paintcore.DabPlacement
	samples := []paintcore.InputSample{
		sample(paintcore.PhaseDown, 0, 0, 0, 1000),
		sample(paintcore.PhaseMove, 10, 0, 0.6, 9000),
		sample(paintcore.PhaseMove, 16, 0, 0.8, 14000),
		sample(paintcore.PhaseUp, 20, 0, 0, 17000),
	}
	for _, s := range samples {
		dabs = append(dabs, e.ProcessSample(s)...)
	}

	if len(dabs) != 5 {
		t.Fatalf("dab count = %d, want 5", len(dabs))
	}
	wantX := []float64{0, 5, 10, 15, 20}
	for i, d := range dabs {
		if math.Abs(d.X-wantX[i]) > 1e-9 || d.Y != 0 {
			t.Errorf("dab %d at (%v, %v), want (%v, 0)", i, d.X, d.Y, wantX[i])
		}
	}
	// Opacity rises with interpolated pressure, then the terminal
	// dab drops to zero because pen-up forces zero pressure.
	for i := 1; i < 4; i++ {
		if dabs[i].Opacity <= dabs[i-1].Opacity {
			t.Errorf("dab %d opacity %v not above dab %d opacity %v",
				i, dabs[i].Opacity, i-1, dabs[i-1].Opacity)
		}
	}
	if dabs[4].Opacity != 0 {
		t.Errorf("terminal dab opacity = %v, want 0", dabs[4].Opacity)
	}
	if e.Active() {
		t.Error("engine still active after pen-up")
	}
}

func TestEngineResidualFlushOnUp(t *testing.T) {
	e := NewEngine(paintcore.StaticBrush{Config: testBrush()},
		WithSmootherWindow(1))

	dabs := e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 0.5, 0))
	if len(dabs) != 1 {
		t.Fatalf("down dabs = %d, want 1", len(dabs))
	}
	// 2 units of travel, threshold 5: below threshold, but pen-up
	// must still flush the residual so the stroke leaves paint.
	dabs = e.ProcessSample(sample(paintcore.PhaseUp, 2, 0, 0, 1000))
	if len(dabs) != 1 {
		t.Fatalf("up dabs = %d, want 1 (residual flush)", len(dabs))
	}
	if dabs[0].X != 2 {
		t.Errorf("flushed dab at x=%v, want 2", dabs[0].X)
	}
}

func TestEngineHoverIgnored(t *testing.T) {
	e := NewEngine(paintcore.StaticBrush{Config: testBrush()})
	if dabs := e.ProcessSample(sample(paintcore.PhaseHover, 5, 5, 0, 0)); dabs != nil {
		t.Errorf("hover produced %d dabs", len(dabs))
	}
	if e.Active() {
		t.Error("hover activated a stroke")
	}
}

func TestEngineSubPixelCompensation(t *testing.T) {
	cfg := testBrush()
	cfg.Size = 0.4
	e := NewEngine(paintcore.StaticBrush{Config: cfg}, WithSmootherWindow(1))

	dabs := e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 1, 0))
	if len(dabs) != 1 {
		t.Fatalf("dabs = %d, want 1", len(dabs))
	}
	d := dabs[0]
	if d.Size != 1 {
		t.Errorf("sub-pixel dab size = %v, want 1", d.Size)
	}
	want := float32(0.4 * 0.4)
	if math.Abs(float64(d.Flow-want)) > 1e-6 {
		t.Errorf("compensated flow = %v, want %v", d.Flow, want)
	}
}

func TestEnginePressureSizeFloor(t *testing.T) {
	cfg := testBrush()
	cfg.PressureSize = true
	e := NewEngine(paintcore.StaticBrush{Config: cfg}, WithSmootherWindow(1))

	dabs := e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 0, 0))
	if got := dabs[0].Size; got != 1 {
		t.Errorf("zero-pressure size = %v, want residual footprint 1", got)
	}

	e.Reset()
	dabs = e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 1, 0))
	if got := dabs[0].Size; math.Abs(got-10) > 1e-9 {
		t.Errorf("full-pressure size = %v, want 10", got)
	}
}

func TestEngineSpacingUsesShortAxis(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*paintcore.BrushConfig)
		want float64
	}{
		{"round tip", func(c *paintcore.BrushConfig) {}, 10},
		{"flat tip", func(c *paintcore.BrushConfig) { c.Roundness = 0.25 }, 2.5},
		{"wide texture", func(c *paintcore.BrushConfig) {
			c.Texture = &paintcore.TextureRef{AspectRatio: 2}
		}, 5},
		{"tall texture", func(c *paintcore.BrushConfig) {
			c.Texture = &paintcore.TextureRef{AspectRatio: 0.5}
		}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testBrush()
			tt.cfg(&cfg)
			if got := tipFootprint(cfg); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("tipFootprint = %v, want %v", got, tt.want)
			}
		})
	}
}

// Replaying the same sample stream must reproduce byte-identical dabs
// even with jitter dynamics enabled.
func TestEngineDeterministicReplay(t *testing.T) {
	cfg := testBrush()
	cfg.Dynamics = paintcore.BrushDynamics{
		AngleJitter: 0.5,
		Scatter:     0.3,
		HueJitter:   0.2,
	}
	cfg.Color = paintcore.RGB(0.8, 0.2, 0.1)

	run := func() []paintcore.DabPlacement {
		e := NewEngine(paintcore.StaticBrush{Config: cfg}, WithSmootherWindow(1))
		var dabs []paintcore.DabPlacement
		dabs = append(dabs, e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 0.5, 0))...)
		dabs = append(dabs, e.ProcessSample(sample(paintcore.PhaseMove, 30, 5, 0.7, 10000))...)
		dabs = append(dabs, e.ProcessSample(sample(paintcore.PhaseUp, 40, 10, 0, 20000))...)
		return dabs
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("replay lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("dab %d differs between replays:\n%+v\n%+v", i, a[i], b[i])
		}
	}
	// Jitter must actually have displaced something off the base line.
	displaced := false
	for _, d := range a {
		if d.Angle != 0 {
			displaced = true
		}
	}
	if !displaced {
		t.Error("angle jitter had no effect")
	}
}

func TestEngineDualTip(t *testing.T) {
	cfg := testBrush()
	cfg.Dynamics.DualTip = true
	cfg.Dynamics.DualTipScale = 0.4
	e := NewEngine(paintcore.StaticBrush{Config: cfg}, WithSmootherWindow(1))

	dabs := e.ProcessSample(sample(paintcore.PhaseDown, 0, 0, 1, 0))
	if len(dabs) != 2 {
		t.Fatalf("dual tip dabs = %d, want 2", len(dabs))
	}
	if got := dabs[1].Size; math.Abs(got-4) > 1e-9 {
		t.Errorf("secondary tip size = %v, want 4", got)
	}
	if dabs[1].X != dabs[0].X || dabs[1].Y != dabs[0].Y {
		t.Error("secondary tip not co-located with primary")
	}
}

func TestEngineInterpolatedStrokeCoversPath(t *testing.T) {
	cfg := testBrush()
	cfg.Interpolate = true
	e := NewEngine(paintcore.StaticBrush{Config: cfg}, WithSmootherWindow(1))

	var dabs []paintcore.DabPlacement
	pts := [][2]float64{{0, 0}, {10, 2}, {20, -2}, {30, 0}}
	for i, p := range pts {
		phase := paintcore.PhaseMove
		switch i {
		case 0:
			phase = paintcore.PhaseDown
		case len(pts) - 1:
			phase = paintcore.PhaseUp
		}
		dabs = append(dabs, e.ProcessSample(sample(phase, p[0], p[1], 0.5, uint64(i)*8000))...)
	}

	// 30 units at threshold 5 along a gentle curve: the flattened
	// spline must yield at least the straight-line dab count.
	if len(dabs) < 6 {
		t.Fatalf("interpolated dab count = %d, want >= 6", len(dabs))
	}
	// The tail segment must have been flushed out to pen-up.
	last := dabs[len(dabs)-1]
	if last.X < 25 {
		t.Errorf("last dab at x=%v, tail segment not flushed", last.X)
	}
	if e.Active() {
		t.Error("engine still active after pen-up")
	}
}

func TestEngineStrayContactStartsStroke(t *testing.T) {
	e := NewEngine(paintcore.StaticBrush{Config: testBrush()}, WithSmootherWindow(1))
	dabs := e.ProcessSample(sample(paintcore.PhaseMove, 3, 3, 0.5, 0))
	if len(dabs) != 1 {
		t.Fatalf("stray move dabs = %d, want 1", len(dabs))
	}
	if !e.Active() {
		t.Error("stray contact did not start a stroke")
	}
}
