package brush

import (
	"math"
	"testing"

	"github.com/gogpu/paintcore"
)

func TestApplyDynamicsDirectionFollow(t *testing.T) {
	dab := paintcore.DabPlacement{}
	dyn := paintcore.BrushDynamics{AngleFollowsDirection: true}
	applyDynamics(&dab, dyn, dabContext{dirX: 0, dirY: 1})
	if math.Abs(dab.Angle-math.Pi/2) > 1e-9 {
		t.Errorf("angle = %v, want pi/2", dab.Angle)
	}

	// No travel direction yet: angle stays untouched.
	dab = paintcore.DabPlacement{Angle: 0.3}
	applyDynamics(&dab, dyn, dabContext{})
	if dab.Angle != 0.3 {
		t.Errorf("angle = %v, want 0.3 unchanged", dab.Angle)
	}
}

func TestApplyDynamicsScatterBounded(t *testing.T) {
	dyn := paintcore.BrushDynamics{Scatter: 0.5}
	ctx := dabContext{seed: 42, footprint: 10}
	for i := uint64(0); i < 100; i++ {
		ctx.index = i
		dab := paintcore.DabPlacement{X: 100, Y: 100}
		applyDynamics(&dab, dyn, ctx)
		if math.Abs(dab.X-100) > 5 || math.Abs(dab.Y-100) > 5 {
			t.Fatalf("dab %d scattered to (%v, %v), beyond 0.5*footprint", i, dab.X, dab.Y)
		}
	}
}

func TestJitterHuePreservesAlpha(t *testing.T) {
	c := paintcore.RGBA{R: 0.8, G: 0.2, B: 0.1, A: 0.7}
	got := jitterHue(c, 0.25)
	if got.A != 0.7 {
		t.Errorf("alpha = %v, want 0.7", got.A)
	}
	if got == c {
		t.Error("hue jitter had no effect")
	}
}

func TestHSVRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{0.5, 0.5, 0.5}, {0.9, 0.3, 0.7}, {0, 0, 0},
	}
	for _, c := range colors {
		h, s, v := rgbToHSV(c[0], c[1], c[2])
		r, g, b := hsvToRGB(h, s, v)
		if math.Abs(r-c[0]) > 1e-9 || math.Abs(g-c[1]) > 1e-9 || math.Abs(b-c[2]) > 1e-9 {
			t.Errorf("round trip %v -> (%v %v %v)", c, r, g, b)
		}
	}
}

func TestUnitRandDeterministic(t *testing.T) {
	ctx := dabContext{seed: 7, index: 3}
	a := unitRand(ctx, laneAngle)
	b := unitRand(ctx, laneAngle)
	if a != b {
		t.Errorf("same context produced %v and %v", a, b)
	}
	if a < 0 || a >= 1 {
		t.Errorf("unitRand out of range: %v", a)
	}
	ctx.index = 4
	if c := unitRand(ctx, laneAngle); c == a {
		t.Error("different dab index produced identical value")
	}
}
