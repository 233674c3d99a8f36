package brush

import (
	"math"

	"github.com/gogpu/paintcore"
)

// dabContext is the per-dab input to the dynamics stage. Dynamics are
// pure functions of this context and the stroke seed, so replaying the
// same stroke reproduces the same dabs.
type dabContext struct {
	seed      uint64
	index     uint64
	dirX      float64
	dirY      float64
	footprint float64
}

// hashDab mixes the stroke seed with the dab index into a 64-bit
// value. splitmix64 finalizer; good enough for visual jitter.
func hashDab(seed, index, lane uint64) uint64 {
	z := seed ^ (index * 0x9E3779B97F4A7C15) ^ (lane * 0xBF58476D1CE4E5B9)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// unitRand returns a deterministic value in [0, 1) for one dab lane.
func unitRand(ctx dabContext, lane uint64) float64 {
	return float64(hashDab(ctx.seed, ctx.index, lane)>>11) / float64(1<<53)
}

// signedRand returns a deterministic value in [-1, 1) for one dab lane.
func signedRand(ctx dabContext, lane uint64) float64 {
	return unitRand(ctx, lane)*2 - 1
}

const (
	laneAngle uint64 = iota + 1
	laneScatterX
	laneScatterY
	laneHue
)

// applyDynamics rewrites placement fields in place according to the
// brush dynamics block. Spacing is decided before this stage, so
// scatter and jitter never change where the next dab lands.
func applyDynamics(dab *paintcore.DabPlacement, dyn paintcore.BrushDynamics, ctx dabContext) {
	if dyn.AngleFollowsDirection && (ctx.dirX != 0 || ctx.dirY != 0) {
		dab.Angle = math.Atan2(ctx.dirY, ctx.dirX)
	}
	if dyn.AngleJitter > 0 {
		dab.Angle += signedRand(ctx, laneAngle) * dyn.AngleJitter
	}
	if dyn.Scatter > 0 {
		r := dyn.Scatter * ctx.footprint
		dab.X += signedRand(ctx, laneScatterX) * r
		dab.Y += signedRand(ctx, laneScatterY) * r
	}
	if dyn.HueJitter > 0 {
		dab.Color = jitterHue(dab.Color, signedRand(ctx, laneHue)*dyn.HueJitter)
	}
}

// dualTipDab derives the secondary dab for a dual-tip brush. It shares
// the primary placement but runs at a reduced scale and flow.
func dualTipDab(primary paintcore.DabPlacement, scale float64) paintcore.DabPlacement {
	if scale <= 0 {
		scale = 0.5
	}
	d := primary
	d.Size = primary.Size * scale
	d.Flow = primary.Flow * 0.5
	return d
}

// jitterHue rotates the hue of a color by amount (full turns at ±1).
func jitterHue(c paintcore.RGBA, amount float64) paintcore.RGBA {
	h, s, v := rgbToHSV(c.R, c.G, c.B)
	h += amount * 360
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	r, g, b := hsvToRGB(h, s, v)
	return paintcore.RGBA{R: r, G: g, B: b, A: c.A}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	d := maxc - minc
	if maxc > 0 {
		s = d / maxc
	}
	if d == 0 {
		return 0, s, v
	}
	switch maxc {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
