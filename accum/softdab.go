package accum

import (
	"math"

	"github.com/gogpu/paintcore"
)

// gaussParams are the precomputed Gaussian mask factors for one brush
// shape (Krita-style soft brush parameterization). Computed once per
// (hardness, radius, roundness) triple and reused across dabs.
type gaussParams struct {
	center      float32
	alphafactor float32
	distfactor  float32
	ycoef       float32
	fade        float32
}

// newGaussParams derives mask factors from brush settings. Hardness 1
// collapses the fade band to near zero (a crisp edge); hardness 0
// doubles it.
func newGaussParams(hardness float32, radius, roundness float64) gaussParams {
	fade := (1 - float64(hardness)) * 2
	if fade < 1e-6 {
		fade = 1e-6
	}
	if fade > 2 {
		fade = 2
	}
	r := math.Max(radius, 0.5)
	center := (2.5 * (6761*fade - 10000)) / (math.Sqrt2 * 6761 * fade)
	yc := 1 / math.Max(roundness, 0.01)
	return gaussParams{
		center:      float32(center),
		alphafactor: 255 / (2 * erf(float32(center))),
		distfactor:  float32(math.Sqrt2 * 12500 / (6761 * fade * r)),
		ycoef:       float32(yc),
		fade:        float32(fade),
	}
}

// erf is the Abramowitz and Stegun 7.1.26 approximation of the error
// function. |error| < 1.5e-7, plenty for an 8-bit mask.
func erf(x float32) float32 {
	sign := float32(1)
	if x < 0 {
		sign = -1
		x = -x
	}
	const (
		a1 = 0.2548296
		a2 = -0.28449672
		a3 = 1.4214138
		a4 = -1.4531521
		a5 = 1.0614054
		p  = 0.3275911
	)
	t := 1 / (1 + p*x)
	y := 1 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*float32(math.Exp(float64(-x*x)))
	return sign * y
}

// maskAt evaluates the soft mask at a scaled distance from the dab
// center. Returns coverage in [0, 1].
func (g gaussParams) maskAt(dist float32) float32 {
	vd := dist * g.distfactor
	fullFade := g.alphafactor * (erf(vd+g.center) - erf(vd-g.center))
	m := (255 - fullFade) / 255
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// dabExtent is the half-width of the pixels a dab can touch. Soft
// brushes bleed past the nominal radius by the fade band.
func dabExtent(radius float64, g gaussParams) int {
	return int(math.Ceil(radius*(1+float64(g.fade)) + 1))
}

// renderSoftDab stamps one Gaussian dab into the scratch pixmap with
// alpha-darken compositing and returns the touched rect. Alpha darken
// accumulates toward the dab opacity ceiling instead of ordinary
// source-over, so overlapping dabs within one stroke never exceed the
// stroke's target alpha.
func renderSoftDab(dst *paintcore.Pixmap, dab paintcore.DabPlacement, g gaussParams) paintcore.Rect {
	radius := dab.Size / 2
	extent := dabExtent(radius, g)

	left := clampInt(int(dab.X)-extent, 0, dst.Width())
	top := clampInt(int(dab.Y)-extent, 0, dst.Height())
	right := clampInt(int(dab.X)+extent+1, 0, dst.Width())
	bottom := clampInt(int(dab.Y)+extent+1, 0, dst.Height())
	if left >= right || top >= bottom {
		return paintcore.Rect{}
	}

	sinA, cosA := math.Sincos(-dab.Angle)
	rotated := dab.Angle != 0

	r8 := float32(clamp255f(dab.Color.R))
	g8 := float32(clamp255f(dab.Color.G))
	b8 := float32(clamp255f(dab.Color.B))
	flow := dab.Flow
	target := dab.Opacity

	pix := dst.Data()
	stride := dst.Width() * 4

	for y := top; y < bottom; y++ {
		fy := float64(y) + 0.5 - dab.Y
		row := y * stride
		for x := left; x < right; x++ {
			fx := float64(x) + 0.5 - dab.X
			dx, dy := fx, fy
			if rotated {
				dx = fx*cosA - fy*sinA
				dy = fx*sinA + fy*cosA
			}
			dy *= float64(g.ycoef)
			dist := float32(math.Sqrt(dx*dx + dy*dy))

			shape := g.maskAt(dist)
			if shape < 0.001 {
				continue
			}
			srcAlpha := shape * flow

			idx := row + x*4
			dstA := float32(pix[idx+3]) / 255

			outA := dstA
			if dstA < target-0.001 {
				outA = dstA + (target-dstA)*srcAlpha
			}
			if outA <= 0.001 {
				continue
			}

			if dstA > 0.001 {
				dr := float32(pix[idx])
				dg := float32(pix[idx+1])
				db := float32(pix[idx+2])
				pix[idx] = roundToByte(dr + (r8-dr)*srcAlpha)
				pix[idx+1] = roundToByte(dg + (g8-dg)*srcAlpha)
				pix[idx+2] = roundToByte(db + (b8-db)*srcAlpha)
			} else {
				pix[idx] = roundToByte(r8)
				pix[idx+1] = roundToByte(g8)
				pix[idx+2] = roundToByte(b8)
			}
			pix[idx+3] = roundToByte(outA * 255)
		}
	}

	return paintcore.Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// renderTextureDab stamps a textured dab: the texture's alpha channel
// is the mask shape, sampled nearest-neighbor across the scaled tip.
func renderTextureDab(dst *paintcore.Pixmap, dab paintcore.DabPlacement) paintcore.Rect {
	tex := dab.Texture
	if tex == nil || tex.Pixels == nil {
		return paintcore.Rect{}
	}
	tw, th := tex.Pixels.Width(), tex.Pixels.Height()
	if tw == 0 || th == 0 {
		return paintcore.Rect{}
	}

	w := dab.Size
	h := dab.Size * dab.Roundness
	if tex.AspectRatio > 0 {
		if tex.AspectRatio >= 1 {
			h /= tex.AspectRatio
		} else {
			w *= tex.AspectRatio
		}
	}
	extentX := int(math.Ceil(w/2)) + 1
	extentY := int(math.Ceil(h/2)) + 1
	if dab.Angle != 0 {
		// A rotated tip can reach the full diagonal.
		d := int(math.Ceil(math.Hypot(w, h)/2)) + 1
		extentX, extentY = d, d
	}

	left := clampInt(int(dab.X)-extentX, 0, dst.Width())
	top := clampInt(int(dab.Y)-extentY, 0, dst.Height())
	right := clampInt(int(dab.X)+extentX+1, 0, dst.Width())
	bottom := clampInt(int(dab.Y)+extentY+1, 0, dst.Height())
	if left >= right || top >= bottom {
		return paintcore.Rect{}
	}

	sinA, cosA := math.Sincos(-dab.Angle)
	r8 := float32(clamp255f(dab.Color.R))
	g8 := float32(clamp255f(dab.Color.G))
	b8 := float32(clamp255f(dab.Color.B))
	texPix := tex.Pixels.Data()
	pix := dst.Data()
	stride := dst.Width() * 4

	for y := top; y < bottom; y++ {
		fy := float64(y) + 0.5 - dab.Y
		row := y * stride
		for x := left; x < right; x++ {
			fx := float64(x) + 0.5 - dab.X
			dx := fx*cosA - fy*sinA
			dy := fx*sinA + fy*cosA
			if dab.FlipX {
				dx = -dx
			}
			if dab.FlipY {
				dy = -dy
			}
			u := dx/w + 0.5
			v := dy/h + 0.5
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				continue
			}
			tx := int(u * float64(tw))
			ty := int(v * float64(th))
			shape := float32(texPix[(ty*tw+tx)*4+3]) / 255
			if shape < 0.001 {
				continue
			}
			srcAlpha := shape * dab.Flow

			idx := row + x*4
			dstA := float32(pix[idx+3]) / 255
			outA := dstA
			if dstA < dab.Opacity-0.001 {
				outA = dstA + (dab.Opacity-dstA)*srcAlpha
			}
			if outA <= 0.001 {
				continue
			}
			if dstA > 0.001 {
				dr := float32(pix[idx])
				dg := float32(pix[idx+1])
				db := float32(pix[idx+2])
				pix[idx] = roundToByte(dr + (r8-dr)*srcAlpha)
				pix[idx+1] = roundToByte(dg + (g8-dg)*srcAlpha)
				pix[idx+2] = roundToByte(db + (b8-db)*srcAlpha)
			} else {
				pix[idx] = roundToByte(r8)
				pix[idx+1] = roundToByte(g8)
				pix[idx+2] = roundToByte(b8)
			}
			pix[idx+3] = roundToByte(outA * 255)
		}
	}

	return paintcore.Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp255f(v float64) float64 {
	v *= 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func roundToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
