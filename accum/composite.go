package accum

import "github.com/gogpu/paintcore"

// compositeScratch blends the scratch buffer onto dst inside the dirty
// rect. opacity scales the scratch alpha, so one stroke can land at a
// reduced ceiling without re-rendering its dabs.
func compositeScratch(dst, scratch *paintcore.Pixmap, dirty paintcore.Rect, opacity float32, mode CompositeMode) {
	bounds := paintcore.Rect{X: 0, Y: 0, W: dst.Width(), H: dst.Height()}
	dirty = dirty.Intersect(bounds)
	if dirty.IsEmpty() || scratch == nil {
		return
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	dp := dst.Data()
	sp := scratch.Data()
	dStride := dst.Width() * 4
	sStride := scratch.Width() * 4

	for y := dirty.Y; y < dirty.Y+dirty.H; y++ {
		dRow := y * dStride
		sRow := y * sStride
		for x := dirty.X; x < dirty.X+dirty.W; x++ {
			si := sRow + x*4
			srcA := float32(sp[si+3]) / 255 * opacity
			if srcA <= 0 {
				continue
			}
			di := dRow + x*4
			switch mode {
			case ModeErase:
				dstA := float32(dp[di+3]) / 255
				dp[di+3] = roundToByte(dstA * (1 - srcA) * 255)
			case ModeMultiply:
				blendMultiply(dp[di:di+4:di+4], sp[si:si+4:si+4], srcA)
			default:
				blendSourceOver(dp[di:di+4:di+4], sp[si:si+4:si+4], srcA)
			}
		}
	}
}

// blendSourceOver is straight-alpha Porter-Duff over.
func blendSourceOver(dst, src []uint8, srcA float32) {
	dstA := float32(dst[3]) / 255
	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	for i := 0; i < 3; i++ {
		s := float32(src[i])
		d := float32(dst[i])
		dst[i] = roundToByte((s*srcA + d*dstA*(1-srcA)) / outA)
	}
	dst[3] = roundToByte(outA * 255)
}

// blendMultiply multiplies source and destination color, composited
// over the destination at the source alpha.
func blendMultiply(dst, src []uint8, srcA float32) {
	dstA := float32(dst[3]) / 255
	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	for i := 0; i < 3; i++ {
		s := float32(src[i]) / 255
		d := float32(dst[i]) / 255
		blended := s * d
		// Composite the blended color over the destination.
		out := (blended*srcA*dstA + s*srcA*(1-dstA) + d*dstA*(1-srcA)) / outA
		dst[i] = roundToByte(out * 255)
	}
	dst[3] = roundToByte(outA * 255)
}
