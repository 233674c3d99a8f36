package paintcore

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ViewCompositor builds the on-screen image from the destination layer
// and the in-progress stroke scratch buffer. The frame driver calls
// Composite exactly once per frame, regardless of how many samples
// arrived that frame.
//
// ViewCompositor is not safe for concurrent use; it belongs to the
// drawing thread.
type ViewCompositor struct {
	display *image.RGBA
	zoom    float64
	scaler  xdraw.Interpolator
}

// NewViewCompositor creates a compositor for a display surface of the
// given size at the given zoom factor. Zoom values at or below 0 are
// treated as 1.
func NewViewCompositor(displayW, displayH int, zoom float64) *ViewCompositor {
	if zoom <= 0 {
		zoom = 1
	}
	scaler := xdraw.Interpolator(xdraw.ApproxBiLinear)
	if zoom >= 2 {
		// Pixel-art style magnification at high zoom.
		scaler = xdraw.NearestNeighbor
	}
	return &ViewCompositor{
		display: image.NewRGBA(image.Rect(0, 0, displayW, displayH)),
		zoom:    zoom,
		scaler:  scaler,
	}
}

// SetZoom updates the zoom factor for subsequent composites.
func (v *ViewCompositor) SetZoom(zoom float64) {
	if zoom <= 0 {
		zoom = 1
	}
	v.zoom = zoom
	if zoom >= 2 {
		v.scaler = xdraw.NearestNeighbor
	} else {
		v.scaler = xdraw.ApproxBiLinear
	}
}

// Composite renders layer with the in-progress scratch on top into the
// display surface. scratch may be nil when no stroke is active. The
// dirty rectangle limits the scaled region; pass the full canvas bounds
// to redraw everything.
func (v *ViewCompositor) Composite(layer, scratch *Pixmap, dirty Rect) {
	if layer == nil {
		return
	}
	canvas := Rect{X: 0, Y: 0, W: layer.Width(), H: layer.Height()}
	dirty = dirty.Intersect(canvas)
	if dirty.IsEmpty() {
		return
	}

	src := layer.ToImage()
	if scratch != nil {
		overlayScratch(src, scratch, dirty)
	}

	srcRect := image.Rect(dirty.X, dirty.Y, dirty.X+dirty.W, dirty.Y+dirty.H)
	dstRect := image.Rect(
		int(float64(dirty.X)*v.zoom),
		int(float64(dirty.Y)*v.zoom),
		int(float64(dirty.X+dirty.W)*v.zoom),
		int(float64(dirty.Y+dirty.H)*v.zoom),
	).Intersect(v.display.Bounds())
	if dstRect.Empty() {
		return
	}

	v.scaler.Scale(v.display, dstRect, src, srcRect, xdraw.Src, nil)
}

// Image returns the current display surface.
func (v *ViewCompositor) Image() *image.RGBA {
	return v.display
}

// overlayScratch source-over blends the scratch pixels onto img inside
// the dirty rectangle.
func overlayScratch(img *image.RGBA, scratch *Pixmap, dirty Rect) {
	bounds := Rect{X: 0, Y: 0, W: scratch.Width(), H: scratch.Height()}
	dirty = dirty.Intersect(bounds)
	data := scratch.Data()
	for y := dirty.Y; y < dirty.Y+dirty.H; y++ {
		for x := dirty.X; x < dirty.X+dirty.W; x++ {
			i := (y*scratch.Width() + x) * 4
			sa := uint32(data[i+3])
			if sa == 0 {
				continue
			}
			o := img.PixOffset(x, y)
			inv := 255 - sa
			img.Pix[o+0] = uint8((uint32(data[i+0])*sa + uint32(img.Pix[o+0])*inv + 127) / 255)
			img.Pix[o+1] = uint8((uint32(data[i+1])*sa + uint32(img.Pix[o+1])*inv + 127) / 255)
			img.Pix[o+2] = uint8((uint32(data[i+2])*sa + uint32(img.Pix[o+2])*inv + 127) / 255)
			img.Pix[o+3] = uint8((sa*255 + uint32(img.Pix[o+3])*inv + 127) / 255)
		}
	}
}
