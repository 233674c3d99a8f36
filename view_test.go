package paintcore

import "testing"

func TestViewCompositeLayerOnly(t *testing.T) {
	v := NewViewCompositor(16, 16, 1)
	layer := NewPixmap(16, 16)
	layer.SetPixel(5, 5, RGB(1, 0, 0))

	v.Composite(layer, nil, Rect{X: 0, Y: 0, W: 16, H: 16})
	if v.Image().RGBAAt(5, 5).R == 0 {
		t.Error("layer pixel missing from the display surface")
	}
}

func TestViewCompositeScratchOverlay(t *testing.T) {
	v := NewViewCompositor(16, 16, 1)
	layer := NewPixmap(16, 16)
	scratch := NewPixmap(16, 16)
	scratch.SetPixel(8, 8, RGB(0, 1, 0))

	v.Composite(layer, scratch, Rect{X: 0, Y: 0, W: 16, H: 16})
	got := v.Image().RGBAAt(8, 8)
	if got.G == 0 || got.A == 0 {
		t.Errorf("scratch pixel not blended through: %+v", got)
	}
}

func TestViewCompositeDirtyClip(t *testing.T) {
	v := NewViewCompositor(16, 16, 1)
	layer := NewPixmap(16, 16)
	layer.SetPixel(2, 2, RGB(1, 0, 0))
	layer.SetPixel(12, 12, RGB(1, 0, 0))

	// Only the top-left region is dirty; the other pixel must not be
	// drawn.
	v.Composite(layer, nil, Rect{X: 0, Y: 0, W: 8, H: 8})
	if v.Image().RGBAAt(2, 2).R == 0 {
		t.Error("dirty-region pixel not drawn")
	}
	if v.Image().RGBAAt(12, 12).R != 0 {
		t.Error("pixel outside the dirty region was drawn")
	}
}

func TestViewCompositeZoom(t *testing.T) {
	v := NewViewCompositor(32, 32, 2)
	layer := NewPixmap(16, 16)
	layer.SetPixel(4, 4, RGB(0, 0, 1))

	v.Composite(layer, nil, Rect{X: 0, Y: 0, W: 16, H: 16})
	if v.Image().RGBAAt(8, 8).B == 0 {
		t.Error("zoomed pixel missing at scaled coordinates")
	}
}

func TestViewCompositeNilAndEmpty(t *testing.T) {
	v := NewViewCompositor(16, 16, 1)
	// Neither may panic.
	v.Composite(nil, nil, Rect{X: 0, Y: 0, W: 16, H: 16})
	v.Composite(NewPixmap(16, 16), nil, Rect{})
}
