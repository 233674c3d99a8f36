package accum

import (
	"math"
	"testing"

	"github.com/gogpu/paintcore"
)

func fill(pm *paintcore.Pixmap, c paintcore.RGBA) {
	for y := 0; y < pm.Height(); y++ {
		for x := 0; x < pm.Width(); x++ {
			pm.SetPixel(x, y, c)
		}
	}
}

func TestCompositeSourceOver(t *testing.T) {
	dst := paintcore.NewPixmap(4, 4)
	fill(dst, paintcore.RGB(0, 0, 1))
	scratch := paintcore.NewPixmap(4, 4)
	fill(scratch, paintcore.RGBA{R: 1, A: 0.5})

	compositeScratch(dst, scratch, paintcore.Rect{W: 4, H: 4}, 1, ModeSourceOver)

	got := dst.GetPixel(1, 1)
	if math.Abs(got.R-0.5) > 0.01 || math.Abs(got.B-0.5) > 0.01 {
		t.Errorf("pixel = %+v, want half red over blue", got)
	}
	if got.A != 1 {
		t.Errorf("alpha = %v, want 1 (opaque dst)", got.A)
	}
}

func TestCompositeMultiplyDarkens(t *testing.T) {
	dst := paintcore.NewPixmap(4, 4)
	fill(dst, paintcore.RGB(0.8, 0.8, 0.8))
	scratch := paintcore.NewPixmap(4, 4)
	fill(scratch, paintcore.RGB(0.5, 0.5, 0.5))

	compositeScratch(dst, scratch, paintcore.Rect{W: 4, H: 4}, 1, ModeMultiply)

	got := dst.GetPixel(0, 0)
	if math.Abs(got.R-0.4) > 0.02 {
		t.Errorf("multiplied R = %v, want ~0.4", got.R)
	}
}

func TestCompositeRespectsDirtyRect(t *testing.T) {
	dst := paintcore.NewPixmap(8, 8)
	scratch := paintcore.NewPixmap(8, 8)
	fill(scratch, paintcore.RGBA{R: 1, A: 1})

	compositeScratch(dst, scratch, paintcore.Rect{X: 0, Y: 0, W: 4, H: 4}, 1, ModeSourceOver)

	if dst.GetPixel(2, 2).A != 1 {
		t.Error("pixel inside dirty rect not composited")
	}
	if dst.GetPixel(6, 6).A != 0 {
		t.Error("pixel outside dirty rect composited")
	}
}

func TestCompositeOpacityScale(t *testing.T) {
	dst := paintcore.NewPixmap(2, 2)
	scratch := paintcore.NewPixmap(2, 2)
	fill(scratch, paintcore.RGBA{R: 1, A: 1})

	compositeScratch(dst, scratch, paintcore.Rect{W: 2, H: 2}, 0.25, ModeSourceOver)

	if got := dst.GetPixel(0, 0).A; math.Abs(got-0.25) > 0.01 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
}
