package paintcore

// MaskKind selects the dab mask shape.
type MaskKind uint8

const (
	// MaskGauss is the soft Gaussian mask derived from brush hardness.
	MaskGauss MaskKind = iota

	// MaskTexture samples a texture image as the mask.
	MaskTexture
)

// TextureRef references a brush tip texture. The pipeline treats the
// pixels as an alpha mask; color channels are ignored.
type TextureRef struct {
	// Pixels is the texture image.
	Pixels *Pixmap

	// AspectRatio is width/height of the logical tip, used by the
	// spacing policy. Zero means square.
	AspectRatio float64
}

// DabPlacement is one brush stamp, derived deterministically from one or
// more input samples by the dab generator. Placements are immutable once
// emitted and are consumed exactly once by the stroke accumulator.
type DabPlacement struct {
	// X, Y are the dab center in canvas space.
	X, Y float64

	// Size is the dab diameter in pixels, never below 1.
	Size float64

	// Roundness squashes the mask into an ellipse; 1 is a circle.
	Roundness float64

	// Angle is the mask rotation in radians.
	Angle float64

	// FlipX, FlipY mirror a textured mask.
	FlipX, FlipY bool

	// Flow is the per-dab accumulation rate in [0, 1].
	Flow float32

	// Opacity is the target alpha ceiling in [0, 1].
	Opacity float32

	// Hardness controls the mask edge falloff in [0, 1].
	Hardness float32

	// Color is the dab color.
	Color RGBA

	// Mask selects the mask shape.
	Mask MaskKind

	// Texture is the tip texture when Mask is MaskTexture.
	Texture *TextureRef

	// WetEdge enables edge darkening at commit time.
	WetEdge bool

	// TimeUs is the timestamp of the sample that produced the dab.
	TimeUs uint64

	// Speed is the speed-normalized sensor value in [0, 1] at emission.
	Speed float32
}
