package paintcore

// BrushConfig is a read-only snapshot of the active brush settings,
// taken once per processed sample. Configuration may change mid-stroke,
// so the pipeline must not cache a snapshot across samples.
type BrushConfig struct {
	// Size is the base brush diameter in pixels.
	Size float64

	// Roundness squashes the tip into an ellipse; 1 is a circle.
	Roundness float64

	// Angle is the tip rotation in radians.
	Angle float64

	// Hardness controls edge falloff in [0, 1].
	Hardness float32

	// Spacing is the dab spacing as a fraction of the tip footprint.
	Spacing float64

	// Opacity is the stroke opacity ceiling in [0, 1].
	Opacity float32

	// Flow is the per-dab accumulation rate in [0, 1].
	Flow float32

	// Color is the brush color.
	Color RGBA

	// PressureSize and PressureOpacity toggle pressure dynamics.
	PressureSize    bool
	PressureOpacity bool

	// SpeedSize attenuates dab size by drawing speed.
	SpeedSize bool

	// Texture is an optional tip texture.
	Texture *TextureRef

	// WetEdge enables edge darkening at commit time.
	WetEdge bool

	// Interpolate enables Catmull-Rom midpoint interpolation between
	// sparse samples.
	Interpolate bool

	// Dynamics holds the optional per-dab dynamics toggles.
	Dynamics BrushDynamics
}

// BrushDynamics are the optional per-dab variations. All of them are
// pure functions of the per-dab context and never alter spacing.
type BrushDynamics struct {
	// AngleJitter rotates each dab by up to ±AngleJitter radians.
	AngleJitter float64

	// AngleFollowsDirection aligns the dab angle with travel direction.
	AngleFollowsDirection bool

	// Scatter displaces each dab perpendicular to travel by up to
	// Scatter multiples of the dab size.
	Scatter float64

	// HueJitter perturbs the dab color, [0, 1].
	HueJitter float64

	// DualTip stamps a secondary smaller dab per placement.
	DualTip bool

	// DualTipScale is the secondary tip size as a fraction of the
	// primary size. Zero selects the default of 0.5.
	DualTipScale float64
}

// BrushProvider supplies the current brush configuration. The stroke
// pipeline calls Snapshot once per processed sample.
type BrushProvider interface {
	Snapshot() BrushConfig
}

// StaticBrush is a BrushProvider returning a fixed configuration.
// Useful in tests and for tools without a settings UI.
type StaticBrush struct {
	Config BrushConfig
}

// Snapshot implements BrushProvider.
func (b StaticBrush) Snapshot() BrushConfig { return b.Config }
