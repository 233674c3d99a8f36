package input

import "github.com/gogpu/paintcore"

// PointerEvent is one raw event from the windowed pointer channel.
// Browser-level batching may attach coalesced sub-events; the
// normalizer expands each into its own sample, preserving arrival
// order.
type PointerEvent struct {
	X, Y float64

	Pressure    float32
	RotationDeg float32

	// TiltXDeg and TiltYDeg are valid only when HasTilt is set; some
	// pointer implementations report altitude/azimuth instead.
	TiltXDeg, TiltYDeg float32
	HasTilt            bool

	// AltitudeRad and AzimuthRad describe the pen orientation when
	// tilt fields are unavailable.
	AltitudeRad, AzimuthRad float64

	PointerID uint32
	Phase     paintcore.Phase
	TimeUs    uint64

	// Trusted is false for programmatic replays; untrusted events never
	// pull pressure from the native sample buffer.
	Trusted bool

	// Coalesced holds batched sub-events in arrival order. When empty,
	// the event itself is the only sample.
	Coalesced []PointerEvent
}
