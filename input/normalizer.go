package input

import (
	"math"

	"github.com/gogpu/paintcore"
)

// Normalizer converts raw events into canonical samples in canvas
// space. It owns the read cursor into the native sample ring, so no
// native sample is ever consumed twice.
//
// Normalizer is not safe for concurrent use; it belongs to the drawing
// thread.
type Normalizer struct {
	ring   *Ring
	cursor Cursor
	diag   paintcore.Diagnostics

	nativeSource paintcore.Source
	nativeActive bool

	// missStreak counts consecutive trusted pointer events that found
	// nothing in the native buffer. Reaching missLimit deactivates the
	// native backend; a stream that stops feeding the ring is dead.
	missStreak int
	missLimit  int

	// pointer-channel stroke id allocation, used only when no native
	// backend is active.
	nextStrokeID   uint64
	pointerStrokes map[uint32]uint64

	// lastHostUs enforces monotonic host timestamps within a session.
	lastHostUs uint64
}

// NormalizerOption configures a Normalizer during creation.
type NormalizerOption func(*Normalizer)

// WithDiagnostics injects the anomaly sink. The default discards all
// counts.
func WithDiagnostics(d paintcore.Diagnostics) NormalizerOption {
	return func(n *Normalizer) {
		if d != nil {
			n.diag = d
		}
	}
}

// WithNativeMissRetries sets how many consecutive empty native drains
// are tolerated before falling back to the windowed pointer channel.
// Zero disables the fallback.
func WithNativeMissRetries(n int) NormalizerOption {
	return func(nm *Normalizer) { nm.missLimit = n }
}

// NewNormalizer creates a normalizer reading native samples from ring.
// ring may be nil when only the windowed pointer channel is in use.
func NewNormalizer(ring *Ring, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		ring:           ring,
		diag:           paintcore.NopDiagnostics{},
		nextStrokeID:   1,
		pointerStrokes: make(map[uint32]uint64),
	}
	if ring != nil {
		n.cursor = ring.Cursor()
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetNativeActive switches the active native backend. Deactivating
// resyncs the ring cursor so stale samples from the previous activation
// are never replayed.
func (n *Normalizer) SetNativeActive(src paintcore.Source, active bool) {
	n.nativeSource = src
	n.nativeActive = active && src.IsNative()
	n.missStreak = 0
	if n.ring != nil {
		n.cursor = n.ring.Cursor()
	}
}

// NativeActive reports whether a native streaming backend is active.
func (n *Normalizer) NativeActive() bool { return n.nativeActive }

// NormalizePointer converts one windowed pointer event into canonical
// samples. When a native backend is active and the event is trusted,
// pressure/tilt/rotation come from the native sample buffer instead of
// the pointer event; the pointer fields are used only as a best-effort
// substitute when the buffer has nothing new.
func (n *Normalizer) NormalizePointer(ev PointerEvent) []paintcore.InputSample {
	if n.nativeActive && ev.Trusted {
		if native := n.DrainNative(); len(native) > 0 {
			n.missStreak = 0
			return native
		}
		// Native buffer had nothing for this event; substitute the
		// pointer-event fields rather than dropping input on the floor.
		n.missStreak++
		if n.missLimit > 0 && n.missStreak >= n.missLimit {
			paintcore.Logger().Warn("native stream stalled, falling back to pointer channel",
				"source", n.nativeSource.String(), "misses", n.missStreak)
			n.SetNativeActive(n.nativeSource, false)
		}
	}

	events := ev.Coalesced
	if len(events) == 0 {
		events = []PointerEvent{ev}
	}

	out := make([]paintcore.InputSample, 0, len(events))
	for _, sub := range events {
		// Coalesced sub-events inherit phase and pointer identity from
		// the carrier event.
		if sub.Phase != ev.Phase {
			sub.Phase = ev.Phase
		}
		sub.PointerID = ev.PointerID
		out = append(out, n.fromPointer(sub))
	}
	return out
}

// DrainNative reads and normalizes all unconsumed native samples,
// advancing the cursor. An epoch reset resyncs the cursor and returns
// nothing; the dropped span is counted, never guessed at.
func (n *Normalizer) DrainNative() []paintcore.InputSample {
	if n.ring == nil {
		return nil
	}
	batch, next, err := n.ring.ReadFrom(n.cursor)
	n.cursor = next
	if err != nil {
		n.diag.Count(paintcore.AnomalyEpochReset)
		paintcore.Logger().Warn("native ring epoch reset, cursor resynced",
			"epoch", next.Epoch)
		return nil
	}
	if len(batch) == 0 {
		return nil
	}

	out := make([]paintcore.InputSample, 0, len(batch))
	for _, s := range batch {
		out = append(out, n.fromNative(s))
	}
	return out
}

// fromNative converts one native record to a canonical sample.
func (n *Normalizer) fromNative(s NativeSample) paintcore.InputSample {
	sample := paintcore.InputSample{
		X:            s.X,
		Y:            s.Y,
		Pressure:     clamp01(s.Pressure),
		TiltX:        clampTilt(s.TiltXDeg) / 90,
		TiltY:        clampTilt(s.TiltYDeg) / 90,
		Rotation:     wrapDegrees(s.RotationDeg),
		HostTimeUs:   n.monotonic(s.HostTimeUs),
		DeviceTimeUs: s.DeviceTimeUs,
		StrokeID:     s.StrokeID,
		PointerID:    s.PointerID,
		Source:       s.Source,
		Phase:        s.Phase,
	}
	if sample.DeviceTimeUs == 0 {
		sample.DeviceTimeUs = sample.HostTimeUs
	}
	if sample.Phase == paintcore.PhaseUp {
		sample.Pressure = 0
	}
	return sample
}

// fromPointer converts one pointer event to a canonical sample.
func (n *Normalizer) fromPointer(ev PointerEvent) paintcore.InputSample {
	tiltX, tiltY := pointerTilt(ev)
	sample := paintcore.InputSample{
		X:            ev.X,
		Y:            ev.Y,
		Pressure:     clamp01(ev.Pressure),
		TiltX:        tiltX,
		TiltY:        tiltY,
		Rotation:     wrapDegrees(ev.RotationDeg),
		HostTimeUs:   n.monotonic(ev.TimeUs),
		DeviceTimeUs: ev.TimeUs,
		StrokeID:     n.pointerStrokeID(ev.PointerID, ev.Phase),
		PointerID:    ev.PointerID,
		Source:       paintcore.SourcePointer,
		Phase:        ev.Phase,
	}
	if sample.Phase == paintcore.PhaseUp {
		sample.Pressure = 0
	}
	return sample
}

// pointerStrokeID allocates stroke ids for the windowed channel: a
// fresh id on Down, the current id on Move/Hover, and the current id
// released on Up. A Move with no active id still gets one so strokes
// started before the window gained focus are not orphaned.
func (n *Normalizer) pointerStrokeID(pointerID uint32, phase paintcore.Phase) uint64 {
	switch phase {
	case paintcore.PhaseDown:
		id := n.nextStrokeID
		n.nextStrokeID++
		n.pointerStrokes[pointerID] = id
		return id
	case paintcore.PhaseUp:
		if id, ok := n.pointerStrokes[pointerID]; ok {
			delete(n.pointerStrokes, pointerID)
			return id
		}
		id := n.nextStrokeID
		n.nextStrokeID++
		return id
	default:
		if id, ok := n.pointerStrokes[pointerID]; ok {
			return id
		}
		id := n.nextStrokeID
		n.nextStrokeID++
		n.pointerStrokes[pointerID] = id
		return id
	}
}

// monotonic clamps host timestamps so they never run backwards within
// a session.
func (n *Normalizer) monotonic(us uint64) uint64 {
	if us < n.lastHostUs {
		return n.lastHostUs
	}
	n.lastHostUs = us
	return us
}

// pointerTilt extracts normalized tilt from a pointer event, falling
// back to the altitude/azimuth pair when tilt fields are unavailable.
func pointerTilt(ev PointerEvent) (float32, float32) {
	if ev.HasTilt {
		return clampTilt(ev.TiltXDeg) / 90, clampTilt(ev.TiltYDeg) / 90
	}
	if ev.AltitudeRad <= 0 || ev.AltitudeRad >= math.Pi/2 {
		return 0, 0
	}
	// Project the pen vector onto the XZ and YZ planes.
	tanAlt := math.Tan(ev.AltitudeRad)
	tiltX := math.Atan2(math.Cos(ev.AzimuthRad), tanAlt)
	tiltY := math.Atan2(math.Sin(ev.AzimuthRad), tanAlt)
	norm := float32(2 / math.Pi)
	return float32(tiltX) * norm, float32(tiltY) * norm
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampTilt(deg float32) float32 {
	if deg < -90 {
		return -90
	}
	if deg > 90 {
		return 90
	}
	return deg
}

func wrapDegrees(deg float32) float32 {
	d := math.Mod(float64(deg), 360)
	if d < 0 {
		d += 360
	}
	return float32(d)
}
