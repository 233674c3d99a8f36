package input

import "github.com/gogpu/paintcore"

// maxWithheldSamples bounds the per-stroke buffer of samples waiting
// for their Down. Streams that never deliver a Down would otherwise
// grow it without limit.
const maxWithheldSamples = 256

// Router resolves ambiguity in the normalized sample stream: samples
// are grouped into strokes by StrokeID, and only samples belonging to
// the most recent stroke that has seen an explicit Down are forwarded.
// Stale tails from superseded strokes are dropped, and stray samples
// with no Down yet are withheld until their Down arrives rather than
// guessed at.
//
// Router never fails; every irregularity increments a diagnostics
// counter and degrades to dropping or withholding the sample.
type Router struct {
	diag paintcore.Diagnostics

	// active is the stroke id currently being forwarded; zero means no
	// stroke has seen a Down yet.
	active uint64

	// activeSource pins the session to the source of its Down sample.
	activeSource paintcore.Source

	// activeDone marks that the active stroke has already emitted its
	// Up; later samples for it are stale tails.
	activeDone bool

	// withheld buffers samples for strokes whose Down has not arrived.
	withheld map[uint64][]paintcore.InputSample
}

// NewRouter creates a router reporting anomalies to d. A nil sink
// disables reporting.
func NewRouter(d paintcore.Diagnostics) *Router {
	if d == nil {
		d = paintcore.NopDiagnostics{}
	}
	return &Router{
		diag:     d,
		withheld: make(map[uint64][]paintcore.InputSample),
	}
}

// Route filters a batch of normalized samples into the ordered event
// stream for the current stroke session. The returned slice preserves
// arrival order; it is empty when nothing is currently routable.
func (r *Router) Route(samples []paintcore.InputSample) []paintcore.InputSample {
	var out []paintcore.InputSample
	for _, s := range samples {
		out = append(out, r.routeOne(s)...)
	}
	return out
}

// routeOne routes a single sample.
func (r *Router) routeOne(s paintcore.InputSample) []paintcore.InputSample {
	switch {
	case s.StrokeID < r.active || (s.StrokeID == r.active && r.activeDone):
		// In-flight tail of a superseded stroke.
		if s.Phase == paintcore.PhaseUp || s.Phase == paintcore.PhaseMove {
			r.diag.Count(paintcore.AnomalyStrokeTailDrop)
		}
		return nil

	case s.StrokeID == r.active:
		if s.Source != r.activeSource {
			r.diag.Count(paintcore.AnomalyMixedSource)
			return nil
		}
		if s.Phase == paintcore.PhaseUp {
			r.activeDone = true
		}
		return []paintcore.InputSample{s}

	default: // s.StrokeID > r.active: a newer stroke
		if s.Phase != paintcore.PhaseDown {
			return r.withhold(s)
		}
		return r.adopt(s)
	}
}

// adopt makes s.StrokeID the active session and flushes any samples
// that arrived for it before the Down.
func (r *Router) adopt(down paintcore.InputSample) []paintcore.InputSample {
	r.active = down.StrokeID
	r.activeSource = down.Source
	r.activeDone = false

	out := []paintcore.InputSample{down}
	if pending := r.withheld[down.StrokeID]; len(pending) > 0 {
		for _, p := range pending {
			if p.Source != down.Source {
				r.diag.Count(paintcore.AnomalyMixedSource)
				continue
			}
			if p.Phase == paintcore.PhaseUp {
				r.activeDone = true
			}
			out = append(out, p)
		}
	}
	// Strokes older than the adopted one can never become active.
	for id := range r.withheld {
		if id <= down.StrokeID {
			delete(r.withheld, id)
		}
	}
	return out
}

// withhold parks a sample whose Down has not arrived. Native streams
// normally deliver the Down first, so this path is an anomaly worth
// counting, but the sample is preserved in case the Down is merely
// late.
func (r *Router) withhold(s paintcore.InputSample) []paintcore.InputSample {
	if s.Source.IsNative() {
		r.diag.Count(paintcore.AnomalyMissingSeed)
	}
	buf := r.withheld[s.StrokeID]
	if len(buf) < maxWithheldSamples {
		r.withheld[s.StrokeID] = append(buf, s)
	}
	return nil
}

// Reset clears all session state, e.g. on window blur or backend
// switch.
func (r *Router) Reset() {
	r.active = 0
	r.activeDone = false
	r.withheld = make(map[uint64][]paintcore.InputSample)
}
