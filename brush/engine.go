package brush

import (
	"math"

	"github.com/gogpu/paintcore"
)

// minDabSpacing is the floor on the spacing threshold, in pixels.
// Keeps degenerate configs (zero spacing, tiny tips) from flooding
// the accumulator with dabs.
const minDabSpacing = 0.5

// Engine turns the ordered sample stream of one stroke at a time into
// dab placements. Position is accumulated along the input path and a
// dab is emitted every time cumulative travel crosses the spacing
// threshold; pressure is smoothed and curved before it reaches size
// and opacity.
//
// Engine is not safe for concurrent use; the stroke pipeline feeds it
// from a single goroutine.
type Engine struct {
	brush    paintcore.BrushProvider
	curve    *Curve
	smoother *Smoother
	speed    *SpeedSensor

	cfg       paintcore.BrushConfig
	active    bool
	seed      uint64
	dabIndex  uint64
	threshold float64
	footprint float64
	travel    float64
	last      point
	dirX      float64
	dirY      float64
	history   []point
	lastTime  uint64
	lastSpeed float32
}

// EngineOption adjusts engine construction.
type EngineOption func(*Engine)

// WithCurve overrides the pressure response curve.
func WithCurve(c *Curve) EngineOption {
	return func(e *Engine) { e.curve = c }
}

// WithSmootherWindow overrides the pressure smoothing window length.
// A window of 1 disables smoothing.
func WithSmootherWindow(window int) EngineOption {
	return func(e *Engine) { e.smoother = NewSmoother(window) }
}

// WithSpeedSensor overrides the speed normalization scale (px/ms) and
// smoothing window.
func WithSpeedSensor(scale float64, window int) EngineOption {
	return func(e *Engine) { e.speed = NewSpeedSensor(scale, window) }
}

// NewEngine returns an engine reading brush settings from provider.
// The settings are snapshotted once per processed sample.
func NewEngine(provider paintcore.BrushProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		brush:    provider,
		curve:    NewCurve(CurveLinear),
		smoother: NewSmoother(DefaultSmootherWindow),
		speed:    NewSpeedSensor(DefaultSpeedScale, DefaultSmootherWindow),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Active reports whether a stroke is in progress.
func (e *Engine) Active() bool { return e.active }

// Reset abandons any in-progress stroke without emitting dabs.
func (e *Engine) Reset() {
	e.active = false
	e.history = e.history[:0]
	e.smoother.Reset()
	e.speed.Reset()
}

// ProcessSample consumes one normalized sample and returns the dabs it
// produced, possibly none. Hover samples are ignored. A Down sample
// starts a stroke and always emits the initial dab; an Up sample
// flushes any residual travel so short strokes still leave paint.
func (e *Engine) ProcessSample(s paintcore.InputSample) []paintcore.DabPlacement {
	switch s.Phase {
	case paintcore.PhaseHover:
		return nil
	case paintcore.PhaseDown:
		return e.startStroke(s)
	}
	if !e.active {
		// Defensive: the router should always deliver Down first,
		// but a stray contact sample still starts a stroke rather
		// than losing paint.
		return e.startStroke(s)
	}
	return e.continueStroke(s)
}

// refreshConfig re-reads the brush settings. Settings may change
// mid-stroke, so the snapshot is taken once per processed sample.
func (e *Engine) refreshConfig() {
	e.cfg = e.brush.Snapshot()
	e.footprint = tipFootprint(e.cfg)
	e.threshold = e.cfg.Spacing * e.footprint
	if e.threshold < minDabSpacing {
		e.threshold = minDabSpacing
	}
}

func (e *Engine) startStroke(s paintcore.InputSample) []paintcore.DabPlacement {
	e.active = true
	e.seed = s.StrokeID ^ s.DeviceTimeUs
	e.dabIndex = 0
	e.travel = 0
	e.dirX, e.dirY = 0, 0
	e.history = e.history[:0]
	e.smoother.Reset()
	e.speed.Reset()
	e.refreshConfig()

	p := e.smoother.Push(s.Pressure)
	e.lastSpeed = e.speed.Push(s.X, s.Y, s.HostTimeUs)
	e.lastTime = s.HostTimeUs
	e.last = point{x: s.X, y: s.Y, pressure: p}
	if e.cfg.Interpolate {
		e.history = append(e.history, e.last)
	}

	dabs := e.emit(s.X, s.Y, p)
	if s.Phase == paintcore.PhaseUp {
		e.active = false
	}
	return dabs
}

func (e *Engine) continueStroke(s paintcore.InputSample) []paintcore.DabPlacement {
	e.refreshConfig()
	pressure := e.smoother.Push(s.Pressure)
	if s.Phase == paintcore.PhaseUp {
		// Pen-up always carries zero pressure; the terminal dab
		// must not inherit smoothed residue from the window.
		pressure = 0
	}
	e.lastSpeed = e.speed.Push(s.X, s.Y, s.HostTimeUs)
	e.lastTime = s.HostTimeUs
	pt := point{x: s.X, y: s.Y, pressure: pressure}

	var dabs []paintcore.DabPlacement
	if e.cfg.Interpolate {
		dabs = e.walkSpline(pt, s.Phase == paintcore.PhaseUp)
	} else {
		dabs = e.walk(pt)
	}

	if s.Phase == paintcore.PhaseUp {
		if e.travel > 0 {
			dabs = append(dabs, e.emit(e.last.x, e.last.y, pressure)...)
			e.travel = 0
		}
		e.active = false
	}
	return dabs
}

// walk advances along the straight segment from the last path point to
// pt, emitting a dab each time accumulated travel crosses the spacing
// threshold. Pressure is interpolated along the segment.
func (e *Engine) walk(pt point) []paintcore.DabPlacement {
	var dabs []paintcore.DabPlacement
	from := e.last
	for {
		dx := pt.x - from.x
		dy := pt.y - from.y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			break
		}
		need := e.threshold - e.travel
		if dist < need {
			e.travel += dist
			break
		}
		t := need / dist
		hit := point{
			x:        from.x + dx*t,
			y:        from.y + dy*t,
			pressure: lerpPressure(from.pressure, pt.pressure, t),
		}
		e.dirX, e.dirY = dx, dy
		dabs = append(dabs, e.emit(hit.x, hit.y, hit.pressure)...)
		e.travel = 0
		from = hit
	}
	e.last = pt
	return dabs
}

// walkSpline routes the new sample through a Catmull-Rom window. The
// flattened segment trails the newest sample by one, so final means
// the pending tail segment must be flushed too.
func (e *Engine) walkSpline(pt point, final bool) []paintcore.DabPlacement {
	e.history = append(e.history, pt)
	step := e.threshold / 2
	if step < minDabSpacing {
		step = minDabSpacing
	}

	var dabs []paintcore.DabPlacement
	n := len(e.history)
	if n >= 3 {
		p1, p2, p3 := e.history[n-3], e.history[n-2], e.history[n-1]
		p0 := p1
		if n >= 4 {
			p0 = e.history[n-4]
		}
		for _, q := range subdivideSpline(p0, p1, p2, p3, step) {
			dabs = append(dabs, e.walk(q)...)
		}
	}
	if final && n >= 2 {
		p2, p3 := e.history[n-2], e.history[n-1]
		p1 := p2
		if n >= 3 {
			p1 = e.history[n-3]
		}
		for _, q := range subdivideSpline(p1, p2, p3, p3, step) {
			dabs = append(dabs, e.walk(q)...)
		}
	}
	if n > 4 {
		copy(e.history, e.history[n-4:])
		e.history = e.history[:4]
	}
	return dabs
}

// emit builds the placement(s) for one dab site: the base dab shaped
// by pressure, speed, and sub-pixel compensation, then rewritten by
// the dynamics stage, plus the secondary dab for dual-tip brushes.
func (e *Engine) emit(x, y float64, pressure float32) []paintcore.DabPlacement {
	cfg := &e.cfg
	curved := e.curve.Apply(pressure)

	size := cfg.Size
	if cfg.PressureSize {
		// Keep a residual footprint at zero pressure so light
		// entries still mark the canvas.
		size *= 0.1 + 0.9*float64(curved)
	}
	if cfg.SpeedSize {
		size *= 1 - 0.5*float64(e.lastSpeed)
	}

	flow := cfg.Flow
	if size < 1 {
		// Sub-pixel dab: render at one pixel and fold the lost
		// area into flow so coverage stays proportional.
		flow *= float32(size * size)
		size = 1
	}

	opacity := cfg.Opacity
	if cfg.PressureOpacity {
		opacity *= curved
	}

	mask := paintcore.MaskGauss
	if cfg.Texture != nil {
		mask = paintcore.MaskTexture
	}

	dab := paintcore.DabPlacement{
		X:         x,
		Y:         y,
		Size:      size,
		Roundness: cfg.Roundness,
		Angle:     cfg.Angle,
		Flow:      flow,
		Opacity:   opacity,
		Hardness:  cfg.Hardness,
		Color:     cfg.Color,
		Mask:      mask,
		Texture:   cfg.Texture,
		WetEdge:   cfg.WetEdge,
		TimeUs:    e.lastTime,
		Speed:     e.lastSpeed,
	}

	ctx := dabContext{
		seed:      e.seed,
		index:     e.dabIndex,
		dirX:      e.dirX,
		dirY:      e.dirY,
		footprint: e.footprint,
	}
	e.dabIndex++
	applyDynamics(&dab, cfg.Dynamics, ctx)

	if cfg.Dynamics.DualTip {
		return []paintcore.DabPlacement{dab, dualTipDab(dab, cfg.Dynamics.DualTipScale)}
	}
	return []paintcore.DabPlacement{dab}
}

// tipFootprint is the short axis of the brush tip in pixels. Spacing
// scales off the short axis so flat or stretched tips do not leave
// gaps along their narrow direction.
func tipFootprint(cfg paintcore.BrushConfig) float64 {
	w := cfg.Size
	h := cfg.Size * cfg.Roundness
	if cfg.Texture != nil && cfg.Texture.AspectRatio > 0 {
		if cfg.Texture.AspectRatio >= 1 {
			h /= cfg.Texture.AspectRatio
		} else {
			w *= cfg.Texture.AspectRatio
		}
	}
	f := math.Min(w, h)
	if f <= 0 {
		f = 1
	}
	return f
}
