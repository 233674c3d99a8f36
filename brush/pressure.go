package brush

import "math"

// CurveShape names a built-in pressure response curve.
type CurveShape int

const (
	// CurveLinear maps pressure through unchanged.
	CurveLinear CurveShape = iota
	// CurveSoft lifts low pressures (square root response).
	CurveSoft
	// CurveHard suppresses low pressures (squared response).
	CurveHard
	// CurveSCurve eases both ends (smoothstep response).
	CurveSCurve
)

const curveTableSize = 256

// Curve maps raw normalized pressure through a lookup table.
// The table is built once; Apply interpolates between entries.
type Curve struct {
	lut [curveTableSize]float32
}

// NewCurve builds the lookup table for one of the built-in shapes.
func NewCurve(shape CurveShape) *Curve {
	c := &Curve{}
	for i := range c.lut {
		p := float64(i) / float64(curveTableSize-1)
		var v float64
		switch shape {
		case CurveSoft:
			v = math.Sqrt(p)
		case CurveHard:
			v = p * p
		case CurveSCurve:
			v = p * p * (3 - 2*p)
		default:
			v = p
		}
		c.lut[i] = float32(v)
	}
	return c
}

// CurveFromTable builds a curve from caller-supplied control values.
// The table must be non-empty; values are clamped to [0, 1].
func CurveFromTable(table []float32) *Curve {
	c := &Curve{}
	if len(table) == 0 {
		return NewCurve(CurveLinear)
	}
	for i := range c.lut {
		pos := float64(i) / float64(curveTableSize-1) * float64(len(table)-1)
		lo := int(pos)
		hi := lo
		if hi < len(table)-1 {
			hi++
		}
		frac := float32(pos - float64(lo))
		v := table[lo]*(1-frac) + table[hi]*frac
		c.lut[i] = clamp01(v)
	}
	return c
}

// Apply maps a raw pressure value through the curve.
func (c *Curve) Apply(p float32) float32 {
	if p <= 0 {
		return c.lut[0]
	}
	if p >= 1 {
		return c.lut[curveTableSize-1]
	}
	pos := float64(p) * float64(curveTableSize-1)
	lo := int(pos)
	frac := float32(pos - float64(lo))
	return c.lut[lo]*(1-frac) + c.lut[lo+1]*frac
}

// DefaultSmootherWindow is the sliding window length used when a
// policy does not override it.
const DefaultSmootherWindow = 3

// Smoother averages pressure over a short sliding window. The first
// value of a stroke primes the entire window so the stroke does not
// ramp up from zero on devices that report full pressure immediately.
type Smoother struct {
	window []float32
	next   int
	primed bool
}

// NewSmoother returns a smoother with the given window length.
// Lengths below 1 are treated as 1 (no smoothing).
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = 1
	}
	return &Smoother{window: make([]float32, window)}
}

// Push adds a pressure value and returns the current window average.
func (s *Smoother) Push(p float32) float32 {
	if !s.primed {
		for i := range s.window {
			s.window[i] = p
		}
		s.primed = true
		return p
	}
	s.window[s.next] = p
	s.next = (s.next + 1) % len(s.window)
	var sum float32
	for _, v := range s.window {
		sum += v
	}
	return sum / float32(len(s.window))
}

// Reset clears the window for a new stroke.
func (s *Smoother) Reset() {
	s.next = 0
	s.primed = false
}

// DefaultSpeedScale is the cursor speed, in pixels per millisecond,
// that maps to a normalized speed of 1.
const DefaultSpeedScale = 2.0

// SpeedSensor derives a normalized [0, 1] speed signal from sample
// positions and host timestamps, smoothed over a short window.
type SpeedSensor struct {
	scale    float64
	smoother *Smoother
	lastX    float64
	lastY    float64
	lastUs   uint64
	hasLast  bool
}

// NewSpeedSensor returns a sensor normalizing against scale px/ms.
func NewSpeedSensor(scale float64, window int) *SpeedSensor {
	if scale <= 0 {
		scale = DefaultSpeedScale
	}
	return &SpeedSensor{scale: scale, smoother: NewSmoother(window)}
}

// Push observes a sample position and returns the smoothed speed.
// Samples with non-increasing timestamps contribute zero speed.
func (s *SpeedSensor) Push(x, y float64, hostUs uint64) float32 {
	var speed float64
	if s.hasLast && hostUs > s.lastUs {
		dist := math.Hypot(x-s.lastX, y-s.lastY)
		dtMs := float64(hostUs-s.lastUs) / 1000.0
		speed = dist / dtMs / s.scale
		if speed > 1 {
			speed = 1
		}
	}
	s.lastX, s.lastY, s.lastUs = x, y, hostUs
	s.hasLast = true
	return s.smoother.Push(float32(speed))
}

// Reset clears sensor state for a new stroke.
func (s *SpeedSensor) Reset() {
	s.hasLast = false
	s.smoother.Reset()
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
