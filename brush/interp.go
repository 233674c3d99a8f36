package brush

import "math"

type point struct {
	x, y     float64
	pressure float32
}

// catmullRom evaluates a centripetal-free (uniform) Catmull-Rom spline
// through p1..p2 at parameter t in [0, 1].
func catmullRom(p0, p1, p2, p3 point, t float64) point {
	t2 := t * t
	t3 := t2 * t
	blend := func(v0, v1, v2, v3 float64) float64 {
		return 0.5 * ((2 * v1) +
			(-v0+v2)*t +
			(2*v0-5*v1+4*v2-v3)*t2 +
			(-v0+3*v1-3*v2+v3)*t3)
	}
	return point{
		x:        blend(p0.x, p1.x, p2.x, p3.x),
		y:        blend(p0.y, p1.y, p2.y, p3.y),
		pressure: lerpPressure(p1.pressure, p2.pressure, t),
	}
}

// subdivideSpline flattens the spline segment p1..p2 into a polyline
// with roughly maxStep spacing between points. The result excludes p1
// and includes p2, so consecutive segments chain without duplicates.
func subdivideSpline(p0, p1, p2, p3 point, maxStep float64) []point {
	dist := math.Hypot(p2.x-p1.x, p2.y-p1.y)
	steps := int(math.Ceil(dist / maxStep))
	if steps < 1 {
		steps = 1
	}
	out := make([]point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if i == steps {
			out = append(out, p2)
			break
		}
		out = append(out, catmullRom(p0, p1, p2, p3, t))
	}
	return out
}

func lerpPressure(a, b float32, t float64) float32 {
	return a + float32(t)*(b-a)
}
