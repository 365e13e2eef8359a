// Package curve builds constant-velocity point paths for sliders. A path is
// an ordered table of points reparameterized by arc length, so the slider
// ball position is a simple distance-indexed lookup rather than a function
// of the parametric t. Both judgment (tracking) and the renderer consume it.
package curve

import (
	"math"

	"github.com/vovakirdan/tui-rhythm/internal/core"
)

// Kind selects the sampling strategy for a slider's control geometry.
type Kind uint8

const (
	KindBezier Kind = iota
	KindLinear
	KindPerfect
)

// Near-zero determinant threshold for the collinearity fallback.
const collinearEps = 1e-8

// Sample density bounds. Tables stay small enough that position queries can
// walk them linearly.
const (
	bezierStepsPerPoint = 12
	minSegmentSteps     = 8
	maxSegmentSteps     = 48
	arcLengthPerStep    = 5.0
)

// Point is one entry of the arc-length table. Distance is monotonically
// non-decreasing; the final entry's distance equals the slider's declared
// pixel length.
type Point struct {
	Pos      core.Vec
	Distance float64
}

// Curve is an immutable arc-length-reparameterized slider path.
type Curve struct {
	points []Point
	length float64
	slides int
}

// Build generates the path for a slider. The control slice includes the
// slider head as its first point. Degenerate geometry never fails: the
// fallback is a single-point path at the head.
func Build(controls []core.Vec, kind Kind, pixelLength float64, slides int) *Curve {
	if slides < 1 {
		slides = 1
	}

	poly := samplePolyline(controls, kind)
	points := reparameterize(poly, pixelLength)

	return &Curve{
		points: points,
		length: points[len(points)-1].Distance,
		slides: slides,
	}
}

// Points exposes the arc-length table for rendering the slider body.
func (c *Curve) Points() []Point {
	return c.points
}

// Points2D returns just the positions of the arc-length table, for
// renderers that only draw the body polyline.
func (c *Curve) Points2D() []core.Vec {
	out := make([]core.Vec, len(c.points))
	for i, p := range c.points {
		out[i] = p.Pos
	}
	return out
}

// Length returns the total path distance, normally the declared pixel
// length (shorter only when the raw geometry collapsed to a single point).
func (c *Curve) Length() float64 {
	return c.length
}

// First returns the path start (the slider head).
func (c *Curve) First() core.Vec {
	return c.points[0].Pos
}

// Last returns the path end (the slider tail).
func (c *Curve) Last() core.Vec {
	return c.points[len(c.points)-1].Pos
}

// Slides returns the traversal count the curve was built with.
func (c *Curve) Slides() int {
	return c.slides
}

// PositionAt returns the ball position for progress through the slider's
// full duration, in [0, 1], accounting for repeats: the integer part of the
// scaled progress selects the traversal (even = forward, odd = reversed),
// the fractional part indexes the arc-length table.
func (c *Curve) PositionAt(progress float64) core.Vec {
	progress = core.ClampF(progress, 0, 1)
	scaled := progress * float64(c.slides)

	slide := int(math.Floor(scaled))
	if slide >= c.slides {
		// progress == 1 lands exactly on the final slide boundary.
		slide = c.slides - 1
	}
	frac := scaled - float64(slide)
	if slide%2 == 1 {
		frac = 1 - frac
	}

	return c.PositionAtDistance(frac * c.length)
}

// PositionAtDistance returns the point at the given arc distance along the
// path. Queries past the last sample clamp to the final point.
func (c *Curve) PositionAtDistance(d float64) core.Vec {
	pts := c.points
	if d <= 0 || len(pts) == 1 {
		return pts[0].Pos
	}
	for i := 1; i < len(pts); i++ {
		if d <= pts[i].Distance {
			span := pts[i].Distance - pts[i-1].Distance
			if span <= 0 {
				return pts[i].Pos
			}
			t := (d - pts[i-1].Distance) / span
			return core.Lerp(pts[i-1].Pos, pts[i].Pos, t)
		}
	}
	return pts[len(pts)-1].Pos
}

// samplePolyline produces a dense raw polyline from the control geometry.
func samplePolyline(controls []core.Vec, kind Kind) []core.Vec {
	var poly []core.Vec
	add := func(v core.Vec) {
		n := len(poly)
		if n == 0 || poly[n-1] != v {
			poly = append(poly, v)
		}
	}

	switch kind {
	case KindLinear:
		for _, p := range controls {
			add(p)
		}

	case KindPerfect:
		if len(controls) == 3 {
			for _, p := range sampleArc(controls[0], controls[1], controls[2]) {
				add(p)
			}
		} else {
			for _, seg := range splitSegments(controls) {
				for _, p := range sampleSegment(seg) {
					add(p)
				}
			}
		}

	default: // Bezier with red-anchor segmentation
		for _, seg := range splitSegments(controls) {
			for _, p := range sampleSegment(seg) {
				add(p)
			}
		}
	}

	if len(poly) == 0 {
		if len(controls) > 0 {
			poly = []core.Vec{controls[0]}
		} else {
			poly = []core.Vec{{}}
		}
	}
	return poly
}

// splitSegments breaks the control points into sub-segments wherever a
// point repeats consecutively; the chart format encodes sharp corners that
// way.
func splitSegments(controls []core.Vec) [][]core.Vec {
	if len(controls) == 0 {
		return nil
	}
	var segs [][]core.Vec
	cur := []core.Vec{controls[0]}
	for i := 1; i < len(controls); i++ {
		p := controls[i]
		if p == cur[len(cur)-1] {
			if len(cur) >= 2 {
				segs = append(segs, cur)
			}
			cur = []core.Vec{p}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) >= 2 {
		segs = append(segs, cur)
	}
	if len(segs) == 0 {
		segs = [][]core.Vec{{controls[0]}}
	}
	return segs
}

// sampleSegment dispatches on control point count: two points interpolate
// linearly, exactly three form a circular arc, more run through de
// Casteljau Bezier evaluation.
func sampleSegment(seg []core.Vec) []core.Vec {
	switch len(seg) {
	case 0:
		return nil
	case 1:
		return seg
	case 2:
		return seg
	case 3:
		return sampleArc(seg[0], seg[1], seg[2])
	default:
		return sampleBezier(seg)
	}
}

// sampleBezier evaluates the curve at evenly spaced parameter values using
// recursive de Casteljau interpolation. Control point counts are small in
// practice, so the recursion depth is bounded.
func sampleBezier(controls []core.Vec) []core.Vec {
	steps := core.Clamp(len(controls)*bezierStepsPerPoint, minSegmentSteps, maxSegmentSteps)
	out := make([]core.Vec, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		out = append(out, deCasteljau(controls, t))
	}
	return out
}

// deCasteljau evaluates a Bezier curve of any degree at parameter t by
// repeated linear interpolation of the control polygon.
func deCasteljau(controls []core.Vec, t float64) core.Vec {
	if len(controls) == 1 {
		return controls[0]
	}
	reduced := make([]core.Vec, len(controls)-1)
	for i := range reduced {
		reduced[i] = core.Lerp(controls[i], controls[i+1], t)
	}
	return deCasteljau(reduced, t)
}

// sampleArc generates points along the circular arc through p1, p2, p3
// using the circumscribed-circle construction. Collinear inputs (near-zero
// determinant) fall back to a straight line.
func sampleArc(p1, p2, p3 core.Vec) []core.Vec {
	d := 2 * (p1.X*(p2.Y-p3.Y) + p2.X*(p3.Y-p1.Y) + p3.X*(p1.Y-p2.Y))
	if math.Abs(d) < collinearEps {
		return []core.Vec{p1, p3}
	}

	a2 := p1.X*p1.X + p1.Y*p1.Y
	b2 := p2.X*p2.X + p2.Y*p2.Y
	c2 := p3.X*p3.X + p3.Y*p3.Y
	center := core.Vec{
		X: (a2*(p2.Y-p3.Y) + b2*(p3.Y-p1.Y) + c2*(p1.Y-p2.Y)) / d,
		Y: (a2*(p3.X-p2.X) + b2*(p1.X-p3.X) + c2*(p2.X-p1.X)) / d,
	}
	radius := center.Dist(p1)

	a1 := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	a3 := math.Atan2(p3.Y-center.Y, p3.X-center.X)

	// Sweep direction from the turn of the three points.
	dir := 1.0
	if p2.Sub(p1).Cross(p3.Sub(p2)) < 0 {
		dir = -1.0
	}
	delta := a3 - a1
	for delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	for delta > math.Pi {
		delta -= 2 * math.Pi
	}
	if dir > 0 && delta < 0 {
		delta += 2 * math.Pi
	} else if dir < 0 && delta > 0 {
		delta -= 2 * math.Pi
	}

	steps := core.Clamp(int(math.Ceil(math.Abs(delta)*radius/arcLengthPerStep)), minSegmentSteps, maxSegmentSteps)
	out := make([]core.Vec, 0, steps+1)
	out = append(out, p1)
	for i := 1; i < steps; i++ {
		a := a1 + delta*float64(i)/float64(steps)
		out = append(out, core.Vec{
			X: center.X + math.Cos(a)*radius,
			Y: center.Y + math.Sin(a)*radius,
		})
	}
	out = append(out, p3)
	return out
}

// reparameterize walks the raw polyline accumulating Euclidean distance,
// truncating or interpolating the final point so the total distance exactly
// matches the declared pixel length. Geometry shorter than declared is
// extended by extrapolating the last segment.
func reparameterize(poly []core.Vec, pixelLength float64) []Point {
	out := []Point{{Pos: poly[0], Distance: 0}}
	if pixelLength <= 0 {
		return out
	}

	total := 0.0
	for i := 1; i < len(poly); i++ {
		step := poly[i].Dist(poly[i-1])
		if step == 0 {
			continue
		}
		if total+step >= pixelLength {
			// Truncate: interpolate the exact endpoint and stop.
			t := (pixelLength - total) / step
			out = append(out, Point{
				Pos:      core.Lerp(poly[i-1], poly[i], t),
				Distance: pixelLength,
			})
			return out
		}
		total += step
		out = append(out, Point{Pos: poly[i], Distance: total})
	}

	// Raw geometry is shorter than declared: extrapolate the last segment.
	if len(out) >= 2 {
		last := out[len(out)-1]
		prev := out[len(out)-2]
		dir := last.Pos.Sub(prev.Pos)
		segLen := dir.Len()
		if segLen > 0 {
			extend := pixelLength - last.Distance
			out = append(out, Point{
				Pos:      last.Pos.Add(dir.Scale(extend / segLen)),
				Distance: pixelLength,
			})
		}
	}
	// A single-point path cannot be extended; its best achievable length
	// stays zero and position queries pin to the head.
	return out
}
