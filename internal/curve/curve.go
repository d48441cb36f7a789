// Package curve represents a track centerline as a closed, smooth parametric
// curve through the authored waypoints, and answers the nearest-point queries
// used to keep vehicles on the track.
//
// A Curve is immutable once built. Building it twice from the same waypoints
// yields identical samples.
package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/cxd309/kart-engine/internal/geom"
)

const (
	// SampleCount is the size of the fixed sample set scanned by ClosestPoint.
	SampleCount = 100
	// DefaultArcLengthDivisions is the resolution of the arc-length table.
	DefaultArcLengthDivisions = 200

	pointEps = 1e-9
)

var (
	// ErrTooFewPoints is returned when fewer than two distinct waypoints remain.
	ErrTooFewPoints = errors.New("curve needs at least 2 distinct waypoints")
	// ErrDegenerateSegment is returned when two consecutive waypoints coincide.
	ErrDegenerateSegment = errors.New("curve has a zero-length segment")
)

// Option configures Build.
type Option func(*options)

type options struct {
	kind      Type
	divisions int
}

// WithType selects the spline parameterisation. The default is Uniform.
func WithType(k Type) Option { return func(o *options) { o.kind = k } }

// WithArcLengthDivisions sets the resolution of the arc-length table.
func WithArcLengthDivisions(n int) Option { return func(o *options) { o.divisions = n } }

// Curve is a closed Catmull-Rom spline through a loop of waypoints.
type Curve struct {
	kind       Type
	points     []geom.Vec2
	arcLengths []float64 // cumulative length at t = i/divisions
	samples    [SampleCount]geom.Vec2
}

// Build fits a closed spline through waypoints. A trailing point equal to the
// first one is treated as the loop's closing marker and dropped. On error no
// curve is returned.
func Build(waypoints []geom.Vec2, opts ...Option) (*Curve, error) {
	o := options{kind: Uniform, divisions: DefaultArcLengthDivisions}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.kind {
	case Uniform, Centripetal, Chordal:
	default:
		return nil, fmt.Errorf("unknown curve type %q", o.kind)
	}
	if o.divisions < 1 {
		return nil, fmt.Errorf("arc length divisions %d must be positive", o.divisions)
	}

	pts := append([]geom.Vec2(nil), waypoints...)
	if n := len(pts); n > 1 && geom.Near(pts[0], pts[n-1], pointEps) {
		pts = pts[:n-1]
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(pts))
	}
	for i := range pts {
		j := (i + 1) % len(pts)
		if geom.Dist(pts[i], pts[j]) <= pointEps {
			return nil, fmt.Errorf("%w: waypoints %d and %d coincide", ErrDegenerateSegment, i, j)
		}
	}

	c := &Curve{kind: o.kind, points: pts}
	c.buildArcLengths(o.divisions)
	if !(c.Length() > 0) {
		return nil, fmt.Errorf("%w: curve has no length", ErrDegenerateSegment)
	}
	for i := range c.samples {
		c.samples[i] = c.PointAt(float64(i) / SampleCount)
	}
	return c, nil
}

// Type returns the spline parameterisation in use.
func (c *Curve) Type() Type { return c.kind }

// Waypoints returns a copy of the control points of one loop.
func (c *Curve) Waypoints() []geom.Vec2 {
	return append([]geom.Vec2(nil), c.points...)
}

// Point evaluates the spline at raw parameter t. The curve is closed, so t
// wraps and Point(0) equals Point(1).
func (c *Curve) Point(t float64) geom.Vec2 {
	l := len(c.points)
	t -= math.Floor(t)
	p := float64(l) * t
	seg := int(math.Floor(p))
	w := p - float64(seg)

	p0 := c.points[(seg-1+l)%l]
	p1 := c.points[seg%l]
	p2 := c.points[(seg+1)%l]
	p3 := c.points[(seg+2)%l]

	var px, pz cubic
	if c.kind == Uniform {
		px = uniformCatmullRom(p0.X, p1.X, p2.X, p3.X, Tension)
		pz = uniformCatmullRom(p0.Z, p1.Z, p2.Z, p3.Z, Tension)
	} else {
		dt0, dt1, dt2 := knotIntervals(c.kind, geom.DistSq(p0, p1), geom.DistSq(p1, p2), geom.DistSq(p2, p3))
		px = nonuniformCatmullRom(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2)
		pz = nonuniformCatmullRom(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2)
	}
	return geom.Vec2{X: px.at(w), Z: pz.at(w)}
}

func (c *Curve) buildArcLengths(divisions int) {
	c.arcLengths = make([]float64, divisions+1)
	last := c.Point(0)
	sum := 0.0
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float64(i) / float64(divisions))
		sum += geom.Dist(cur, last)
		c.arcLengths[i] = sum
		last = cur
	}
}

// Length returns the approximate arc length of one full loop.
func (c *Curve) Length() float64 { return c.arcLengths[len(c.arcLengths)-1] }

// paramAt maps the arc-length fraction u in [0, 1] to the raw parameter t.
func (c *Curve) paramAt(u float64) float64 {
	u = math.Max(0, math.Min(1, u))
	n := len(c.arcLengths) - 1
	target := u * c.Length()

	low, high := 0, n
	for low <= high {
		i := low + (high-low)/2
		switch d := c.arcLengths[i] - target; {
		case d < 0:
			low = i + 1
		case d > 0:
			high = i - 1
		default:
			return float64(i) / float64(n)
		}
	}
	i := high
	if i >= n {
		return 1
	}
	before, after := c.arcLengths[i], c.arcLengths[i+1]
	if after == before {
		return float64(i) / float64(n)
	}
	return (float64(i) + (target-before)/(after-before)) / float64(n)
}

// PointAt samples the curve at arc-length fraction u in [0, 1]. Values
// outside the range are clamped. PointAt(0) equals PointAt(1).
func (c *Curve) PointAt(u float64) geom.Vec2 {
	return c.Point(c.paramAt(u))
}

// TangentAt returns the unit direction of travel at arc-length fraction u.
func (c *Curve) TangentAt(u float64) geom.Vec2 {
	const delta = 1e-4
	t := c.paramAt(u)
	return c.Point(t + delta).Sub(c.Point(t - delta)).Normalize()
}
