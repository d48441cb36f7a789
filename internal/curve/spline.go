package curve

import "math"

// Type selects how segment tangents are parameterised.
type Type string

const (
	// Uniform is the classic Catmull-Rom spline with tangents scaled by the
	// tension factor.
	Uniform Type = "catmullrom"
	// Centripetal uses alpha 0.5 knot spacing, which avoids cusps on uneven
	// waypoint spacing. Tension is ignored.
	Centripetal Type = "centripetal"
	// Chordal uses alpha 1 knot spacing. Tension is ignored.
	Chordal Type = "chordal"
)

// Tension is the tangent scale used by the Uniform type. Higher values make
// the curve hug the waypoints at corners; lower values round them off.
const Tension = 0.2

// cubic holds the coefficients of c0 + c1 t + c2 t^2 + c3 t^3 for one axis.
type cubic struct {
	c0, c1, c2, c3 float64
}

// hermite builds the cubic through x0 and x1 with end tangents t0 and t1.
func hermite(x0, x1, t0, t1 float64) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func uniformCatmullRom(x0, x1, x2, x3, tension float64) cubic {
	return hermite(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

// nonuniformCatmullRom computes the tangents for knot intervals dt0, dt1, dt2
// and rescales them to the [0, 1] parameter of the middle segment.
func nonuniformCatmullRom(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	return hermite(x1, x2, t1*dt1, t2*dt1)
}

func (c cubic) at(t float64) float64 {
	t2 := t * t
	return c.c0 + c.c1*t + c.c2*t2 + c.c3*t2*t
}

// knotExponent returns the power applied to squared distances for the
// non-uniform types.
func (k Type) knotExponent() float64 {
	if k == Chordal {
		return 0.5
	}
	return 0.25
}

// knotIntervals returns dt0, dt1, dt2 for the non-uniform types, substituting
// the middle interval for any interval that collapses to nothing.
func knotIntervals(k Type, d01, d12, d23 float64) (float64, float64, float64) {
	e := k.knotExponent()
	dt0 := math.Pow(d01, e)
	dt1 := math.Pow(d12, e)
	dt2 := math.Pow(d23, e)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}
	return dt0, dt1, dt2
}
