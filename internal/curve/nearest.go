package curve

import (
	"math"

	"github.com/cxd309/kart-engine/internal/geom"
)

// Samples returns a copy of the fixed sample set, PointAt(i/SampleCount) for
// i in [0, SampleCount).
func (c *Curve) Samples() []geom.Vec2 {
	return append([]geom.Vec2(nil), c.samples[:]...)
}

// ClosestSample scans the sample set linearly and returns the index, position
// and distance of the sample nearest q. The first sample in scan order wins a
// tie.
func (c *Curve) ClosestSample(q geom.Vec2) (int, geom.Vec2, float64) {
	best, bestSq := 0, math.Inf(1)
	for i, s := range c.samples {
		if d := geom.DistSq(q, s); d < bestSq {
			best, bestSq = i, d
		}
	}
	return best, c.samples[best], math.Sqrt(bestSq)
}

// ClosestPoint returns the sample on the curve nearest q. The result is the
// nearest of the sampled set, not the exact nearest point on the curve.
func (c *Curve) ClosestPoint(q geom.Vec2) geom.Vec2 {
	_, p, _ := c.ClosestSample(q)
	return p
}
