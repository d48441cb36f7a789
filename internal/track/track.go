// Package track holds the static race track definitions and the catalog that
// serves them.
//
// Definitions are plain data: an ordered list of authored waypoints on the
// ground plane, a corridor width, two display colours and a start position.
// They are validated when loaded and never mutated afterwards.
package track

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/cxd309/kart-engine/internal/geom"
)

// ID is the stable string identifier of a track.
type ID = string

// ErrInvalidDefinition is returned when a track record violates the schema.
var ErrInvalidDefinition = errors.New("invalid track definition")

// closeEps is the tolerance under which the last waypoint is considered the
// closing marker of the loop.
const closeEps = 1e-9

// Point is an authored 3D position. Y is conventionally 0 and ignored by the
// drivable geometry.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Flat drops the height component.
func (p Point) Flat() geom.Vec2 { return geom.Vec2{X: p.X, Z: p.Z} }

// Definition is one track record as authored in the track file.
type Definition struct {
	ID            ID      `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Points        []Point `json:"points" yaml:"points"`
	Width         float64 `json:"width" yaml:"width"` // corridor span, world units
	TrackColor    string  `json:"trackColor" yaml:"trackColor"`
	LineColor     string  `json:"lineColor" yaml:"lineColor"`
	StartPosition Point   `json:"startPosition" yaml:"startPosition"`
}

// StartPose is where a vehicle spawns on a track.
type StartPose struct {
	Position geom.Vec2
	Heading  float64 // radians, facing from waypoint[0] toward waypoint[1]
}

// Validate checks the record against the schema. It never coerces values.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	if len(d.Points) < 2 {
		return fmt.Errorf("%w: track %q has %d points, need at least 2", ErrInvalidDefinition, d.ID, len(d.Points))
	}
	if !(d.Width > 0) || math.IsInf(d.Width, 0) {
		return fmt.Errorf("%w: track %q width %v must be positive", ErrInvalidDefinition, d.ID, d.Width)
	}
	for i, p := range d.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Z) || math.IsInf(p.X, 0) || math.IsInf(p.Z, 0) {
			return fmt.Errorf("%w: track %q point %d is not finite", ErrInvalidDefinition, d.ID, i)
		}
	}
	return nil
}

// Waypoints returns the authored points projected onto the ground plane, in
// layout order.
func (d Definition) Waypoints() []geom.Vec2 {
	out := make([]geom.Vec2, len(d.Points))
	for i, p := range d.Points {
		out[i] = p.Flat()
	}
	return out
}

// Closed reports whether the last waypoint repeats the first one.
func (d Definition) Closed() bool {
	n := len(d.Points)
	return n > 1 && geom.Near(d.Points[0].Flat(), d.Points[n-1].Flat(), closeEps)
}

// Loop returns the waypoints of one lap with the closing duplicate removed.
func (d Definition) Loop() []geom.Vec2 {
	pts := d.Waypoints()
	if d.Closed() {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// StartPose returns the spawn position and the heading along the starting
// tangent (waypoint[0] toward waypoint[1]).
func (d Definition) StartPose() StartPose {
	pose := StartPose{Position: d.StartPosition.Flat()}
	if len(d.Points) >= 2 {
		pose.Heading = geom.Heading(d.Points[1].Flat().Sub(d.Points[0].Flat()))
	}
	return pose
}

// RightEdge returns the waypoints offset by half the width to the right of the
// direction of travel.
func (d Definition) RightEdge() []geom.Vec2 { return d.edge(-1) }

// LeftEdge returns the waypoints offset by half the width to the left of the
// direction of travel.
func (d Definition) LeftEdge() []geom.Vec2 { return d.edge(1) }

// edge offsets each waypoint along the perpendicular of its prev->next chord,
// wrapping around the loop. side is +1 for left and -1 for right.
func (d Definition) edge(side float64) []geom.Vec2 {
	loop := d.Loop()
	n := len(loop)
	out := make([]geom.Vec2, 0, len(d.Points))
	if n < 2 {
		return out
	}
	half := d.Width / 2
	for i, p := range loop {
		prev := loop[(i-1+n)%n]
		next := loop[(i+1)%n]
		dir := next.Sub(prev).Normalize()
		// Perp of (x, z) is (-z, x); left of travel is (z, -x).
		off := dir.Perp().Scale(-side * half)
		out = append(out, p.Add(off))
	}
	if d.Closed() {
		out = append(out, out[0])
	}
	return out
}

// Fingerprint returns a stable hash of the geometry that drives the
// simulation: id, width and the flat waypoint coordinates.
func (d Definition) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(d.ID)
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	put(d.Width)
	for _, p := range d.Points {
		put(p.X)
		put(p.Z)
	}
	return h.Sum64()
}
