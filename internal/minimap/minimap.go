// Package minimap projects track and vehicle coordinates onto a small
// top-down canvas.
package minimap

import (
	"math"

	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

// Padding is the canvas margin kept clear on every side.
const Padding = 20.0

// closeTolerance is how near the last waypoint must be to the first, per
// axis, for the outline to be drawn closed.
const closeTolerance = 1.0

// Point is a canvas coordinate. Y grows downward with world Z.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline is the projected track polyline.
type Outline struct {
	Points    []Point `json:"points"`
	Closed    bool    `json:"closed"`
	LineWidth float64 `json:"line_width"`
}

// Marker is the vehicle arrow: its canvas position and the rotation, in
// radians, to apply to an arrow pointing up the canvas.
type Marker struct {
	At       Point   `json:"at"`
	Rotation float64 `json:"rotation"`
}

// Projector maps world coordinates of one track onto a canvas.
type Projector struct {
	def    track.Definition
	minX   float64
	minZ   float64
	scale  float64
	width  float64
	height float64
}

// NewProjector fits the track's waypoint bounding box into a canvas of the
// given size with a uniform scale.
func NewProjector(def track.Definition, width, height float64) *Projector {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, p := range def.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}
	if len(def.Points) == 0 {
		minX, maxX, minZ, maxZ = 0, 0, 0, 0
	}

	spanX, spanZ := maxX-minX, maxZ-minZ
	if spanX == 0 {
		spanX = 1
	}
	if spanZ == 0 {
		spanZ = 1
	}
	scale := math.Min((width-2*Padding)/spanX, (height-2*Padding)/spanZ)

	return &Projector{
		def:    def,
		minX:   minX,
		minZ:   minZ,
		scale:  scale,
		width:  width,
		height: height,
	}
}

// Size returns the canvas dimensions.
func (p *Projector) Size() (width, height float64) { return p.width, p.height }

// Scale returns canvas units per world unit.
func (p *Projector) Scale() float64 { return p.scale }

// Project maps a ground-plane position to the canvas.
func (p *Projector) Project(v geom.Vec2) Point {
	return Point{
		X: Padding + (v.X-p.minX)*p.scale,
		Y: Padding + (v.Z-p.minZ)*p.scale,
	}
}

// Outline projects every waypoint in layout order.
func (p *Projector) Outline() Outline {
	pts := p.def.Points
	out := Outline{Points: make([]Point, len(pts)), LineWidth: p.def.Width * p.scale * 0.5}
	for i, w := range pts {
		out.Points[i] = p.Project(w.Flat())
	}
	if n := len(pts); n > 2 {
		first, last := pts[0], pts[n-1]
		out.Closed = math.Abs(first.X-last.X) < closeTolerance && math.Abs(first.Z-last.Z) < closeTolerance
	}
	if !(out.LineWidth > 0) {
		out.LineWidth = 10
	}
	return out
}

// Start projects the track's start position.
func (p *Projector) Start() Point { return p.Project(p.def.StartPosition.Flat()) }

// Marker places the vehicle arrow for a pose.
func (p *Projector) Marker(pose vehicle.Pose) Marker {
	return Marker{At: p.Project(pose.Position), Rotation: -pose.Heading + math.Pi}
}
