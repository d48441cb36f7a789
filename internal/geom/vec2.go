// Package geom provides the flat-plane vector math shared by the track and
// vehicle packages. Drivable geometry lives on the y=0 plane, so a position is
// an (X, Z) pair.
package geom

import "math"

// Vec2 is a position or direction on the ground plane, in world units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Z - o.Z} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Z*o.Z }
func (v Vec2) LenSq() float64       { return v.X*v.X + v.Z*v.Z }
func (v Vec2) Len() float64         { return math.Sqrt(v.LenSq()) }

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// Perp returns v rotated a quarter turn: (-Z, X).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Z, v.X} }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec2) float64 { return a.Sub(b).Len() }

// DistSq returns the squared Euclidean distance between a and b.
func DistSq(a, b Vec2) float64 { return a.Sub(b).LenSq() }

// Lerp interpolates from a to b by t.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Z + (b.Z-a.Z)*t}
}

// Forward returns the unit direction for a heading in radians. Heading 0 faces
// +Z and increases toward +X.
func Forward(heading float64) Vec2 {
	return Vec2{math.Sin(heading), math.Cos(heading)}
}

// Heading returns the heading that faces along d, the inverse of Forward.
func Heading(d Vec2) float64 {
	return math.Atan2(d.X, d.Z)
}

// Near reports whether a and b are within eps of each other on both axes.
func Near(a, b Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Z-b.Z) <= eps
}
