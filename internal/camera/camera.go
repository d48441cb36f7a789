// Package camera derives a chase camera from vehicle poses.
package camera

import (
	"math"

	"github.com/cxd309/kart-engine/internal/vehicle"
)

// Vec3 is a world-space point. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t, a.Z + (b.Z-a.Z)*t}
}

// View is where the camera sits and what it looks at.
type View struct {
	Eye    Vec3 `json:"eye"`
	LookAt Vec3 `json:"look_at"`
}

// Rig tuning defaults.
const (
	DefaultDistance   = 8.0
	DefaultHeight     = 5.0
	DefaultSmoothing  = 0.1
	DefaultLookHeight = 1.0
)

// FollowRig trails the kart from behind and above. Each pose pulls the eye a
// fixed fraction of the way toward its target, so the camera lags on turns.
type FollowRig struct {
	Distance   float64 // behind the kart along its heading
	Height     float64 // above the ground plane
	Smoothing  float64 // fraction of the remaining gap closed per pose, in (0, 1]
	LookHeight float64 // aim point above the kart

	view   View
	primed bool
}

// NewFollowRig returns a rig with the stock chase offsets.
func NewFollowRig() *FollowRig {
	return &FollowRig{
		Distance:   DefaultDistance,
		Height:     DefaultHeight,
		Smoothing:  DefaultSmoothing,
		LookHeight: DefaultLookHeight,
	}
}

// Target returns the resting eye position for a pose.
func (r *FollowRig) Target(p vehicle.Pose) Vec3 {
	return Vec3{
		X: p.Position.X - math.Sin(p.Heading)*r.Distance,
		Y: r.Height,
		Z: p.Position.Z - math.Cos(p.Heading)*r.Distance,
	}
}

// Update moves the camera for a new pose and returns the view. The first pose
// after construction or Reset places the eye on its target directly.
func (r *FollowRig) Update(p vehicle.Pose) View {
	target := r.Target(p)
	if r.primed {
		r.view.Eye = lerp(r.view.Eye, target, r.Smoothing)
	} else {
		r.view.Eye = target
		r.primed = true
	}
	r.view.LookAt = Vec3{X: p.Position.X, Z: p.Position.Z}.add(Vec3{Y: r.LookHeight})
	return r.view
}

// ConsumePose lets the rig be registered as a session sink.
func (r *FollowRig) ConsumePose(p vehicle.Pose) { r.Update(p) }

// View returns the last computed view.
func (r *FollowRig) View() View { return r.view }

// Reset forgets the eye position so the next pose snaps.
func (r *FollowRig) Reset() {
	r.view = View{}
	r.primed = false
}
