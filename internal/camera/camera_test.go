package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

func TestFirstPoseSnapsBehindKart(t *testing.T) {
	r := NewFollowRig()
	v := r.Update(vehicle.Pose{Position: geom.Vec2{X: 3, Z: 4}, Heading: 0})

	assert.Equal(t, Vec3{X: 3, Y: 5, Z: -4}, v.Eye)
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: 4}, v.LookAt)
}

func TestEyeLerpsTowardTarget(t *testing.T) {
	r := NewFollowRig()
	r.Update(vehicle.Pose{})

	// Face +X: the target swings to the -X side of the kart.
	p := vehicle.Pose{Heading: math.Pi / 2}
	target := r.Target(p)
	assert.InDelta(t, -8, target.X, 1e-12)
	assert.InDelta(t, 0, target.Z, 1e-12)

	v := r.Update(p)
	assert.InDelta(t, 0.1*-8, v.Eye.X, 1e-12)
	assert.InDelta(t, -8+0.1*8, v.Eye.Z, 1e-12)
	assert.Equal(t, 5.0, v.Eye.Y)

	for i := 0; i < 200; i++ {
		v = r.Update(p)
	}
	assert.InDelta(t, target.X, v.Eye.X, 1e-6)
	assert.InDelta(t, target.Z, v.Eye.Z, 1e-6)
}

func TestResetSnapsAgain(t *testing.T) {
	r := NewFollowRig()
	r.ConsumePose(vehicle.Pose{})
	r.Reset()
	assert.Equal(t, View{}, r.View())

	p := vehicle.Pose{Position: geom.Vec2{X: 100, Z: 100}}
	r.ConsumePose(p)
	assert.Equal(t, r.Target(p), r.View().Eye)
}
