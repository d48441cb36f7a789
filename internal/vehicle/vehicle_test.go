package vehicle

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/curve"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kinematics"
)

func squareCurve(t *testing.T) *curve.Curve {
	t.Helper()
	c, err := curve.Build([]geom.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}, {X: 0, Z: 0}})
	require.NoError(t, err)
	return c
}

func activeOn(t *testing.T, model kinematics.MotionModel, c *curve.Curve, width float64, pos geom.Vec2, heading float64) *Vehicle {
	t.Helper()
	v := New(model, pos, heading)
	require.NoError(t, v.AttachTrack(c, width))
	require.NoError(t, v.Start())
	return v
}

func pointModel() kinematics.Arcade {
	m := kinematics.DefaultArcade()
	m.HalfWidth = 0
	return m
}

func TestStepWithoutTrack(t *testing.T) {
	v := New(kinematics.DefaultArcade(), geom.Vec2{}, 0)
	require.NoError(t, v.Start())
	before := v.State()

	_, err := v.Step(Intent{Forward: true})
	assert.ErrorIs(t, err, ErrNoActiveTrack)
	assert.Equal(t, before, v.State())

	require.NoError(t, v.AttachTrack(squareCurve(t), 10))
	_, err = v.Step(Intent{Forward: true})
	require.NoError(t, err)

	v.DetachTrack()
	_, err = v.Step(Intent{Forward: true})
	assert.ErrorIs(t, err, ErrNoActiveTrack)
}

func TestAttachRejectsNarrowCorridor(t *testing.T) {
	v := New(kinematics.DefaultArcade(), geom.Vec2{}, 0)
	err := v.AttachTrack(squareCurve(t), 1.5)
	assert.ErrorIs(t, err, ErrCorridorTooNarrow)
	assert.False(t, v.HasTrack())
	assert.ErrorIs(t, v.AttachTrack(nil, 10), ErrNoActiveTrack)
}

func TestPhases(t *testing.T) {
	v := New(kinematics.DefaultArcade(), geom.Vec2{}, math.Pi/2)
	require.NoError(t, v.AttachTrack(squareCurve(t), 10))
	assert.Equal(t, PhaseIdle, v.Phase())

	// Idle ignores intent.
	p, err := v.Step(Intent{Forward: true, Left: true})
	require.NoError(t, err)
	assert.Equal(t, geom.Vec2{}, p.Position)
	assert.Zero(t, p.Speed)
	assert.Equal(t, PhaseIdle, p.Phase)

	assert.ErrorIs(t, v.Pause(), ErrInvalidTransition)
	require.NoError(t, v.Start())
	assert.ErrorIs(t, v.Start(), ErrAlreadyStarted)

	moving, err := v.Step(Intent{Forward: true})
	require.NoError(t, err)
	assert.Greater(t, moving.Speed, 0.0)

	// Paused drops intent and keeps the last pose.
	require.NoError(t, v.Pause())
	assert.ErrorIs(t, v.Start(), ErrAlreadyStarted)
	for i := 0; i < 5; i++ {
		p, err = v.Step(Intent{Forward: true})
		require.NoError(t, err)
	}
	assert.Equal(t, moving.Position, p.Position)
	assert.Equal(t, moving.Speed, p.Speed)
	assert.Equal(t, moving.Step, p.Step)
	assert.Equal(t, PhasePaused, p.Phase)

	require.NoError(t, v.Resume())
	assert.ErrorIs(t, v.Resume(), ErrInvalidTransition)
	p, err = v.Step(Intent{Forward: true})
	require.NoError(t, err)
	assert.Greater(t, p.Speed, moving.Speed)

	v.Reset(geom.Vec2{X: 1}, 0)
	assert.Equal(t, PhaseIdle, v.Phase())
	assert.Equal(t, State{Position: geom.Vec2{X: 1}}, v.State())
	require.NoError(t, v.Start())
}

func TestTurningWhileStationary(t *testing.T) {
	v := activeOn(t, kinematics.DefaultArcade(), squareCurve(t), 10, geom.Vec2{X: 5}, 1.0)
	for _, in := range []Intent{{Left: true}, {Right: true}, {Left: true, Right: true}} {
		p, err := v.Step(in)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p.Heading)
		assert.Zero(t, p.Speed)
	}
}

func TestReverseSteeringInversion(t *testing.T) {
	c := squareCurve(t)
	start := geom.Vec2{X: 5, Z: 0}

	fwd := activeOn(t, kinematics.DefaultArcade(), c, 10, start, 0)
	fwd.state.Speed = 0.3
	pf, err := fwd.Step(Intent{Left: true})
	require.NoError(t, err)

	rev := activeOn(t, kinematics.DefaultArcade(), c, 10, start, 0)
	rev.state.Speed = -0.3
	pr, err := rev.Step(Intent{Left: true})
	require.NoError(t, err)

	require.Less(t, pr.Speed, 0.0)
	assert.Greater(t, pf.Heading, 0.0)
	assert.Less(t, pr.Heading, 0.0)
	assert.InDelta(t, -pf.Heading, pr.Heading, 1e-12)
}

// sideOfSquare returns a sample on the bottom side of the square along with
// the unit vector pointing into the loop.
func sideOfSquare(c *curve.Curve) (geom.Vec2, geom.Vec2) {
	const u = 0.12
	return c.Samples()[12], c.TangentAt(u).Perp()
}

func TestBoundaryInsideCorridorIsUnmodified(t *testing.T) {
	const width, eps = 10.0, 0.1
	c := squareCurve(t)
	s, inward := sideOfSquare(c)

	pos := s.Add(inward.Scale(width/2 - eps))
	heading := geom.Heading(inward.Scale(-1))
	v := activeOn(t, pointModel(), c, width, pos, heading)

	p, err := v.Step(Intent{Forward: true})
	require.NoError(t, err)

	m := pointModel()
	candidate := pos.Add(geom.Forward(heading).Scale(m.Accel))
	assert.False(t, p.Contact)
	assert.Equal(t, candidate, p.Position)
	assert.Equal(t, m.Accel, p.Speed)
	assert.LessOrEqual(t, geom.Dist(p.Position, c.ClosestPoint(p.Position)), width/2)
}

func TestBoundaryOutsideCorridorPushesBack(t *testing.T) {
	const width, eps = 10.0, 0.1
	c := squareCurve(t)
	s, inward := sideOfSquare(c)

	outward := inward.Scale(-1)
	pos := s.Add(outward.Scale(width/2 + eps))
	heading := geom.Heading(outward)
	v := activeOn(t, pointModel(), c, width, pos, heading)

	p, err := v.Step(Intent{Forward: true})
	require.NoError(t, err)

	m := pointModel()
	candidate := pos.Add(geom.Forward(heading).Scale(m.Accel))
	closest := c.ClosestPoint(candidate)
	want := candidate.Add(closest.Sub(candidate).Normalize().Scale(m.PushFactor))

	assert.True(t, p.Contact)
	assert.InDelta(t, m.Accel*m.CollisionDamping, p.Speed, 1e-12)
	assert.InDelta(t, want.X, p.Position.X, 1e-12)
	assert.InDelta(t, want.Z, p.Position.Z, 1e-12)
	assert.Less(t, geom.Dist(p.Position, closest), geom.Dist(candidate, closest))
}

func TestRepeatedContactBleedsSpeed(t *testing.T) {
	c := squareCurve(t)
	// Spawned well off the track: the kart crawls back instead of snapping.
	v := activeOn(t, pointModel(), c, 10, geom.Vec2{X: 5, Z: -30}, math.Pi)
	v.state.Speed = 0.8

	prevSpeed := v.State().Speed
	for i := 0; i < 8; i++ {
		p, err := v.Step(Intent{})
		require.NoError(t, err)
		require.True(t, p.Contact)

		d := geom.Dist(p.Position, c.ClosestPoint(p.Position))
		assert.Greater(t, d, 5.0, "one push never fully corrects a deep excursion")
		assert.Less(t, p.Speed, prevSpeed)
		prevSpeed = p.Speed
	}
}

func TestForwardFromSpawnAlongHeading(t *testing.T) {
	c := squareCurve(t)
	m := kinematics.DefaultArcade()
	heading := SpawnHeading(geom.Vec2{X: 0, Z: 0}, geom.Vec2{X: 10, Z: 0})
	assert.InDelta(t, math.Pi/2, heading, 1e-12)

	v := activeOn(t, m, c, 10, geom.Vec2{}, heading)

	prevSpeed, prevX := 0.0, 0.0
	for i := 1; i <= 22; i++ {
		p, err := v.Step(Intent{Forward: true})
		require.NoError(t, err)
		require.False(t, p.Contact, "step %d", i)

		if prevSpeed < m.MaxSpeed() {
			assert.Greater(t, p.Speed, prevSpeed, "step %d", i)
		} else {
			assert.Equal(t, m.MaxSpeed(), p.Speed, "step %d", i)
		}
		assert.LessOrEqual(t, p.Speed, m.MaxSpeed())
		assert.Greater(t, p.Position.X, prevX)
		assert.InDelta(t, 0, p.Position.Z, 1e-9)
		assert.Equal(t, heading, p.Heading)
		prevSpeed, prevX = p.Speed, p.Position.X
	}
	assert.Equal(t, m.MaxSpeed(), prevSpeed)
}

func TestIntentLatch(t *testing.T) {
	var l IntentLatch
	assert.Equal(t, Intent{}, l.Load())

	l.Set(Forward, true)
	l.Set(Left, true)
	assert.Equal(t, Intent{Forward: true, Left: true}, l.Load())

	l.Set(Forward, false)
	assert.Equal(t, Intent{Left: true}, l.Load())

	l.Store(Intent{Backward: true, Right: true})
	assert.Equal(t, Intent{Backward: true, Right: true}, l.Load())

	l.Clear()
	assert.Equal(t, Intent{}, l.Load())

	var wg sync.WaitGroup
	for _, c := range []Control{Forward, Backward, Left, Right} {
		wg.Add(1)
		go func(c Control) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				l.Set(c, i%2 == 0)
			}
		}(c)
	}
	wg.Wait()
	assert.Equal(t, Intent{}, l.Load())
}
