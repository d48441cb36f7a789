package kinematics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongitudinalClampsAndDecays(t *testing.T) {
	a := DefaultArcade()

	speed := 0.0
	for i := 0; i < 100; i++ {
		speed = a.Longitudinal(speed, true, false)
	}
	assert.Equal(t, a.MaxSpeed(), speed)

	for i := 0; i < 100; i++ {
		speed = a.Longitudinal(speed, false, true)
	}
	assert.Equal(t, -a.MaxReverseSpeed(), speed)
	assert.Equal(t, a.MaxSpeed()/2, a.MaxReverseSpeed())

	// Decay snaps to zero instead of crossing it.
	assert.Equal(t, 0.0, a.Longitudinal(0.02, false, false))
	assert.Equal(t, 0.0, a.Longitudinal(-0.02, false, false))
	assert.InDelta(t, 0.47, a.Longitudinal(0.5, false, false), 1e-12)
	assert.Equal(t, 0.0, a.Longitudinal(0, false, false))
}

func TestForwardWinsOverBackward(t *testing.T) {
	a := DefaultArcade()
	assert.InDelta(t, 0.05, a.Longitudinal(0, true, true), 1e-12)
}

func TestTurnDelta(t *testing.T) {
	a := DefaultArcade()
	assert.Zero(t, a.TurnDelta(0, true, false))
	assert.Zero(t, a.TurnDelta(0, false, true))
	assert.Equal(t, a.TurnRate, a.TurnDelta(0.5, true, false))
	assert.Equal(t, -a.TurnRate, a.TurnDelta(-0.5, true, false))
	assert.Equal(t, -a.TurnRate, a.TurnDelta(0.5, false, true))
	assert.Zero(t, a.TurnDelta(0.5, true, true))
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultArcade().Validate())

	bad := DefaultArcade()
	bad.CollisionDamping = 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTuning)

	bad = DefaultArcade()
	bad.Accel = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTuning)

	bad = DefaultArcade()
	bad.HalfWidth = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTuning)
}

func TestDecode(t *testing.T) {
	m, err := Decode(json.RawMessage(`{"model":"arcade","max_speed":2}`))
	require.NoError(t, err)
	a, ok := m.(Arcade)
	require.True(t, ok)
	assert.Equal(t, 2.0, a.MaxSpeed())
	assert.Equal(t, DefaultArcade().Accel, a.Accel, "unset fields keep defaults")

	m, err = Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultArcade(), m)

	_, err = Decode(json.RawMessage(`{"model":"drift"}`))
	assert.Error(t, err)

	_, err = Decode(json.RawMessage(`{"model":"arcade","collision_damping":2}`))
	assert.ErrorIs(t, err, ErrInvalidTuning)

	_, err = Decode(json.RawMessage(`{"model":"arcade","maxspeed":2}`))
	assert.ErrorContains(t, err, "unknown field")
}
