// Package vehicle integrates kart motion from control intent and keeps the
// kart inside the track corridor.
//
// A Vehicle owns its state exclusively. Each Step computes the next state in
// full and commits it in one assignment, so a pause or a reader between two
// steps never sees a half-updated pose.
package vehicle

import (
	"errors"
	"fmt"

	"github.com/cxd309/kart-engine/internal/curve"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kinematics"
)

var (
	// ErrNoActiveTrack is returned by Step when no corridor is attached.
	ErrNoActiveTrack = errors.New("no active track")
	// ErrCorridorTooNarrow is returned when the vehicle cannot fit the track.
	ErrCorridorTooNarrow = errors.New("track corridor narrower than vehicle")
	// ErrAlreadyStarted is returned by Start after the first transition to Active.
	ErrAlreadyStarted = errors.New("vehicle already started")
	// ErrInvalidTransition is returned for pause/resume from the wrong phase.
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// Phase describes whether intent drives the vehicle.
type Phase string

const (
	PhaseIdle   Phase = "idle"   // pre-race; intent ignored
	PhaseActive Phase = "active" // intent integrated every step
	PhasePaused Phase = "paused" // integration suspended; intent dropped
)

// State is the kinematic state of a vehicle.
type State struct {
	Position geom.Vec2 `json:"position"`
	Heading  float64   `json:"heading"` // radians; 0 faces +Z
	Speed    float64   `json:"speed"`   // units per step; negative when reversing
}

// Pose is the read-only snapshot handed to camera, minimap and render consumers.
type Pose struct {
	Position geom.Vec2 `json:"position"`
	Heading  float64   `json:"heading"`
	Speed    float64   `json:"speed"`
	Phase    Phase     `json:"phase"`
	Step     uint64    `json:"step"`    // integrated steps since the last reset
	Contact  bool      `json:"contact"` // the last step touched the corridor edge
}

// corridor is the track geometry a vehicle is constrained to.
type corridor struct {
	curve *curve.Curve
	limit float64 // max distance from the centerline: width/2 - halfWidth
}

// Vehicle is a kart with its handling model and live state.
type Vehicle struct {
	model    kinematics.MotionModel
	state    State
	phase    Phase
	started  bool
	corridor *corridor
	steps    uint64
	contact  bool
}

// New creates an idle vehicle at spawn facing heading.
func New(model kinematics.MotionModel, spawn geom.Vec2, heading float64) *Vehicle {
	return &Vehicle{
		model: model,
		state: State{Position: spawn, Heading: heading},
		phase: PhaseIdle,
	}
}

// SpawnHeading returns the heading facing from p0 toward p1, so a kart
// spawned on waypoint 0 faces along the track.
func SpawnHeading(p0, p1 geom.Vec2) float64 {
	return geom.Heading(p1.Sub(p0))
}

// AttachTrack constrains the vehicle to the corridor of the given width
// around c.
func (v *Vehicle) AttachTrack(c *curve.Curve, width float64) error {
	if c == nil {
		return ErrNoActiveTrack
	}
	limit := width/2 - v.model.Constraint().HalfWidth
	if !(limit > 0) {
		return fmt.Errorf("%w: width %v, vehicle half width %v", ErrCorridorTooNarrow, width, v.model.Constraint().HalfWidth)
	}
	v.corridor = &corridor{curve: c, limit: limit}
	return nil
}

// DetachTrack removes the corridor. Step fails until a track is attached again.
func (v *Vehicle) DetachTrack() { v.corridor = nil }

// HasTrack reports whether a corridor is attached.
func (v *Vehicle) HasTrack() bool { return v.corridor != nil }

// Model returns the handling model.
func (v *Vehicle) Model() kinematics.MotionModel { return v.model }

// Phase returns the current phase.
func (v *Vehicle) Phase() Phase { return v.phase }

// State returns a copy of the kinematic state.
func (v *Vehicle) State() State { return v.state }

// Start moves an idle vehicle to Active. It succeeds once per reset.
func (v *Vehicle) Start() error {
	if v.started {
		return ErrAlreadyStarted
	}
	v.started = true
	v.phase = PhaseActive
	return nil
}

// Pause suspends integration of an active vehicle.
func (v *Vehicle) Pause() error {
	if v.phase != PhaseActive {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, v.phase)
	}
	v.phase = PhasePaused
	return nil
}

// Resume continues a paused vehicle from its last pose.
func (v *Vehicle) Resume() error {
	if v.phase != PhasePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, v.phase)
	}
	v.phase = PhaseActive
	return nil
}

// Reset returns the vehicle to Idle at spawn with zero speed.
func (v *Vehicle) Reset(spawn geom.Vec2, heading float64) {
	v.state = State{Position: spawn, Heading: heading}
	v.phase = PhaseIdle
	v.started = false
	v.steps = 0
	v.contact = false
}

// Pose returns the snapshot of the last committed step.
func (v *Vehicle) Pose() Pose {
	return Pose{
		Position: v.state.Position,
		Heading:  v.state.Heading,
		Speed:    v.state.Speed,
		Phase:    v.phase,
		Step:     v.steps,
		Contact:  v.contact,
	}
}

// Step advances the vehicle by one simulation step. Without a corridor it
// refuses with ErrNoActiveTrack and changes nothing. While Idle or Paused the
// intent is dropped and the pose is returned unchanged.
func (v *Vehicle) Step(in Intent) (Pose, error) {
	if v.corridor == nil {
		return Pose{}, ErrNoActiveTrack
	}
	if v.phase != PhaseActive {
		return v.Pose(), nil
	}

	next, contact := v.integrate(in)
	v.state, v.contact = next, contact
	v.steps++
	return v.Pose(), nil
}

// integrate computes the next state without mutating the vehicle. Order:
// longitudinal, rotational, tentative translation, boundary constraint.
func (v *Vehicle) integrate(in Intent) (State, bool) {
	s := v.state

	s.Speed = v.model.Longitudinal(s.Speed, in.Forward, in.Backward)
	s.Heading += v.model.TurnDelta(s.Speed, in.Left, in.Right)

	candidate := s.Position.Add(geom.Forward(s.Heading).Scale(s.Speed))

	pos, hit := v.constrain(candidate)
	s.Position = pos
	if hit {
		s.Speed *= v.model.Constraint().CollisionDamping
	}
	return s, hit
}

// constrain applies the push-back when candidate lies outside the corridor.
// The nudge is added on top of the tentative move and does not scale with
// penetration depth, so a deep excursion takes several steps to correct.
func (v *Vehicle) constrain(candidate geom.Vec2) (geom.Vec2, bool) {
	closest := v.corridor.curve.ClosestPoint(candidate)
	if geom.Dist(candidate, closest) <= v.corridor.limit {
		return candidate, false
	}
	toCenter := closest.Sub(candidate).Normalize()
	return candidate.Add(toCenter.Scale(v.model.Constraint().PushFactor)), true
}
