// Package kinematics defines the MotionModel interface that tunes how a kart
// responds to control intent, along with built-in implementations.
//
// Adding a new handling model requires only implementing MotionModel and
// registering it in Decode; the vehicle integration loop never needs to change.
package kinematics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MotionModel is the handling contract every tuning implementation must satisfy.
// Speeds are in world units per step and angles in radians per step.
type MotionModel interface {
	// MaxSpeed returns the forward speed cap.
	MaxSpeed() float64

	// MaxReverseSpeed returns the magnitude of the reverse speed cap.
	MaxReverseSpeed() float64

	// Longitudinal returns the speed after one step of throttle, brake/reverse,
	// or natural decay when neither pedal is held.
	Longitudinal(speed float64, forward, backward bool) float64

	// TurnDelta returns the heading change for one step. It is zero when the
	// vehicle is stationary and flips sign when reversing.
	TurnDelta(speed float64, left, right bool) float64

	// Constraint returns the track-edge response parameters.
	Constraint() Constraint
}

// Constraint tunes the push-back applied when a vehicle leaves the corridor.
type Constraint struct {
	PushFactor       float64 // distance nudged toward the centerline per contact step
	CollisionDamping float64 // speed multiplier per contact step, in (0, 1)
	HalfWidth        float64 // half the vehicle's width, subtracted from the corridor
}

// modelDisc is the minimum JSON structure needed to read the model discriminator.
type modelDisc struct {
	Model string `json:"model"`
}

// Decode resolves a JSON kinematics object to a concrete MotionModel using its
// "model" discriminator. Fields left out of the object keep their defaults and
// unknown fields are rejected.
//
// Supported models:
//   - "arcade": fixed per-step accel / decel / turn rates.
func Decode(raw json.RawMessage) (MotionModel, error) {
	if len(raw) == 0 {
		return DefaultArcade(), nil
	}
	var disc modelDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("reading kinematics model discriminator: %w", err)
	}

	switch disc.Model {
	case ArcadeModelName, "":
		doc := struct {
			modelDisc
			Arcade
		}{Arcade: DefaultArcade()}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing arcade kinematics: %w", err)
		}
		if err := doc.Arcade.Validate(); err != nil {
			return nil, err
		}
		return doc.Arcade, nil
	default:
		return nil, fmt.Errorf("unknown kinematics model %q", disc.Model)
	}
}
