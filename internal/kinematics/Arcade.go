package kinematics

import (
	"errors"
	"fmt"
	"math"
)

// ArcadeModelName is the JSON discriminator string for the Arcade model.
const ArcadeModelName = "arcade"

// ErrInvalidTuning is returned when a model's parameters are out of range.
var ErrInvalidTuning = errors.New("invalid kinematics tuning")

// Arcade implements MotionModel with fixed per-step rates. Reverse is capped
// at half the forward speed.
//
// JSON discriminator: "model": "arcade"
type Arcade struct {
	Accel            float64 `json:"accel" yaml:"accel"`                         // speed gained per step with throttle or reverse held
	Decel            float64 `json:"decel" yaml:"decel"`                         // speed lost per step with no pedal held
	MaxSpeedVal      float64 `json:"max_speed" yaml:"max_speed"`                 // forward cap, units per step
	TurnRate         float64 `json:"turn_rate" yaml:"turn_rate"`                 // radians per step
	PushFactor       float64 `json:"push_factor" yaml:"push_factor"`             // units per contact step
	CollisionDamping float64 `json:"collision_damping" yaml:"collision_damping"` // speed multiplier per contact step
	HalfWidth        float64 `json:"half_width" yaml:"half_width"`               // half the chassis width
}

// DefaultArcade returns the stock kart handling.
func DefaultArcade() Arcade {
	return Arcade{
		Accel:            0.05,
		Decel:            0.03,
		MaxSpeedVal:      1,
		TurnRate:         0.05,
		PushFactor:       0.3,
		CollisionDamping: 0.8,
		HalfWidth:        0.75,
	}
}

// Validate checks every parameter is in range.
func (a Arcade) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"accel", a.Accel},
		{"decel", a.Decel},
		{"max_speed", a.MaxSpeedVal},
		{"turn_rate", a.TurnRate},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidTuning, f.name, f.v)
		}
	}
	if !(a.CollisionDamping > 0 && a.CollisionDamping < 1) {
		return fmt.Errorf("%w: collision_damping must be in (0, 1), got %v", ErrInvalidTuning, a.CollisionDamping)
	}
	if !(a.PushFactor >= 0) {
		return fmt.Errorf("%w: push_factor must not be negative, got %v", ErrInvalidTuning, a.PushFactor)
	}
	if !(a.HalfWidth >= 0) {
		return fmt.Errorf("%w: half_width must not be negative, got %v", ErrInvalidTuning, a.HalfWidth)
	}
	return nil
}

func (a Arcade) MaxSpeed() float64        { return a.MaxSpeedVal }
func (a Arcade) MaxReverseSpeed() float64 { return a.MaxSpeedVal / 2 }

func (a Arcade) Constraint() Constraint {
	return Constraint{
		PushFactor:       a.PushFactor,
		CollisionDamping: a.CollisionDamping,
		HalfWidth:        a.HalfWidth,
	}
}

func (a Arcade) Longitudinal(speed float64, forward, backward bool) float64 {
	switch {
	case forward:
		speed += a.Accel
	case backward:
		speed -= a.Accel
	case speed > 0:
		// Natural decay never overshoots zero.
		return math.Max(speed-a.Decel, 0)
	case speed < 0:
		return math.Min(speed+a.Decel, 0)
	default:
		return 0
	}
	return math.Max(-a.MaxReverseSpeed(), math.Min(speed, a.MaxSpeed()))
}

func (a Arcade) TurnDelta(speed float64, left, right bool) float64 {
	if speed == 0 {
		return 0
	}
	sign := 1.0
	if speed < 0 {
		sign = -1
	}
	var d float64
	if left {
		d += a.TurnRate * sign
	}
	if right {
		d -= a.TurnRate * sign
	}
	return d
}
