package session

import (
	"encoding/json"

	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

// ReplayMeta holds the identity and length of a replay run.
type ReplayMeta struct {
	ReplayID       string `json:"replay_id"`
	Steps          int    `json:"steps"`           // simulation steps to run
	CountdownSteps int    `json:"countdown_steps"` // idle steps before the race starts
}

// InputSpan holds an intent over the half-open step range [From, To).
// Overlapping spans are combined.
type InputSpan struct {
	From int `json:"from"`
	To   int `json:"to"`
	vehicle.Intent
}

// ReplayInput is the JSON-serialisable input to a replay run.
type ReplayInput struct {
	Meta       ReplayMeta         `json:"replay_meta"`
	TrackID    track.ID           `json:"track_id"`
	Tracks     []track.Definition `json:"tracks,omitempty"`     // replaces the embedded catalog when set
	Kinematics json.RawMessage    `json:"kinematics,omitempty"` // discriminated motion model; default arcade
	Inputs     []InputSpan        `json:"inputs"`
}

// ReplayLogRow is the vehicle pose after a single step.
type ReplayLogRow struct {
	Step  int           `json:"step"`
	Phase vehicle.Phase `json:"phase"`
	Pose  vehicle.Pose  `json:"pose"`
}

// ReplayLog is the complete output of a replay run.
type ReplayLog struct {
	Meta             ReplayMeta     `json:"replay_meta"`
	TrackFingerprint string         `json:"track_fingerprint"` // hex xxhash of the track geometry
	Output           []ReplayLogRow `json:"output"`
}
