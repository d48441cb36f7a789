package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

// Run executes a replay with logging discarded.
func Run(input ReplayInput) (ReplayLog, error) {
	return RunWithLogger(input, log.Nop())
}

// RunWithLogger executes a replay: it selects the track, feeds the recorded
// intent spans step by step and collects every pose.
func RunWithLogger(input ReplayInput, logger log.Log) (ReplayLog, error) {
	if err := input.validate(); err != nil {
		return ReplayLog{}, err
	}
	meta := input.Meta
	if meta.ReplayID == "" {
		meta.ReplayID = uuid.NewString()
	}

	catalog, err := input.catalog()
	if err != nil {
		return ReplayLog{}, fmt.Errorf("loading tracks: %w", err)
	}
	model, err := kinematics.Decode(input.Kinematics)
	if err != nil {
		return ReplayLog{}, fmt.Errorf("decoding kinematics: %w", err)
	}

	s := New(catalog, Config{Model: model, CountdownSteps: meta.CountdownSteps},
		logger.With(log.String("replay_id", meta.ReplayID)))
	if err := s.SelectTrack(input.TrackID); err != nil {
		return ReplayLog{}, err
	}
	def, _ := s.Track()

	out := ReplayLog{
		Meta:             meta,
		TrackFingerprint: fmt.Sprintf("%016x", def.Fingerprint()),
		Output:           make([]ReplayLogRow, 0, meta.Steps),
	}
	for i := 0; i < meta.Steps; i++ {
		s.Intents().Store(input.intentAt(i))
		pose, err := s.Step()
		if err != nil {
			return ReplayLog{}, fmt.Errorf("at step %d: %w", i, err)
		}
		out.Output = append(out.Output, ReplayLogRow{Step: i, Phase: pose.Phase, Pose: pose})
	}
	return out, nil
}

func (in ReplayInput) validate() error {
	if in.Meta.Steps <= 0 {
		return fmt.Errorf("replay_meta.steps must be positive, got %d", in.Meta.Steps)
	}
	if in.Meta.CountdownSteps < 0 {
		return fmt.Errorf("replay_meta.countdown_steps must not be negative, got %d", in.Meta.CountdownSteps)
	}
	if in.TrackID == "" {
		return errors.New("track_id is required")
	}
	for i, span := range in.Inputs {
		if span.From < 0 || span.To <= span.From {
			return fmt.Errorf("inputs[%d]: invalid step range [%d, %d)", i, span.From, span.To)
		}
	}
	return nil
}

func (in ReplayInput) catalog() (*track.Catalog, error) {
	if len(in.Tracks) > 0 {
		return track.NewCatalog(in.Tracks...)
	}
	return track.Default()
}

// intentAt combines every span covering step i.
func (in ReplayInput) intentAt(i int) vehicle.Intent {
	var out vehicle.Intent
	for _, span := range in.Inputs {
		if i < span.From || i >= span.To {
			continue
		}
		out.Forward = out.Forward || span.Forward
		out.Backward = out.Backward || span.Backward
		out.Left = out.Left || span.Left
		out.Right = out.Right || span.Right
	}
	return out
}

// DecodeInput reads a JSON ReplayInput. Unknown keys are rejected at every
// level, including inline track records.
func DecodeInput(r io.Reader) (ReplayInput, error) {
	var input ReplayInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return ReplayInput{}, fmt.Errorf("invalid input JSON: %w", err)
	}
	return input, nil
}

// RunJSON is the entry point shared by the CLI and WASM targets. It accepts a
// JSON-encoded ReplayInput, runs it, and returns a JSON-encoded ReplayLog.
func RunJSON(jsonInput string) (string, error) {
	input, err := DecodeInput(strings.NewReader(jsonInput))
	if err != nil {
		return "", err
	}

	replayLog, err := Run(input)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(replayLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
