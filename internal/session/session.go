// Package session drives a single race: it owns the vehicle, binds it to the
// selected track, runs the pre-race countdown and hands every committed pose
// to the registered sinks.
//
// Each call to Step is one simulation step:
//
//  1. Intent - the latest control intent is read once from the latch.
//  2. Countdown - while the vehicle is idle the countdown is decremented. The
//     first step after it reaches zero starts the vehicle.
//  3. Motion - the vehicle integrates the intent and the resulting pose is
//     emitted to every sink in registration order.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cxd309/kart-engine/internal/curve"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

// ErrTrackNotFound is returned by SelectTrack for ids missing from the catalog.
var ErrTrackNotFound = errors.New("track not found")

// PoseSink receives a copy of every pose the session commits.
type PoseSink interface {
	ConsumePose(vehicle.Pose)
}

// PoseSinkFunc adapts a function to PoseSink.
type PoseSinkFunc func(vehicle.Pose)

func (f PoseSinkFunc) ConsumePose(p vehicle.Pose) { f(p) }

// Config is the per-session tuning.
type Config struct {
	Model          kinematics.MotionModel
	CountdownSteps int        // idle steps before the race starts
	CurveType      curve.Type // empty means curve.Uniform
}

// Session is one player's race on one track at a time.
type Session struct {
	id      uuid.UUID
	catalog *track.Catalog
	cfg     Config
	log     log.Log

	vehicle *vehicle.Vehicle
	intents vehicle.IntentLatch
	sinks   []PoseSink

	active    *track.Definition
	curve     *curve.Curve
	countdown int
	contact   bool
}

// New creates a session with no track selected. A nil catalog is treated as
// empty, a nil model uses the default arcade handling and a nil logger
// discards output.
func New(catalog *track.Catalog, cfg Config, logger log.Log) *Session {
	if catalog == nil {
		catalog, _ = track.NewCatalog()
	}
	if cfg.Model == nil {
		cfg.Model = kinematics.DefaultArcade()
	}
	if cfg.CurveType == "" {
		cfg.CurveType = curve.Uniform
	}
	if cfg.CountdownSteps < 0 {
		cfg.CountdownSteps = 0
	}
	if logger == nil {
		logger = log.Nop()
	}
	id := uuid.New()
	return &Session{
		id:        id,
		catalog:   catalog,
		cfg:       cfg,
		log:       logger.With(log.String("session_id", id.String())),
		vehicle:   vehicle.New(cfg.Model, geom.Vec2{}, 0),
		countdown: cfg.CountdownSteps,
	}
}

// ID returns the session's unique id.
func (s *Session) ID() uuid.UUID { return s.id }

// Intents returns the latch input sources write to.
func (s *Session) Intents() *vehicle.IntentLatch { return &s.intents }

// AddSink registers a pose consumer.
func (s *Session) AddSink(sink PoseSink) { s.sinks = append(s.sinks, sink) }

// Track returns the active track definition.
func (s *Session) Track() (track.Definition, bool) {
	if s.active == nil {
		return track.Definition{}, false
	}
	return *s.active, true
}

// Curve returns the active centerline, or nil with no track selected.
func (s *Session) Curve() *curve.Curve { return s.curve }

// Countdown returns the steps left before the race starts.
func (s *Session) Countdown() int { return s.countdown }

// Pose returns the last committed pose.
func (s *Session) Pose() vehicle.Pose { return s.vehicle.Pose() }

// Phase returns the vehicle phase.
func (s *Session) Phase() vehicle.Phase { return s.vehicle.Phase() }

// SelectTrack activates the track with the given id, spawning the vehicle at
// its start position and re-arming the countdown. On failure no track is
// active afterwards.
func (s *Session) SelectTrack(id track.ID) error {
	def, ok := s.catalog.Get(id)
	if !ok {
		s.detach()
		s.log.Warn("track not found", log.String("track_id", id))
		return fmt.Errorf("%w: %q", ErrTrackNotFound, id)
	}

	c, err := curve.Build(def.Waypoints(), curve.WithType(s.cfg.CurveType))
	if err != nil {
		s.detach()
		return fmt.Errorf("building centerline for %q: %w", id, err)
	}
	if err := s.vehicle.AttachTrack(c, def.Width); err != nil {
		s.detach()
		return fmt.Errorf("attaching track %q: %w", id, err)
	}

	s.active, s.curve = &def, c
	s.respawn()
	s.log.Info("track selected",
		log.String("track_id", def.ID),
		log.String("name", def.Name),
		log.Float64("centerline_length", c.Length()),
		log.Int("countdown_steps", s.countdown),
	)
	return nil
}

func (s *Session) detach() {
	s.vehicle.DetachTrack()
	s.active, s.curve = nil, nil
}

func (s *Session) respawn() {
	start := s.active.StartPose()
	s.vehicle.Reset(start.Position, start.Heading)
	s.intents.Clear()
	s.countdown = s.cfg.CountdownSteps
	s.contact = false
}

// Restart puts the vehicle back on the start line of the active track.
func (s *Session) Restart() error {
	if s.active == nil {
		return vehicle.ErrNoActiveTrack
	}
	s.respawn()
	s.log.Info("race restarted", log.String("track_id", s.active.ID))
	return nil
}

// Pause suspends a running race.
func (s *Session) Pause() error {
	if err := s.vehicle.Pause(); err != nil {
		return err
	}
	s.log.Info("race paused", log.Uint64("step", s.vehicle.Pose().Step))
	return nil
}

// Resume continues a paused race.
func (s *Session) Resume() error {
	if err := s.vehicle.Resume(); err != nil {
		return err
	}
	s.log.Info("race resumed", log.Uint64("step", s.vehicle.Pose().Step))
	return nil
}

// TogglePause resumes a paused race and pauses a running one.
func (s *Session) TogglePause() error {
	if s.vehicle.Phase() == vehicle.PhasePaused {
		return s.Resume()
	}
	return s.Pause()
}

// Step advances the race by one simulation step and returns the committed pose.
// Sinks are not called when the step fails.
func (s *Session) Step() (vehicle.Pose, error) {
	if !s.vehicle.HasTrack() {
		return vehicle.Pose{}, vehicle.ErrNoActiveTrack
	}
	in := s.intents.Load()

	if s.vehicle.Phase() == vehicle.PhaseIdle {
		if s.countdown > 0 {
			s.countdown--
		} else {
			if err := s.vehicle.Start(); err != nil {
				return vehicle.Pose{}, fmt.Errorf("starting race: %w", err)
			}
			s.log.Info("race started", log.String("track_id", s.active.ID))
		}
	}

	pose, err := s.vehicle.Step(in)
	if err != nil {
		return vehicle.Pose{}, err
	}

	if pose.Contact && !s.contact {
		s.log.Debug("wall contact",
			log.Uint64("step", pose.Step),
			log.Float64("x", pose.Position.X),
			log.Float64("z", pose.Position.Z),
			log.Float64("speed", pose.Speed),
		)
	}
	s.contact = pose.Contact

	for _, sink := range s.sinks {
		sink.ConsumePose(pose)
	}
	return pose, nil
}
