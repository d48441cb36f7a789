package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/session"
	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

func newTestGame(t *testing.T, defs ...track.Definition) *game {
	t.Helper()
	catalog, err := track.NewCatalog(defs...)
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)

	sess := session.New(catalog, session.Config{}, log.Nop())
	require.NoError(t, sess.SelectTrack(defs[0].ID))
	return newGame(screen, sess, catalog.List(), 60, 150*time.Millisecond, log.Nop())
}

func TestBadTrackSwitchKeepsRunning(t *testing.T) {
	good := track.Definition{
		ID:            "good",
		Name:          "Good",
		Width:         10,
		Points:        []track.Point{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}, {X: 0, Z: 0}},
		StartPosition: track.Point{X: 5},
	}
	pinched := track.Definition{
		ID:     "pinched",
		Width:  10,
		Points: []track.Point{{X: 0, Z: 0}, {X: 5, Z: 0}, {X: 5, Z: 0}, {X: 5, Z: 5}},
	}
	g := newTestGame(t, good, pinched)
	require.NotNil(t, g.proj)

	quit := g.handleKey(tcell.KeyRune, 'n', time.Now())
	assert.False(t, quit)
	_, ok := g.sess.Track()
	assert.False(t, ok)
	assert.Nil(t, g.proj)

	_, err := g.sess.Step()
	assert.ErrorIs(t, err, vehicle.ErrNoActiveTrack)
	g.draw(vehicle.Pose{}, false)

	// Moving on wraps back to the drivable track.
	assert.False(t, g.handleKey(tcell.KeyRune, 'n', time.Now()))
	def, ok := g.sess.Track()
	require.True(t, ok)
	assert.Equal(t, "good", def.ID)
	assert.NotNil(t, g.proj)

	pose, err := g.sess.Step()
	require.NoError(t, err)
	g.draw(pose, true)
}

func TestQuitKey(t *testing.T) {
	g := newTestGame(t, track.Definition{
		ID:     "good",
		Width:  10,
		Points: []track.Point{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}},
	})
	assert.True(t, g.handleKey(tcell.KeyCtrlC, 0, time.Now()))
	assert.False(t, g.handleKey(tcell.KeyUp, 0, time.Now()))
}
