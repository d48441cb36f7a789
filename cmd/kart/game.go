package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/cxd309/kart-engine/internal/camera"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/minimap"
	"github.com/cxd309/kart-engine/internal/session"
	"github.com/cxd309/kart-engine/internal/track"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

// canvasSize is the side of the square minimap canvas before it is fitted to
// the terminal.
const canvasSize = 200.0

var (
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleTrack   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLine    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStart   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleKart    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleContact = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed).Bold(true)
)

// arrows are indexed by canvas octant, clockwise from +X.
var arrows = []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

type game struct {
	screen  tcell.Screen
	sess    *session.Session
	tracks  []track.Definition
	current int
	rig     *camera.FollowRig
	proj    *minimap.Projector
	hold    *keyHold
	tick    time.Duration
	tickHz  int
	log     log.Log
}

func newGame(screen tcell.Screen, sess *session.Session, tracks []track.Definition, tickHz int, hold time.Duration, logger log.Log) *game {
	g := &game{
		screen: screen,
		sess:   sess,
		tracks: tracks,
		rig:    camera.NewFollowRig(),
		hold:   newKeyHold(hold),
		tick:   time.Second / time.Duration(tickHz),
		tickHz: tickHz,
		log:    logger,
	}
	sess.AddSink(g.rig)
	g.syncTrack()
	return g
}

// syncTrack rebuilds the projector after the active track changes.
func (g *game) syncTrack() {
	def, ok := g.sess.Track()
	if !ok {
		g.proj = nil
		return
	}
	for i, d := range g.tracks {
		if d.ID == def.ID {
			g.current = i
		}
	}
	g.proj = minimap.NewProjector(def, canvasSize, canvasSize)
	g.rig.Reset()
}

// nextTrack advances to the next catalog entry. A track that cannot be
// selected leaves the session without a track until the player moves on; the
// loop keeps running.
func (g *game) nextTrack() {
	if len(g.tracks) == 0 {
		return
	}
	g.current = (g.current + 1) % len(g.tracks)
	id := g.tracks[g.current].ID
	g.hold.release()
	if err := g.sess.SelectTrack(id); err != nil {
		g.log.Error("switching track", log.String("track_id", id), log.Err(err))
	}
	g.syncTrack()
}

// run is the fixed-rate loop. It returns nil when the player quits or ctx ends.
func (g *game) run(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if g.handleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			g.hold.apply(g.sess.Intents(), now)
			pose, err := g.sess.Step()
			if err != nil && !errors.Is(err, vehicle.ErrNoActiveTrack) {
				return fmt.Errorf("stepping session: %w", err)
			}
			g.draw(pose, err == nil)
		}
	}
}

// handleEvent reacts to one terminal event and reports whether to quit.
func (g *game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.handleKey(ev.Key(), ev.Rune(), time.Now())
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return false
}

func (g *game) handleKey(key tcell.Key, r rune, now time.Time) bool {
	c, driving, act := mapKey(key, r)
	if driving {
		g.hold.press(c, now)
		return false
	}
	switch act {
	case actionQuit:
		return true
	case actionPause:
		if err := g.sess.TogglePause(); err != nil {
			g.log.Debug("pause ignored", log.Err(err))
		}
		g.hold.release()
	case actionRestart:
		if err := g.sess.Restart(); err != nil {
			g.log.Warn("restart failed", log.Err(err))
		}
		g.hold.release()
		g.rig.Reset()
	case actionNextTrack:
		g.nextTrack()
	}
	return false
}

func (g *game) draw(pose vehicle.Pose, ok bool) {
	g.screen.Clear()
	cols, rows := g.screen.Size()

	def, hasTrack := g.sess.Track()
	if !hasTrack {
		def.Name = "no track (n for next)"
	}
	hud := fmt.Sprintf(" %s  %-6s  speed %5.2f  step %d", def.Name, pose.Phase, pose.Speed, pose.Step)
	if n := g.sess.Countdown(); pose.Phase == vehicle.PhaseIdle && n > 0 {
		hud += fmt.Sprintf("  start in %d", int(math.Ceil(float64(n)/float64(g.tickHz))))
	}
	if pose.Contact {
		hud += "  WALL"
	}
	drawText(g.screen, 0, 0, styleHUD, hud)
	eye := g.rig.View().Eye
	drawText(g.screen, 0, rows-1, styleTrack,
		fmt.Sprintf(" cam %.1f,%.1f,%.1f  arrows/wasd drive  p pause  r restart  n next track  q quit", eye.X, eye.Y, eye.Z))

	if g.proj == nil || !ok {
		g.screen.Show()
		return
	}

	m := cellMapper{cols: cols, rows: rows - 2, top: 1}

	outline := g.proj.Outline()
	for i := 1; i < len(outline.Points); i++ {
		m.line(g.screen, outline.Points[i-1], outline.Points[i], '·', styleTrack)
	}
	if outline.Closed && len(outline.Points) > 1 {
		m.line(g.screen, outline.Points[len(outline.Points)-1], outline.Points[0], '·', styleTrack)
	}
	if c := g.sess.Curve(); c != nil {
		for _, s := range c.Samples() {
			m.plot(g.screen, g.proj.Project(s), '∙', styleLine)
		}
	}
	m.plot(g.screen, g.proj.Start(), '◎', styleStart)

	marker := g.proj.Marker(pose)
	style := styleKart
	if pose.Contact {
		style = styleContact
	}
	m.plot(g.screen, marker.At, arrowFor(marker.Rotation), style)

	g.screen.Show()
}

// arrowFor picks the glyph for an arrow that points up the canvas when
// unrotated.
func arrowFor(rotation float64) rune {
	dir := geom.Vec2{X: math.Sin(rotation), Z: -math.Cos(rotation)}
	a := math.Atan2(dir.Z, dir.X)
	octant := int(math.Round(a/(math.Pi/4))+8) % 8
	return arrows[octant]
}

// cellMapper fits the square canvas into a block of terminal cells.
type cellMapper struct {
	cols, rows, top int
}

func (m cellMapper) cell(p minimap.Point) (int, int) {
	return int(p.X / canvasSize * float64(m.cols)), m.top + int(p.Y/canvasSize*float64(m.rows))
}

func (m cellMapper) plot(s tcell.Screen, p minimap.Point, r rune, style tcell.Style) {
	x, y := m.cell(p)
	if x < 0 || y < m.top || x >= m.cols || y >= m.top+m.rows {
		return
	}
	s.SetContent(x, y, r, nil, style)
}

func (m cellMapper) line(s tcell.Screen, a, b minimap.Point, r rune, style tcell.Style) {
	const steps = 64
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		m.plot(s, minimap.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, r, style)
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
