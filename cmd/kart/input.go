package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/cxd309/kart-engine/internal/vehicle"
)

// keyHold turns terminal key repeats into held controls. Terminals report
// presses only, so a control stays held until no repeat has arrived for the
// hold window.
type keyHold struct {
	window   time.Duration
	lastSeen map[vehicle.Control]time.Time
}

func newKeyHold(window time.Duration) *keyHold {
	return &keyHold{window: window, lastSeen: make(map[vehicle.Control]time.Time, 4)}
}

// press records a key event for c at now.
func (k *keyHold) press(c vehicle.Control, now time.Time) { k.lastSeen[c] = now }

// release forgets every control.
func (k *keyHold) release() { clear(k.lastSeen) }

// apply writes the held set at now into the latch.
func (k *keyHold) apply(l *vehicle.IntentLatch, now time.Time) {
	for _, c := range []vehicle.Control{vehicle.Forward, vehicle.Backward, vehicle.Left, vehicle.Right} {
		seen, ok := k.lastSeen[c]
		l.Set(c, ok && now.Sub(seen) < k.window)
	}
}

// action is a non-driving command bound to a key.
type action int

const (
	actionNone action = iota
	actionQuit
	actionPause
	actionRestart
	actionNextTrack
)

// mapKey resolves a key to a driving control or an action. r is only
// consulted for tcell.KeyRune.
func mapKey(key tcell.Key, r rune) (vehicle.Control, bool, action) {
	switch key {
	case tcell.KeyUp:
		return vehicle.Forward, true, actionNone
	case tcell.KeyDown:
		return vehicle.Backward, true, actionNone
	case tcell.KeyLeft:
		return vehicle.Left, true, actionNone
	case tcell.KeyRight:
		return vehicle.Right, true, actionNone
	case tcell.KeyEscape:
		return 0, false, actionPause
	case tcell.KeyCtrlC:
		return 0, false, actionQuit
	case tcell.KeyRune:
		switch r {
		case 'w', 'W':
			return vehicle.Forward, true, actionNone
		case 's', 'S':
			return vehicle.Backward, true, actionNone
		case 'a', 'A':
			return vehicle.Left, true, actionNone
		case 'd', 'D':
			return vehicle.Right, true, actionNone
		case 'p', 'P':
			return 0, false, actionPause
		case 'r', 'R':
			return 0, false, actionRestart
		case 'n', 'N':
			return 0, false, actionNextTrack
		case 'q', 'Q':
			return 0, false, actionQuit
		}
	}
	return 0, false, actionNone
}
