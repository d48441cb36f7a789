package vehicle

import "sync/atomic"

// Intent is the directional input sampled for one simulation step.
type Intent struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
}

// Control names one of the four intent inputs.
type Control uint32

const (
	Forward Control = 1 << iota
	Backward
	Left
	Right
)

func (in Intent) bits() uint32 {
	var b uint32
	if in.Forward {
		b |= uint32(Forward)
	}
	if in.Backward {
		b |= uint32(Backward)
	}
	if in.Left {
		b |= uint32(Left)
	}
	if in.Right {
		b |= uint32(Right)
	}
	return b
}

func intentFromBits(b uint32) Intent {
	return Intent{
		Forward:  b&uint32(Forward) != 0,
		Backward: b&uint32(Backward) != 0,
		Left:     b&uint32(Left) != 0,
		Right:    b&uint32(Right) != 0,
	}
}

// IntentLatch holds the latest intent snapshot written by an input source.
// Writers may run on any goroutine; the simulation reads it once per step.
// Nothing is queued: the last write before a step wins.
type IntentLatch struct {
	bits atomic.Uint32
}

// Store replaces the whole snapshot.
func (l *IntentLatch) Store(in Intent) { l.bits.Store(in.bits()) }

// Load returns the current snapshot.
func (l *IntentLatch) Load() Intent { return intentFromBits(l.bits.Load()) }

// Set presses or releases a single control, leaving the others untouched.
func (l *IntentLatch) Set(c Control, pressed bool) {
	for {
		old := l.bits.Load()
		next := old &^ uint32(c)
		if pressed {
			next |= uint32(c)
		}
		if l.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Clear releases every control.
func (l *IntentLatch) Clear() { l.bits.Store(0) }
