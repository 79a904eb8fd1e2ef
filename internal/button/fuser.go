package button

import "time"

// Gesture classifies one tick's worth of button activity.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureShort
	GestureHold
)

func (g Gesture) String() string {
	switch g {
	case GestureShort:
		return "short-press"
	case GestureHold:
		return "long-hold"
	default:
		return "none"
	}
}

// HoldThreshold is the press duration that escalates a press into a
// long-hold in the main loop. SetupHoldThreshold is the shorter confirm
// hold used inside the boot-time setup loop.
const (
	HoldThreshold      = 5 * time.Second
	SetupHoldThreshold = 3 * time.Second
)

// Fuser turns raw level samples plus latched press timestamps into at most
// one Gesture per tick. A hold is emitted exactly once per press, while the
// button is still down; the eventual release of that press is consumed
// silently.
type Fuser struct {
	holdAfter time.Duration

	pressed   bool
	pressedAt time.Time
	emitted   bool // hold already emitted for the current press
}

// NewFuser returns a Fuser with the given long-hold threshold.
func NewFuser(holdAfter time.Duration) *Fuser {
	return &Fuser{holdAfter: holdAfter}
}

// Sample feeds one tick. level is true while the button is active. edgeAt
// is the latched press timestamp when fresh (zero otherwise); it and now
// must come from the same clock.
func (f *Fuser) Sample(level bool, edgeAt, now time.Time) Gesture {
	switch {
	case level && !f.pressed:
		f.pressed = true
		f.emitted = false
		if !edgeAt.IsZero() {
			f.pressedAt = edgeAt
		} else {
			f.pressedAt = now
		}
		return GestureNone

	case level && f.pressed:
		if !f.emitted && now.Sub(f.pressedAt) >= f.holdAfter {
			f.emitted = true
			return GestureHold
		}
		return GestureNone

	case !level && f.pressed:
		f.pressed = false
		if f.emitted {
			return GestureNone
		}
		if now.Sub(f.pressedAt) >= f.holdAfter {
			// Release landed past the threshold between two samples; it is
			// still a hold, never a short press.
			return GestureHold
		}
		return GestureShort

	default:
		return GestureNone
	}
}

// Held reports whether a press is currently in progress.
func (f *Fuser) Held() bool { return f.pressed }
