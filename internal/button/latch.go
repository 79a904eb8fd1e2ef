package button

import (
	"sync/atomic"
	"time"
)

// RearmWindow is the minimum spacing between accepted press edges. Contact
// bounce on the mode button shows up as bursts of edges well inside this
// window.
const RearmWindow = 200 * time.Millisecond

// Latch is the single piece of state shared between the GPIO edge goroutine
// and the control loop. The writer stores the press timestamp and then
// bumps a generation counter; the reader observes the generation change
// before it trusts the timestamp, so it can never pair a fresh flag with a
// stale time.
type Latch struct {
	when atomic.Int64 // press edge, nanoseconds since monoBase
	gen  atomic.Uint32

	lastEdge time.Time // writer-side only, for the re-arm window
	seen     uint32    // reader-side only
}

// monoBase anchors the press timestamps. Storing offsets from a process
// base keeps the monotonic clock reading across the atomic round trip, so
// hold measurement is immune to wall-clock steps.
var monoBase = time.Now()

// Press records a press edge. Called only from the edge goroutine. Edges
// inside the re-arm window are bounce and are dropped.
func (l *Latch) Press(now time.Time) {
	if !l.lastEdge.IsZero() && now.Sub(l.lastEdge) < RearmWindow {
		return
	}
	l.lastEdge = now
	l.when.Store(int64(now.Sub(monoBase)))
	l.gen.Add(1)
}

// Take returns the timestamp of a press edge not yet consumed, if any.
// Called only from the control loop; consuming is a read of the generation
// counter, so writer and reader never contend on the same field.
func (l *Latch) Take() (time.Time, bool) {
	g := l.gen.Load()
	if g == l.seen {
		return time.Time{}, false
	}
	l.seen = g
	return monoBase.Add(time.Duration(l.when.Load())), true
}
