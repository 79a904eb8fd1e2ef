// Package status is the receiver's at-a-glance readout: a snapshot of
// identifier, mode, sequence and link quality, refreshed at a fixed low
// rate and handed to stateless sinks.
package status

import "time"

// Snapshot is one rendering of the receiver's visible state. Sinks get a
// copy; nothing flows back into the control loop.
type Snapshot struct {
	Identifier uint8         `json:"identifier"`
	Mode       string        `json:"mode"`
	Sequence   uint8         `json:"sequence"`
	Signal     int           `json:"signal"` // 0..4 bars
	Uptime     time.Duration `json:"uptime_ns"`
	Session    string        `json:"session"`
}

// Sink renders a snapshot somewhere: terminal line, websocket clients, a
// future OLED. Render must not block the control loop for long.
type Sink interface {
	Render(Snapshot) error
}

// RefreshInterval paces the readout at roughly 4 Hz.
const RefreshInterval = 250 * time.Millisecond

// Refresher gates snapshot delivery to the configured rate. Like the
// animation pace gate it skips, never waits.
type Refresher struct {
	sinks []Sink
	last  time.Time
}

func NewRefresher(sinks ...Sink) *Refresher {
	return &Refresher{sinks: sinks}
}

// Offer delivers snap to every sink if the refresh interval has elapsed,
// and reports whether it did.
func (r *Refresher) Offer(snap Snapshot, now time.Time) bool {
	if !r.last.IsZero() && now.Sub(r.last) < RefreshInterval {
		return false
	}
	r.Force(snap, now)
	return true
}

// Force delivers immediately, bypassing the rate gate. The setup loop uses
// it to redraw on every iteration.
func (r *Refresher) Force(snap Snapshot, now time.Time) {
	r.last = now
	for _, s := range r.sinks {
		_ = s.Render(snap)
	}
}
