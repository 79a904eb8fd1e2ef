package receiver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/button"
	"github.com/coreman2200/funtimes-lumalink/internal/status"
	"github.com/coreman2200/funtimes-lumalink/internal/store"
)

// setupTick is the free-running cadence of the setup loop. 20 ms keeps
// perceived latency at zero while doubling as mechanical debounce.
const setupTick = 20 * time.Millisecond

// setupSession holds the candidate identifier while the operator is in the
// boot-time setup loop.
type setupSession struct {
	fuser     *button.Fuser
	candidate uint8
}

func newSetupSession(current uint8) *setupSession {
	return &setupSession{
		fuser:     button.NewFuser(button.SetupHoldThreshold),
		candidate: current,
	}
}

// step consumes one iteration's button sample. A confirmed tap increments
// the candidate with 18→1 wraparound; the confirm hold returns done=true
// and the value to persist.
func (s *setupSession) step(level bool, edgeAt, now time.Time) (uint8, bool) {
	switch s.fuser.Sample(level, edgeAt, now) {
	case button.GestureShort:
		s.candidate++
		if s.candidate > store.MaxIdentifier {
			s.candidate = store.MinIdentifier
		}
	case button.GestureHold:
		return s.candidate, true
	}
	return 0, false
}

// runSetup is the boot-only setup loop. It redraws the readout every
// iteration regardless of input, so the candidate display never lags a
// tap. The loop leaves only through the injected restart (or context
// cancellation on host).
func (r *Receiver) runSetup(ctx context.Context) {
	log.Info().Uint8("current", r.ident).Msg("setup: tap to cycle identifier, hold 3s to save")

	// The operator is still holding the power-on press; wait it out so the
	// entry hold is not mistaken for the confirm hold.
	for r.btn.Level() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(setupTick):
		}
	}
	r.btn.Take() // discard the entry press edge

	sess := newSetupSession(r.ident)
	ticker := time.NewTicker(setupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			edgeAt, _ := r.btn.Take()
			id, done := sess.step(r.btn.Level(), edgeAt, now)
			if done {
				if r.persistAndRestart(id) {
					return
				}
				// Persist failed; stay in setup so the operator can retry.
			}
			r.status.Force(r.setupSnapshot(sess.candidate, now), now)
		}
	}
}

// persistAndRestart saves id and restarts the device behind a green
// confirmation flash. On a failed save it flashes red and reports false so
// the setup loop keeps running.
func (r *Receiver) persistAndRestart(id uint8) bool {
	if err := r.store.SaveIdentifier(id); err != nil {
		log.Error().Err(err).Msg("setup: persist failed")
		r.flash(0xFF, 0x00, 0x00)
		return false
	}
	log.Info().Uint8("identifier", id).Msg("setup: identifier saved; restarting")
	r.flash(0x00, 0x80, 0x00)
	r.restart()
	return true
}

// flash fills the strip with one color long enough to register, then clears
// it. Blocking is fine here: setup has no other work in flight.
func (r *Receiver) flash(cr, cg, cb byte) {
	frame := make([]byte, r.count*3)
	for i := 0; i < len(frame); i += 3 {
		frame[i], frame[i+1], frame[i+2] = cr, cg, cb
	}
	_ = r.strip.Write(frame)
	time.Sleep(750 * time.Millisecond)
	for i := range frame {
		frame[i] = 0
	}
	_ = r.strip.Write(frame)
}

func (r *Receiver) setupSnapshot(candidate uint8, now time.Time) status.Snapshot {
	return status.Snapshot{
		Identifier: candidate,
		Mode:       ModeSetup.String(),
		Sequence:   0,
		Signal:     0,
		Uptime:     now.Sub(r.start),
	}
}
