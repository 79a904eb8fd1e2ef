// Package receiver fuses radio packets, local button gestures and
// wall-clock timeouts into the current sequence selection and drives the
// LED strip from it. One goroutine owns all of it.
package receiver

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/button"
	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/status"
	"github.com/coreman2200/funtimes-lumalink/internal/store"
	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

// TickEvery is the main control loop cadence. It bounds button latency and
// is comfortably faster than both the animation pace and the display
// refresh, which gate themselves.
const TickEvery = 5 * time.Millisecond

// Deps are the external collaborators the receiver wires together.
type Deps struct {
	Link   *link.Receiver
	Button button.Input
	Engine *anim.Engine
	Strip  strip.Driver
	Store  *store.Store
	Status *status.Refresher

	// Restart power-cycles the device after setup persists an identifier.
	// Defaults to process exit; tests substitute a flag.
	Restart func()
}

// Receiver is the top-level control loop.
type Receiver struct {
	link    *link.Receiver
	btn     button.Input
	eng     *anim.Engine
	strip   strip.Driver
	store   *store.Store
	status  *status.Refresher
	ctrl    *Controller
	fuser   *button.Fuser
	restart func()

	ident uint8
	count int
	start time.Time
}

// New assembles a receiver for a strip of count pixels operating as ident.
func New(d Deps, ident uint8, count int) *Receiver {
	restart := d.Restart
	if restart == nil {
		restart = func() { os.Exit(0) }
	}
	boot := time.Now()
	return &Receiver{
		link:    d.Link,
		btn:     d.Button,
		eng:     d.Engine,
		strip:   d.Strip,
		store:   d.Store,
		status:  d.Status,
		ctrl:    NewController(d.Engine, boot),
		fuser:   button.NewFuser(button.HoldThreshold),
		restart: restart,
		ident:   ident,
		count:   count,
		start:   boot,
	}
}

// Run executes the control loop until ctx is cancelled. If the button is
// held at entry the boot-only setup loop runs instead and Run returns when
// it restarts the device.
func (r *Receiver) Run(ctx context.Context) error {
	if r.btn.Level() {
		r.runSetup(ctx)
		return nil
	}

	log.Info().Uint8("identifier", r.ident).Int("pixels", r.count).Msg("receiver loop starting")
	ticker := time.NewTicker(TickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(time.Now())
		}
	}
}

// tick is one pass of the fused pipeline: button, packets, state machine,
// animation, coalesced flush, readout.
func (r *Receiver) tick(now time.Time) {
	edgeAt, _ := r.btn.Take()
	g := r.fuser.Sample(r.btn.Level(), edgeAt, now)
	pkts := r.link.Poll(now)

	r.ctrl.Tick(g, pkts, now)
	r.eng.Step(r.ctrl.Pattern(), now)
	if err := r.eng.Flush(r.strip); err != nil {
		log.Error().Err(err).Msg("strip flush failed")
	}
	r.status.Offer(r.snapshot(now), now)
}

func (r *Receiver) snapshot(now time.Time) status.Snapshot {
	return status.Snapshot{
		Identifier: r.ident,
		Mode:       r.ctrl.Mode().String(),
		Sequence:   r.ctrl.Sequence(),
		Signal:     r.link.Quality(now),
		Uptime:     now.Sub(r.start),
	}
}
