package receiver

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/button"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

const (
	// NoSignalTimeout forces the sequence to off when the transmitter has
	// gone quiet. The transmitter heartbeats every 500 ms, so firing this
	// means several consecutive heartbeats were lost or the peer is gone.
	NoSignalTimeout = 3 * time.Second

	// IdleCutoff is the safety limit on how long a non-zero sequence may
	// run without the transmitter actually changing it. It guards against
	// a stuck transmitter repeating the same selection forever.
	IdleCutoff = 30 * time.Minute
)

// State aggregates every piece of mutable receiver state the controller
// owns. It is passed nowhere by reference; the controller is its sole
// mutator and the loop goroutine its only context.
type State struct {
	Mode        Mode
	Sequence    uint8
	LastPacket  time.Time // last valid packet arrival
	ActiveSince time.Time // when Sequence last changed to a non-zero value
}

// Controller fuses button gestures, packet arrivals and wall-clock timeouts
// into the current mode and sequence selection.
type Controller struct {
	st  State
	eng *anim.Engine
}

// NewController starts in Ready. boot seeds the no-signal window so a
// receiver that never hears a transmitter still goes through the timeout
// rule from a defined origin.
func NewController(eng *anim.Engine, boot time.Time) *Controller {
	return &Controller{
		st:  State{Mode: ModeReady, LastPacket: boot},
		eng: eng,
	}
}

func (c *Controller) State() State    { return c.st }
func (c *Controller) Mode() Mode      { return c.st.Mode }
func (c *Controller) Sequence() uint8 { return c.st.Sequence }

// Tick applies one loop iteration's events. Order is the priority rule:
// manual gestures first, then packet updates, then timeouts. Packets never
// change the mode.
func (c *Controller) Tick(g button.Gesture, pkts []protocol.CommandPacket, now time.Time) {
	c.applyGesture(g)
	for i := range pkts {
		c.applyPacket(&pkts[i], now)
	}
	c.applyTimeouts(now)
}

// Pattern maps the current state onto the animation table. Diagnostic
// always renders off and Test always renders the rainbow self-test,
// whatever the stored sequence says.
func (c *Controller) Pattern() anim.Pattern {
	switch c.st.Mode {
	case ModeDiagnostic:
		return anim.PatternOff
	case ModeTest:
		return anim.PatternRainbow
	default:
		return anim.Pattern(c.st.Sequence)
	}
}

func (c *Controller) applyGesture(g button.Gesture) {
	switch g {
	case button.GestureShort:
		prev := c.st.Mode
		if c.st.Mode == ModeDiagnostic {
			c.st.Mode = ModeReady
		} else if c.st.Mode == ModeReady {
			c.st.Mode = ModeTest
		} else {
			c.st.Mode = ModeReady
		}
		c.forceOff()
		log.Info().Stringer("from", prev).Stringer("to", c.st.Mode).Msg("mode toggled")

	case button.GestureHold:
		if c.st.Mode != ModeReady && c.st.Mode != ModeTest {
			return
		}
		c.st.Mode = ModeDiagnostic
		c.forceOff()
		log.Info().Msg("entering diagnostic mode")
	}
}

func (c *Controller) applyPacket(p *protocol.CommandPacket, now time.Time) {
	c.st.LastPacket = now
	if p.Sequence == c.st.Sequence {
		return
	}
	c.st.Sequence = p.Sequence
	c.eng.Reset()
	if p.Sequence != 0 {
		c.st.ActiveSince = now
	}
	log.Debug().Uint8("sequence", p.Sequence).Uint32("counter", p.Counter).Msg("sequence selected")
}

func (c *Controller) applyTimeouts(now time.Time) {
	if c.st.Sequence == 0 {
		return
	}
	if now.Sub(c.st.LastPacket) >= NoSignalTimeout {
		c.forceOff()
		log.Info().Msg("no signal; sequence off")
		return
	}
	if now.Sub(c.st.ActiveSince) >= IdleCutoff {
		c.forceOff()
		log.Info().Msg("idle cutoff; sequence off")
	}
}

func (c *Controller) forceOff() {
	c.st.Sequence = 0
	c.eng.Reset()
}
