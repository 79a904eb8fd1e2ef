package link

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

// Receiver drains inbound CommandPackets from a radio driver without ever
// blocking the caller. One Poll per control-loop tick.
type Receiver struct {
	driver   RadioDriver
	cipher   *protocol.Cipher
	lastSeen time.Time
	lastCtr  uint32
	haveCtr  bool
}

func NewReceiver(d RadioDriver, c *protocol.Cipher) *Receiver {
	return &Receiver{driver: d, cipher: c}
}

// Initialise configures the radio. Failure here is terminal for the
// caller; there is no retry path.
func (r *Receiver) Initialise(channel uint8) error {
	return r.driver.Configure(channel)
}

// Poll returns every packet the radio has pending right now, in arrival
// order. Undecodable payloads are dropped with a log line; they count as
// noise, not as link activity.
func (r *Receiver) Poll(now time.Time) []protocol.CommandPacket {
	var out []protocol.CommandPacket
	for {
		data, err := r.driver.Rx(0)
		if err != nil {
			return out
		}
		r.cipher.Apply(data)
		p, err := protocol.Decode(data)
		if err != nil {
			log.Debug().Err(err).Int("len", len(data)).Msg("dropping undecodable payload")
			continue
		}
		// The counter is advisory: log regressions for bench diagnosis but
		// accept the packet either way.
		if r.haveCtr && p.Counter <= r.lastCtr {
			log.Debug().Uint32("counter", p.Counter).Uint32("last", r.lastCtr).Msg("counter did not advance")
		}
		r.lastCtr = p.Counter
		r.haveCtr = true
		r.lastSeen = now
		out = append(out, *p)
	}
}

// LastSeen reports when the most recent valid packet arrived (zero before
// the first one).
func (r *Receiver) LastSeen() time.Time { return r.lastSeen }

// Quality grades link health into 0..4 bars from the gap since the last
// valid packet, measured against the transmitter's heartbeat interval. A
// healthy link never misses more than a heartbeat or two.
func (r *Receiver) Quality(now time.Time) int {
	if r.lastSeen.IsZero() {
		return 0
	}
	gap := now.Sub(r.lastSeen)
	switch {
	case gap < HeartbeatInterval+HeartbeatInterval/2:
		return 4
	case gap < 3*HeartbeatInterval:
		return 3
	case gap < 5*HeartbeatInterval:
		return 2
	case gap < 8*HeartbeatInterval:
		return 1
	default:
		return 0
	}
}
