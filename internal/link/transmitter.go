package link

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

// HeartbeatInterval is how often the transmitter repeats the current
// selection when no button activity occurs. It keeps the receiver's
// no-signal timeout from firing while the transmitter is powered and in
// range, so it must be comfortably shorter than that timeout.
const HeartbeatInterval = 500 * time.Millisecond

// Transmitter owns the operator's current sequence choice and pushes it out
// on every action and on every heartbeat.
type Transmitter struct {
	driver   RadioDriver
	cipher   *protocol.Cipher
	counter  uint32
	sequence uint8
	lastSend time.Time
}

func NewTransmitter(d RadioDriver, c *protocol.Cipher) *Transmitter {
	return &Transmitter{driver: d, cipher: c}
}

func (t *Transmitter) Initialise(channel uint8) error {
	return t.driver.Configure(channel)
}

// Sequence reports the current selection.
func (t *Transmitter) Sequence() uint8 { return t.sequence }

// Cycle advances the selection 1..MaxSequence with wraparound (skipping 0,
// which has its own control) and transmits immediately.
func (t *Transmitter) Cycle(now time.Time) error {
	t.sequence++
	if t.sequence > protocol.MaxSequence {
		t.sequence = 1
	}
	return t.send(now)
}

// Off forces selection 0 and transmits immediately.
func (t *Transmitter) Off(now time.Time) error {
	t.sequence = 0
	return t.send(now)
}

// Tick retransmits the current selection if a heartbeat interval has
// elapsed since the last send. Call once per loop iteration.
func (t *Transmitter) Tick(now time.Time) error {
	if now.Sub(t.lastSend) < HeartbeatInterval {
		return nil
	}
	return t.send(now)
}

func (t *Transmitter) send(now time.Time) error {
	t.counter++
	data := protocol.Encode(&protocol.CommandPacket{Counter: t.counter, Sequence: t.sequence})
	t.cipher.Apply(data)
	if err := t.driver.Tx(data); err != nil {
		log.Warn().Err(err).Uint32("counter", t.counter).Msg("tx failed")
		return err
	}
	t.lastSend = now
	return nil
}
