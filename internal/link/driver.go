package link

import "time"

// RadioDriver is the interface that wraps the basic radio operations.
// Implementations: nrf24 (SPI transceiver) and stub (host-side loopback).
type RadioDriver interface {
	// Configure prepares the radio on the given RF channel.
	Configure(channel uint8) error
	// Tx transmits one payload.
	Tx(data []byte) error
	// Rx returns the next received payload, waiting at most timeout.
	// A zero timeout checks once and returns protocol.ErrTimeout if the
	// radio has nothing pending.
	Rx(timeout time.Duration) ([]byte, error)
	// Close powers the radio down.
	Close() error
}
