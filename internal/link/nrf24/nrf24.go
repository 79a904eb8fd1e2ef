// Package nrf24 drives an nRF24L01+ transceiver over spidev, implementing
// link.RadioDriver for both ends of the lumalink pair. Fixed 5-byte payloads
// on pipe 0, auto-acknowledge off: the link is fire-and-forget by design and
// loss is absorbed by the receiver's timeout rules.
package nrf24

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

// SPI commands.
const (
	cmdRRegister  = 0x00
	cmdWRegister  = 0x20
	cmdRRxPayload = 0x61
	cmdWTxPayload = 0xA0
	cmdFlushTx    = 0xE1
	cmdFlushRx    = 0xE2
	cmdNop        = 0xFF
)

// Registers.
const (
	regConfig    = 0x00
	regEnAA      = 0x01
	regEnRxAddr  = 0x02
	regSetupAW   = 0x03
	regSetupRetr = 0x04
	regRFCh      = 0x05
	regRFSetup   = 0x06
	regStatus    = 0x07
	regRxAddrP0  = 0x0A
	regTxAddr    = 0x10
	regRxPwP0    = 0x11
)

// CONFIG bits.
const (
	cfgPrimRX = 1 << 0
	cfgPwrUp  = 1 << 1
	cfgCRCO   = 1 << 2
	cfgEnCRC  = 1 << 3
)

// STATUS bits.
const (
	stRxDR  = 1 << 6
	stTxDS  = 1 << 5
	stMaxRT = 1 << 4
)

// Both nodes share one fixed pipe address; there is no multi-receiver
// addressing on this link.
var pipeAddress = [5]byte{0xE7, 0xE7, 0xE7, 0xE7, 0xE7}

// Driver talks to the transceiver through an SPI conn plus a CE output pin.
type Driver struct {
	port spi.PortCloser
	conn spi.Conn
	ce   gpio.PinIO
}

// New opens spiDev (e.g. "/dev/spidev0.0") and the CE pin by name
// (e.g. "GPIO25"). The radio stays powered down until Configure.
func New(spiDev, cePin string) (*Driver, error) {
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}
	conn, err := port.Connect(8*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	ce := gpioreg.ByName(cePin)
	if ce == nil {
		_ = port.Close()
		return nil, fmt.Errorf("CE pin %q not found", cePin)
	}
	if err := ce.Out(gpio.Low); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("CE pin setup: %w", err)
	}
	return &Driver{port: port, conn: conn, ce: ce}, nil
}

// Configure powers the radio up in receive mode on the given channel with
// fixed-width payloads and auto-ack disabled.
func (d *Driver) Configure(channel uint8) error {
	if channel > 125 {
		return fmt.Errorf("invalid channel %d (valid range: 0-125)", channel)
	}
	if err := d.ce.Out(gpio.Low); err != nil {
		return err
	}
	steps := []struct {
		reg byte
		val byte
	}{
		{regEnAA, 0x00},      // no auto-acknowledge
		{regEnRxAddr, 0x01},  // pipe 0 only
		{regSetupAW, 0x03},   // 5-byte addresses
		{regSetupRetr, 0x00}, // no retransmit
		{regRFCh, channel},
		{regRFSetup, 0x26}, // 250 kbps, 0 dBm: range over rate
		{regRxPwP0, protocol.PacketSize},
	}
	for _, s := range steps {
		if err := d.writeReg(s.reg, s.val); err != nil {
			return err
		}
	}
	if err := d.writeAddr(regRxAddrP0); err != nil {
		return err
	}
	if err := d.writeAddr(regTxAddr); err != nil {
		return err
	}
	if err := d.command(cmdFlushRx); err != nil {
		return err
	}
	if err := d.command(cmdFlushTx); err != nil {
		return err
	}
	if err := d.writeReg(regStatus, stRxDR|stTxDS|stMaxRT); err != nil {
		return err
	}
	if err := d.writeReg(regConfig, cfgEnCRC|cfgCRCO|cfgPwrUp|cfgPrimRX); err != nil {
		return err
	}
	// Power-up settling before CE asserts listen mode.
	time.Sleep(5 * time.Millisecond)
	return d.ce.Out(gpio.High)
}

// Tx switches to transmit mode, sends one payload, and returns to listening.
func (d *Driver) Tx(data []byte) error {
	if err := d.ce.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.writeReg(regConfig, cfgEnCRC|cfgCRCO|cfgPwrUp); err != nil {
		return err
	}
	w := make([]byte, 1+len(data))
	w[0] = cmdWTxPayload
	copy(w[1:], data)
	if err := d.conn.Tx(w, make([]byte, len(w))); err != nil {
		return err
	}
	if err := d.ce.Out(gpio.High); err != nil {
		return err
	}
	// >10µs CE pulse starts the transmission; 5 bytes at 250 kbps is well
	// under a millisecond on air.
	time.Sleep(time.Millisecond)
	if err := d.ce.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.writeReg(regStatus, stTxDS|stMaxRT); err != nil {
		return err
	}
	if err := d.writeReg(regConfig, cfgEnCRC|cfgCRCO|cfgPwrUp|cfgPrimRX); err != nil {
		return err
	}
	return d.ce.Out(gpio.High)
}

// Rx returns the next pending payload, polling STATUS until timeout. A zero
// timeout checks exactly once.
func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		st, err := d.status()
		if err != nil {
			return nil, err
		}
		if st&stRxDR != 0 {
			w := make([]byte, 1+protocol.PacketSize)
			r := make([]byte, len(w))
			w[0] = cmdRRxPayload
			if err := d.conn.Tx(w, r); err != nil {
				return nil, err
			}
			if err := d.writeReg(regStatus, stRxDR); err != nil {
				return nil, err
			}
			out := make([]byte, protocol.PacketSize)
			copy(out, r[1:])
			return out, nil
		}
		if timeout == 0 || time.Now().After(deadline) {
			return nil, protocol.ErrTimeout
		}
		time.Sleep(250 * time.Microsecond)
	}
}

// Close powers the radio down and releases the SPI port.
func (d *Driver) Close() error {
	_ = d.ce.Out(gpio.Low)
	_ = d.writeReg(regConfig, 0x00)
	return d.port.Close()
}

func (d *Driver) status() (byte, error) {
	r := make([]byte, 1)
	if err := d.conn.Tx([]byte{cmdNop}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (d *Driver) command(cmd byte) error {
	return d.conn.Tx([]byte{cmd}, make([]byte, 1))
}

func (d *Driver) writeReg(reg, val byte) error {
	return d.conn.Tx([]byte{cmdWRegister | reg, val}, make([]byte, 2))
}

func (d *Driver) writeAddr(reg byte) error {
	w := make([]byte, 1+len(pipeAddress))
	w[0] = cmdWRegister | reg
	copy(w[1:], pipeAddress[:])
	return d.conn.Tx(w, make([]byte, len(w)))
}
