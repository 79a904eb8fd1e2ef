package strip

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// SPI drives a WS2812-class strip through spidev using the nrzled NRZ
// encoder.
type SPI struct {
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
}

// NewSPI opens the named SPI port ("" selects the first registered one) for
// count pixels. freqKHz is the NRZ symbol rate; 2500 suits WS2812b.
func NewSPI(spiDev string, count int, freqKHz int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freqKHz <= 0 {
		freqKHz = 2500
	}
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      physic.Frequency(freqKHz) * physic.KiloHertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled setup: %w", err)
	}
	return &SPI{port: port, dev: dev, count: count}, nil
}

func (s *SPI) Write(rgb []byte) error {
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	_, err := s.dev.Write(rgb)
	return err
}

func (s *SPI) Close() error {
	_ = s.dev.Halt()
	return s.port.Close()
}
