package button

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Input is what the control loop needs from the physical button: a level
// sample per tick plus the latched press edges.
type Input interface {
	// Level reports whether the button is currently active.
	Level() bool
	// Take returns an unconsumed press-edge timestamp, if any.
	Take() (time.Time, bool)
}

// Monitor binds an active-low GPIO pin to a Latch. Falling edges are
// captured on a dedicated goroutine (the host-side analogue of the edge
// interrupt) and the control loop polls Level each tick.
type Monitor struct {
	pin   gpio.PinIO
	latch Latch
}

// NewMonitor opens the named pin (e.g. "GPIO17") with the internal pull-up
// and starts the edge goroutine.
func NewMonitor(pinName string) (*Monitor, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("button pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("button pin setup: %w", err)
	}
	m := &Monitor{pin: pin}
	go m.watch()
	return m, nil
}

func (m *Monitor) watch() {
	for {
		if !m.pin.WaitForEdge(-1) {
			log.Warn().Str("pin", m.pin.Name()).Msg("edge wait aborted")
			time.Sleep(100 * time.Millisecond)
			continue
		}
		m.latch.Press(time.Now())
	}
}

// Level reports the sampled state; the pin is active-low.
func (m *Monitor) Level() bool { return m.pin.Read() == gpio.Low }

func (m *Monitor) Take() (time.Time, bool) { return m.latch.Take() }
