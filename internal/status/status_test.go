package status_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-lumalink/internal/status"
)

type countingSink struct {
	calls int
	last  status.Snapshot
}

func (c *countingSink) Render(s status.Snapshot) error {
	c.calls++
	c.last = s
	return nil
}

func TestRefresherGatesAtConfiguredRate(t *testing.T) {
	sink := &countingSink{}
	r := status.NewRefresher(sink)

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	delivered := 0
	for i := 0; i < 200; i++ { // one second of 5 ms control ticks
		if r.Offer(status.Snapshot{Sequence: uint8(i)}, t0.Add(time.Duration(i)*5*time.Millisecond)) {
			delivered++
		}
	}
	assert.Equal(t, delivered, sink.calls)
	assert.GreaterOrEqual(t, sink.calls, 4)
	assert.LessOrEqual(t, sink.calls, 5, "~4 Hz out of a 200 Hz loop")
}

func TestRefresherDeliversLatestSnapshot(t *testing.T) {
	sink := &countingSink{}
	r := status.NewRefresher(sink)

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Offer(status.Snapshot{Sequence: 1}, t0)
	r.Offer(status.Snapshot{Sequence: 2}, t0.Add(10*time.Millisecond)) // gated
	r.Offer(status.Snapshot{Sequence: 3}, t0.Add(300*time.Millisecond))
	assert.Equal(t, uint8(3), sink.last.Sequence)
}

func TestConsoleSinkFormatsReadout(t *testing.T) {
	var buf bytes.Buffer
	sink := &status.ConsoleSink{Out: &buf}

	err := sink.Render(status.Snapshot{
		Identifier: 7,
		Mode:       "ready",
		Sequence:   2,
		Signal:     3,
		Uptime:     90 * time.Second,
	})
	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "id=07")
	assert.Contains(t, out, "seq=2")
	assert.Contains(t, out, "[|||.]")
	assert.Contains(t, out, "ready")
}
