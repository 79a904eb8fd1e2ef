package stub

import (
	"sync"
	"time"

	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

// Driver implements a mock radio driver for host-side testing and for the
// rxsim bench tool. InjectRx feeds payloads to the receive side; GetTxLog
// exposes everything transmitted.
type Driver struct {
	mu    sync.Mutex
	rxBuf ringBuffer
	txBuf ringBuffer
}

func New() *Driver { return &Driver{} }

var _ link.RadioDriver = (*Driver)(nil)

func (d *Driver) Configure(channel uint8) error { return nil }
func (d *Driver) Close() error                  { return nil }

func (d *Driver) Tx(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	d.txBuf.push(frame)
	return nil
}

func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		frame, ok := d.rxBuf.pop()
		d.mu.Unlock()
		if ok {
			out := make([]byte, len(frame))
			copy(out, frame)
			return out, nil
		}
		if timeout == 0 || time.Now().After(deadline) {
			return nil, protocol.ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

func (d *Driver) InjectRx(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	d.rxBuf.push(frame)
}

func (d *Driver) GetTxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txBuf.snapshot()
}

// Connect pipes everything a transmits into b's receive buffer until done
// closes. Useful for end-to-end bench runs with one driver per node.
func Connect(done <-chan struct{}, a, b *Driver) {
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				for _, frame := range a.drainTx() {
					b.InjectRx(frame)
				}
			}
		}
	}()
}

// drainTx pops every pending transmit frame under one lock, so nothing
// pushed concurrently can slip between a snapshot and a clear.
func (d *Driver) drainTx() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, 0, d.txBuf.count)
	for {
		frame, ok := d.txBuf.pop()
		if !ok {
			return out
		}
		out = append(out, frame)
	}
}

const ringCapacity = 64

type ringBuffer struct {
	data       [ringCapacity][]byte
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(frame []byte) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = nil
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = frame
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() ([]byte, bool) {
	if rb.count == 0 {
		return nil, false
	}
	frame := rb.data[rb.head]
	rb.data[rb.head] = nil
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return frame, true
}

func (rb *ringBuffer) snapshot() [][]byte {
	out := make([][]byte, rb.count)
	idx := 0
	i := rb.head
	for c := 0; c < rb.count; c++ {
		p := rb.data[i]
		cp := make([]byte, len(p))
		copy(cp, p)
		out[idx] = cp
		idx++
		i = (i + 1) % ringCapacity
	}
	return out
}
