package receiver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/link/stub"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
	"github.com/coreman2200/funtimes-lumalink/internal/status"
	"github.com/coreman2200/funtimes-lumalink/internal/store"
	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

var tb = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeButton scripts level samples and press edges for loop tests.
type fakeButton struct {
	level bool
	edges []time.Time
}

func (f *fakeButton) Level() bool { return f.level }

func (f *fakeButton) Take() (time.Time, bool) {
	if len(f.edges) == 0 {
		return time.Time{}, false
	}
	e := f.edges[0]
	f.edges = f.edges[1:]
	return e, true
}

// tap feeds one short press through a setup session.
func tap(s *setupSession, at time.Time) {
	s.step(true, at, at)
	s.step(false, time.Time{}, at.Add(50*time.Millisecond))
}

func TestSetupTapIncrementsWithWraparound(t *testing.T) {
	s := newSetupSession(17)

	at := tb
	tap(s, at)
	assert.Equal(t, uint8(18), s.candidate)

	at = at.Add(time.Second)
	tap(s, at)
	assert.Equal(t, uint8(store.MinIdentifier), s.candidate, "18 wraps to 1")

	at = at.Add(time.Second)
	tap(s, at)
	assert.Equal(t, uint8(2), s.candidate)
}

func TestSetupHoldConfirmsCandidate(t *testing.T) {
	s := newSetupSession(7)

	s.step(true, tb, tb)
	_, done := s.step(true, time.Time{}, tb.Add(2999*time.Millisecond))
	assert.False(t, done)

	id, done := s.step(true, time.Time{}, tb.Add(3*time.Second))
	assert.True(t, done)
	assert.Equal(t, uint8(7), id)
}

func TestSetupHoldDoesNotAlsoCountAsTap(t *testing.T) {
	s := newSetupSession(7)

	s.step(true, tb, tb)
	_, done := s.step(true, time.Time{}, tb.Add(3*time.Second))
	assert.True(t, done)

	// Release after the confirm hold: candidate untouched.
	s.step(false, time.Time{}, tb.Add(4*time.Second))
	assert.Equal(t, uint8(7), s.candidate)
}

func newTestReceiver(t *testing.T, btn *fakeButton) (*Receiver, *stub.Driver, *strip.Memory, *bool) {
	t.Helper()
	cipher, err := protocol.NewCipher([]byte{0x42})
	assert.NoError(t, err)

	radio := stub.New()
	mem := &strip.Memory{}
	restarted := false
	r := New(Deps{
		Link:    link.NewReceiver(radio, cipher),
		Button:  btn,
		Engine:  anim.New(8),
		Strip:   mem,
		Store:   store.Open(filepath.Join(t.TempDir(), "state.bin")),
		Status:  status.NewRefresher(),
		Restart: func() { restarted = true },
	}, 7, 8)
	return r, radio, mem, &restarted
}

func TestPersistAndRestartRoundTrip(t *testing.T) {
	r, _, mem, restarted := newTestReceiver(t, &fakeButton{})

	assert.True(t, r.persistAndRestart(7))
	assert.True(t, *restarted)

	// Restart simulation: a fresh load sees the persisted value.
	id, err := r.store.LoadIdentifier()
	assert.NoError(t, err)
	assert.Equal(t, uint8(7), id)

	// Confirmation flash wrote a lit frame then a cleared one.
	assert.Len(t, mem.Frames, 2)
	assert.NotEqual(t, make([]byte, 8*3), mem.Frames[0])
	assert.Equal(t, make([]byte, 8*3), mem.Frames[1])
}

func TestPersistFailureStaysInSetup(t *testing.T) {
	r, _, mem, restarted := newTestReceiver(t, &fakeButton{})
	// A state path in a directory that does not exist makes every save fail.
	r.store = store.Open(filepath.Join(t.TempDir(), "no-such-dir", "state.bin"))

	assert.False(t, r.persistAndRestart(7))
	assert.False(t, *restarted, "a failed save must not restart the device")

	// Failure indication: a red flash, then cleared.
	assert.Len(t, mem.Frames, 2)
	assert.Equal(t, byte(0xFF), mem.Frames[0][0])
	assert.Equal(t, make([]byte, 8*3), mem.Frames[1])
}

func TestTickRendersPacketSelection(t *testing.T) {
	btn := &fakeButton{}
	r, radio, mem, _ := newTestReceiver(t, btn)

	cipher, _ := protocol.NewCipher([]byte{0x42})
	data := protocol.Encode(&protocol.CommandPacket{Counter: 1, Sequence: 2})
	cipher.Apply(data)
	radio.InjectRx(data)

	r.tick(tb)
	assert.Equal(t, uint8(2), r.ctrl.Sequence())
	assert.Equal(t, anim.PatternChase, r.ctrl.Pattern())
	assert.NotEmpty(t, mem.Frames, "selection must reach the strip")
}

func TestTickButtonBeatsPacketOnMode(t *testing.T) {
	btn := &fakeButton{}
	r, _, _, _ := newTestReceiver(t, btn)

	// Short press: level active with a latched edge, then released.
	btn.level = true
	btn.edges = []time.Time{tb}
	r.tick(tb)
	btn.level = false
	r.tick(tb.Add(100 * time.Millisecond))

	assert.Equal(t, ModeTest, r.ctrl.Mode())
}
