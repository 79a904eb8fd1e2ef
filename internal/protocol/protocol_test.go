package protocol_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

var TestPacketEncodesToExpectedBytes = []struct {
	Counter  uint32
	Sequence uint8
	Expect   []byte
}{
	{0, 0, []byte{0x00, 0x00, 0x00, 0x00, 0x00}},
	{1, 2, []byte{0x01, 0x00, 0x00, 0x00, 0x02}},
	{0x01020304, 5, []byte{0x04, 0x03, 0x02, 0x01, 0x05}},
	{0xFFFFFFFF, 18, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x12}},
}

func TestEncode(t *testing.T) {
	for k, v := range TestPacketEncodesToExpectedBytes {
		t.Run("Packet"+strconv.Itoa(k), func(t *testing.T) {
			got := Encode(&CommandPacket{Counter: v.Counter, Sequence: v.Sequence})
			assert.Equal(t, v.Expect, got, "should serialise to fixed layout")
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	in := &CommandPacket{Counter: 42, Sequence: 3}
	out, err := Decode(Encode(in))
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	for _, n := range []int{0, 1, 4, 6, 32} {
		_, err := Decode(make([]byte, n))
		assert.ErrorIs(t, err, ErrBadPacketSize, "len=%d", n)
	}
}

func TestCipherIsItsOwnInverse(t *testing.T) {
	c, err := NewCipher([]byte{0xA5, 0x5A, 0x33})
	assert.NoError(t, err)

	buf := Encode(&CommandPacket{Counter: 7, Sequence: 4})
	plain := append([]byte{}, buf...)

	c.Apply(buf)
	assert.NotEqual(t, plain, buf, "ciphered bytes should differ")
	c.Apply(buf)
	assert.Equal(t, plain, buf, "double apply should restore plaintext")
}

func TestCipherRejectsEmptyKey(t *testing.T) {
	_, err := NewCipher(nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
}
