package protocol

import "encoding/binary"

// CommandPacket is the only message the link carries.
// Layout on air: Counter(4, little-endian) | Sequence(1). No checksum and no
// framing beyond what the radio transport provides; the whole record is
// XOR-ciphered with the pre-shared link key before transmission.
//
// Counter increments once per transmitted packet. The receiver records it but
// performs no duplicate or out-of-order rejection.
type CommandPacket struct {
	Counter  uint32
	Sequence uint8
}

const (
	// PacketSize is the fixed on-air size of a CommandPacket.
	PacketSize = 5

	// MaxSequence is the highest animation index a packet can select.
	// 0 means "off"; values above MaxSequence render as off.
	MaxSequence = 5
)

// Encode serialises p into its fixed 5-byte on-air form.
func Encode(p *CommandPacket) []byte {
	data := make([]byte, PacketSize)
	binary.LittleEndian.PutUint32(data[0:4], p.Counter)
	data[4] = p.Sequence
	return data
}

// Decode parses a received record. It rejects anything that is not exactly
// PacketSize bytes: the transport delivers whole payloads, so a short or long
// record means corruption or a foreign sender on the channel.
func Decode(data []byte) (*CommandPacket, error) {
	if len(data) != PacketSize {
		return nil, ErrBadPacketSize
	}
	return &CommandPacket{
		Counter:  binary.LittleEndian.Uint32(data[0:4]),
		Sequence: data[4],
	}, nil
}
