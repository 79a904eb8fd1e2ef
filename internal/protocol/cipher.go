package protocol

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// Cipher applies the symmetric link-layer scrambling both ends share.
// It is a repeating-key XOR: cheap enough for a 5-byte packet on a
// microcontroller-class peer, and trivially its own inverse. Key agreement
// and key strength are out of scope; the key is provisioned out of band.
type Cipher struct {
	key []byte
}

// NewCipher returns a Cipher over key. The key must be non-empty.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Cipher{key: k}, nil
}

// Apply XORs buf in place with the repeating key. Applying twice restores
// the original bytes.
func (c *Cipher) Apply(buf []byte) {
	for i := range buf {
		buf[i] ^= c.key[i%len(c.key)]
	}
}

// GenerateKey returns 8 cryptographically random key bytes for provisioning.
// If crypto/rand fails (rare on host), falls back to math/rand.
func GenerateKey() []byte {
	b := make([]byte, 8)
	if _, err := crand.Read(b); err == nil {
		return b
	}
	src := mrand.NewSource(time.Now().UnixNano())
	r := mrand.New(src)
	binary.LittleEndian.PutUint64(b, r.Uint64())
	return b
}
