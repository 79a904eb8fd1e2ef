// Package store persists the receiver identifier: a single byte at a fixed
// offset in a small state file, mirroring the EEPROM cell it replaces.
package store

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	// Identifier bounds. Anything read outside this range is treated as a
	// stale cell and self-heals to MinIdentifier.
	MinIdentifier = 1
	MaxIdentifier = 18

	identOffset = 0x00
	fileSize    = 8 // room for future cells at fixed offsets
)

// Store reads and writes the persisted identifier.
type Store struct {
	path string
}

func Open(path string) *Store { return &Store{path: path} }

// LoadIdentifier returns the persisted identifier. A missing file or an
// out-of-range byte is corrected to MinIdentifier and rewritten before
// returning; the caller always gets a valid value.
func (s *Store) LoadIdentifier() (uint8, error) {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) <= identOffset {
		log.Warn().Err(err).Str("path", s.path).Msg("no persisted identifier; writing default")
		if werr := s.SaveIdentifier(MinIdentifier); werr != nil {
			return 0, werr
		}
		return MinIdentifier, nil
	}
	id := data[identOffset]
	if id < MinIdentifier || id > MaxIdentifier {
		log.Warn().Uint8("stored", id).Msg("persisted identifier out of range; self-healing")
		if werr := s.SaveIdentifier(MinIdentifier); werr != nil {
			return 0, werr
		}
		return MinIdentifier, nil
	}
	return id, nil
}

// SaveIdentifier persists id at the fixed offset.
func (s *Store) SaveIdentifier(id uint8) error {
	if id < MinIdentifier || id > MaxIdentifier {
		return fmt.Errorf("identifier %d out of range [%d,%d]", id, MinIdentifier, MaxIdentifier)
	}
	data := make([]byte, fileSize)
	if old, err := os.ReadFile(s.path); err == nil {
		copy(data, old)
	}
	data[identOffset] = id
	return os.WriteFile(s.path, data, 0644)
}
