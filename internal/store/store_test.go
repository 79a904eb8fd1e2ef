package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-lumalink/internal/store"
)

func TestRoundTrip(t *testing.T) {
	s := store.Open(filepath.Join(t.TempDir(), "state.bin"))

	assert.NoError(t, s.SaveIdentifier(7))
	id, err := s.LoadIdentifier()
	assert.NoError(t, err)
	assert.Equal(t, uint8(7), id)
}

func TestMissingFileHealsToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	s := store.Open(path)

	id, err := s.LoadIdentifier()
	assert.NoError(t, err)
	assert.Equal(t, uint8(store.MinIdentifier), id)

	// The corrected value was rewritten, not just returned.
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, byte(store.MinIdentifier), data[0])
}

func TestOutOfRangeValueSelfHeals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	assert.NoError(t, os.WriteFile(path, []byte{0xFF, 0, 0, 0, 0, 0, 0, 0}, 0644))

	s := store.Open(path)
	id, err := s.LoadIdentifier()
	assert.NoError(t, err)
	assert.Equal(t, uint8(store.MinIdentifier), id)

	id, err = s.LoadIdentifier()
	assert.NoError(t, err)
	assert.Equal(t, uint8(store.MinIdentifier), id, "healed value persists")
}

func TestSaveRejectsOutOfRange(t *testing.T) {
	s := store.Open(filepath.Join(t.TempDir(), "state.bin"))
	assert.Error(t, s.SaveIdentifier(0))
	assert.Error(t, s.SaveIdentifier(19))
}
