package protocol

import "errors"

var (
	ErrBadPacketSize = errors.New("bad packet size")
	ErrEmptyKey      = errors.New("empty link key")
	ErrTimeout       = errors.New("radio receive timed out")
)
