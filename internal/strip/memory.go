package strip

// Memory records every flushed frame, for headless tests of the animation
// engine and coalescer.
type Memory struct {
	Frames [][]byte
}

func (m *Memory) Write(rgb []byte) error {
	cp := make([]byte, len(rgb))
	copy(cp, rgb)
	m.Frames = append(m.Frames, cp)
	return nil
}

func (m *Memory) Close() error { return nil }

// Last returns the most recently flushed frame, or nil.
func (m *Memory) Last() []byte {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[len(m.Frames)-1]
}
