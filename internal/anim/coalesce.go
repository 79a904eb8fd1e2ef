package anim

import "github.com/coreman2200/funtimes-lumalink/internal/strip"

// Coalescer tracks whether the frame buffer changed since the last flush
// (dirty) and whether the strip is already showing the cleared frame
// (blank), so the hardware sees at most one write per control tick and an
// off strip is never re-cleared.
type Coalescer struct {
	dirty bool
	blank bool
}

// Touch marks the frame dirty after a pixel mutation.
func (c *Coalescer) Touch() {
	c.dirty = true
	c.blank = false
}

// TouchBlank marks the frame dirty with all pixels cleared.
func (c *Coalescer) TouchBlank() {
	c.dirty = true
	c.blank = true
}

func (c *Coalescer) Dirty() bool { return c.dirty }
func (c *Coalescer) Blank() bool { return c.blank }

// Flush writes buf to the driver iff the frame is dirty, clearing the dirty
// bit with the write. A failed write leaves the bit set so the frame is
// retried next tick rather than lost.
func (c *Coalescer) Flush(d strip.Driver, buf []byte) error {
	if !c.dirty {
		return nil
	}
	if err := d.Write(buf); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
