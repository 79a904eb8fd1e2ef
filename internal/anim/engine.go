// Package anim maps (pattern, elapsed time) to pixel values for an N-pixel
// linear strip, paced independently of the control loop that drives it.
package anim

import (
	"math/rand"
	"time"

	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

// Pattern selects one of the strip animations. The zero value is off.
type Pattern uint8

const (
	PatternOff Pattern = iota
	PatternRainbow
	PatternChase
	PatternWipe
	PatternSparkle
	PatternCylon
)

func (p Pattern) String() string {
	switch p {
	case PatternOff:
		return "off"
	case PatternRainbow:
		return "rainbow"
	case PatternChase:
		return "chase"
	case PatternWipe:
		return "wipe"
	case PatternSparkle:
		return "sparkle"
	case PatternCylon:
		return "cylon"
	default:
		return "off"
	}
}

// PaceInterval is the minimum time between animation steps (~60 Hz). The
// control loop ticks faster than this; steps inside the window are skipped,
// never waited for.
const PaceInterval = time.Second / 60

// Engine owns the frame buffer and per-pattern cursors. Not safe for
// concurrent use; the control loop is its only caller.
type Engine struct {
	count int
	buf   []byte
	co    Coalescer

	last  time.Time
	phase int // rainbow hue offset
	pos   int // chase/wipe/cylon cursor
	dir   int // cylon direction
	rng   *rand.Rand
}

func New(count int) *Engine {
	return &Engine{
		count: count,
		buf:   make([]byte, count*3),
		dir:   1,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Reset rewinds all animation cursors to their initial state and lets the
// next Step run immediately. Called whenever the selected sequence changes.
func (e *Engine) Reset() {
	e.last = time.Time{}
	e.phase = 0
	e.pos = 0
	e.dir = 1
}

// Step advances the animation one pace tick if the pace interval has
// elapsed; otherwise it does nothing.
func (e *Engine) Step(p Pattern, now time.Time) {
	if !e.last.IsZero() && now.Sub(e.last) < PaceInterval {
		return
	}
	e.last = now

	switch p {
	case PatternRainbow:
		e.rainbow()
	case PatternChase:
		e.chase()
	case PatternWipe:
		e.wipe()
	case PatternSparkle:
		e.sparkle()
	case PatternCylon:
		e.cylon()
	default:
		// Off, and any sequence id beyond the animation table.
		e.off()
	}
}

// Flush pushes the frame to the driver if it is dirty. At most one hardware
// write happens per control tick.
func (e *Engine) Flush(d strip.Driver) error {
	return e.co.Flush(d, e.buf)
}

func (e *Engine) off() {
	if e.co.Blank() {
		return
	}
	for i := range e.buf {
		e.buf[i] = 0
	}
	e.co.TouchBlank()
}

func (e *Engine) rainbow() {
	for i := 0; i < e.count; i++ {
		r, g, b := wheel(byte((i*256/e.count + e.phase) & 0xFF))
		e.set(i, r, g, b)
	}
	e.phase = (e.phase + 1) & 0xFF
	e.co.Touch()
}

func (e *Engine) chase() {
	e.fade()
	e.set(e.pos, 0xFF, 0x8C, 0x00)
	e.pos = (e.pos + 1) % e.count
	e.co.Touch()
}

func (e *Engine) wipe() {
	// One cursor over twice the strip: first pass fills, second pass erases
	// in the same direction, then the cycle restarts.
	if e.pos < e.count {
		e.set(e.pos, 0x00, 0xFF, 0x40)
	} else {
		e.set(e.pos-e.count, 0, 0, 0)
	}
	e.pos = (e.pos + 1) % (2 * e.count)
	e.co.Touch()
}

func (e *Engine) sparkle() {
	e.fade()
	e.set(e.rng.Intn(e.count), 0xFF, 0xFF, 0xFF)
	e.co.Touch()
}

func (e *Engine) cylon() {
	e.fade()
	e.set(e.pos, 0xFF, 0x00, 0x00)
	e.pos += e.dir
	if e.pos <= 0 {
		e.pos = 0
		e.dir = 1
	} else if e.pos >= e.count-1 {
		e.pos = e.count - 1
		e.dir = -1
	}
	e.co.Touch()
}

func (e *Engine) set(i int, r, g, b byte) {
	e.buf[i*3+0] = r
	e.buf[i*3+1] = g
	e.buf[i*3+2] = b
}

// fade decays every channel exponentially; integer floor guarantees the
// trail reaches full black.
func (e *Engine) fade() {
	for i := range e.buf {
		e.buf[i] = byte(int(e.buf[i]) * 220 / 256)
	}
}

// wheel maps a hue byte onto the RGB color circle.
func wheel(h byte) (r, g, b byte) {
	switch {
	case h < 85:
		return 255 - h*3, h * 3, 0
	case h < 170:
		h -= 85
		return 0, 255 - h*3, h * 3
	default:
		h -= 170
		return h * 3, 0, 255 - h*3
	}
}
