package anim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ticker feeds the engine monotonically advancing pace ticks.
type ticker struct{ now time.Time }

func newTicker() *ticker { return &ticker{now: t0} }

func (tk *ticker) step(e *anim.Engine, p anim.Pattern, n int) {
	for i := 0; i < n; i++ {
		tk.now = tk.now.Add(anim.PaceInterval)
		e.Step(p, tk.now)
	}
}

func litPixels(frame []byte) []int {
	var lit []int
	for i := 0; i+2 < len(frame); i += 3 {
		if frame[i] != 0 || frame[i+1] != 0 || frame[i+2] != 0 {
			lit = append(lit, i/3)
		}
	}
	return lit
}

func TestOffClearsOnceThenStaysQuiet(t *testing.T) {
	e := anim.New(10)
	drv := &strip.Memory{}
	tk := newTicker()

	// Light something first.
	tk.step(e, anim.PatternRainbow, 1)
	assert.NoError(t, e.Flush(drv))
	assert.Len(t, drv.Frames, 1)

	e.Reset()
	tk.step(e, anim.PatternOff, 1)
	assert.NoError(t, e.Flush(drv))
	assert.Len(t, drv.Frames, 2, "clearing frame must flush once")
	assert.Empty(t, litPixels(drv.Last()))

	// Strip already blank: further off ticks produce no writes.
	for i := 0; i < 5; i++ {
		tk.step(e, anim.PatternOff, 1)
		assert.NoError(t, e.Flush(drv))
	}
	assert.Len(t, drv.Frames, 2)
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	e := anim.New(10)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.PatternChase, 1)
	assert.NoError(t, e.Flush(drv))
	assert.NoError(t, e.Flush(drv))
	assert.Len(t, drv.Frames, 1, "identical state twice flushes exactly once")

	// Control tick inside the pace window mutates nothing.
	e.Step(anim.PatternChase, tk.now.Add(5*time.Millisecond))
	assert.NoError(t, e.Flush(drv))
	assert.Len(t, drv.Frames, 1)
}

func TestPacingSkipsInsteadOfWaiting(t *testing.T) {
	e := anim.New(8)
	drv := &strip.Memory{}

	now := t0
	for i := 0; i < 10; i++ {
		e.Step(anim.PatternChase, now)
		_ = e.Flush(drv)
		now = now.Add(5 * time.Millisecond) // faster than the ~16ms pace
	}
	// 50 ms of wall clock fits at most 4 pace ticks.
	assert.LessOrEqual(t, len(drv.Frames), 4)
	assert.GreaterOrEqual(t, len(drv.Frames), 3)
}

func TestChaseSingleBrightHeadAdvances(t *testing.T) {
	e := anim.New(6)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.PatternChase, 1)
	assert.NoError(t, e.Flush(drv))
	assert.Equal(t, []int{0}, litPixels(drv.Last()))

	tk.step(e, anim.PatternChase, 2)
	assert.NoError(t, e.Flush(drv))
	lit := litPixels(drv.Last())
	assert.Contains(t, lit, 2, "head advanced")
	assert.Contains(t, lit, 0, "trail fades instead of vanishing")
}

func TestWipeFillsThenErasesOverDoubleLength(t *testing.T) {
	n := 5
	e := anim.New(n)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.PatternWipe, n)
	assert.NoError(t, e.Flush(drv))
	assert.Len(t, litPixels(drv.Last()), n, "first pass fills the strip")

	tk.step(e, anim.PatternWipe, n)
	assert.NoError(t, e.Flush(drv))
	assert.Empty(t, litPixels(drv.Last()), "second pass erases in the same direction")

	tk.step(e, anim.PatternWipe, 1)
	assert.NoError(t, e.Flush(drv))
	assert.Equal(t, []int{0}, litPixels(drv.Last()), "cycle restarts")
}

func TestCylonBouncesBetweenEnds(t *testing.T) {
	n := 4
	e := anim.New(n)
	drv := &strip.Memory{}
	tk := newTicker()

	brightest := func() int {
		best, bi := -1, 0
		f := drv.Last()
		for i := 0; i < n; i++ {
			v := int(f[i*3]) + int(f[i*3+1]) + int(f[i*3+2])
			if v > best {
				best, bi = v, i
			}
		}
		return bi
	}

	var heads []int
	for i := 0; i < 2*n; i++ {
		tk.step(e, anim.PatternCylon, 1)
		assert.NoError(t, e.Flush(drv))
		heads = append(heads, brightest())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 0, 1}, heads)
}

func TestSparkleLightsExactlyOneFullPixelPerTick(t *testing.T) {
	e := anim.New(16)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.PatternSparkle, 1)
	assert.NoError(t, e.Flush(drv))

	full := 0
	f := drv.Last()
	for i := 0; i < 16; i++ {
		if f[i*3] == 0xFF && f[i*3+1] == 0xFF && f[i*3+2] == 0xFF {
			full++
		}
	}
	assert.Equal(t, 1, full)
}

func TestUnknownSequenceRendersOff(t *testing.T) {
	e := anim.New(8)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.Pattern(99), 1)
	assert.NoError(t, e.Flush(drv))
	assert.Empty(t, litPixels(drv.Last()))
}

func TestResetRewindsCursors(t *testing.T) {
	e := anim.New(6)
	drv := &strip.Memory{}
	tk := newTicker()

	tk.step(e, anim.PatternWipe, 3)
	e.Reset()
	e.Step(anim.PatternWipe, tk.now.Add(time.Hour))
	assert.NoError(t, e.Flush(drv))
	assert.Contains(t, litPixels(drv.Last()), 0, "cursor restarts at the first pixel")
}
