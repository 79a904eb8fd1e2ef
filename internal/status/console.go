package status

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleSink rewrites a single terminal line per refresh.
type ConsoleSink struct {
	Out io.Writer
}

func (c *ConsoleSink) Render(s Snapshot) error {
	bars := strings.Repeat("|", s.Signal) + strings.Repeat(".", 4-s.Signal)
	_, err := fmt.Fprintf(c.Out, "\rid=%02d  seq=%d  rf=[%s]  mode=%-10s  up=%s   ",
		s.Identifier, s.Sequence, bars, s.Mode, s.Uptime.Truncate(1e9))
	return err
}
