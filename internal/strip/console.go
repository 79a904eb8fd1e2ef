package strip

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"
)

// Console renders the strip as a row of ANSI-colored blocks in the
// terminal, for bench runs without hardware.
type Console struct {
	drawer display.Drawer
	img    *image.NRGBA
	count  int
}

func NewConsole(count int) (*Console, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	d := screen.New(count)
	return &Console{
		drawer: d,
		img:    image.NewNRGBA(d.Bounds()),
		count:  count,
	}, nil
}

func (c *Console) Write(rgb []byte) error {
	if len(rgb) != c.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), c.count)
	}
	for i := 0; i < c.count; i++ {
		c.img.SetNRGBA(i, 0, color.NRGBA{
			R: rgb[i*3+0],
			G: rgb[i*3+1],
			B: rgb[i*3+2],
			A: 0xFF,
		})
	}
	return c.drawer.Draw(c.drawer.Bounds(), c.img, image.Point{})
}

func (c *Console) Close() error { return c.drawer.Halt() }
