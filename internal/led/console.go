package led

import (
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"
)

// Console renders the strip as a row of colored cells in the terminal.
type Console struct {
	mu     sync.Mutex
	drawer display.Drawer
	img    *image.NRGBA
	count  int
}

func NewConsole(count int) *Console {
	return newConsole(screen.New(count), count)
}

func newConsole(d display.Drawer, count int) *Console {
	return &Console{
		drawer: d,
		img:    image.NewNRGBA(image.Rect(0, 0, count, 1)),
		count:  count,
	}
}

func (c *Console) Write(rgb []byte) error {
	if err := checkLen(rgb, c.count); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < c.count; i++ {
		c.img.SetNRGBA(i, 0, color.NRGBA{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2], A: 255})
	}
	return c.drawer.Draw(c.drawer.Bounds(), c.img, image.Point{})
}

func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawer.Halt()
}
