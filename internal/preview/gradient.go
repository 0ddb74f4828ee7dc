// Package preview draws the gradient field a scheme produces: hue along x,
// brightness falling to black along y.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gg"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

const (
	DefaultWidth  = 512
	DefaultHeight = 256
	MaxSide       = 2048
)

// RenderGradient writes a PNG of the scheme's field. Stops are spread
// evenly across the width and a vertical overlay darkens toward the bottom.
func RenderGradient(w io.Writer, s palette.Scheme, width, height int) error {
	if len(s.Stops) == 0 {
		return palette.ErrEmptyScheme
	}
	width = side(width, DefaultWidth)
	height = side(height, DefaultHeight)

	dc := gg.NewContext(width, height)
	defer dc.Close()

	fw, fh := float64(width), float64(height)
	dc.SetFillBrush(horizontal(s, fw))
	dc.DrawRectangle(0, 0, fw, fh)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill stops: %w", err)
	}

	fade := gg.NewLinearGradientBrush(0, 0, 0, fh).
		AddColorStop(0, gg.RGBA2(0, 0, 0, 0)).
		AddColorStop(1, gg.RGBA2(0, 0, 0, 1))
	dc.SetFillBrush(fade)
	dc.DrawRectangle(0, 0, fw, fh)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill fade: %w", err)
	}

	return dc.EncodePNG(w)
}

func horizontal(s palette.Scheme, width float64) *gg.LinearGradientBrush {
	b := gg.NewLinearGradientBrush(0, 0, width, 0)
	if len(s.Stops) == 1 {
		c := rgb(s.Stops[0])
		return b.AddColorStop(0, c).AddColorStop(1, c)
	}
	last := float64(len(s.Stops) - 1)
	for i, c := range s.Stops {
		b.AddColorStop(float64(i)/last, rgb(c))
	}
	return b
}

func rgb(c palette.Color) gg.RGBA {
	return gg.RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func side(v, def int) int {
	if v <= 0 {
		return def
	}
	return min(v, MaxSide)
}

// CSSGradient renders the scheme as a CSS linear-gradient for the picker
// swatches and the field background.
func CSSGradient(s palette.Scheme) string {
	stops := make([]string, 0, len(s.Stops))
	for _, c := range s.Stops {
		stops = append(stops, c.String())
	}
	if len(stops) == 1 {
		stops = append(stops, stops[0])
	}
	return "linear-gradient(to right, " + strings.Join(stops, ", ") + ")"
}
