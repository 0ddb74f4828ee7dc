package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var Black = Color{}

// String renders the color the way the sequence export prints it.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Colorful converts to a go-colorful color (channels in 0..1).
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func (c Color) Hex() string { return c.Colorful().Hex() }

// FromColorful clamps and quantizes a go-colorful color.
func FromColorful(cc colorful.Color) Color {
	r, g, b := cc.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// ParseHex accepts "#rrggbb" or "#rgb"; the leading '#' is optional.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cc, err := colorful.Hex(s)
	if err != nil {
		return Black, fmt.Errorf("parse hex color %q: %w", s, err)
	}
	return FromColorful(cc), nil
}

// ParseRGB reads the "rgb(r, g, b)" form produced by String.
func ParseRGB(s string) (Color, error) {
	var r, g, b int
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
		return Black, fmt.Errorf("parse rgb color %q: %w", s, err)
	}
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return Black, fmt.Errorf("parse rgb color %q: channel %d out of range", s, v)
		}
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}
