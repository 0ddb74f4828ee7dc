// Package surface turns raw pointer and key input from the gradient field
// into normalized positions and scheme switches.
package surface

import (
	"math"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

// Position is a point on the gradient field with both axes in [0,1].
// X picks the color along the scheme, Y the brightness (0 = full).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the on-screen bounding box of the gradient field.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize maps client coordinates into the rect, clamping each axis.
func (r Rect) Normalize(clientX, clientY float64) Position {
	return Position{
		X: ratio(clientX-r.Left, r.Width),
		Y: ratio(clientY-r.Top, r.Height),
	}
}

func ratio(v, extent float64) float64 {
	if extent <= 0 {
		return 0
	}
	return Clamp01(v / extent)
}

// Clamped returns p with both axes forced into [0,1].
func (p Position) Clamped() Position {
	return Position{X: Clamp01(p.X), Y: Clamp01(p.Y)}
}

func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SchemeKeys is the scheme bound to each digit key, "1" first.
var SchemeKeys = [...]string{
	palette.Rainbow,
	palette.RedBlue,
	palette.GreenYellow,
	palette.PurpleOrange,
	palette.Sunset,
	palette.Ocean,
	palette.Monochrome,
}

// SchemeForKey resolves "1".."7" to a scheme name.
func SchemeForKey(key string) (string, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '0'+byte(len(SchemeKeys)) {
		return "", false
	}
	return SchemeKeys[key[0]-'1'], true
}

// KeyForScheme is the inverse of SchemeForKey; configured schemes have no key.
func KeyForScheme(name string) (string, bool) {
	for i, s := range SchemeKeys {
		if s == name {
			return string(rune('1' + i)), true
		}
	}
	return "", false
}
