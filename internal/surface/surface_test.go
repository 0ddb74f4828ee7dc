package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	r := Rect{Left: 100, Top: 50, Width: 400, Height: 200}

	var cases = []struct {
		cx, cy float64
		expect Position
	}{
		{100, 50, Position{0, 0}},
		{500, 250, Position{1, 1}},
		{300, 100, Position{0.5, 0.25}},
		{20, 900, Position{0, 1}},
		{9000, -4, Position{1, 0}},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, r.Normalize(c.cx, c.cy), "(%v,%v)", c.cx, c.cy)
	}
}

func TestNormalizeDegenerateRect(t *testing.T) {
	assert.Equal(t, Position{}, Rect{Width: 0, Height: -3}.Normalize(10, 10))
}

func TestClamped(t *testing.T) {
	assert.Equal(t, Position{0, 1}, Position{X: math.NaN(), Y: 7}.Clamped())
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0.5, Distance(Position{0, 0}, Position{0.3, 0.4}), 1e-12)
	assert.Zero(t, Distance(Position{0.2, 0.2}, Position{0.2, 0.2}))
}

func TestSchemeForKey(t *testing.T) {
	expect := map[string]string{
		"1": "rainbow", "2": "redBlue", "3": "greenYellow", "4": "purpleOrange",
		"5": "sunset", "6": "ocean", "7": "monochrome",
	}
	for k, name := range expect {
		got, ok := SchemeForKey(k)
		assert.True(t, ok, k)
		assert.Equal(t, name, got)

		back, ok := KeyForScheme(name)
		assert.True(t, ok)
		assert.Equal(t, k, back)
	}
	for _, k := range []string{"0", "8", "9", "a", "", "12", "Enter"} {
		_, ok := SchemeForKey(k)
		assert.False(t, ok, k)
	}
	_, ok := KeyForScheme("fire")
	assert.False(t, ok)
}
