package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableOrder(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, []string{
		Rainbow, RedBlue, GreenYellow, PurpleOrange, Sunset, Ocean, Monochrome,
	}, tbl.Names())
}

func TestSampleEndpointsAtFullBrightness(t *testing.T) {
	tbl := DefaultTable()
	for _, name := range tbl.Names() {
		s, ok := tbl.Lookup(name)
		require.True(t, ok)
		first, last := s.Stops[0], s.Stops[len(s.Stops)-1]
		assert.Equal(t, first, tbl.Sample(name, 0, 0), name)
		assert.Equal(t, last, tbl.Sample(name, 1, 0), name)
	}
}

func TestSampleBottomIsBlack(t *testing.T) {
	tbl := DefaultTable()
	for _, name := range tbl.Names() {
		for _, x := range []float64{0, 0.13, 0.5, 0.77, 1} {
			assert.Equal(t, Black, tbl.Sample(name, x, 1), "%s x=%v", name, x)
		}
	}
}

func TestSampleInterpolation(t *testing.T) {
	tbl := DefaultTable()

	var cases = []struct {
		name   string
		x, y   float64
		expect Color
	}{
		// idx 3.5 between green and cyan
		{Rainbow, 0.5, 0, Color{0, 255, 128}},
		{Rainbow, 0.5, 0.5, Color{0, 128, 64}},
		// exactly on a stop
		{Rainbow, 2.0 / 7.0, 0, Color{255, 255, 0}},
		{Monochrome, 0.5, 0, Color{125, 125, 125}},
		{Monochrome, 1, 0.25, Color{191, 191, 191}},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, tbl.Sample(c.name, c.x, c.y), "%s (%v,%v)", c.name, c.x, c.y)
	}
}

func TestSampleClampsPosition(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, tbl.Sample(Ocean, 0, 0), tbl.Sample(Ocean, -3, -1))
	assert.Equal(t, tbl.Sample(Ocean, 1, 1), tbl.Sample(Ocean, 9, 4))
}

func TestSampleUnknownScheme(t *testing.T) {
	assert.Equal(t, Black, DefaultTable().Sample("plaid", 0.5, 0))
}

func TestSingleStopScheme(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Register(Scheme{Name: "solid", Stops: []Color{{10, 20, 30}}}))
	for _, x := range []float64{0, 0.4, 1} {
		assert.Equal(t, Color{10, 20, 30}, tbl.Sample("solid", x, 0))
	}
	assert.Equal(t, Color{5, 10, 15}, tbl.Sample("solid", 0.3, 0.5))
}

func TestRegisterRejectsEmpty(t *testing.T) {
	tbl := NewTable()
	err := tbl.Register(Scheme{Name: "void"})
	assert.ErrorIs(t, err, ErrEmptyScheme)
	assert.False(t, tbl.Has("void"))
}

func TestRegisterHex(t *testing.T) {
	tbl := DefaultTable()
	require.NoError(t, tbl.RegisterHex("fire", []string{"#000000", "ff8000", "#fff"}))
	s, ok := tbl.Lookup("fire")
	require.True(t, ok)
	assert.Equal(t, []Color{{0, 0, 0}, {255, 128, 0}, {255, 255, 255}}, s.Stops)
	assert.Equal(t, "fire", tbl.Names()[len(tbl.Names())-1])

	assert.Error(t, tbl.RegisterHex("bad", []string{"#zz0000"}))
}

func TestColorFormatting(t *testing.T) {
	c := Color{R: 255, G: 165, B: 0}
	assert.Equal(t, "rgb(255, 165, 0)", c.String())
	assert.Equal(t, "#ffa500", c.Hex())

	back, err := ParseRGB(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, back)

	back, err = ParseRGB("rgb(1,2,3)")
	require.NoError(t, err)
	assert.Equal(t, Color{1, 2, 3}, back)

	_, err = ParseRGB("rgb(1, 2, 300)")
	assert.Error(t, err)
	_, err = ParseRGB("hsl(1, 2, 3)")
	assert.Error(t, err)
}
