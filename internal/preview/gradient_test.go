package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

func TestRenderGradientSize(t *testing.T) {
	s, ok := palette.DefaultTable().Lookup(palette.Rainbow)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, RenderGradient(&buf, s, 64, 32))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	// Bottom row fades to black.
	r, g, b, _ := img.At(32, 31).RGBA()
	assert.Less(t, r>>8+g>>8+b>>8, uint32(40))
}

func TestRenderGradientDefaultsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderGradient(&buf, palette.Scheme{Name: "one", Stops: []palette.Color{{R: 200}}}, 0, -1))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())

	assert.ErrorIs(t, RenderGradient(&buf, palette.Scheme{Name: "none"}, 10, 10), palette.ErrEmptyScheme)
}

func TestCSSGradient(t *testing.T) {
	s := palette.Scheme{Name: "two", Stops: []palette.Color{{R: 255}, {B: 255}}}
	assert.Equal(t, "linear-gradient(to right, rgb(255, 0, 0), rgb(0, 0, 255))", CSSGradient(s))

	one := palette.Scheme{Name: "one", Stops: []palette.Color{{G: 1}}}
	assert.Equal(t, "linear-gradient(to right, rgb(0, 1, 0), rgb(0, 1, 0))", CSSGradient(one))
}
