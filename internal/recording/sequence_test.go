package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

func TestDump(t *testing.T) {
	seq := Sequence{
		{TimestampMs: 0, Color: palette.Black, Scheme: palette.Rainbow},
		{TimestampMs: 1234, Color: palette.Color{R: 255, G: 165}, Scheme: palette.Sunset},
	}
	assert.Equal(t, []DumpRow{
		{Time: "0.00s", Color: "rgb(0, 0, 0)", Scheme: "rainbow"},
		{Time: "1.23s", Color: "rgb(255, 165, 0)", Scheme: "sunset"},
	}, seq.Dump())
	assert.Equal(t, int64(1234), seq.DurationMs())
	assert.Zero(t, Sequence(nil).DurationMs())
}

func TestParseDumpRoundTrip(t *testing.T) {
	seq := Sequence{
		{TimestampMs: 0, Color: palette.Black, Scheme: palette.Rainbow},
		{TimestampMs: 120, Color: palette.Color{R: 1, G: 2, B: 3}, Scheme: palette.Ocean},
		{TimestampMs: 2500, Color: palette.Color{R: 255, G: 255, B: 255}, Scheme: palette.Monochrome},
	}
	data, err := seq.MarshalDump()
	require.NoError(t, err)

	back, err := ParseDump(data)
	require.NoError(t, err)
	assert.Equal(t, seq, back)
}

func TestParseDumpErrors(t *testing.T) {
	for _, in := range []string{
		`{`,
		`[{"time":"abc","color":"rgb(0, 0, 0)","scheme":"x"}]`,
		`[{"time":"0.10s","color":"blue","scheme":"x"}]`,
		`[{"time":"0.50s","color":"rgb(0, 0, 0)"},{"time":"0.20s","color":"rgb(0, 0, 0)"}]`,
	} {
		_, err := ParseDump([]byte(in))
		assert.Error(t, err, in)
	}
}
