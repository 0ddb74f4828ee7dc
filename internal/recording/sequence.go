package recording

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

// Sample is one captured color, timestamped relative to recording start.
type Sample struct {
	TimestampMs int64         `json:"timestampMs"`
	Color       palette.Color `json:"color"`
	Scheme      string        `json:"scheme"`
}

// Sequence is ordered by non-decreasing TimestampMs, starting at 0.
type Sequence []Sample

func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// DurationMs is the timestamp of the last sample.
func (s Sequence) DurationMs() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].TimestampMs
}

// DumpRow is the human-readable export form of a Sample.
type DumpRow struct {
	Time   string `json:"time"`
	Color  string `json:"color"`
	Scheme string `json:"scheme"`
}

// Dump renders the sequence as export rows: seconds with two decimals,
// the color as rgb(r, g, b) and the scheme active at capture time.
func (s Sequence) Dump() []DumpRow {
	out := make([]DumpRow, 0, len(s))
	for _, smp := range s {
		out = append(out, DumpRow{
			Time:   fmt.Sprintf("%.2fs", float64(smp.TimestampMs)/1000.0),
			Color:  smp.Color.String(),
			Scheme: smp.Scheme,
		})
	}
	return out
}

// MarshalDump encodes Dump() as indented JSON.
func (s Sequence) MarshalDump() ([]byte, error) {
	return json.MarshalIndent(s.Dump(), "", "  ")
}

// ParseDump reads an exported dump back into a sequence. Timestamps only
// keep the 10ms resolution of the export.
func ParseDump(data []byte) (Sequence, error) {
	var rows []DumpRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	seq := make(Sequence, 0, len(rows))
	var last int64
	for i, r := range rows {
		secs, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(r.Time), "s"), 64)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("dump row %d: bad time %q", i, r.Time)
		}
		c, err := palette.ParseRGB(r.Color)
		if err != nil {
			return nil, fmt.Errorf("dump row %d: %w", i, err)
		}
		ts := int64(math.Round(secs * 1000))
		if ts < last {
			return nil, fmt.Errorf("dump row %d: time %q goes backwards", i, r.Time)
		}
		last = ts
		seq = append(seq, Sample{TimestampMs: ts, Color: c, Scheme: r.Scheme})
	}
	return seq, nil
}
