package studio

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Metrics counts studio activity. Each studio gets its own registry.
type Metrics struct {
	Registry metrics.Registry

	Samples     metrics.Counter
	Recordings  metrics.Counter
	Playbacks   metrics.Counter
	Frames      metrics.Counter
	PlaybackLag metrics.Histogram
}

func newMetrics() *Metrics {
	r := metrics.NewRegistry()
	return &Metrics{
		Registry:    r,
		Samples:     metrics.GetOrRegisterCounter("recording.samples", r),
		Recordings:  metrics.GetOrRegisterCounter("recording.sessions", r),
		Playbacks:   metrics.GetOrRegisterCounter("playback.runs", r),
		Frames:      metrics.GetOrRegisterCounter("playback.frames", r),
		PlaybackLag: metrics.GetOrRegisterHistogram("playback.lag_us", r, metrics.NewExpDecaySample(1028, 0.015)),
	}
}

func (m *Metrics) observeLag(d time.Duration) {
	m.PlaybackLag.Update(d.Microseconds())
}

// Snapshot flattens the registry for status endpoints.
func (m *Metrics) Snapshot() map[string]any {
	out := map[string]any{}
	m.Registry.Each(func(name string, i interface{}) {
		switch v := i.(type) {
		case metrics.Counter:
			out[name] = v.Count()
		case metrics.Histogram:
			h := v.Snapshot()
			out[name] = map[string]any{
				"count": h.Count(),
				"mean":  h.Mean(),
				"p95":   h.Percentile(0.95),
				"max":   h.Max(),
			}
		}
	})
	return out
}
