package led

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Sim keeps the last frame in memory and logs a compact summary of each one
// (first LED and average), useful for headless runs.
type Sim struct {
	mu    sync.Mutex
	count int
	last  []byte
	n     int
}

func NewSim(count int) *Sim { return &Sim{count: count} }

func (d *Sim) Write(rgb []byte) error {
	if err := checkLen(rgb, d.count); err != nil {
		return err
	}
	d.mu.Lock()
	d.n++
	d.last = append(d.last[:0], rgb...)
	n := d.n
	d.mu.Unlock()

	var r, g, b float64
	for i := 0; i+2 < len(rgb); i += 3 {
		r += float64(rgb[i])
		g += float64(rgb[i+1])
		b += float64(rgb[i+2])
	}
	k := float64(max(1, d.count))
	ev := log.Debug().Int("frame", n).Floats64("avg", []float64{r / k, g / k, b / k})
	if len(rgb) >= 3 {
		ev = ev.Uints8("first", rgb[:3])
	}
	ev.Msg("sim frame")
	return nil
}

// Last returns a copy of the most recent frame and the number of frames seen.
func (d *Sim) Last() ([]byte, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.last...), d.n
}

func (d *Sim) Close() error { return nil }
