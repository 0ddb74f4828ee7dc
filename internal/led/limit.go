package led

import (
	"math"
	"sync"
)

// Limiter keeps hardware frames inside the supply budget. Stages, in order:
//  1. Brightness scales every channel (0 or >= 1 leaves it alone).
//  2. White cap scales each LED so r+g+b <= WhiteCap*3*255.
//  3. Budget estimates strip current from ChanMA and softly compresses the
//     frame once it passes Knee*BudgetMA, never exceeding BudgetMA.
type Limiter struct {
	Brightness float64
	WhiteCap   float64
	ChanMA     float64
	BudgetMA   float64
	Knee       float64
}

func (l Limiter) Apply(rgb []byte) {
	if l.Brightness > 0 && l.Brightness < 1 {
		scaleAll(rgb, l.Brightness)
	}
	if l.WhiteCap > 0 && l.WhiteCap < 1 {
		applyWhiteCap(rgb, l.WhiteCap)
	}
	if l.BudgetMA <= 0 {
		return
	}

	chanMA := l.ChanMA
	if chanMA <= 0 {
		chanMA = 20
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}

	total := EstimateMA(rgb, chanMA)
	kb := knee * l.BudgetMA
	if total <= kb {
		return
	}
	excess := total - kb
	room := l.BudgetMA - kb
	out := kb + room*excess/(excess+room)
	scaleAll(rgb, out/total)
}

// EstimateMA returns the current drawn by a frame given the per-channel
// full-scale current.
func EstimateMA(rgb []byte, chanMA float64) float64 {
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255 * chanMA
}

// applyWhiteCap clamps per-LED RGB so r+g+b <= whiteCap*3*255
func applyWhiteCap(rgb []byte, whiteCap float64) {
	limit := whiteCap * 3.0 * 255.0
	for i := 0; i+2 < len(rgb); i += 3 {
		s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
		if s > limit && s > 0 {
			k := limit / s
			rgb[i] = byte(math.Round(float64(rgb[i]) * k))
			rgb[i+1] = byte(math.Round(float64(rgb[i+1]) * k))
			rgb[i+2] = byte(math.Round(float64(rgb[i+2]) * k))
		}
	}
}

func scaleAll(rgb []byte, k float64) {
	if k >= 1 {
		return
	}
	for i, v := range rgb {
		rgb[i] = byte(math.Floor(float64(v) * k))
	}
}

// Limited wraps a driver so every frame passes through l first. The
// caller's slice is not modified.
func Limited(d Driver, l Limiter) Driver {
	return &limited{Driver: d, l: l}
}

type limited struct {
	Driver
	l   Limiter
	mu  sync.Mutex
	buf []byte
}

func (d *limited) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = append(d.buf[:0], rgb...)
	d.l.Apply(d.buf)
	return d.Driver.Write(d.buf)
}
