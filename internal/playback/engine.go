package playback

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-ledpaint/internal/clock"
	"github.com/coreman2200/funtimes-ledpaint/internal/ledbank"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/recording"
)

var ErrEmptySequence = errors.New("sequence is empty")

const (
	DefaultSpeed        = 1.0
	MinSpeed            = 0.25
	MaxSpeed            = 2.0
	SpeedStep           = 0.25
	DefaultPollInterval = 10 * time.Millisecond
)

// RunState enumerates playback run states.
type RunState string

const (
	Running  RunState = "running"
	Stopped  RunState = "stopped"
	Finished RunState = "finished"
)

// Hooks are optional notifications from the tick loop. They run after the
// engine lock is released and must not block.
type Hooks struct {
	// OnFrame fires after a sample was written to the bank.
	OnFrame func(index int, c palette.Color)
	// OnDone fires once when the last sample has been written.
	OnDone func(r *Run)
	// OnLag reports how late a written sample was relative to its target.
	OnLag func(d time.Duration)
}

// Engine replays recorded sequences onto an LED bank. At most one run is
// active; starting a new one stops the previous.
type Engine struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	hooks    Hooks
	run      *Run
}

func NewEngine(clk clock.Clock, interval time.Duration, hooks Hooks) *Engine {
	if clk == nil {
		clk = clock.System()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Engine{clock: clk, interval: interval, hooks: hooks}
}

// Run is one playback of a sequence.
type Run struct {
	seq   recording.Sequence
	speed float64
	bank  *ledbank.Bank
	start time.Time

	// guarded by Engine.mu
	cursor int
	state  RunState
	timer  clock.Timer
	done   chan struct{}
}

func (r *Run) Speed() float64 { return r.speed }

func (r *Run) Len() int { return len(r.seq) }

// Done is closed when the run finishes or is stopped.
func (r *Run) Done() <-chan struct{} { return r.done }

// Play starts replaying seq at the given speed multiplier. The first tick
// runs before Play returns, so a sample at t=0 is written immediately.
func (e *Engine) Play(seq recording.Sequence, speed float64, bank *ledbank.Bank) (*Run, error) {
	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}
	r := &Run{
		seq:   seq.Clone(),
		speed: ClampSpeed(speed),
		bank:  bank,
		state: Running,
		done:  make(chan struct{}),
	}

	e.mu.Lock()
	e.stopLocked()
	r.start = e.clock.Now()
	e.run = r
	e.mu.Unlock()

	e.tick(r)
	return r, nil
}

// Stop cancels the active run, if any. Once Stop returns no further tick of
// that run can touch the bank. LEDs keep their last written colors.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() bool {
	r := e.run
	if r == nil || r.state != Running {
		return false
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.state = Stopped
	close(r.done)
	e.run = nil
	return true
}

// Playing reports whether a run is in progress.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run != nil && e.run.state == Running
}

// Current returns the active run, or nil.
func (e *Engine) Current() *Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run
}

// State and Cursor read run progress under the engine lock.
func (e *Engine) State(r *Run) RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.state
}

func (e *Engine) Cursor(r *Run) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.cursor
}

// tick writes at most one sample, then reschedules itself unless the run
// has ended.
func (e *Engine) tick(r *Run) {
	var (
		wrote    bool
		finished bool
		index    int
		c        palette.Color
		lag      time.Duration
	)

	e.mu.Lock()
	if r.state != Running || e.run != r {
		e.mu.Unlock()
		return
	}
	r.timer = nil

	elapsed := e.clock.Now().Sub(r.start)
	smp := r.seq[r.cursor]
	target := time.Duration(float64(smp.TimestampMs) / r.speed * float64(time.Millisecond))
	if elapsed >= target {
		if r.bank != nil {
			r.bank.Fill(smp.Color)
		}
		wrote, index, c, lag = true, r.cursor, smp.Color, elapsed-target
		r.cursor++
		if r.cursor >= len(r.seq) {
			r.state = Finished
			close(r.done)
			e.run = nil
			finished = true
		}
	}
	if !finished {
		r.timer = e.clock.AfterFunc(e.interval, func() { e.tick(r) })
	}
	e.mu.Unlock()

	if wrote {
		if e.hooks.OnLag != nil {
			e.hooks.OnLag(lag)
		}
		if e.hooks.OnFrame != nil {
			e.hooks.OnFrame(index, c)
		}
	}
	if finished && e.hooks.OnDone != nil {
		e.hooks.OnDone(r)
	}
}

// ClampSpeed limits v to the speed slider range and snaps it to its step.
func ClampSpeed(v float64) float64 {
	if math.IsNaN(v) || v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return math.Round(v/SpeedStep) * SpeedStep
}
