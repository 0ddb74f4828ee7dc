package recording

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/coreman2200/funtimes-ledpaint/internal/clock"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/surface"
)

// State enumerates session states.
type State string

const (
	Idle      State = "idle"
	Recording State = "recording"
)

const (
	DefaultThreshold = 0.005
	MinThreshold     = 0.001
	MaxThreshold     = 0.05
	ThresholdStep    = 0.001
	DefaultTimeGate  = 100 * time.Millisecond
)

// Options configure a Session. Zero values take the defaults.
type Options struct {
	Clock     clock.Clock
	Scheme    string
	Threshold float64
	TimeGate  time.Duration
}

// Session captures pointer-driven color samples. Samples are taken inline
// from Move, gated by distance and elapsed time; there is no sampling clock.
//
// Session is not safe for concurrent use; its owner serializes calls.
type Session struct {
	State State

	table     *palette.Table
	clock     clock.Clock
	scheme    string
	threshold float64
	timeGate  time.Duration

	id       string
	seq      Sequence
	started  time.Time
	lastAt   time.Time
	lastPos  surface.Position
	position surface.Position
}

func NewSession(table *palette.Table, opt Options) *Session {
	if opt.Clock == nil {
		opt.Clock = clock.System()
	}
	if opt.Scheme == "" || !table.Has(opt.Scheme) {
		opt.Scheme = palette.Rainbow
	}
	if opt.Threshold == 0 {
		opt.Threshold = DefaultThreshold
	}
	if opt.TimeGate <= 0 {
		opt.TimeGate = DefaultTimeGate
	}
	return &Session{
		State:     Idle,
		table:     table,
		clock:     opt.Clock,
		scheme:    opt.Scheme,
		threshold: ClampThreshold(opt.Threshold),
		timeGate:  opt.TimeGate,
	}
}

// Start discards the previous sequence and begins a new one with a black
// bootstrap sample at t=0.
func (s *Session) Start() {
	now := s.clock.Now()
	s.State = Recording
	s.id = uuid.NewString()
	s.started = now
	s.lastAt = now
	s.lastPos = surface.Position{}
	s.seq = Sequence{{TimestampMs: 0, Color: palette.Black, Scheme: s.scheme}}
}

// Stop ends capture. The sequence is kept as recorded.
func (s *Session) Stop() {
	s.State = Idle
}

func (s *Session) Recording() bool { return s.State == Recording }

// Move handles a pointer move. It always updates the position readout; while
// recording it appends a sample when the pointer moved farther than the
// threshold or the time gate elapsed since the last sample.
func (s *Session) Move(pos surface.Position) (Sample, bool) {
	pos = pos.Clamped()
	s.position = pos
	if s.State != Recording {
		return Sample{}, false
	}

	now := s.clock.Now()
	dist := surface.Distance(pos, s.lastPos)
	dt := now.Sub(s.lastAt)
	if !(dist > s.threshold || dt > s.timeGate) {
		return Sample{}, false
	}

	smp := Sample{
		TimestampMs: now.Sub(s.started).Milliseconds(),
		Color:       s.table.Sample(s.scheme, pos.X, pos.Y),
		Scheme:      s.scheme,
	}
	s.seq = append(s.seq, smp)
	s.lastPos = pos
	s.lastAt = now
	return smp, true
}

// SetScheme changes the scheme used by subsequent samples. Unknown names
// are ignored.
func (s *Session) SetScheme(name string) bool {
	if !s.table.Has(name) {
		return false
	}
	s.scheme = name
	return true
}

func (s *Session) Scheme() string { return s.scheme }

func (s *Session) SetThreshold(v float64) float64 {
	s.threshold = ClampThreshold(v)
	return s.threshold
}

func (s *Session) Threshold() float64 { return s.threshold }

func (s *Session) Position() surface.Position { return s.position }

func (s *Session) ID() string { return s.id }

// Sequence returns a copy of the captured samples.
func (s *Session) Sequence() Sequence { return s.seq.Clone() }

func (s *Session) Len() int { return len(s.seq) }

// ClampThreshold limits v to the sensitivity slider range and step.
func ClampThreshold(v float64) float64 {
	if math.IsNaN(v) || v < MinThreshold {
		v = MinThreshold
	}
	if v > MaxThreshold {
		v = MaxThreshold
	}
	steps := math.Round(v / ThresholdStep)
	return math.Round(steps*ThresholdStep*1e6) / 1e6
}
