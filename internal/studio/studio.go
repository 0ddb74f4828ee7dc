// Package studio owns the recorder state: the scheme table, the LED bank,
// the recording session and the playback engine. Every user action goes
// through a Studio, which serializes them the way a UI event loop would.
package studio

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/clock"
	"github.com/coreman2200/funtimes-ledpaint/internal/ledbank"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/playback"
	"github.com/coreman2200/funtimes-ledpaint/internal/recording"
	"github.com/coreman2200/funtimes-ledpaint/internal/surface"
)

var ErrPlaying = errors.New("not allowed during playback")

// Mode is the externally visible state of the studio.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeRecording Mode = "recording"
	ModePlaying   Mode = "playing"
)

// Event kinds reported through Options.OnEvent.
const (
	EventRecordingStarted = "RECORDING.STARTED"
	EventRecordingStopped = "RECORDING.STOPPED"
	EventPlaybackStarted  = "PLAYBACK.STARTED"
	EventPlaybackStopped  = "PLAYBACK.STOPPED"
	EventPlaybackFinished = "PLAYBACK.FINISHED"
	EventPlaybackEmpty    = "PLAYBACK.EMPTY"
	EventSchemeChanged    = "SCHEME.CHANGED"
)

type Event struct {
	Kind   string
	Fields map[string]any
}

type Options struct {
	Table        *palette.Table
	LEDs         int
	Clock        clock.Clock
	Scheme       string
	Threshold    float64
	TimeGate     time.Duration
	Speed        float64
	PollInterval time.Duration

	// OnEvent receives lifecycle events. It may run on the playback tick
	// goroutine and must not call back into the Studio.
	OnEvent func(Event)
}

type Studio struct {
	mu      sync.Mutex
	table   *palette.Table
	bank    *ledbank.Bank
	session *recording.Session
	engine  *playback.Engine
	speed   float64

	version atomic.Uint64
	onEvent func(Event)
	Metrics *Metrics
}

func New(opt Options) *Studio {
	if opt.Table == nil {
		opt.Table = palette.DefaultTable()
	}
	if opt.Clock == nil {
		opt.Clock = clock.System()
	}
	if opt.Speed == 0 {
		opt.Speed = playback.DefaultSpeed
	}
	s := &Studio{
		table:   opt.Table,
		bank:    ledbank.New(opt.LEDs),
		speed:   playback.ClampSpeed(opt.Speed),
		onEvent: opt.OnEvent,
		Metrics: newMetrics(),
	}
	s.session = recording.NewSession(opt.Table, recording.Options{
		Clock:     opt.Clock,
		Scheme:    opt.Scheme,
		Threshold: opt.Threshold,
		TimeGate:  opt.TimeGate,
	})
	s.engine = playback.NewEngine(opt.Clock, opt.PollInterval, playback.Hooks{
		OnFrame: func(int, palette.Color) {
			s.Metrics.Frames.Inc(1)
			s.changed()
		},
		OnDone: func(r *playback.Run) {
			log.Info().Int("frames", r.Len()).Msg("playback complete")
			s.changed()
			s.emit(Event{Kind: EventPlaybackFinished, Fields: map[string]any{"frames": r.Len()}})
		},
		OnLag: s.Metrics.observeLag,
	})
	return s
}

// Version increases on every visible change. Renderers poll it.
func (s *Studio) Version() uint64 { return s.version.Load() }

func (s *Studio) changed() { s.version.Add(1) }

func (s *Studio) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func (s *Studio) Bank() *ledbank.Bank { return s.bank }

func (s *Studio) Table() *palette.Table { return s.table }

// PointerMove normalizes client coordinates against the field rect and
// forwards them to Move.
func (s *Studio) PointerMove(clientX, clientY float64, rect surface.Rect) (recording.Sample, bool) {
	return s.Move(rect.Normalize(clientX, clientY))
}

// Move updates the position readout and, while recording, may capture a
// sample and show it on the active LEDs.
func (s *Studio) Move(pos surface.Position) (recording.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.changed()

	smp, ok := s.session.Move(pos)
	if ok {
		s.bank.Fill(smp.Color)
		s.Metrics.Samples.Inc(1)
	}
	return smp, ok
}

// KeyDown switches scheme by digit key. Keys are ignored unless recording.
func (s *Studio) KeyDown(key string) bool {
	s.mu.Lock()
	if !s.session.Recording() {
		s.mu.Unlock()
		return false
	}
	name, ok := surface.SchemeForKey(key)
	if ok {
		ok = s.session.SetScheme(name)
	}
	s.mu.Unlock()

	if ok {
		s.changed()
		s.emit(Event{Kind: EventSchemeChanged, Fields: map[string]any{"scheme": name, "key": key}})
	}
	return ok
}

// SetScheme is the picker path: it works in any state.
func (s *Studio) SetScheme(name string) bool {
	s.mu.Lock()
	ok := s.session.SetScheme(name)
	s.mu.Unlock()

	if ok {
		s.changed()
		s.emit(Event{Kind: EventSchemeChanged, Fields: map[string]any{"scheme": name}})
	}
	return ok
}

// StartRecording stops any playback and begins a fresh sequence.
func (s *Studio) StartRecording() {
	s.mu.Lock()
	stopped := s.engine.Stop()
	s.session.Start()
	id, scheme := s.session.ID(), s.session.Scheme()
	s.mu.Unlock()

	s.Metrics.Recordings.Inc(1)
	s.changed()
	if stopped {
		s.emit(Event{Kind: EventPlaybackStopped})
	}
	log.Info().Str("session", id).Str("scheme", scheme).Msg("recording started")
	s.emit(Event{Kind: EventRecordingStarted, Fields: map[string]any{"session": id}})
}

func (s *Studio) StopRecording() {
	s.mu.Lock()
	was := s.session.Recording()
	s.session.Stop()
	n, id := s.session.Len(), s.session.ID()
	s.mu.Unlock()

	if !was {
		return
	}
	s.changed()
	log.Info().Str("session", id).Int("frames", n).Msg("recording stopped")
	s.emit(Event{Kind: EventRecordingStopped, Fields: map[string]any{"session": id, "frames": n}})
}

// Play replays the recorded sequence at the current speed. An empty
// sequence is a no-op and reports false.
func (s *Studio) Play() bool {
	s.mu.Lock()
	seq := s.session.Sequence()
	if len(seq) == 0 {
		s.mu.Unlock()
		log.Info().Msg("no recording to play")
		s.emit(Event{Kind: EventPlaybackEmpty})
		return false
	}
	wasRecording := s.session.Recording()
	s.session.Stop()
	speed := s.speed
	if wasRecording {
		s.emit(Event{Kind: EventRecordingStopped, Fields: map[string]any{"frames": len(seq)}})
	}
	log.Info().Int("frames", len(seq)).Float64("speed", speed).Msg("playback started")
	s.emit(Event{Kind: EventPlaybackStarted, Fields: map[string]any{"frames": len(seq), "speed": speed}})

	// The first tick runs inside engine.Play and may fire OnDone, so the
	// started events go out first. Hooks never take s.mu.
	_, err := s.engine.Play(seq, speed, s.bank)
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("playback")
		return false
	}
	s.Metrics.Playbacks.Inc(1)
	s.changed()
	return true
}

// StopPlayback cancels playback. LEDs keep their last colors.
func (s *Studio) StopPlayback() bool {
	if !s.engine.Stop() {
		return false
	}
	s.changed()
	s.emit(Event{Kind: EventPlaybackStopped})
	return true
}

func (s *Studio) ToggleLED(i int) error {
	if err := s.bank.Toggle(i); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *Studio) Select(sel ledbank.Selection) error {
	if err := s.bank.Select(sel); err != nil {
		return err
	}
	s.changed()
	return nil
}

// SetSpeed sets the multiplier for the next playback. The running one keeps
// its speed, so changes are refused while playing.
func (s *Studio) SetSpeed(v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.Playing() {
		return s.speed, ErrPlaying
	}
	s.speed = playback.ClampSpeed(v)
	s.changed()
	return s.speed, nil
}

func (s *Studio) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func (s *Studio) SetThreshold(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed()
	return s.session.SetThreshold(v)
}

func (s *Studio) Scheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Scheme()
}

func (s *Studio) Threshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Threshold()
}

// Sequence returns a copy of the last recorded sequence.
func (s *Studio) Sequence() recording.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Sequence()
}

func (s *Studio) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

func (s *Studio) modeLocked() Mode {
	switch {
	case s.session.Recording():
		return ModeRecording
	case s.engine.Playing():
		return ModePlaying
	}
	return ModeIdle
}

// Snapshot is everything a client needs to draw the recorder.
type Snapshot struct {
	Version   uint64           `json:"version"`
	LEDs      []palette.Color  `json:"leds"`
	Mask      ledbank.Mask     `json:"mask"`
	State     Mode             `json:"state"`
	Scheme    string           `json:"scheme"`
	Schemes   []string         `json:"schemes"`
	Position  surface.Position `json:"position"`
	Speed     float64          `json:"speed"`
	Threshold float64          `json:"threshold"`
	Samples   int              `json:"samples"`
	Duration  float64          `json:"duration_s"`
	SessionID string           `json:"session_id,omitempty"`
}

func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.session.Sequence()
	return Snapshot{
		Version:   s.version.Load(),
		LEDs:      s.bank.Colors(),
		Mask:      s.bank.Mask(),
		State:     s.modeLocked(),
		Scheme:    s.session.Scheme(),
		Schemes:   s.table.Names(),
		Position:  s.session.Position(),
		Speed:     s.speed,
		Threshold: s.session.Threshold(),
		Samples:   len(seq),
		Duration:  math.Round(float64(seq.DurationMs())/100) / 10,
		SessionID: s.session.ID(),
	}
}
