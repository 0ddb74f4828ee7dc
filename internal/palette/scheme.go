package palette

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var ErrEmptyScheme = errors.New("scheme has no stops")

// Scheme is an ordered list of color stops spread evenly across [0,1].
type Scheme struct {
	Name  string  `json:"name"`
	Stops []Color `json:"stops"`
}

// Built-in scheme names, in picker order.
const (
	Rainbow      = "rainbow"
	RedBlue      = "redBlue"
	GreenYellow  = "greenYellow"
	PurpleOrange = "purpleOrange"
	Sunset       = "sunset"
	Ocean        = "ocean"
	Monochrome   = "monochrome"
)

func builtin() []Scheme {
	return []Scheme{
		{Rainbow, []Color{
			{255, 0, 0}, {255, 165, 0}, {255, 255, 0}, {0, 255, 0},
			{0, 255, 255}, {0, 0, 255}, {128, 0, 128}, {255, 0, 255},
		}},
		{RedBlue, []Color{
			{255, 0, 0}, {255, 100, 100}, {255, 150, 150},
			{200, 200, 255}, {100, 100, 255}, {0, 0, 255},
		}},
		{GreenYellow, []Color{
			{0, 100, 0}, {0, 150, 0}, {0, 255, 0},
			{150, 255, 0}, {255, 255, 0}, {255, 200, 0},
		}},
		{PurpleOrange, []Color{
			{75, 0, 130}, {128, 0, 128}, {200, 0, 200},
			{255, 100, 200}, {255, 120, 0}, {255, 165, 0},
		}},
		{Sunset, []Color{
			{0, 0, 100}, {75, 0, 130}, {150, 0, 75},
			{200, 0, 0}, {255, 75, 0}, {255, 150, 0},
		}},
		{Ocean, []Color{
			{0, 0, 100}, {0, 50, 150}, {0, 100, 200},
			{0, 150, 220}, {0, 200, 230}, {0, 255, 255},
		}},
		{Monochrome, []Color{
			{0, 0, 0}, {50, 50, 50}, {100, 100, 100},
			{150, 150, 150}, {200, 200, 200}, {255, 255, 255},
		}},
	}
}

// Table maps scheme names to stops. Lookups are safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	m     map[string]Scheme
	order []string
}

func NewTable() *Table { return &Table{m: map[string]Scheme{}} }

// DefaultTable returns a table holding the seven built-in schemes.
func DefaultTable() *Table {
	t := NewTable()
	for _, s := range builtin() {
		_ = t.Register(s)
	}
	return t
}

// Register adds or replaces a scheme. Replacing keeps the original position.
func (t *Table) Register(s Scheme) error {
	if s.Name == "" {
		return errors.New("scheme name is empty")
	}
	if len(s.Stops) == 0 {
		return fmt.Errorf("%s: %w", s.Name, ErrEmptyScheme)
	}
	stops := make([]Color, len(s.Stops))
	copy(stops, s.Stops)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[s.Name]; !ok {
		t.order = append(t.order, s.Name)
	}
	t.m[s.Name] = Scheme{Name: s.Name, Stops: stops}
	return nil
}

// RegisterHex registers a scheme given as hex strings.
func (t *Table) RegisterHex(name string, hexStops []string) error {
	stops := make([]Color, 0, len(hexStops))
	for _, h := range hexStops {
		c, err := ParseHex(h)
		if err != nil {
			return fmt.Errorf("scheme %s: %w", name, err)
		}
		stops = append(stops, c)
	}
	return t.Register(Scheme{Name: name, Stops: stops})
}

func (t *Table) Lookup(name string) (Scheme, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.m[name]
	return s, ok
}

func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Names lists schemes in registration order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Sample returns the color at normalized position (x, y) of the named scheme.
// x walks the stops; y darkens from full brightness (0) to black (1).
// Unknown or empty schemes yield black.
func (t *Table) Sample(name string, x, y float64) Color {
	s, ok := t.Lookup(name)
	if !ok {
		return Black
	}
	return s.Sample(x, y)
}

// Sample interpolates linearly in RGB between the two stops around x.
func (s Scheme) Sample(x, y float64) Color {
	n := len(s.Stops)
	if n == 0 {
		return Black
	}
	x, y = clamp01(x), clamp01(y)

	idx := x * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Min(math.Ceil(idx), float64(n-1)))
	frac := idx - float64(lo)

	var base Color
	if lo == hi || lo < 0 || hi >= n {
		base = s.Stops[clampIndex(lo, n)]
	} else {
		a, b := s.Stops[lo], s.Stops[hi]
		base = Color{
			R: lerp(a.R, b.R, frac),
			G: lerp(a.G, b.G, frac),
			B: lerp(a.B, b.B, frac),
		}
	}

	k := 1 - y
	return Color{
		R: scale(base.R, k),
		G: scale(base.G, k),
		B: scale(base.B, k),
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return clamp255(math.Round(float64(a) + f*(float64(b)-float64(a))))
}

func scale(c uint8, k float64) uint8 {
	return clamp255(math.Round(float64(c) * k))
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
