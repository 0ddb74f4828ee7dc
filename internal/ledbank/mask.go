package ledbank

import (
	"errors"
	"fmt"
)

var ErrUnknownSelection = errors.New("unknown selection")

// Mask marks which LEDs receive color writes. Transforms return new masks
// and never modify the receiver.
type Mask []bool

func NewMask(n int, active bool) Mask {
	m := make(Mask, n)
	if active {
		for i := range m {
			m[i] = true
		}
	}
	return m
}

func (m Mask) Clone() Mask {
	out := make(Mask, len(m))
	copy(out, m)
	return out
}

func (m Mask) SelectAll() Mask   { return NewMask(len(m), true) }
func (m Mask) DeselectAll() Mask { return NewMask(len(m), false) }

func (m Mask) Invert() Mask {
	out := make(Mask, len(m))
	for i, v := range m {
		out[i] = !v
	}
	return out
}

func (m Mask) Even() Mask {
	out := make(Mask, len(m))
	for i := 0; i < len(out); i += 2 {
		out[i] = true
	}
	return out
}

func (m Mask) Odd() Mask {
	out := make(Mask, len(m))
	for i := 1; i < len(out); i += 2 {
		out[i] = true
	}
	return out
}

// Toggle flips index i. Out of range indices return an unchanged copy.
func (m Mask) Toggle(i int) Mask {
	out := m.Clone()
	if i >= 0 && i < len(out) {
		out[i] = !out[i]
	}
	return out
}

func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Selection names a bulk mask transform.
type Selection string

const (
	SelectAll    Selection = "all"
	SelectNone   Selection = "none"
	SelectInvert Selection = "invert"
	SelectEven   Selection = "even"
	SelectOdd    Selection = "odd"
)

func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(s); sel {
	case SelectAll, SelectNone, SelectInvert, SelectEven, SelectOdd:
		return sel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSelection, s)
}

// Apply runs the transform named by sel.
func (sel Selection) Apply(m Mask) (Mask, error) {
	switch sel {
	case SelectAll:
		return m.SelectAll(), nil
	case SelectNone:
		return m.DeselectAll(), nil
	case SelectInvert:
		return m.Invert(), nil
	case SelectEven:
		return m.Even(), nil
	case SelectOdd:
		return m.Odd(), nil
	}
	return m.Clone(), fmt.Errorf("%w: %q", ErrUnknownSelection, string(sel))
}
