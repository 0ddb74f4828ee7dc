package ledbank

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
)

const DefaultCount = 8

var (
	ErrMaskLength = errors.New("mask length does not match bank")
	ErrIndexRange = errors.New("led index out of range")
)

// Bank holds the current color of each LED and the active mask.
// Its size is fixed at construction.
type Bank struct {
	mu     sync.RWMutex
	colors []palette.Color
	mask   Mask
}

// New creates n black LEDs, all active. n <= 0 falls back to DefaultCount.
func New(n int) *Bank {
	if n <= 0 {
		n = DefaultCount
	}
	return &Bank{
		colors: make([]palette.Color, n),
		mask:   NewMask(n, true),
	}
}

func (b *Bank) Len() int { return len(b.colors) }

// Fill writes c into every active LED and reports how many were written.
func (b *Bank) Fill(c palette.Color) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i, on := range b.mask {
		if on {
			b.colors[i] = c
			n++
		}
	}
	return n
}

// Colors returns a copy of the current LED colors.
func (b *Bank) Colors() []palette.Color {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]palette.Color, len(b.colors))
	copy(out, b.colors)
	return out
}

func (b *Bank) Mask() Mask {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mask.Clone()
}

func (b *Bank) SetMask(m Mask) error {
	if len(m) != len(b.colors) {
		return fmt.Errorf("%w: got %d, want %d", ErrMaskLength, len(m), len(b.colors))
	}
	b.mu.Lock()
	b.mask = m.Clone()
	b.mu.Unlock()
	return nil
}

func (b *Bank) Select(sel Selection) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := sel.Apply(b.mask)
	if err != nil {
		return err
	}
	b.mask = m
	return nil
}

func (b *Bank) Toggle(i int) error {
	if i < 0 || i >= len(b.colors) {
		return fmt.Errorf("%w: %d", ErrIndexRange, i)
	}
	b.mu.Lock()
	b.mask = b.mask.Toggle(i)
	b.mu.Unlock()
	return nil
}

// RGB packs the colors as r,g,b bytes, 3 per LED, for output drivers.
func (b *Bank) RGB() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, len(b.colors)*3)
	for i, c := range b.colors {
		out[i*3+0] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}
