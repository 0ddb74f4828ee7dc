package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualFiresInOrder(t *testing.T) {
	start := time.Unix(1000, 0)
	m := NewManual(start)

	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, start.Add(25*time.Millisecond), m.Now())
	assert.Equal(t, 1, m.Pending())

	m.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestManualRescheduleDuringAdvance(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		m.AfterFunc(10*time.Millisecond, tick)
	}
	m.AfterFunc(10*time.Millisecond, tick)

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, 10, ticks)
	assert.Equal(t, 1, m.Pending())
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	m.Advance(time.Second)
	assert.False(t, fired)
}

func TestManualCallbackSeesDeadline(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)
	var at time.Time
	m.AfterFunc(40*time.Millisecond, func() { at = m.Now() })
	m.Advance(time.Second)
	assert.Equal(t, start.Add(40*time.Millisecond), at)
}
