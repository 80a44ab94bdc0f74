package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestNewPidLoop(t *testing.T) {
	// GIVEN
	p, i, d := 1.0, 2.0, 3.0

	// WHEN
	pidLoop := NewPidLoop(p, i, d, 0, 100)

	// THEN
	assert.Equal(t, p, pidLoop.p)
	assert.Equal(t, i, pidLoop.i)
	assert.Equal(t, d, pidLoop.d)
}

func TestPidLoop_FirstLoopIsProportionalOnly(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(2, 100, 0, 0, 100)

	// WHEN
	output := pidLoop.LoopAt(25, 20, time.Unix(1000, 0))

	// THEN
	assert.Equal(t, 10.0, output)
	assert.Equal(t, 0.0, pidLoop.Integral())
}

func TestPidLoop_ProportionalAndIntegral(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(2, 0.5, 0, 0, 100)
	pidLoop.Start(start)

	// WHEN
	output := pidLoop.LoopAt(25, 20, start.Add(10*time.Second))

	// THEN
	// p: 2 * 5 = 10, i: 0.5 * (5 * 10s) = 25
	assert.Equal(t, 35.0, output)
	assert.Equal(t, 50.0, pidLoop.Integral())
}

func TestPidLoop_Clamped(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(50, 0, 0, 0, 100)
	pidLoop.Start(start)

	// WHEN
	high := pidLoop.LoopAt(25, 20, start.Add(time.Second))
	low := pidLoop.LoopAt(20, 25, start.Add(2*time.Second))

	// THEN
	assert.Equal(t, 100.0, high)
	assert.Equal(t, 0.0, low)
}

func TestPidLoop_NoTimePassed(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(1, 1, 0, 0, 100)
	pidLoop.Start(start)
	first := pidLoop.LoopAt(25, 20, start.Add(time.Second))

	// WHEN
	second := pidLoop.LoopAt(30, 10, start.Add(time.Second))

	// THEN
	assert.Equal(t, first, second)
}

func TestPidLoop_SetGains(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(1, 0, 0, 0, 100)
	pidLoop.Start(start)

	// WHEN
	pidLoop.SetGains(3, 0, 0)
	output := pidLoop.LoopAt(25, 20, start.Add(time.Second))

	// THEN
	assert.Equal(t, 15.0, output)
}

func TestPidLoop_AntiWindup(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(0, 0.1, 0, 0, 100)
	pidLoop.Start(start)

	// WHEN
	pidLoop.LoopAt(25, 20, start.Add(300*time.Second))
	pidLoop.LoopAt(25, 20, start.Add(600*time.Second))
	output := pidLoop.LoopAt(20, 25, start.Add(1000*time.Second))

	// THEN
	// the second interval is not integrated, output was already saturated
	assert.Equal(t, -500.0, pidLoop.Integral())
	assert.Equal(t, 0.0, output)
}

func TestPidLoop_WithoutAntiWindup(t *testing.T) {
	// GIVEN
	start := time.Unix(1000, 0)
	pidLoop := NewPidLoop(0, 0.1, 0, 0, 100)
	pidLoop.SetAntiWindup(false)
	pidLoop.Start(start)

	// WHEN
	pidLoop.LoopAt(25, 20, start.Add(300*time.Second))
	pidLoop.LoopAt(25, 20, start.Add(600*time.Second))
	output := pidLoop.LoopAt(20, 25, start.Add(1000*time.Second))

	// THEN
	// 5 * 300 + 5 * 300 - 5 * 400
	assert.Equal(t, 1000.0, pidLoop.Integral())
	assert.Equal(t, 100.0, output)
}
