package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestScaler_Scale(t *testing.T) {
	// GIVEN
	s := NewScaler(0, 255)

	// THEN
	assert.Equal(t, 0.0, s.Scale(0))
	assert.Equal(t, 100.0, s.Scale(255))
	assert.InDelta(t, 50.0, s.Scale(127.5), 0.0001)
}

func TestScaler_Scale_Clamped(t *testing.T) {
	// GIVEN
	s := NewScaler(200, 800)

	// THEN
	assert.Equal(t, 0.0, s.Scale(100))
	assert.Equal(t, 100.0, s.Scale(1000))
}

func TestScaler_Inverted(t *testing.T) {
	// GIVEN
	// capacitive soil sensors report lower values when wet
	s := NewScaler(800, 300)

	// THEN
	assert.True(t, s.IsInverted())
	assert.Equal(t, 0.0, s.Scale(800))
	assert.Equal(t, 100.0, s.Scale(300))
	assert.Equal(t, 100.0, s.Scale(100))
	assert.Equal(t, 0.0, s.Scale(900))
	assert.Equal(t, 40.0, s.Scale(600))
	assert.True(t, s.Scale(400) > s.Scale(500))

	assert.Equal(t, 800.0, s.Unscale(0))
	assert.Equal(t, 300.0, s.Unscale(100))
	assert.Equal(t, 300.0, s.Unscale(150))
	assert.Equal(t, 800.0, s.Unscale(-10))
}

func TestScaler_Degenerate(t *testing.T) {
	// GIVEN
	s := NewScaler(500, 500)

	// THEN
	assert.True(t, s.IsDegenerate())
	assert.Equal(t, ScaleError, s.Scale(500))
	assert.Equal(t, ScaleError, s.Scale(0))
	assert.Equal(t, ScaleError, s.Unscale(50))
	assert.Equal(t, -99.0, s.Unscale(0))
}

func TestScaler_Unscale_Clamped(t *testing.T) {
	// GIVEN
	s := NewScaler(0, 255)

	// THEN
	assert.Equal(t, 0.0, s.Unscale(-20))
	assert.Equal(t, 255.0, s.Unscale(120))
}

func TestScaler_RoundTrip(t *testing.T) {
	ranges := []Scaler{
		NewScaler(0, 255),
		NewScaler(-40, 85),
		NewScaler(300, 812.5),
		NewScaler(0.1, 0.2),
	}

	for _, s := range ranges {
		for i := 0; i <= 100; i++ {
			// GIVEN
			raw := s.Min + (s.Max-s.Min)*float64(i)/100

			// WHEN
			result := s.Unscale(s.Scale(raw))

			// THEN
			assert.InDelta(t, raw, result, 1e-9)
		}
	}
}
