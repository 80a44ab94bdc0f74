package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRatio(t *testing.T) {
	// GIVEN
	a := 0.0
	b := 100.0
	c := 50.0

	expected := 0.5

	// WHEN
	result := Ratio(c, a, b)

	// THEN
	assert.Equal(t, expected, result)
}

func TestRatio_Inverted(t *testing.T) {
	// WHEN
	result := Ratio(25, 100, 0)

	// THEN
	assert.Equal(t, 0.75, result)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 0.0, Coerce(-5.0, 0, 100))
	assert.Equal(t, 100.0, Coerce(120.0, 0, 100))
	assert.Equal(t, 42.0, Coerce(42.0, 0, 100))
	assert.Equal(t, 3, Coerce(7, 1, 3))
}

func TestAvg(t *testing.T) {
	assert.Equal(t, 0.0, Avg(nil))
	assert.Equal(t, 21.5, Avg([]float64{21, 22}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 21.35, Round(21.3456, 2))
	assert.Equal(t, 21.0, Round(20.96, 0))
}
