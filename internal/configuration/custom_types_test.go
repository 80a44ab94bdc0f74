package configuration

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMeasurementSource(t *testing.T) {
	for input, expected := range map[string]MeasurementSource{
		"top":     MeasurementSourceTop,
		"Bottom":  MeasurementSourceBottom,
		" MEAN  ": MeasurementSourceMean,
	} {
		// WHEN
		result, err := ParseMeasurementSource(input)

		// THEN
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
	}

	_, err := ParseMeasurementSource("middle")
	assert.EqualError(t, err, "unsupported measurement source 'middle', use one of: top | bottom | mean")
}

func TestMeasurementSourceHookFunc(t *testing.T) {
	// GIVEN
	hook := MeasurementSourceHookFunc()

	// WHEN
	result, err := hook(reflect.TypeOf(""), reflect.TypeOf(MeasurementSource("")), "Top")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, MeasurementSourceTop, result)
}

func TestHeatingModeHookFunc(t *testing.T) {
	// GIVEN
	hook := HeatingModeHookFunc()

	// WHEN
	result, err := hook(reflect.TypeOf(""), reflect.TypeOf(HeatingMode("")), "PWM")
	_, invalidErr := hook(reflect.TypeOf(""), reflect.TypeOf(HeatingMode("")), "bang-bang")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, HeatingModePwm, result)
	assert.Error(t, invalidErr)
}

func TestHookSkipsUnrelatedTypes(t *testing.T) {
	// GIVEN
	hook := MeasurementSourceHookFunc()

	// WHEN
	result, err := hook(reflect.TypeOf(""), reflect.TypeOf(""), "top")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "top", result)
}
