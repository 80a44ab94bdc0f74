package configuration

import (
	"fmt"
	"github.com/mitchellh/mapstructure"
	"reflect"
	"strings"
)

// MeasurementSource selects which sensor pair is used as the control value
type MeasurementSource string

const (
	MeasurementSourceTop    MeasurementSource = "top"
	MeasurementSourceBottom MeasurementSource = "bottom"
	MeasurementSourceMean   MeasurementSource = "mean"
)

var MeasurementSources = []MeasurementSource{MeasurementSourceTop, MeasurementSourceBottom, MeasurementSourceMean}

// HeatingMode selects the heating strategy
type HeatingMode string

const (
	HeatingModeHysteresis HeatingMode = "hysteresis"
	HeatingModePwm        HeatingMode = "pwm"
)

var HeatingModes = []HeatingMode{HeatingModeHysteresis, HeatingModePwm}

func ParseMeasurementSource(value string) (MeasurementSource, error) {
	for _, source := range MeasurementSources {
		if strings.EqualFold(string(source), strings.TrimSpace(value)) {
			return source, nil
		}
	}
	return "", fmt.Errorf("unsupported measurement source '%s', use one of: top | bottom | mean", value)
}

func ParseHeatingMode(value string) (HeatingMode, error) {
	for _, mode := range HeatingModes {
		if strings.EqualFold(string(mode), strings.TrimSpace(value)) {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unsupported heating mode '%s', use one of: hysteresis | pwm", value)
}

// MeasurementSourceHookFunc returns a mapstructure decode hook that parses
// (case-insensitive) measurement source names.
func MeasurementSourceHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(MeasurementSource("")) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseMeasurementSource(v)
		case MeasurementSource:
			return ParseMeasurementSource(string(v))
		}
		return data, nil
	}
}

// HeatingModeHookFunc returns a mapstructure decode hook that parses
// (case-insensitive) heating mode names.
func HeatingModeHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(HeatingMode("")) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseHeatingMode(v)
		case HeatingMode:
			return ParseHeatingMode(string(v))
		}
		return data, nil
	}
}
