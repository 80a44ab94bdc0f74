package setpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/markusressel/growctl/internal/store"
)

// Status is the derived telemetry of a single control cycle
type Status struct {
	ControlTemperature float64 `json:"controlTemperature"`
	ControlHumidity    float64 `json:"controlHumidity"`
	DesiredTempMin     float64 `json:"desiredTempMin"`
	DesiredTempMax     float64 `json:"desiredTempMax"`
	DesiredHumidityMin float64 `json:"desiredHumidityMin"`
	DesiredHumidityMax float64 `json:"desiredHumidityMax"`
	TemperatureMaxMax  float64 `json:"temperatureMaxMax"`
	HumidityMaxMax     float64 `json:"humidityMaxMax"`
	LightPhase         Phase   `json:"lightPhase"`
}

func ComputeStatus(phase Phase, profile Profile, controlTemperature, controlHumidity float64) Status {
	return Status{
		ControlTemperature: controlTemperature,
		ControlHumidity:    controlHumidity,
		DesiredTempMin:     profile.DesiredTemperature - profile.TemperatureHysteresis,
		DesiredTempMax:     profile.DesiredTemperature + profile.TemperatureHysteresis,
		DesiredHumidityMin: profile.DesiredHumidity - profile.HumidityHysteresis,
		DesiredHumidityMax: profile.DesiredHumidity + profile.HumidityHysteresis,
		TemperatureMaxMax:  profile.MaxTemperature,
		HumidityMaxMax:     profile.MaxHumidity,
		LightPhase:         phase,
	}
}

// Values returns the status values by name
func (s Status) Values() map[string]float64 {
	return map[string]float64{
		"ControlTemperature": s.ControlTemperature,
		"ControlHumidity":    s.ControlHumidity,
		"DesiredTempMin":     s.DesiredTempMin,
		"DesiredTempMax":     s.DesiredTempMax,
		"DesiredHumidityMin": s.DesiredHumidityMin,
		"DesiredHumidityMax": s.DesiredHumidityMax,
		"TemperatureMaxMax":  s.TemperatureMaxMax,
		"HumidityMaxMax":     s.HumidityMaxMax,
		"LightPhase":         float64(s.LightPhase),
	}
}

// WriteStatus mirrors all status values to <namespace>.Status.<Name>
func WriteStatus(ctx context.Context, s store.Store, namespace string, status Status) error {
	var writeErrors []error
	for name, value := range status.Values() {
		err := s.Write(ctx, fmt.Sprintf("%s.Status.%s", namespace, name), value)
		if err != nil {
			writeErrors = append(writeErrors, fmt.Errorf("status %s: %w", name, err))
		}
	}
	return errors.Join(writeErrors...)
}
