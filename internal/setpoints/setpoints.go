package setpoints

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/markusressel/growctl/internal/util"
)

var ErrUnknownSetpoint = errors.New("unknown setpoint")

// Phase is the lighting phase, which selects the active Profile
type Phase int

const (
	PhaseOff Phase = iota
	PhaseOn
)

func (p Phase) String() string {
	if p == PhaseOn {
		return "LightOn"
	}
	return "LightOff"
}

func PhaseOf(lightOn bool) Phase {
	if lightOn {
		return PhaseOn
	}
	return PhaseOff
}

// Profile holds all setpoints that depend on the lighting phase
type Profile struct {
	DesiredTemperature       float64 `json:"desiredTemperature"`
	TemperatureHysteresis    float64 `json:"temperatureHysteresis"`
	MaxTemperature           float64 `json:"maxTemperature"`
	DesiredHumidity          float64 `json:"desiredHumidity"`
	HumidityHysteresis       float64 `json:"humidityHysteresis"`
	MaxHumidity              float64 `json:"maxHumidity"`
	FanMinPercent            float64 `json:"fanMinPercent"`
	TemperatureDiffThreshold float64 `json:"temperatureDiffThreshold"`
}

// PwmSetpoints configure the PWM heating strategy
type PwmSetpoints struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	// durations in seconds
	MinOnTime  float64 `json:"minOnTime"`
	MinOffTime float64 `json:"minOffTime"`
	CycleTime  float64 `json:"cycleTime"`
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

func (p PwmSetpoints) MinOn() time.Duration {
	return seconds(p.MinOnTime)
}

func (p PwmSetpoints) MinOff() time.Duration {
	return seconds(p.MinOffTime)
}

func (p PwmSetpoints) Cycle() time.Duration {
	return seconds(p.CycleTime)
}

// MoistureCalibration holds the raw range of every soil moisture sensor
type MoistureCalibration [configuration.MaxSoilMoistureSensors]util.Scaler

// Values is the complete setpoint table
type Values struct {
	Profiles         [2]Profile          `json:"profiles"`
	LightsOnDuration float64             `json:"lightsOnDuration"`
	Moisture         MoistureCalibration `json:"moisture"`
	Pwm              PwmSetpoints        `json:"pwm"`
}

func (v Values) Profile(phase Phase) Profile {
	return v.Profiles[phase]
}

// DefaultValues are written to the store for every setpoint that does not exist yet
var DefaultValues = func() Values {
	v := Values{
		LightsOnDuration: 18,
		Pwm: PwmSetpoints{
			Kp:         10,
			Ki:         0.01,
			MinOnTime:  30,
			MinOffTime: 30,
			CycleTime:  60,
		},
	}
	v.Profiles[PhaseOn] = Profile{
		DesiredTemperature:       25,
		TemperatureHysteresis:    1,
		MaxTemperature:           30,
		DesiredHumidity:          60,
		HumidityHysteresis:       5,
		MaxHumidity:              80,
		FanMinPercent:            20,
		TemperatureDiffThreshold: 3,
	}
	v.Profiles[PhaseOff] = Profile{
		DesiredTemperature:       20,
		TemperatureHysteresis:    1,
		MaxTemperature:           26,
		DesiredHumidity:          55,
		HumidityHysteresis:       5,
		MaxHumidity:              75,
		FanMinPercent:            10,
		TemperatureDiffThreshold: 3,
	}
	for i := range v.Moisture {
		v.Moisture[i] = util.NewScaler(0, 100)
	}
	return v
}()

type entry struct {
	name   string
	target func(v *Values) *float64
}

func entries() []entry {
	var result []entry
	for _, phase := range []Phase{PhaseOn, PhaseOff} {
		phase := phase
		profile := func(v *Values) *Profile { return &v.Profiles[phase] }
		prefix := phase.String() + "."
		result = append(result,
			entry{prefix + "DesiredTemperature", func(v *Values) *float64 { return &profile(v).DesiredTemperature }},
			entry{prefix + "DesiredTempHysteresis", func(v *Values) *float64 { return &profile(v).TemperatureHysteresis }},
			entry{prefix + "MaxTemperature", func(v *Values) *float64 { return &profile(v).MaxTemperature }},
			entry{prefix + "DesiredHumidity", func(v *Values) *float64 { return &profile(v).DesiredHumidity }},
			entry{prefix + "DesiredHumidityHysteresis", func(v *Values) *float64 { return &profile(v).HumidityHysteresis }},
			entry{prefix + "MaxHumidity", func(v *Values) *float64 { return &profile(v).MaxHumidity }},
			entry{prefix + "FanMinPercent", func(v *Values) *float64 { return &profile(v).FanMinPercent }},
			entry{prefix + "TempDiffThreshold", func(v *Values) *float64 { return &profile(v).TemperatureDiffThreshold }},
		)
	}

	result = append(result, entry{"LightsOnDuration", func(v *Values) *float64 { return &v.LightsOnDuration }})

	for i := 0; i < configuration.MaxSoilMoistureSensors; i++ {
		i := i
		result = append(result,
			entry{fmt.Sprintf("Moisture.%dMin", i+1), func(v *Values) *float64 { return &v.Moisture[i].Min }},
			entry{fmt.Sprintf("Moisture.%dMax", i+1), func(v *Values) *float64 { return &v.Moisture[i].Max }},
		)
	}

	result = append(result,
		entry{"Heating.Kp", func(v *Values) *float64 { return &v.Pwm.Kp }},
		entry{"Heating.Ki", func(v *Values) *float64 { return &v.Pwm.Ki }},
		entry{"Heating.MinOnTime", func(v *Values) *float64 { return &v.Pwm.MinOnTime }},
		entry{"Heating.MinOffTime", func(v *Values) *float64 { return &v.Pwm.MinOffTime }},
		entry{"Heating.CycleTime", func(v *Values) *float64 { return &v.Pwm.CycleTime }},
	)
	return result
}

// Setpoints reads the setpoint table from the store
type Setpoints struct {
	store     store.Store
	namespace string

	entries []entry

	mu     sync.RWMutex
	values Values
}

func NewSetpoints(s store.Store, namespace string) *Setpoints {
	return &Setpoints{
		store:     s,
		namespace: namespace,
		entries:   entries(),
		values:    DefaultValues,
	}
}

func (s *Setpoints) key(name string) string {
	return fmt.Sprintf("%s.Setpoint.%s", s.namespace, name)
}

// Names returns the names of all setpoints
func (s *Setpoints) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}
	return names
}

// Initialize writes the default value of every setpoint that is missing in the store
func (s *Setpoints) Initialize(ctx context.Context) error {
	defaults := DefaultValues
	created := 0
	for _, e := range s.entries {
		_, err := s.store.Read(ctx, s.key(e.name))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reading setpoint %s: %w", e.name, err)
		}
		err = s.store.Write(ctx, s.key(e.name), *e.target(&defaults))
		if err != nil {
			return fmt.Errorf("initializing setpoint %s: %w", e.name, err)
		}
		created++
	}
	ui.Debug("Initialized %d of %d setpoints", created, len(s.entries))
	return nil
}

// Refresh reads all setpoints from the store. A missing or non-numeric value
// keeps the previous value.
func (s *Setpoints) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		state, err := s.store.Read(ctx, s.key(e.name))
		if err != nil {
			ui.Warning("Unable to read setpoint %s: %v", e.name, err)
			continue
		}
		value, ok := toFloat(state.Value)
		if !ok {
			ui.Warning("Setpoint %s is not a number: %v", e.name, state.Value)
			continue
		}
		*e.target(&s.values) = value
	}
	ui.Debug("Read %d setpoints", len(s.entries))
}

// Set writes a single setpoint to the store and applies it immediately
func (s *Setpoints) Set(ctx context.Context, name string, value float64) error {
	for _, e := range s.entries {
		if e.name != name {
			continue
		}
		err := s.store.Write(ctx, s.key(name), value)
		if err != nil {
			return err
		}
		s.mu.Lock()
		*e.target(&s.values) = value
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownSetpoint, name)
}

// Get returns the current value of a single setpoint
func (s *Setpoints) Get(name string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.name == name {
			return *e.target(&s.values), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownSetpoint, name)
}

// Snapshot returns a copy of the current setpoint table
func (s *Setpoints) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Map returns all setpoints by name
func (s *Setpoints) Map() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]float64, len(s.entries))
	for _, e := range s.entries {
		result[e.name] = *e.target(&s.values)
	}
	return result
}

func toFloat(value any) (float64, bool) {
	switch v := store.Normalize(value).(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
