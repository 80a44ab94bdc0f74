package regulator

import (
	"math"

	"github.com/markusressel/growctl/internal/util"
)

const (
	// FanSpeedByDiff is used when the top and bottom temperature differ too much
	FanSpeedByDiff = 30.0
	// FanRampMin is the fan speed at the start of the temperature ramp
	FanRampMin = 20.0
	// FanRampEnd is the multiple of the hysteresis above the desired temperature
	// at which the temperature ramp reaches 100%
	FanRampEnd = 1.25
)

type FanInput struct {
	TopTemperature     float64
	BottomTemperature  float64
	Humidity           float64
	Temperature        float64
	DiffThreshold      float64
	DesiredTemperature float64
	Hysteresis         float64
	MaxTemperature     float64
	MaxHumidity        float64
	MinPercent         float64
}

// FanController computes the fan speed as the maximum of several demands.
// Once the temperature demand is engaged it stays latched until the
// temperature drops back to the desired temperature.
type FanController struct {
	latched bool
}

func NewFanController() *FanController {
	return &FanController{}
}

func (c *FanController) Evaluate(input FanInput) float64 {
	byDiff := Off
	if math.Abs(input.TopTemperature-input.BottomTemperature) > input.DiffThreshold {
		byDiff = FanSpeedByDiff
	}

	byTemp := Off
	if input.Temperature >= input.DesiredTemperature+input.Hysteresis || c.latched {
		c.latched = true
		byTemp = fanRamp(input.Temperature, input.DesiredTemperature, input.Hysteresis)
	}
	if input.Temperature <= input.DesiredTemperature {
		c.latched = false
		byTemp = Off
	}

	output := math.Max(byDiff, math.Max(byTemp, input.MinPercent))

	if input.Temperature >= input.MaxTemperature {
		output = On
	}
	// humidity ceiling wins over the max temperature override
	if input.Humidity >= input.MaxHumidity {
		output = Off
	}

	return util.Coerce(output, util.PercentMin, util.PercentMax)
}

// fanRamp rises linearly from FanRampMin at desired+hysteresis
// to 100% at desired+FanRampEnd*hysteresis.
func fanRamp(temp, desired, hysteresis float64) float64 {
	start := desired + hysteresis
	width := hysteresis * (FanRampEnd - 1)
	if width <= 0 {
		return On
	}
	ratio := util.Coerce((temp-start)/width, 0, 1)
	return FanRampMin + ratio*(util.PercentMax-FanRampMin)
}

func (c *FanController) IsLatched() bool {
	return c.latched
}
