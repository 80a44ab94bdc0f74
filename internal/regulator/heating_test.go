package regulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeatingController_Hysteresis(t *testing.T) {
	// GIVEN
	c := NewHeatingController()
	desired, hysteresis, maxTemp := 22.0, 1.0, 28.0

	// WHEN / THEN
	assert.Equal(t, On, c.Evaluate(20, desired, hysteresis, maxTemp))
	assert.Equal(t, On, c.Evaluate(22.5, desired, hysteresis, maxTemp))
	assert.Equal(t, Off, c.Evaluate(23, desired, hysteresis, maxTemp))
	assert.Equal(t, Off, c.Evaluate(22, desired, hysteresis, maxTemp))
	assert.Equal(t, On, c.Evaluate(21, desired, hysteresis, maxTemp))
}

func TestHeatingController_HoldsInsideBand(t *testing.T) {
	desired, hysteresis, maxTemp := 22.0, 1.0, 28.0

	for _, initialTemp := range []float64{20, 24} {
		// GIVEN
		c := NewHeatingController()
		previous := c.Evaluate(initialTemp, desired, hysteresis, maxTemp)

		// WHEN / THEN
		for temp := desired - hysteresis + 0.05; temp < desired+hysteresis; temp += 0.1 {
			result := c.Evaluate(temp, desired, hysteresis, maxTemp)
			assert.Equal(t, previous, result, "temp %v", temp)
			previous = result
		}
	}
}

func TestHeatingController_Lockout(t *testing.T) {
	// GIVEN
	c := NewHeatingController()
	desired, hysteresis, maxTemp := 30.0, 1.0, 28.0
	assert.Equal(t, On, c.Evaluate(27, desired, hysteresis, maxTemp))

	// WHEN / THEN
	assert.Equal(t, Off, c.Evaluate(28, desired, hysteresis, maxTemp))
	assert.True(t, c.IsLocked())
	assert.Equal(t, Off, c.Evaluate(27.6, desired, hysteresis, maxTemp))
	assert.True(t, c.IsLocked())
	assert.Equal(t, On, c.Evaluate(27.5, desired, hysteresis, maxTemp))
	assert.False(t, c.IsLocked())
}

func TestHeatingController_AlwaysOffAboveMax(t *testing.T) {
	// GIVEN
	c := NewHeatingController()

	// WHEN / THEN
	for _, temp := range []float64{28, 35, 100} {
		for _, desired := range []float64{20, 50, 200} {
			assert.Equal(t, Off, c.Evaluate(temp, desired, 1, 28))
		}
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestPwmHeatingController_MinimumDwell(t *testing.T) {
	// GIVEN
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)}
	c := NewPwmHeatingController(clock.Now)
	params := PwmParameters{Kp: 20, Ki: 0, MinOnTime: 30 * time.Second, MinOffTime: 30 * time.Second, CycleTime: 60 * time.Second}

	// WHEN / THEN
	clock.Advance(30 * time.Second)
	assert.Equal(t, On, c.Evaluate(20, 25, 35, params))
	assert.Equal(t, 100.0, c.Output())

	// demand drops, but minimum on time is not reached yet
	clock.Advance(10 * time.Second)
	assert.Equal(t, On, c.Evaluate(25, 25, 35, params))
	assert.Equal(t, 0.0, c.Output())

	clock.Advance(20 * time.Second)
	assert.Equal(t, Off, c.Evaluate(25, 25, 35, params))

	// demand rises, but minimum off time is not reached yet
	clock.Advance(10 * time.Second)
	assert.Equal(t, Off, c.Evaluate(20, 25, 35, params))

	clock.Advance(20 * time.Second)
	assert.Equal(t, On, c.Evaluate(20, 25, 35, params))
}

func TestPwmHeatingController_DutyCycle(t *testing.T) {
	// GIVEN
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)}
	c := NewPwmHeatingController(clock.Now)
	params := PwmParameters{Kp: 5, Ki: 0, CycleTime: 60 * time.Second}

	// WHEN / THEN
	clock.Advance(1 * time.Second)
	assert.Equal(t, On, c.Evaluate(20, 25, 35, params))
	assert.Equal(t, 25.0, c.Output())

	clock.Advance(19 * time.Second)
	assert.Equal(t, Off, c.Evaluate(20, 25, 35, params))

	clock.Advance(41 * time.Second)
	assert.Equal(t, On, c.Evaluate(20, 25, 35, params))
}

func TestPwmHeatingController_IntegratesWhileSaturated(t *testing.T) {
	// GIVEN
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)}
	c := NewPwmHeatingController(clock.Now)
	params := PwmParameters{Kp: 0, Ki: 0.1, CycleTime: 60 * time.Second}

	// WHEN
	clock.Advance(300 * time.Second)
	c.Evaluate(20, 25, 35, params)
	clock.Advance(300 * time.Second)
	c.Evaluate(20, 25, 35, params)
	clock.Advance(400 * time.Second)
	c.Evaluate(25, 20, 35, params)

	// THEN
	// 0.1 * (5 * 300 + 5 * 300 - 5 * 400) = 100
	assert.Equal(t, 100.0, c.Output())
}

func TestPwmHeatingController_Lockout(t *testing.T) {
	// GIVEN
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)}
	c := NewPwmHeatingController(clock.Now)
	params := PwmParameters{Kp: 100, Ki: 0, CycleTime: 60 * time.Second}
	clock.Advance(time.Second)
	assert.Equal(t, On, c.Evaluate(20, 40, 28, params))

	// WHEN / THEN
	clock.Advance(time.Second)
	assert.Equal(t, Off, c.EvaluateInput(HeatingInput{Temperature: 28, DesiredTemperature: 40, MaxTemperature: 28, Pwm: params}))
	assert.Equal(t, 0.0, c.Output())
	assert.True(t, c.IsLocked())

	clock.Advance(time.Second)
	assert.Equal(t, Off, c.Evaluate(27.6, 40, 28, params))

	clock.Advance(time.Second)
	assert.Equal(t, On, c.Evaluate(27.5, 40, 28, params))
	assert.False(t, c.IsLocked())
}

func TestHeaterInterface(t *testing.T) {
	var heaters = []Heater{
		NewHeatingController(),
		NewPwmHeatingController(nil),
	}
	for _, heater := range heaters {
		assert.Equal(t, Off, heater.EvaluateInput(HeatingInput{
			Temperature:        30,
			DesiredTemperature: 22,
			Hysteresis:         1,
			MaxTemperature:     35,
			Pwm:                DefaultPwmParameters,
		}))
	}
}

func TestIsOn(t *testing.T) {
	assert.True(t, IsOn(On))
	assert.True(t, IsOn(51))
	assert.False(t, IsOn(50))
	assert.False(t, IsOn(Off))
}
