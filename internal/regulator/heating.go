package regulator

import (
	"time"

	"github.com/markusressel/growctl/internal/util"
)

// HeatingInput is the input of a single heater evaluation
type HeatingInput struct {
	Temperature        float64
	DesiredTemperature float64
	Hysteresis         float64
	MaxTemperature     float64

	// only used by the PwmHeatingController
	Pwm PwmParameters
}

type PwmParameters struct {
	Kp         float64
	Ki         float64
	MinOnTime  time.Duration
	MinOffTime time.Duration
	CycleTime  time.Duration
}

var DefaultPwmParameters = PwmParameters{
	Kp:         10,
	Ki:         0.01,
	MinOnTime:  30 * time.Second,
	MinOffTime: 30 * time.Second,
	CycleTime:  60 * time.Second,
}

// Heater is a heating strategy
type Heater interface {
	// EvaluateInput returns the heater output, either Off or On
	EvaluateInput(input HeatingInput) float64
	IsLocked() bool
}

// HeatingController is a bang-bang controller with a hysteresis band
// around the desired temperature and a thermal lockout.
type HeatingController struct {
	active  bool
	lockout lockout
}

func NewHeatingController() *HeatingController {
	return &HeatingController{}
}

func (c *HeatingController) Evaluate(temp, desiredTemp, hysteresis, maxTemp float64) float64 {
	locked := c.lockout.update(temp, maxTemp)

	if !c.active && temp <= desiredTemp-hysteresis {
		c.active = true
	} else if c.active && temp >= desiredTemp+hysteresis {
		c.active = false
	}

	if locked {
		c.active = false
	}

	return toOutput(c.active)
}

func (c *HeatingController) EvaluateInput(input HeatingInput) float64 {
	return c.Evaluate(input.Temperature, input.DesiredTemperature, input.Hysteresis, input.MaxTemperature)
}

func (c *HeatingController) IsLocked() bool {
	return c.lockout.locked
}

// PwmHeatingController drives a heater relay by pulse width modulation
// of a PI regulator output. Every relay transition respects a minimum
// on and off dwell time.
type PwmHeatingController struct {
	clock func() time.Time
	pid   *util.PidLoop

	active  bool
	lockout lockout

	output     float64
	cycleStart time.Time
	lastChange time.Time
}

func NewPwmHeatingController(clock func() time.Time) *PwmHeatingController {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	pid := util.NewPidLoop(DefaultPwmParameters.Kp, DefaultPwmParameters.Ki, 0, util.PercentMin, util.PercentMax)
	// output = kp*e + ki*integral(e dt), clamped afterwards
	pid.SetAntiWindup(false)
	pid.Start(now)
	return &PwmHeatingController{
		clock:      clock,
		pid:        pid,
		cycleStart: now,
		lastChange: now,
	}
}

func (c *PwmHeatingController) Evaluate(temp, desiredTemp, maxTemp float64, params PwmParameters) float64 {
	now := c.clock()
	locked := c.lockout.update(temp, maxTemp)

	c.pid.SetGains(params.Kp, params.Ki, 0)
	output := c.pid.LoopAt(desiredTemp, temp, now)
	if locked {
		output = util.PercentMin
	}
	c.output = output

	if now.Sub(c.cycleStart) >= params.CycleTime {
		c.cycleStart = now
	}
	onTime := time.Duration(output / util.PercentMax * float64(params.CycleTime))
	wantHeating := now.Sub(c.cycleStart) < onTime

	sinceChange := now.Sub(c.lastChange)
	if c.active {
		if !wantHeating && sinceChange >= params.MinOnTime {
			c.active = false
			c.lastChange = now
		}
	} else {
		if wantHeating && sinceChange >= params.MinOffTime {
			c.active = true
			c.lastChange = now
		}
	}

	if locked && c.active {
		c.active = false
		c.lastChange = now
	}

	return toOutput(c.active)
}

func (c *PwmHeatingController) EvaluateInput(input HeatingInput) float64 {
	return c.Evaluate(input.Temperature, input.DesiredTemperature, input.MaxTemperature, input.Pwm)
}

func (c *PwmHeatingController) IsLocked() bool {
	return c.lockout.locked
}

// Output returns the last PI output in percent
func (c *PwmHeatingController) Output() float64 {
	return c.output
}
