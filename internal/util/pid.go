package util

import "time"

type PidLoop struct {
	// Proportional Constant
	p float64
	// Integral Constant
	i float64
	// Derivative Constant
	d float64
	// Minimum output value
	outMin float64
	// Maximum output value
	outMax float64
	// stop integrating while the output is saturated
	antiWindup bool

	// last measured value
	lastMeasured float64
	// integral from previous loop + error, i.e. integral error
	integral float64
	// last execution time of the loop
	lastTime time.Time
	// last output value
	lastOutput float64
}

func NewPidLoop(p, i, d, min, max float64) *PidLoop {
	return &PidLoop{
		p:          p,
		i:          i,
		d:          d,
		outMin:     min,
		outMax:     max,
		antiWindup: true,
	}
}

// SetAntiWindup enables or disables conditional integration. Without it the
// integral accumulates the error unconditionally, even while the output is clamped.
func (p *PidLoop) SetAntiWindup(enabled bool) {
	p.antiWindup = enabled
}

// SetGains updates the loop constants without resetting the accumulated state
func (p *PidLoop) SetGains(kp, ki, kd float64) {
	p.p = kp
	p.i = ki
	p.d = kd
}

// Start marks the given time as the beginning of the first integration interval
func (p *PidLoop) Start(now time.Time) {
	p.lastTime = now
	p.integral = 0.0
}

// Integral returns the accumulated integral error
func (p *PidLoop) Integral() float64 {
	return p.integral
}

// LoopAt advances the pid loop using the given time as the current time
func (p *PidLoop) LoopAt(target float64, measured float64, loopTime time.Time) float64 {
	initialized := !p.lastTime.IsZero()
	if !initialized {
		p.lastMeasured = measured
		p.lastTime = loopTime
		p.integral = 0.0

		initialError := target - measured
		output := Coerce(p.p*initialError, p.outMin, p.outMax)
		p.lastOutput = output
		return output
	}

	dt := loopTime.Sub(p.lastTime).Seconds()
	if dt <= 0 {
		return p.lastOutput
	}

	err := target - measured

	// --- P Term ---
	proportionalTerm := p.p * err

	// --- I Term (with optional anti-windup) ---
	integrate := true
	// Don't integrate if output is already saturated AND the error is trying to push it further
	if p.antiWindup && p.lastOutput >= p.outMax && err > 0 {
		integrate = false
	}
	if p.antiWindup && p.lastOutput <= p.outMin && err < 0 {
		integrate = false
	}

	if integrate {
		p.integral = p.integral + err*dt
	}
	integralTerm := p.i * p.integral

	// --- D Term (on measurement) ---
	derivativeRaw := (measured - p.lastMeasured) / dt
	derivativeTerm := -p.d * derivativeRaw

	output := proportionalTerm + integralTerm + derivativeTerm
	clampedOutput := Coerce(output, p.outMin, p.outMax)

	p.lastTime = loopTime
	p.lastMeasured = measured
	p.lastOutput = clampedOutput

	return clampedOutput
}
