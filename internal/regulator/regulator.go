package regulator

const (
	Off = 0.0
	On  = 100.0

	// LockoutRelease is the margin below a limit at which a thermal lockout is released
	LockoutRelease = 0.5
)

// lockout forces an actuator off once a limit is reached, until the
// value drops LockoutRelease below the limit again.
type lockout struct {
	locked bool
}

func (l *lockout) update(value, limit float64) bool {
	if value >= limit {
		l.locked = true
	} else if value <= limit-LockoutRelease {
		l.locked = false
	}
	return l.locked
}

func toOutput(active bool) float64 {
	if active {
		return On
	}
	return Off
}

// IsOn thresholds a controller output to a relay state
func IsOn(output float64) bool {
	return output > 50
}
