package regulator

import (
	"math"
	"time"

	"github.com/markusressel/growctl/internal/util"
)

const HoursPerDay = 24.0

// LampController switches the light within a daily window centered
// around midnight, with a thermal lockout.
type LampController struct {
	clock   func() time.Time
	active  bool
	lockout lockout
}

func NewLampController(clock func() time.Time) *LampController {
	if clock == nil {
		clock = time.Now
	}
	return &LampController{
		clock: clock,
	}
}

// IsLightingTime reports whether the given hour is within the lighting window
// [(24 - d/2) mod 24, (d/2) mod 24) of the given duration. A window whose start
// equals its end (d = 0 or d = 24) covers the whole day.
func IsLightingTime(durationHours float64, hour int) bool {
	durationHours = util.Coerce(durationHours, 0, HoursPerDay)

	half := durationHours / 2
	start := math.Mod(HoursPerDay-half, HoursPerDay)
	end := math.Mod(half, HoursPerDay)
	h := float64(hour)

	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}

// IsLightingTime reports whether the current local hour is within the lighting window
func (c *LampController) IsLightingTime(durationHours float64) bool {
	return IsLightingTime(durationHours, c.clock().Hour())
}

func (c *LampController) Evaluate(durationHours, maxTemp, temp float64) float64 {
	locked := c.lockout.update(temp, maxTemp)
	c.active = c.IsLightingTime(durationHours) && !locked
	return toOutput(c.active)
}

func (c *LampController) IsLocked() bool {
	return c.lockout.locked
}
