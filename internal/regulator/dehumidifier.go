package regulator

// DehumidifierController is a bang-bang controller around the desired humidity,
// inhibited at the temperature ceiling.
type DehumidifierController struct {
	active bool
}

func NewDehumidifierController() *DehumidifierController {
	return &DehumidifierController{}
}

func (c *DehumidifierController) Evaluate(humidity, temp, desiredHumidity, hysteresis, maxTemp float64) float64 {
	if humidity > desiredHumidity+hysteresis {
		c.active = true
	} else if humidity < desiredHumidity-hysteresis {
		c.active = false
	}

	if temp >= maxTemp {
		c.active = false
	}

	return toOutput(c.active)
}
