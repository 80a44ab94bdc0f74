package util

// ScaleError is returned by Scaler.Scale and Scaler.Unscale when the
// configured range is degenerate (min == max)
const ScaleError = -99.0

const (
	PercentMin = 0.0
	PercentMax = 100.0
)

// Scaler maps between a raw value range [Min..Max] and a percentage [0..100].
// If Min > Max the mapping is inverted, i.e. a higher raw value results in a
// lower percentage.
type Scaler struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func NewScaler(min float64, max float64) Scaler {
	return Scaler{
		Min: min,
		Max: max,
	}
}

// IsDegenerate indicates whether this scaler cannot map any value
func (s Scaler) IsDegenerate() bool {
	return s.Min == s.Max
}

func (s Scaler) IsInverted() bool {
	return s.Min > s.Max
}

// Scale converts a raw value into a percentage, clamped to [0..100]
func (s Scaler) Scale(raw float64) float64 {
	if s.IsDegenerate() {
		return ScaleError
	}
	percent := Ratio(raw, s.Min, s.Max) * PercentMax
	return Coerce(percent, PercentMin, PercentMax)
}

// Unscale converts a percentage into a raw value, clamped to the raw range
func (s Scaler) Unscale(percent float64) float64 {
	if s.IsDegenerate() {
		return ScaleError
	}
	percent = Coerce(percent, PercentMin, PercentMax)
	return s.Min + (percent/PercentMax)*(s.Max-s.Min)
}
