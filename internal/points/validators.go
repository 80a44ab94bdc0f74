package points

import (
	"github.com/markusressel/growctl/internal/store"
)

// Validator checks a raw value read from the store
type Validator func(value any) bool

func Any(value any) bool {
	return value != nil
}

func IsBoolean(value any) bool {
	_, ok := value.(bool)
	return ok
}

func IsNumber(value any) bool {
	_, ok := store.Normalize(value).(float64)
	return ok
}

// InRange accepts numbers within [min, max]
func InRange(min, max float64) Validator {
	return func(value any) bool {
		f, ok := store.Normalize(value).(float64)
		return ok && f >= min && f <= max
	}
}

func IsPercentage(value any) bool {
	return InRange(0, 100)(value)
}
