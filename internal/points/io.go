package points

import (
	"fmt"
	"time"

	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/util"
)

type Role string

const (
	RoleTopTemperature      Role = "TopTemperature"
	RoleTopHumidity         Role = "TopHumidity"
	RoleBottomTemperature   Role = "BottomTemperature"
	RoleBottomHumidity      Role = "BottomHumidity"
	RoleHeartbeatFromClient Role = "HeartbeatFromClient"

	RoleHeaterOn          Role = "HeaterOn"
	RoleLightOn           Role = "LightOn"
	RoleDehumidifierOn    Role = "DehumidifierOn"
	RoleFanPercent        Role = "FanPercent"
	RoleHeartbeatToClient Role = "HeartbeatToClient"
)

// SoilMoistureRole returns the role of the n-th (1 based) soil moisture sensor
func SoilMoistureRole(n int) Role {
	return Role(fmt.Sprintf("SoilMoisture%d", n))
}

// Input is a read point in the external store
type Input struct {
	Role Role
	Id   string

	// Value is the last raw value read from the store
	Value     any
	Valid     bool
	Timestamp time.Time

	Validator Validator
	// Scaler is set for scalable inputs only
	Scaler *util.Scaler
}

// Float returns the raw value as a number, if the input is valid
func (i *Input) Float() (float64, bool) {
	if !i.Valid {
		return 0, false
	}
	f, ok := store.Normalize(i.Value).(float64)
	return f, ok
}

// ToScaled returns the value of a scalable input as a percentage
func (i *Input) ToScaled() (float64, bool) {
	f, ok := i.Float()
	if !ok || i.Scaler == nil {
		return f, ok
	}
	return i.Scaler.Scale(f), true
}

// Output is a write point in the external store. ReadId is used to confirm
// writes, which go to WriteId.
type Output struct {
	Role    Role
	ReadId  string
	WriteId string

	// Current is the last value confirmed in the store
	Current any
	// Desired is the value the controllers want to see in the store
	Desired any
	// Default is the failsafe value written on start and stop
	Default any
	Valid   bool

	// Log enables info level logging of writes
	Log bool

	Scaler *util.Scaler
}

func (o *Output) writeId() string {
	if len(o.WriteId) > 0 {
		return o.WriteId
	}
	return o.ReadId
}

func (o *Output) SetDesired(value any) {
	o.Desired = store.Normalize(value)
}

// ToRaw converts a percentage to the raw value of a scalable output
func (o *Output) ToRaw(percent float64) float64 {
	if o.Scaler == nil {
		return percent
	}
	return o.Scaler.Unscale(percent)
}

// ToScaled converts a raw value of a scalable output to a percentage
func (o *Output) ToScaled(raw float64) float64 {
	if o.Scaler == nil {
		return raw
	}
	return o.Scaler.Scale(raw)
}

// InSync reports whether the desired value is already confirmed in the store
func (o *Output) InSync() bool {
	return store.Equal(o.Current, o.Desired)
}
