package configuration

import "strings"

// ObjectIdConfig holds the ids of all states in the external store
// that growctl reads from or writes to.
type ObjectIdConfig struct {
	TopTemperature    string `json:"topTemperature"`
	TopHumidity       string `json:"topHumidity"`
	BottomTemperature string `json:"bottomTemperature"`
	BottomHumidity    string `json:"bottomHumidity"`

	HeaterOn       string `json:"heaterOn"`
	LightOn        string `json:"lightOn"`
	DehumidifierOn string `json:"dehumidifierOn"`
	FanPercent     string `json:"fanPercent"`

	HeartbeatFromClient string `json:"heartbeatFromClient"`
	HeartbeatToClient   string `json:"heartbeatToClient"`

	// SoilMoisture holds up to MaxSoilMoistureSensors optional sensor ids
	SoilMoisture []string `json:"soilMoisture"`
}

const MaxSoilMoistureSensors = 6

// WritableObjects are the objects that may have a separate write id
var WritableObjects = []string{"heaterOn", "lightOn", "dehumidifierOn", "fanPercent", "heartbeatToClient"}

// WriteObjectId returns the write id configured for the given object.
// Keys are matched case-insensitively since viper lowercases all map keys.
func (c Configuration) WriteObjectId(object string) string {
	for key, id := range c.WriteObjectIds {
		if strings.EqualFold(key, object) {
			return id
		}
	}
	return ""
}

func isWritableObject(key string) bool {
	for _, object := range WritableObjects {
		if strings.EqualFold(object, key) {
			return true
		}
	}
	return false
}
