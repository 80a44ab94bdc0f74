package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func createValidConfig() Configuration {
	return Configuration{
		Namespace: "growctl.0",
		Store: StoreConfig{
			Type: StoreTypeMemory,
		},
		ObjectIds: ObjectIdConfig{
			TopTemperature:      "sensor.top.temperature",
			TopHumidity:         "sensor.top.humidity",
			BottomTemperature:   "sensor.bottom.temperature",
			BottomHumidity:      "sensor.bottom.humidity",
			HeaterOn:            "actor.heater",
			LightOn:             "actor.light",
			DehumidifierOn:      "actor.dehumidifier",
			FanPercent:          "actor.fan",
			HeartbeatFromClient: "client.heartbeat",
			HeartbeatToClient:   "growctl.heartbeat",
		},
		Scaling: ScalingConfig{
			FanPercent: RangeConfig{Min: 0, Max: 255},
		},
		General: GeneralConfig{
			ControlLoopInterval: 5 * time.Second,
			HeartbeatTimeout:    30 * time.Second,
			HeartbeatInterval:   10 * time.Second,
			MeasurementSource:   MeasurementSourceMean,
		},
		Heating: HeatingConfig{
			Mode: HeatingModeHysteresis,
		},
		Io: IoConfig{
			WriteCheckDelay: 200 * time.Millisecond,
			WriteRetries:    2,
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	// GIVEN
	config := createValidConfig()

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateMissingObjectId(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.ObjectIds.HeaterOn = " "

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "objectIds: missing id for 'heaterOn'")
}

func TestValidateTooManySoilMoistureSensors(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.ObjectIds.SoilMoisture = []string{"1", "2", "3", "4", "5", "6", "7"}

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "objectIds: at most 6 soil moisture sensors are supported, got 7")
}

func TestValidateUnknownWriteObjectId(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.WriteObjectIds = map[string]string{"toaster": "actor.toaster.set"}

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "writeObjectIds: unknown object 'toaster', use one of: heaterOn | lightOn | dehumidifierOn | fanPercent | heartbeatToClient")
}

func TestValidateUnsupportedStoreType(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Store.Type = "redis"

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "store: unsupported type 'redis', use one of: memory | bolt | mqtt")
}

func TestValidateBoltStoreWithoutPath(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Store.Type = StoreTypeBolt

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "store: no path provided for bolt store")
}

func TestValidateZeroLoopInterval(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.General.ControlLoopInterval = 0

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "general: controlLoopInterval must be > 0")
}

func TestValidateDegenerateFanScaling(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Scaling.FanPercent = RangeConfig{Min: 10, Max: 10}

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "scaling of fanPercent: min and max must not be equal (10)")
}

func TestValidateUnsupportedMeasurementSource(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.General.MeasurementSource = "middle"

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "general: unsupported measurementSource 'middle'")
}
