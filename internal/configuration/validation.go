package configuration

import (
	"errors"
	"fmt"
	"github.com/markusressel/growctl/internal/ui"
	"golang.org/x/exp/slices"
	"strings"
)

// Validate checks the currently loaded configuration
func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if len(strings.TrimSpace(config.Namespace)) <= 0 {
		return errors.New("namespace must not be empty")
	}

	err := validateStore(config)
	if err != nil {
		return err
	}
	err = validateObjectIds(config)
	if err != nil {
		return err
	}
	err = validateGeneral(config)
	if err != nil {
		return err
	}
	err = validateIo(config)
	if err != nil {
		return err
	}

	if config.Scaling.FanPercent.Min == config.Scaling.FanPercent.Max {
		return fmt.Errorf("scaling of fanPercent: min and max must not be equal (%v)", config.Scaling.FanPercent.Min)
	}

	return nil
}

func validateStore(config *Configuration) error {
	supportedTypes := []string{StoreTypeMemory, StoreTypeBolt, StoreTypeMqtt}
	if !slices.Contains(supportedTypes, config.Store.Type) {
		return fmt.Errorf("store: unsupported type '%s', use one of: %s", config.Store.Type, strings.Join(supportedTypes, " | "))
	}

	switch config.Store.Type {
	case StoreTypeBolt:
		if len(config.Store.Path) <= 0 {
			return errors.New("store: no path provided for bolt store")
		}
	case StoreTypeMqtt:
		if len(config.Store.Mqtt.Broker) <= 0 {
			return errors.New("store: no broker provided for mqtt store")
		}
	case StoreTypeMemory:
		ui.Warning("Using in-memory store, all states are lost on exit")
	}

	return nil
}

func validateObjectIds(config *Configuration) error {
	ids := config.ObjectIds
	required := map[string]string{
		"topTemperature":      ids.TopTemperature,
		"topHumidity":         ids.TopHumidity,
		"bottomTemperature":   ids.BottomTemperature,
		"bottomHumidity":      ids.BottomHumidity,
		"heaterOn":            ids.HeaterOn,
		"lightOn":             ids.LightOn,
		"dehumidifierOn":      ids.DehumidifierOn,
		"fanPercent":          ids.FanPercent,
		"heartbeatFromClient": ids.HeartbeatFromClient,
		"heartbeatToClient":   ids.HeartbeatToClient,
	}

	keys := make([]string, 0, len(required))
	for key := range required {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if len(strings.TrimSpace(required[key])) <= 0 {
			return fmt.Errorf("objectIds: missing id for '%s'", key)
		}
	}

	if len(ids.SoilMoisture) > MaxSoilMoistureSensors {
		return fmt.Errorf("objectIds: at most %d soil moisture sensors are supported, got %d", MaxSoilMoistureSensors, len(ids.SoilMoisture))
	}

	for key := range config.WriteObjectIds {
		if !isWritableObject(key) {
			return fmt.Errorf("writeObjectIds: unknown object '%s', use one of: %s", key, strings.Join(WritableObjects, " | "))
		}
	}

	return nil
}

func validateGeneral(config *Configuration) error {
	general := config.General
	if general.ControlLoopInterval <= 0 {
		return errors.New("general: controlLoopInterval must be > 0")
	}
	if general.HeartbeatTimeout <= 0 {
		return errors.New("general: heartbeatTimeout must be > 0")
	}
	if general.HeartbeatInterval <= 0 {
		return errors.New("general: heartbeatInterval must be > 0")
	}
	if general.HeartbeatInterval >= general.HeartbeatTimeout {
		ui.Warning("general: heartbeatInterval (%v) should be smaller than heartbeatTimeout (%v)", general.HeartbeatInterval, general.HeartbeatTimeout)
	}

	if !slices.Contains(MeasurementSources, general.MeasurementSource) {
		return fmt.Errorf("general: unsupported measurementSource '%s'", general.MeasurementSource)
	}
	if !slices.Contains(HeatingModes, config.Heating.Mode) {
		return fmt.Errorf("heating: unsupported mode '%s'", config.Heating.Mode)
	}

	return nil
}

func validateIo(config *Configuration) error {
	if config.Io.WriteCheckDelay < 0 {
		return errors.New("io: writeCheckDelay must be >= 0")
	}
	if config.Io.WriteRetries < 0 {
		return errors.New("io: writeRetries must be >= 0")
	}
	return nil
}
