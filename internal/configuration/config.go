package configuration

import (
	"github.com/markusressel/growctl/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"os"
	"time"
)

type Configuration struct {
	// Namespace is prepended to all setpoint, status and mirror states written by growctl
	Namespace string `json:"namespace"`

	Store StoreConfig `json:"store"`

	ObjectIds      ObjectIdConfig    `json:"objectIds"`
	WriteObjectIds map[string]string `json:"writeObjectIds"`
	Scaling        ScalingConfig     `json:"scaling"`

	General GeneralConfig `json:"general"`
	Heating HeatingConfig `json:"heating"`
	Io      IoConfig      `json:"io"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`

	// StatusFile is an optional path to which a json snapshot is written after every cycle
	StatusFile string `json:"statusFile"`
}

type GeneralConfig struct {
	ControlLoopInterval time.Duration     `json:"controlLoopInterval"`
	HeartbeatTimeout    time.Duration     `json:"heartbeatTimeout"`
	HeartbeatInterval   time.Duration     `json:"heartbeatInterval"`
	MeasurementSource   MeasurementSource `json:"measurementSource"`
}

type HeatingConfig struct {
	Mode HeatingMode `json:"mode"`
}

type IoConfig struct {
	// Time to wait between a write and the read used to confirm it
	WriteCheckDelay time.Duration `json:"writeCheckDelay"`
	// Number of repeated writes before falling back to the alternative value
	WriteRetries int `json:"writeRetries"`
}

type RangeConfig struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ScalingConfig struct {
	FanPercent RangeConfig `json:"fanPercent"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("growctl")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/growctl/")
	}

	viper.SetEnvPrefix("growctl")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("namespace", "growctl.0")

	viper.SetDefault("store.type", StoreTypeBolt)
	viper.SetDefault("store.path", "/etc/growctl/growctl.db")
	viper.SetDefault("store.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("store.mqtt.topicPrefix", "")
	viper.SetDefault("store.mqtt.clientId", "growctl")
	viper.SetDefault("store.mqtt.setSuffix", "")

	viper.SetDefault("scaling.fanPercent.min", 0)
	viper.SetDefault("scaling.fanPercent.max", 100)

	viper.SetDefault("general.controlLoopInterval", 5*time.Second)
	viper.SetDefault("general.heartbeatTimeout", 30*time.Second)
	viper.SetDefault("general.heartbeatInterval", 10*time.Second)
	viper.SetDefault("general.measurementSource", MeasurementSourceMean)

	viper.SetDefault("heating.mode", HeatingModeHysteresis)

	viper.SetDefault("io.writeCheckDelay", 200*time.Millisecond)
	viper.SetDefault("io.writeRetries", 2)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 8080)
}

// DetectAndReadConfigFile detects the path of the first existing config file
func DetectAndReadConfigFile() string {
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// config file is required, so we fail here
			ui.Fatal("No config file found: %v", err)
		} else {
			ui.Fatal("Error reading config file, %s", err)
		}
	}
	return viper.ConfigFileUsed()
}

// LoadConfig loads the configuration from the config file
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			MeasurementSourceHookFunc(),
			HeatingModeHookFunc(),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
