package configuration

const (
	StoreTypeMemory = "memory"
	StoreTypeBolt   = "bolt"
	StoreTypeMqtt   = "mqtt"
)

type StoreConfig struct {
	Type string     `json:"type"`
	Path string     `json:"path"`
	Mqtt MqttConfig `json:"mqtt"`
}

type MqttConfig struct {
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topicPrefix"`
	ClientId    string `json:"clientId"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	// SetSuffix is appended to the ids of all actuators when writing a value, e.g. "set".
	// States owned by growctl (setpoints, status, mirrors) are always written to their own topic.
	SetSuffix string `json:"setSuffix"`
}

// CommandId returns the id used to send a new value to the actuator with the given id,
// or an empty string if the actuator is written directly.
func (c StoreConfig) CommandId(id string) string {
	if c.Type != StoreTypeMqtt || len(c.Mqtt.SetSuffix) <= 0 || len(id) <= 0 {
		return ""
	}
	return id + "." + c.Mqtt.SetSuffix
}
