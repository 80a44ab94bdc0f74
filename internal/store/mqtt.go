package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/ui"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
)

// MqttStore maps state ids to topics of an MQTT broker. Every retained
// message below the topic prefix is cached locally, writes are published
// and only become visible once the broker (or the device) echoes them back.
// Ids ending with the set suffix are commands: they are published without
// the retain flag and never cached.
type MqttStore struct {
	client   paho.Client
	config   configuration.MqttConfig
	states   cmap.ConcurrentMap[string, State]
	notifier *notifier
}

func newMqttStore(config configuration.MqttConfig) *MqttStore {
	return &MqttStore{
		config:   config,
		states:   cmap.New[State](),
		notifier: newNotifier(),
	}
}

func NewMqttStore(config configuration.MqttConfig) (*MqttStore, error) {
	s := newMqttStore(config)

	// a unique suffix avoids kicking other instances off the broker
	clientId := fmt.Sprintf("%s-%s", config.ClientId, uuid.NewString()[:8])

	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			ui.Info("Connected to MQTT broker %s", config.Broker)
			c.Subscribe(subscriptionTopic(config.TopicPrefix), 1, s.handleMessage)
		}).
		SetConnectionLostHandler(func(c paho.Client, err error) {
			ui.Warning("Lost connection to MQTT broker: %v", err)
		})
	if len(config.Username) > 0 {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}

	s.client = paho.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return s, nil
}

func (s *MqttStore) handleMessage(_ paho.Client, msg paho.Message) {
	id, ok := topicToId(s.config.TopicPrefix, msg.Topic())
	if !ok {
		return
	}
	if s.isCommand(id) {
		// our own write requests
		return
	}

	state := State{
		Id:        id,
		Value:     decodePayload(msg.Payload()),
		Timestamp: time.Now(),
	}
	s.states.Set(id, state)
	s.notifier.notify(state)
}

func (s *MqttStore) Read(_ context.Context, id string) (State, error) {
	state, ok := s.states.Get(id)
	if !ok {
		return State{}, ErrNotFound
	}
	return state, nil
}

func (s *MqttStore) Write(ctx context.Context, id string, value any) error {
	payload, err := json.Marshal(Normalize(value))
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	topic := idToTopic(s.config.TopicPrefix, id)

	timeout := mqttPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	token := s.client.Publish(topic, 1, !s.isCommand(id), payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (s *MqttStore) isCommand(id string) bool {
	return len(s.config.SetSuffix) > 0 && strings.HasSuffix(id, "."+s.config.SetSuffix)
}

func (s *MqttStore) Subscribe(ctx context.Context, id string) (<-chan State, error) {
	return s.notifier.subscribe(ctx, id), nil
}

func (s *MqttStore) Close() error {
	s.client.Disconnect(1000) // 1 second timeout
	s.notifier.close()
	return nil
}

func subscriptionTopic(prefix string) string {
	if len(prefix) <= 0 {
		return "#"
	}
	return strings.TrimSuffix(prefix, "/") + "/#"
}

// idToTopic converts a dotted state id to a topic below the given prefix
func idToTopic(prefix string, id string) string {
	topic := strings.ReplaceAll(id, ".", "/")
	if len(prefix) <= 0 {
		return topic
	}
	return strings.TrimSuffix(prefix, "/") + "/" + topic
}

func topicToId(prefix string, topic string) (string, bool) {
	if len(prefix) > 0 {
		p := strings.TrimSuffix(prefix, "/") + "/"
		if !strings.HasPrefix(topic, p) {
			return "", false
		}
		topic = strings.TrimPrefix(topic, p)
	}
	if len(topic) <= 0 {
		return "", false
	}
	return strings.ReplaceAll(topic, "/", "."), true
}

// decodePayload interprets the payload as json and falls back to the raw string
func decodePayload(payload []byte) any {
	var value any
	err := json.Unmarshal(payload, &value)
	if err != nil {
		return strings.TrimSpace(string(payload))
	}
	return Normalize(value)
}
