package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, 5.0, Normalize(5))
	assert.Equal(t, 5.0, Normalize(int64(5)))
	assert.Equal(t, 2.5, Normalize(float32(2.5)))
	assert.Equal(t, true, Normalize(true))
	assert.Equal(t, "--", Normalize("--"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(1, 1.0))
	assert.True(t, Equal(0.1+0.2, 0.3))
	assert.True(t, Equal(true, true))
	assert.True(t, Equal("--", "--"))
	assert.False(t, Equal(true, 1.0))
	assert.False(t, Equal(1.0, "1"))
	assert.False(t, Equal(nil, 0))
}

func TestMemoryStore_ReadMissing(t *testing.T) {
	// GIVEN
	s := NewMemoryStore()

	// WHEN
	_, err := s.Read(context.Background(), "unknown")

	// THEN
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_WriteRead(t *testing.T) {
	// GIVEN
	s := NewMemoryStore()
	ctx := context.Background()

	// WHEN
	err := s.Write(ctx, "sensor.temperature", 21)
	assert.NoError(t, err)
	state, err := s.Read(ctx, "sensor.temperature")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "sensor.temperature", state.Id)
	assert.Equal(t, 21.0, state.Value)
	assert.False(t, state.Timestamp.IsZero())
	assert.Equal(t, []string{"sensor.temperature"}, s.Keys())
}

func TestMemoryStore_Subscribe(t *testing.T) {
	// GIVEN
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := s.Subscribe(ctx, "client.heartbeat")
	assert.NoError(t, err)

	// WHEN
	_ = s.Write(ctx, "other", 1)
	_ = s.Write(ctx, "client.heartbeat", 1700000000000)

	// THEN
	select {
	case state := <-changes:
		assert.Equal(t, "client.heartbeat", state.Id)
		assert.Equal(t, 1700000000000.0, state.Value)
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}
}

func TestMemoryStore_SubscribeKeepsLatest(t *testing.T) {
	// GIVEN
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, _ := s.Subscribe(ctx, "id")

	// WHEN
	_ = s.Write(ctx, "id", 1)
	_ = s.Write(ctx, "id", 2)
	_ = s.Write(ctx, "id", 3)

	// THEN
	state := <-changes
	assert.Equal(t, 3.0, state.Value)
}

func TestMemoryStore_SubscriptionClosedOnCancel(t *testing.T) {
	// GIVEN
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	changes, _ := s.Subscribe(ctx, "id")

	// WHEN
	cancel()

	// THEN
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestBoltStore_WriteRead(t *testing.T) {
	// GIVEN
	dbPath := filepath.Join(t.TempDir(), "sub", "growctl.db")
	s, err := NewBoltStore(dbPath)
	assert.NoError(t, err)
	ctx := context.Background()

	// WHEN
	err = s.Write(ctx, "actor.heater", true)
	assert.NoError(t, err)
	err = s.Write(ctx, "actor.fan", 128)
	assert.NoError(t, err)

	// THEN
	heater, err := s.Read(ctx, "actor.heater")
	assert.NoError(t, err)
	assert.Equal(t, true, heater.Value)

	fan, err := s.Read(ctx, "actor.fan")
	assert.NoError(t, err)
	assert.Equal(t, 128.0, fan.Value)

	_, err = s.Read(ctx, "actor.light")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Close())
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	// GIVEN
	dbPath := filepath.Join(t.TempDir(), "growctl.db")
	s, err := NewBoltStore(dbPath)
	assert.NoError(t, err)
	_ = s.Write(context.Background(), "setpoint", 24.5)
	_ = s.Close()

	// WHEN
	s, err = NewBoltStore(dbPath)
	assert.NoError(t, err)
	defer s.Close()
	state, err := s.Read(context.Background(), "setpoint")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 24.5, state.Value)
}

func TestNewStore_Memory(t *testing.T) {
	// WHEN
	s, err := NewStore(configuration.StoreConfig{Type: configuration.StoreTypeMemory})

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestNewStore_Unsupported(t *testing.T) {
	// WHEN
	_, err := NewStore(configuration.StoreConfig{Type: "redis"})

	// THEN
	assert.EqualError(t, err, "unsupported store type: redis")
}

func TestTopicMapping(t *testing.T) {
	assert.Equal(t, "home/grow/sensor/temperature", idToTopic("home/grow/", "sensor.temperature"))
	assert.Equal(t, "sensor/temperature", idToTopic("", "sensor.temperature"))
	assert.Equal(t, "home/grow/#", subscriptionTopic("home/grow"))
	assert.Equal(t, "#", subscriptionTopic(""))

	id, ok := topicToId("home/grow", "home/grow/sensor/temperature")
	assert.True(t, ok)
	assert.Equal(t, "sensor.temperature", id)

	_, ok = topicToId("home/grow", "other/sensor")
	assert.False(t, ok)
}

func TestDecodePayload(t *testing.T) {
	assert.Equal(t, 21.5, decodePayload([]byte("21.5")))
	assert.Equal(t, true, decodePayload([]byte("true")))
	assert.Equal(t, "--", decodePayload([]byte("\"--\"")))
	assert.Equal(t, "on", decodePayload([]byte(" on ")))
}
