package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/controller"
	"github.com/markusressel/growctl/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createControlLoop() *controller.ControlLoop {
	config := configuration.Configuration{
		Namespace: "growctl.0",
		ObjectIds: configuration.ObjectIdConfig{
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
		Scaling: configuration.ScalingConfig{
			FanPercent: configuration.RangeConfig{Min: 0, Max: 255},
		},
		General: configuration.GeneralConfig{
			ControlLoopInterval: time.Minute,
			HeartbeatTimeout:    time.Minute,
			HeartbeatInterval:   time.Minute,
			MeasurementSource:   configuration.MeasurementSourceTop,
		},
	}
	return controller.NewControlLoop(config, store.NewMemoryStore(), time.Now)
}

func TestRegisterCollectors(t *testing.T) {
	// GIVEN
	registry := prometheus.NewRegistry()

	// WHEN
	registerCollectors(registry, createControlLoop())
	families, err := registry.Gather()

	// THEN
	require.NoError(t, err)
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["growctl_loop_cycles_total"])
	assert.True(t, names["growctl_heartbeat_connected"])
	assert.True(t, names["growctl_io_fallbacks_total"])
	assert.True(t, names["growctl_status_value"])
}

func TestCreateStatisticsServer(t *testing.T) {
	// GIVEN
	registry := prometheus.NewRegistry()
	registerCollectors(registry, createControlLoop())

	// WHEN
	server := createStatisticsServer(0, registry)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// THEN
	assert.Equal(t, ":9000", server.Addr)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "growctl_loop_state 0"))
}
