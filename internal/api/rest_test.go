package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markusressel/growctl/internal/controller"
	"github.com/markusressel/growctl/internal/heartbeat"
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockBackend struct {
	points    []points.PointState
	setpoints map[string]float64
}

func (b *MockBackend) Points() []points.PointState     { return b.points }
func (b *MockBackend) Setpoints() map[string]float64   { return b.setpoints }
func (b *MockBackend) Status() setpoints.Status        { return setpoints.Status{LightPhase: setpoints.PhaseOn} }
func (b *MockBackend) Heartbeat() heartbeat.Statistics { return heartbeat.Statistics{Connects: 1} }
func (b *MockBackend) Loop() controller.LoopStatistics { return controller.LoopStatistics{Cycles: 3} }
func (b *MockBackend) Io() points.EngineStatistics     { return points.EngineStatistics{Reads: 7} }
func (b *MockBackend) SetSetpoint(_ context.Context, name string, value float64) error {
	if _, ok := b.setpoints[name]; !ok {
		return fmt.Errorf("%w: %s", setpoints.ErrUnknownSetpoint, name)
	}
	b.setpoints[name] = value
	return nil
}

func newBackend() *MockBackend {
	return &MockBackend{
		points: []points.PointState{
			{Role: points.RoleTopTemperature, Kind: points.PointKindInput, Id: "sensor.top", Value: 21.5, Valid: true},
			{Role: points.RoleHeaterOn, Kind: points.PointKindOutput, Id: "actor.heater", Value: false, Desired: true, Valid: true},
		},
		setpoints: map[string]float64{
			"LightOn.DesiredTemperature": 25,
		},
	}
}

func request(t *testing.T, backend Backend, method string, path string, body string) *httptest.ResponseRecorder {
	rest := CreateRestService(backend, prometheus.NewRegistry())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	rest.ServeHTTP(rec, req)
	return rec
}

func TestAlive(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/alive", "")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPoints(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/io/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result []points.PointState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result, 2)
	assert.Equal(t, "sensor.top", result[0].Id)
}

func TestGetPoint(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/io/HeaterOn/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result points.PointState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "actor.heater", result.Id)
	assert.Equal(t, true, result.Desired)
}

func TestGetPointNotFound(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/io/Unknown/", "")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutSetpoint(t *testing.T) {
	// GIVEN
	backend := newBackend()

	// WHEN
	rec := request(t, backend, http.MethodPut, "/setpoint/LightOn.DesiredTemperature/", `{"value": 23.5}`)

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 23.5, backend.setpoints["LightOn.DesiredTemperature"])
}

func TestPutSetpointMissingValue(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodPut, "/setpoint/LightOn.DesiredTemperature/", `{}`)

	// THEN
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutUnknownSetpoint(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodPut, "/setpoint/Foo/", `{"value": 1}`)

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSetpoint(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/setpoint/LightOn.DesiredTemperature/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result SetpointValue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 25.0, *result.Value)
}

func TestGetLoop(t *testing.T) {
	// WHEN
	rec := request(t, newBackend(), http.MethodGet, "/loop/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Loop controller.LoopStatistics `json:"loop"`
		Io   points.EngineStatistics   `json:"io"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.EqualValues(t, 3, result.Loop.Cycles)
	assert.EqualValues(t, 7, result.Io.Reads)
}
