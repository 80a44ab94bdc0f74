package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/growctl/internal/controller"
	"github.com/markusressel/growctl/internal/heartbeat"
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamId      = "id"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Backend is the part of the control loop exposed via the REST api
type Backend interface {
	Points() []points.PointState
	Setpoints() map[string]float64
	SetSetpoint(ctx context.Context, name string, value float64) error
	Status() setpoints.Status
	Heartbeat() heartbeat.Statistics
	Loop() controller.LoopStatistics
	Io() points.EngineStatistics
}

func CreateRestService(backend Backend, registerer prometheus.Registerer) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())
	if registerer != nil {
		echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "api",
			Registerer: registerer,
		}))
	}

	echoRest.GET("/alive/", isAlive)

	registerIoEndpoints(echoRest, backend)
	registerSetpointEndpoints(echoRest, backend)
	registerStatusEndpoints(echoRest, backend)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
