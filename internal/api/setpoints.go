package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/growctl/internal/setpoints"
)

type SetpointValue struct {
	Value *float64 `json:"value"`
}

func registerSetpointEndpoints(rest *echo.Echo, backend Backend) {
	group := rest.Group("/setpoint")

	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, backend.Setpoints(), indentationChar)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getSetpoint(c, backend)
	})
	group.PUT("/:"+urlParamId+"/", func(c echo.Context) error {
		return putSetpoint(c, backend)
	})
}

func getSetpoint(c echo.Context, backend Backend) error {
	id := c.Param(urlParamId)
	value, exists := backend.Setpoints()[id]
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, &SetpointValue{Value: &value}, indentationChar)
}

func putSetpoint(c echo.Context, backend Backend) error {
	id := c.Param(urlParamId)

	var body SetpointValue
	if err := c.Bind(&body); err != nil {
		return returnBadRequest(c, err)
	}
	if body.Value == nil {
		return returnBadRequest(c, errors.New("missing field 'value'"))
	}

	err := backend.SetSetpoint(c.Request().Context(), id, *body.Value)
	if errors.Is(err, setpoints.ErrUnknownSetpoint) {
		return returnNotFound(c, id)
	} else if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, &body, indentationChar)
}
