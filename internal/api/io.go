package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/growctl/internal/points"
	"github.com/qdm12/reprint"
)

func registerIoEndpoints(rest *echo.Echo, backend Backend) {
	group := rest.Group("/io")

	group.GET("/", func(c echo.Context) error {
		return getPoints(c, backend)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getPoint(c, backend)
	})
}

// returns the state of all inputs and outputs
func getPoints(c echo.Context, backend Backend) error {
	data := reprint.This(backend.Points())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// returns a single point, identified by its role
func getPoint(c echo.Context, backend Backend) error {
	id := c.Param(urlParamId)
	for _, point := range backend.Points() {
		if point.Role == points.Role(id) {
			return c.JSONPretty(http.StatusOK, reprint.This(point), indentationChar)
		}
	}
	return returnNotFound(c, id)
}
