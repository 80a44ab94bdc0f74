package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerStatusEndpoints(rest *echo.Echo, backend Backend) {
	rest.GET("/status/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, backend.Status(), indentationChar)
	})
	rest.GET("/heartbeat/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, backend.Heartbeat(), indentationChar)
	})
	rest.GET("/loop/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, map[string]any{
			"loop": backend.Loop(),
			"io":   backend.Io(),
		}, indentationChar)
	})
}
