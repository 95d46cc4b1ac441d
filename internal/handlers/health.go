package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Health отвечает на проверку живости сервиса.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC()})
}
