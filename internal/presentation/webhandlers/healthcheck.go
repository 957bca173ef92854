package webhandlers

import (
	"context"
	"net/http"
	"time"
)

const healthcheckTimeout = 2 * time.Second

type healthcheckResponse struct {
	Version      string `json:"version"`
	Availability bool   `json:"availability"`
	Msg          string `json:"msg"`
}

// Healthcheck checks store availability and returns version.
func (app *Handlers) Healthcheck(w http.ResponseWriter, r *http.Request) {
	resp := &healthcheckResponse{
		Version:      app.Version,
		Availability: true,
		Msg:          "ok",
	}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	if err := app.pinger.Ping(ctx); err != nil {
		resp.Availability = false
		resp.Msg = "Error connection to database"
		code = http.StatusServiceUnavailable
		app.Logger.Warn("Healthcheck failed", "error", err)
	}

	if err := sendJSONResponse(w, resp, code); err != nil {
		app.Logger.Error(
			"Error on answer healthcheck",
			"error", err,
			"source_ip", getClientIP(r),
			"answer_code", code,
		)
	}
}
