// Package webhandlers provides http handlers for clip service.
package webhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// Request headers.
const (
	HeaderPassword = "X-Clip-Password"
	HeaderAPIKey   = "X-API-Key"
)

// Pinger checks store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers struct contains services and provides handlers.
type Handlers struct {
	Version     string
	Logger      *slog.Logger
	clipService *service.ClipService
	pinger      Pinger
	maxBodySize int64
}

// NewHandlers constructor.
func NewHandlers(
	version string,
	logger *slog.Logger,
	clipService *service.ClipService,
	pinger Pinger,
	maxBodySize int64,
) *Handlers {
	return &Handlers{
		Version:     version,
		Logger:      logger,
		clipService: clipService,
		pinger:      pinger,
		maxBodySize: maxBodySize,
	}
}

// Register adds clip routes to mux.
func (app *Handlers) Register(mux *http.ServeMux, healthcheck bool) {
	mux.HandleFunc("POST /{$}", app.Create)
	mux.HandleFunc("GET /{shortcode}/{$}", app.Get)
	mux.HandleFunc("PUT /{shortcode}/{$}", app.Update)
	mux.HandleFunc("DELETE /{shortcode}/{$}", app.Delete)

	if healthcheck {
		mux.HandleFunc("GET /health/{$}", app.Healthcheck)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusCode maps service error kind to http status.
func statusCode(err error) int {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindValidation:
		return http.StatusBadRequest
	case domainerrors.KindNotFound:
		return http.StatusNotFound
	case domainerrors.KindConflict:
		return http.StatusConflict
	case domainerrors.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (app *Handlers) handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		app.answer(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "body too large"}, logger)
		return
	}

	code := statusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logger.Error("Internal error", "error", err, "answer_code", code)
		msg = http.StatusText(code)
	} else {
		logger.Debug("Request rejected", "error", err, "answer_code", code)
	}

	app.answer(w, code, errorResponse{Error: msg}, logger)
}

func (app *Handlers) answer(w http.ResponseWriter, code int, data any, logger *slog.Logger) {
	if err := sendJSONResponse(w, data, code); err != nil {
		logger.Error("Fail to answer", "error", err, "answer_code", code)
	}
}

func sendJSONResponse(
	w http.ResponseWriter,
	data any,
	statusCode int,
) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	ip = r.Header.Get("X-Real-IP")
	if ip != "" {
		return ip
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func detectProto(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}

	proto := r.Header.Get("X-Forwarded-Proto")
	if proto != "" {
		return proto
	}

	return "http"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
