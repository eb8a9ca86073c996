// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/astrocore/internal/app"
	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/internal/domain/tz"
	"github.com/okian/astrocore/pkg/logger"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SignsDependencies
	CompatibilityDependencies
	DaysDependencies
	ProfileDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	signsHandler         *SignsHandler
	compatibilityHandler *CompatibilityHandler
	daysHandler          *DaysHandler
	profilesHandler      *ProfilesHandler
	logger               logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.signsHandler = NewSignsHandler(deps, s.logger)
	s.compatibilityHandler = NewCompatibilityHandler(deps, s.logger)
	s.daysHandler = NewDaysHandler(deps, s.logger)
	s.profilesHandler = NewProfilesHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /healthz", RequestID(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.Handle("GET /metrics", RequestID(MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics")))
	mux.Handle("GET /stats", RequestID(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.Handle("POST /signs", RequestID(MetricsMiddleware(s.signsHandler.HandleResolve, "signs")))
	mux.Handle("POST /signs/batch", RequestID(MetricsMiddleware(s.signsHandler.HandleBatch, "signs_batch")))
	mux.Handle("POST /compatibility", RequestID(MetricsMiddleware(s.compatibilityHandler.HandleScore, "compatibility")))
	mux.Handle("GET /days", RequestID(MetricsMiddleware(s.daysHandler.HandleDays, "days")))
	mux.Handle("POST /profiles", RequestID(MetricsMiddleware(s.profilesHandler.HandleSubmit, "profiles")))
	mux.Handle("GET /profiles/{id}", RequestID(MetricsMiddleware(s.profilesHandler.HandleGet, "profile")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Details: details(err)})
}

// writeFailure picks the status and code for err and writes it.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// classify maps err to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrMissingParameter):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	}
	switch service.ErrorKind(err) {
	case service.KindValidation:
		return http.StatusUnprocessableEntity, "validation_error"
	case service.KindTimezone:
		return http.StatusUnprocessableEntity, "timezone_error"
	case service.KindEphemeris:
		return http.StatusUnprocessableEntity, "ephemeris_error"
	case service.KindScoreSet:
		return http.StatusUnprocessableEntity, "invalid_score_set"
	case service.KindRelationship:
		return http.StatusBadRequest, "invalid_relationship_type"
	case service.KindNotFound:
		return http.StatusNotFound, "not_found"
	case service.KindBackpressure:
		return http.StatusTooManyRequests, "backpressure"
	case service.KindBatch:
		return http.StatusBadRequest, "bad_request"
	case service.KindCanceled:
		return http.StatusRequestTimeout, "canceled"
	case service.KindUnavailable:
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// details extracts machine-readable context from structured domain errors.
func details(err error) any {
	var ve *signs.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var ce *ephemeris.ComputationError
	if errors.As(err, &ce) {
		return map[string]any{"latitude": ce.Latitude, "house_system": ce.Houses, "reason": ce.Reason}
	}
	var re *tz.ResolutionError
	if errors.As(err, &re) {
		return map[string]any{"zone": re.Zone, "offset_hours": re.Offset}
	}
	var se *compat.ScoreSetError
	if errors.As(err, &se) && len(se.Categories) > 0 {
		return map[string]any{"categories": se.Categories}
	}
	return nil
}

// decodeJSON reads one JSON document from r into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WrapKind(op, ErrPayloadTooLarge, err)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, errTrailingData)
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after JSON body")
