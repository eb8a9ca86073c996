package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/astrocore/internal/domain/tz"
	"github.com/okian/astrocore/pkg/logger"
)

// DaysDependencies resolves local calendar days for a zone.
type DaysDependencies interface {
	DayAnchors(ctx context.Context, zone string, offsetHours *float64) (tz.DayAnchors, error)
}

var errMissingZone = errors.New("tz or offset")

// DaysHandler handles day anchor requests.
type DaysHandler struct {
	deps   DaysDependencies
	logger logger.Logger
}

// NewDaysHandler creates a new days handler.
func NewDaysHandler(deps DaysDependencies, l logger.Logger) *DaysHandler {
	return &DaysHandler{deps: deps, logger: l}
}

// HandleDays handles GET /days?tz=<iana>&offset=<hours> requests.
// At least one of tz and offset must be given.
func (h *DaysHandler) HandleDays(w http.ResponseWriter, r *http.Request) {
	const op = "api.day_anchors"
	q := r.URL.Query()
	zone := q.Get("tz")

	var offset *float64
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeFailure(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, fmt.Errorf("offset %q: %w", raw, err)))
			return
		}
		offset = &v
	}
	if zone == "" && offset == nil {
		writeFailure(r.Context(), w, h.logger, WrapKind(op, ErrMissingParameter, errMissingZone))
		return
	}

	anchors, err := h.deps.DayAnchors(r.Context(), zone, offset)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, anchors)
}
