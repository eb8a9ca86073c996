package api

import (
	"context"
	"net/http"

	service "github.com/okian/astrocore/internal/app"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/pkg/logger"
)

// ProfileDependencies stores profiles and queues their recomputation.
type ProfileDependencies interface {
	SubmitProfile(ctx context.Context, id, eventID string, b model.BirthEvent) (service.SubmitResult, error)
	GetProfile(ctx context.Context, id string) (model.Profile, error)
}

// ProfilesHandler handles profile requests.
type ProfilesHandler struct {
	deps   ProfileDependencies
	logger logger.Logger
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies, l logger.Logger) *ProfilesHandler {
	return &ProfilesHandler{deps: deps, logger: l}
}

// profileRequest mirrors the OpenAPI schema for POST /profiles.
type profileRequest struct {
	ID      string           `json:"id"`
	EventID string           `json:"event_id"`
	Birth   model.BirthEvent `json:"birth"`
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Version   int64  `json:"version"`
	Duplicate bool   `json:"duplicate"`
}

// HandleSubmit handles POST /profiles requests. The signs are resolved
// asynchronously; a repeated event_id is acknowledged as a duplicate.
func (h *ProfilesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_profile"
	var req profileRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, err)
		return
	}
	res, err := h.deps.SubmitProfile(r.Context(), req.ID, req.EventID, req.Birth)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{
			Status: "duplicate", ID: res.Profile.ID, EventID: res.EventID,
			Version: res.Profile.Version, Duplicate: true,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{
		Status: "accepted", ID: res.Profile.ID, EventID: res.EventID, Version: res.Profile.Version,
	})
}

// HandleGet handles GET /profiles/{id} requests.
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	id := r.PathValue("id")
	if id == "" {
		writeFailure(r.Context(), w, h.logger, NewKind(op, ErrMissingParameter))
		return
	}
	p, err := h.deps.GetProfile(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
