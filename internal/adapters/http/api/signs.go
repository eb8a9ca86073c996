package api

import (
	"context"
	"net/http"

	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/pkg/logger"
)

// SignsDependencies resolves birth data to sign triads.
type SignsDependencies interface {
	ResolveSigns(ctx context.Context, b model.BirthEvent) (model.SignTriad, error)
	ResolveBatch(ctx context.Context, births []model.BirthEvent) ([]signs.BatchResult, error)
}

// SignsHandler handles sign resolution requests.
type SignsHandler struct {
	deps   SignsDependencies
	logger logger.Logger
}

// NewSignsHandler creates a new signs handler.
func NewSignsHandler(deps SignsDependencies, l logger.Logger) *SignsHandler {
	return &SignsHandler{deps: deps, logger: l}
}

type batchRequest struct {
	Events []model.BirthEvent `json:"events"`
}

type batchItem struct {
	Index int              `json:"index"`
	Signs *model.SignTriad `json:"signs,omitempty"`
	Error *errorResponse   `json:"error,omitempty"`
}

type batchResponse struct {
	Results   []batchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// HandleResolve handles POST /signs requests.
func (h *SignsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve_signs"
	var req model.BirthEvent
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, err)
		return
	}
	triad, err := h.deps.ResolveSigns(r.Context(), req)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, triad)
}

// HandleBatch handles POST /signs/batch requests. Each element succeeds or
// fails on its own; the response is 200 unless the batch itself is rejected.
func (h *SignsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve_batch"
	var req batchRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, err)
		return
	}
	results, err := h.deps.ResolveBatch(r.Context(), req.Events)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(results))}
	for i, res := range results {
		item := batchItem{Index: res.Index}
		if res.Err != nil {
			_, code := classify(res.Err)
			item.Error = &errorResponse{Code: code, Message: res.Err.Error(), Details: details(res.Err)}
			resp.Failed++
		} else {
			triad := res.Triad
			item.Signs = &triad
			resp.Succeeded++
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}
