package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/pkg/logger"
)

// CompatibilityDependencies scores category sets.
type CompatibilityDependencies interface {
	Score(ctx context.Context, set compat.ScoreSet, rel compat.RelationshipType) (compat.Breakdown, error)
	ScorePair(ctx context.Context, a, b compat.ScoreSet, rel compat.RelationshipType) (compat.Breakdown, error)
}

// CompatibilityHandler handles compatibility scoring requests.
type CompatibilityHandler struct {
	deps   CompatibilityDependencies
	logger logger.Logger
}

// NewCompatibilityHandler creates a new compatibility handler.
func NewCompatibilityHandler(deps CompatibilityDependencies, l logger.Logger) *CompatibilityHandler {
	return &CompatibilityHandler{deps: deps, logger: l}
}

// compatibilityRequest carries either a combined set in Scores or one set
// per person in A and B.
type compatibilityRequest struct {
	Scores       compat.ScoreSet `json:"scores,omitempty"`
	A            compat.ScoreSet `json:"a,omitempty"`
	B            compat.ScoreSet `json:"b,omitempty"`
	Relationship string          `json:"relationship"`
}

var (
	errAmbiguousScores = errors.New("give either scores or a and b, not both")
	errMissingScores   = errors.New("scores or a and b are required")
)

func (c compatibilityRequest) pair() (bool, error) {
	hasPair := c.A != nil || c.B != nil
	switch {
	case c.Scores != nil && hasPair:
		return false, errAmbiguousScores
	case c.Scores != nil:
		return false, nil
	case c.A != nil && c.B != nil:
		return true, nil
	default:
		return false, errMissingScores
	}
}

type compatibilityResponse struct {
	Score     int              `json:"score"`
	Breakdown compat.Breakdown `json:"breakdown"`
}

// HandleScore handles POST /compatibility requests.
func (h *CompatibilityHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_compatibility"
	var req compatibilityRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, err)
		return
	}
	pair, err := req.pair()
	if err != nil {
		writeFailure(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	rel, err := compat.ParseRelationshipType(req.Relationship)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}

	var b compat.Breakdown
	if pair {
		b, err = h.deps.ScorePair(r.Context(), req.A, req.B, rel)
	} else {
		b, err = h.deps.Score(r.Context(), req.Scores, rel)
	}
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, compatibilityResponse{Score: b.Overall, Breakdown: b})
}
