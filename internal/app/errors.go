package service

import (
	"context"
	"errors"

	"github.com/okian/astrocore/internal/adapters/mq/queue"
	"github.com/okian/astrocore/internal/adapters/repository"
	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/internal/domain/tz"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrBackpressure  = errors.New("recompute queue full")
	ErrBatchTooLarge = errors.New("batch too large")
	ErrEmptyBatch    = errors.New("empty batch")
)

// Error kinds reported in metrics and mapped to HTTP statuses.
const (
	KindValidation   = "validation"
	KindTimezone     = "timezone"
	KindEphemeris    = "ephemeris"
	KindScoreSet     = "score_set"
	KindRelationship = "relationship"
	KindNotFound     = "not_found"
	KindBackpressure = "backpressure"
	KindBatch        = "batch"
	KindCanceled     = "canceled"
	KindUnavailable  = "unavailable"
	KindInternal     = "internal"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, signs.ErrValidation), errors.Is(err, repository.ErrInvalidID):
		return KindValidation
	case errors.Is(err, tz.ErrTimezoneResolution):
		return KindTimezone
	case errors.Is(err, ephemeris.ErrEphemerisComputation), errors.Is(err, ephemeris.ErrInvalidCoordinates):
		return KindEphemeris
	case errors.Is(err, compat.ErrInvalidScoreSet):
		return KindScoreSet
	case errors.Is(err, compat.ErrInvalidRelationshipType):
		return KindRelationship
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrQueueFull):
		return KindBackpressure
	case errors.Is(err, ErrBatchTooLarge), errors.Is(err, ErrEmptyBatch):
		return KindBatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrNotStarted), errors.Is(err, queue.ErrClosed):
		return KindUnavailable
	default:
		return KindInternal
	}
}
