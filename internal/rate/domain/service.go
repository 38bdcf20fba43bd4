package domain

import (
	"context"
	"errors"
)

// ResolveRequest identifies the work performed: the order's task type, the
// role of the worker who performed it, the order quality and price.
type ResolveRequest struct {
	TaskType    string
	RoleKeyword string
	Quality     Quality
	Price       float64
}

// Resolution is the matched entry plus the computed base payout.
type Resolution struct {
	Rate       StitchingRate
	BasePayout float64
}

type Service interface {
	// Resolve returns ErrRateNotFound when no entry matches; callers treat
	// that as a soft failure (handoff proceeds, cascade is skipped).
	Resolve(ctx context.Context, req ResolveRequest) (Resolution, error)
	List(ctx context.Context) ([]StitchingRate, error)
	Replace(ctx context.Context, rates []StitchingRate) error
}

var (
	ErrRateNotFound = errors.New("rate_not_found")
	ErrInvalidRate  = errors.New("invalid_rate")
)
