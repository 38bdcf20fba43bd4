package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/config"
)

type DistributeRequest struct {
	OrderID    snowflake.ID
	WorkerID   string
	TaskLabel  string
	BasePayout float64
	Settings   config.DistributionSettings
}

type Result struct {
	Plan       *Plan
	Written    int
	Duplicates int
}

// Service turns a completed piece of work into ledger credits.
type Service interface {
	// Distribute resolves both upline chains, plans the cascade and
	// appends every entry inside the caller's transaction. Entries whose
	// idempotency key already exists are skipped and counted, so a retry
	// after a partial failure completes the cascade without doubling
	// anything.
	Distribute(ctx context.Context, tx *gorm.DB, req DistributeRequest) (*Result, error)
}
