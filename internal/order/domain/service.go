package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
)

var (
	ErrNotFound          = errors.New("order_not_found")
	ErrInvalidOrder      = errors.New("invalid_order")
	ErrInvalidStage      = errors.New("invalid_stage")
	ErrInvalidFolder     = errors.New("invalid_folder")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrUnknownWorker     = errors.New("unknown_worker")
	ErrLocked            = errors.New("order_locked")
)

type CreateRequest struct {
	CreatorID      string
	CustomerName   string
	CustomerMobile string
	Type           string
	Quality        ratedomain.Quality
	Price          float64
	Measurements   string
}

type SendRequest struct {
	OrderID    snowflake.ID
	SenderID   string
	ToWorkerID string
	// Folder is the receiver-side folder for the order. Empty picks Inbox,
	// or Completed when NextStage is terminal; Return sends work back for
	// correction.
	Folder    Folder
	NextStage Stage
	// CODAmount is the cash collected on a terminal handoff, as entered.
	// Empty means no collection.
	CODAmount string
}

type AcceptRequest struct {
	OrderID    snowflake.ID
	AcceptorID string
}

// AcceptResult reports what the handover acceptance did beyond the
// state flip.
type AcceptResult struct {
	Order          *Order
	CascadeRun     bool
	CascadeSkipped bool // rate table had no entry for the previous worker
	LedgerWrites   int
}

type SaveMeasurementsRequest struct {
	OrderID      snowflake.ID
	Data         string
	UpdatedPrice *float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	Get(ctx context.Context, id snowflake.ID) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	Send(ctx context.Context, req SendRequest) (*Order, error)
	AcceptHandover(ctx context.Context, req AcceptRequest) (*AcceptResult, error)
	SaveMeasurements(ctx context.Context, req SaveMeasurementsRequest) (*Order, error)
	Delete(ctx context.Context, id snowflake.ID, actorID string) error
}
