package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound           = errors.New("request_not_found")
	ErrInvalidType        = errors.New("invalid_request_type")
	ErrAlreadyResolved    = errors.New("request_already_resolved")
	ErrWithdrawalDisabled = errors.New("withdrawal_disabled")
	ErrUnknownUser        = errors.New("unknown_user")
)

type SubmitRequest struct {
	UserID         string
	Type           Type
	Amount         string
	UTR            string
	Method         string
	PaymentDetails string
}

type ResolveRequest struct {
	RequestID  snowflake.ID
	Approved   bool
	ResolverID string
}

type Service interface {
	// Submit validates that the amount sanitizes to a positive value and
	// creates a PENDING request. Withdrawals additionally require the
	// module toggle and the user's own withdrawal flag.
	Submit(ctx context.Context, req SubmitRequest) (*Request, error)

	// Resolve finalizes a request exactly once. Approval writes the ledger
	// entry and flips the status in one transaction; the status never
	// reaches APPROVED without its ledger write.
	Resolve(ctx context.Context, req ResolveRequest) (*Request, error)

	Get(ctx context.Context, id snowflake.ID) (*Request, error)
	List(ctx context.Context, f ListFilter) ([]*Request, error)
}
