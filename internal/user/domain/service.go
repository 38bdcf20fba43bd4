package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	Name     string
	Mobile   string
	Role     Role
	UplineID string
}

type RegisterResponse struct {
	User     User   `json:"user"`
	Password string `json:"password"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)

	// UplineChain walks the referral parents of userID, at most maxHops
	// deep, stopping early on chain exhaustion or a detected cycle.
	UplineChain(ctx context.Context, userID string, maxHops int) ([]User, error)
	// MagicChain walks the magic-matrix parents of seedID.
	MagicChain(ctx context.Context, seedID string, maxHops int) ([]User, error)
}

var (
	ErrNotFound      = errors.New("user_not_found")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidMobile = errors.New("invalid_mobile")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrUnknownUpline = errors.New("unknown_upline")
)
