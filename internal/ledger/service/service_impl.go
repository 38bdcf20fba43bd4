package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/internal/observability/metrics"
	"github.com/lordsbespoke/atelier/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Node    *snowflake.Node
	Metrics *metrics.Metrics
	Repo    domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	node    *snowflake.Node
	metrics *metrics.Metrics
	repo    domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		clock:   p.Clock,
		node:    p.Node,
		metrics: p.Metrics,
		repo:    p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.WalletTransaction, error) {
	return s.RecordTx(ctx, s.db, req)
}

// RecordTx is Record against a caller-supplied handle, so a ledger write
// can join an enclosing transaction.
func (s *Service) RecordTx(ctx context.Context, db *gorm.DB, req domain.RecordRequest) (*domain.WalletTransaction, error) {
	tx, err := s.build(req)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.Insert(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.log.Info("ledger write skipped, idempotency key seen before",
			zap.String("user_id", req.UserID),
			zap.String("idempotency_key", req.IdempotencyKey),
		)
		return nil, domain.ErrDuplicateTransaction
	}
	return tx, nil
}

func (s *Service) build(req domain.RecordRequest) (*domain.WalletTransaction, error) {
	if !req.WalletType.Valid() {
		s.metrics.ObserveLedgerRejected("invalid_wallet_type")
		return nil, domain.ErrInvalidWalletType
	}
	if !req.Direction.Valid() {
		s.metrics.ObserveLedgerRejected("invalid_direction")
		return nil, domain.ErrInvalidDirection
	}
	if !domain.ValidAmount(req.Amount) {
		s.metrics.ObserveLedgerRejected("invalid_amount")
		return nil, domain.ErrInvalidAmount
	}

	id := s.node.Generate()
	key := req.IdempotencyKey
	if key == "" {
		key = id.String()
	}

	return &domain.WalletTransaction{
		ID:             id,
		UserID:         req.UserID,
		WalletType:     req.WalletType,
		Direction:      req.Direction,
		Amount:         domain.Round(req.Amount),
		Description:    req.Description,
		RelatedOrderID: req.RelatedOrderID,
		RelatedUserID:  req.RelatedUserID,
		Level:          req.Level,
		IdempotencyKey: key,
		OccurredAt:     s.clock.Now(),
	}, nil
}

func (s *Service) BalanceOf(ctx context.Context, userID string, walletType domain.WalletType) (float64, error) {
	if walletType != domain.WalletTotal && !walletType.Valid() {
		return 0, domain.ErrInvalidWalletType
	}
	balance, err := s.repo.SumBalance(ctx, s.db, userID, walletType)
	if err != nil {
		return 0, err
	}
	return domain.Round(balance), nil
}

func (s *Service) HistoryOf(ctx context.Context, req domain.HistoryRequest) (*domain.HistoryResponse, error) {
	if req.WalletType != "" && req.WalletType != domain.WalletTotal && !req.WalletType.Valid() {
		return nil, domain.ErrInvalidWalletType
	}

	limit := req.Pagination.Limit()
	txs, err := s.repo.List(ctx, s.db, domain.ListFilter{
		UserID:     req.UserID,
		WalletType: req.WalletType,
		Pagination: req.Pagination,
	})
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(txs, limit, func(t *domain.WalletTransaction) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:         t.ID.String(),
			OccurredAt: t.OccurredAt.Format(time.RFC3339Nano),
		})
		return token
	})
	if len(txs) > limit {
		txs = txs[:limit]
	}

	return &domain.HistoryResponse{Transactions: txs, PageInfo: pageInfo}, nil
}

func (s *Service) ManualRelease(ctx context.Context, req domain.ManualReleaseRequest) (*domain.WalletTransaction, error) {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		s.metrics.ObserveLedgerRejected("invalid_amount")
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Manual fund release"
	}

	tx, err := s.Record(ctx, domain.RecordRequest{
		UserID:      req.UserID,
		WalletType:  req.WalletType,
		Direction:   domain.DirectionCredit,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("manual fund release",
		zap.String("user_id", req.UserID),
		zap.String("wallet_type", string(req.WalletType)),
		zap.Float64("amount", amount),
		zap.String("actor_id", req.ActorID),
	)
	return tx, nil
}

func (s *Service) Transfer(ctx context.Context, req domain.TransferRequest) error {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		s.metrics.ObserveLedgerRejected("invalid_amount")
		return err
	}
	if req.FromUserID == req.ToUserID {
		return domain.ErrInvalidAmount
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.repo.SumBalance(ctx, tx, req.FromUserID, domain.WalletBooking)
		if err != nil {
			return err
		}
		if balance < amount {
			return domain.ErrInsufficientFunds
		}

		note := req.Note
		if note == "" {
			note = "Fund transfer"
		}

		if _, err := s.RecordTx(ctx, tx, domain.RecordRequest{
			UserID:        req.FromUserID,
			WalletType:    domain.WalletBooking,
			Direction:     domain.DirectionDebit,
			Amount:        amount,
			Description:   fmt.Sprintf("%s to %s", note, req.ToUserID),
			RelatedUserID: req.ToUserID,
		}); err != nil {
			return err
		}
		if _, err := s.RecordTx(ctx, tx, domain.RecordRequest{
			UserID:        req.ToUserID,
			WalletType:    domain.WalletBooking,
			Direction:     domain.DirectionCredit,
			Amount:        amount,
			Description:   fmt.Sprintf("%s from %s", note, req.FromUserID),
			RelatedUserID: req.FromUserID,
		}); err != nil {
			return err
		}
		return nil
	})
}
