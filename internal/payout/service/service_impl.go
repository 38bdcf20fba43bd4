package service

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/internal/observability/metrics"
	"github.com/lordsbespoke/atelier/internal/payout/domain"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
	userservice "github.com/lordsbespoke/atelier/internal/user/service"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Metrics *metrics.Metrics
	Ledger  ledgerdomain.Service
	Users   userdomain.Repository
}

type Service struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	ledger  ledgerdomain.Service
	users   userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("payout.service"),
		metrics: p.Metrics,
		ledger:  p.Ledger,
		users:   p.Users,
	}
}

func (s *Service) Distribute(ctx context.Context, tx *gorm.DB, req domain.DistributeRequest) (*domain.Result, error) {
	referral, err := s.resolveChains(ctx, tx, req.WorkerID)
	if err != nil {
		return nil, err
	}

	plan := domain.BuildPlan(domain.BuildInput{
		OrderID:    req.OrderID,
		WorkerID:   req.WorkerID,
		TaskLabel:  req.TaskLabel,
		BasePayout: req.BasePayout,
		Settings:   req.Settings,
		Referral:   referral,
	})

	result := &domain.Result{Plan: plan}
	for _, entry := range plan.Entries {
		orderID := req.OrderID
		_, err := s.ledger.RecordTx(ctx, tx, ledgerdomain.RecordRequest{
			UserID:         entry.UserID,
			WalletType:     entry.WalletType,
			Direction:      ledgerdomain.DirectionCredit,
			Amount:         entry.Amount,
			Description:    entry.Description,
			RelatedOrderID: &orderID,
			RelatedUserID:  entry.RelatedUserID,
			Level:          entry.Level,
			IdempotencyKey: entry.IdempotencyKey,
		})
		if errors.Is(err, ledgerdomain.ErrDuplicateTransaction) {
			result.Duplicates++
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Written++
	}

	s.metrics.AddCascadeWrites(result.Written, result.Duplicates)
	s.log.Info("cascade distributed",
		zap.Int64("order_id", int64(req.OrderID)),
		zap.String("worker_id", req.WorkerID),
		zap.Float64("base_payout", plan.BasePayout),
		zap.Float64("worker_net", plan.WorkerNet),
		zap.Int("written", result.Written),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

// resolveChains walks the worker's referral chain, then each upline's
// magic chain, all against the caller's transaction so the cascade sees
// one consistent graph snapshot.
func (s *Service) resolveChains(ctx context.Context, tx *gorm.DB, workerID string) ([]domain.Hop, error) {
	uplines, err := userservice.Chain(ctx, tx, s.users, s.log, workerID, config.LevelCount, func(u *userdomain.User) *string {
		return u.UplineID
	})
	if err != nil {
		return nil, err
	}

	hops := make([]domain.Hop, 0, len(uplines))
	for _, upline := range uplines {
		magicChain, err := userservice.Chain(ctx, tx, s.users, s.log, upline.ID, config.LevelCount, func(u *userdomain.User) *string {
			return u.MagicUplineID
		})
		if err != nil {
			return nil, err
		}
		magic := make([]string, 0, len(magicChain))
		for _, m := range magicChain {
			magic = append(magic, m.ID)
		}
		hops = append(hops, domain.Hop{UserID: upline.ID, Magic: magic})
	}
	return hops, nil
}
