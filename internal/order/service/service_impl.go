package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/lordsbespoke/atelier/internal/audit/domain"
	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/internal/observability/metrics"
	"github.com/lordsbespoke/atelier/internal/order/domain"
	payoutdomain "github.com/lordsbespoke/atelier/internal/payout/domain"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
	"github.com/lordsbespoke/atelier/internal/ratelimit"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

const acceptLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Node    *snowflake.Node
	Locker  *ratelimit.Locker `optional:"true"`
	Holder  *config.DistributionHolder
	Metrics *metrics.Metrics
	Repo    domain.Repository
	Users   userdomain.Repository
	Rates   ratedomain.Service
	Payout  payoutdomain.Service
	Ledger  ledgerdomain.Service
	Audit   auditdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	node    *snowflake.Node
	locker  *ratelimit.Locker
	holder  *config.DistributionHolder
	metrics *metrics.Metrics
	repo    domain.Repository
	users   userdomain.Repository
	rates   ratedomain.Service
	payout  payoutdomain.Service
	ledger  ledgerdomain.Service
	audit   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		clock:   p.Clock,
		node:    p.Node,
		locker:  p.Locker,
		holder:  p.Holder,
		metrics: p.Metrics,
		repo:    p.Repo,
		users:   p.Users,
		rates:   p.Rates,
		payout:  p.Payout,
		ledger:  p.Ledger,
		audit:   p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.Type) == "" {
		return nil, domain.ErrInvalidOrder
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidOrder
	}
	quality := req.Quality
	if quality == "" {
		quality = ratedomain.QualityRegular
	}
	if !quality.Valid() {
		return nil, domain.ErrInvalidOrder
	}

	creator, err := s.users.FindByID(ctx, s.db, req.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, domain.ErrUnknownWorker
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:               s.node.Generate(),
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerMobile:   strings.TrimSpace(req.CustomerMobile),
		Type:             strings.TrimSpace(req.Type),
		Quality:          quality,
		Price:            req.Price,
		Measurements:     req.Measurements,
		Folder:           domain.FolderSelf,
		Stage:            domain.StagePlaced,
		HandoverStatus:   domain.HandoverAccepted,
		AssignedWorkerID: creator.ID,
		WorkerHistory:    domain.WorkerHistory{creator.ID},
		CreatorID:        creator.ID,
		SecurityCode:     fmt.Sprintf("%04d", rand.Intn(10000)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, order); err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.Int64("order_id", int64(order.ID)),
		zap.String("creator_id", creator.ID),
		zap.String("type", order.Type),
	)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]*domain.Order, error) {
	return s.repo.List(ctx, s.db, f)
}

// Send hands an order off to the next worker. The handover stays Pending
// until the receiver accepts; a terminal stage also settles any cash
// collected on delivery into the creator's Booking wallet.
func (s *Service) Send(ctx context.Context, req domain.SendRequest) (*domain.Order, error) {
	if !req.NextStage.Valid() {
		return nil, domain.ErrInvalidStage
	}

	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	receiver, err := s.users.FindByID(ctx, s.db, req.ToWorkerID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, domain.ErrUnknownWorker
	}

	folder := domain.FolderInbox
	if req.NextStage.Terminal() {
		folder = domain.FolderCompleted
	}
	if req.Folder != "" {
		if !req.Folder.Valid() {
			return nil, domain.ErrInvalidFolder
		}
		folder = req.Folder
	}

	// Zero means no cash was collected; only garbage input fails the send.
	var codAmount float64
	if req.NextStage.Terminal() && strings.TrimSpace(req.CODAmount) != "" {
		codAmount, err = ledgerdomain.ParseCollectedAmount(req.CODAmount)
		if err != nil {
			return nil, err
		}
	}

	sender := req.SenderID
	order.Folder = folder
	order.Stage = req.NextStage
	order.HandoverStatus = domain.HandoverPending
	order.PreviousWorkerID = &sender
	order.AssignedWorkerID = receiver.ID
	order.WorkerHistory = order.WorkerHistory.Add(receiver.ID)
	order.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if codAmount > 0 {
			orderID := order.ID
			_, err := s.ledger.RecordTx(ctx, tx, ledgerdomain.RecordRequest{
				UserID:         order.CreatorID,
				WalletType:     ledgerdomain.WalletBooking,
				Direction:      ledgerdomain.DirectionCredit,
				Amount:         codAmount,
				Description:    fmt.Sprintf("COD collection for order %d", order.ID),
				RelatedOrderID: &orderID,
				IdempotencyKey: fmt.Sprintf("cod:%d", order.ID),
			})
			if errors.Is(err, ledgerdomain.ErrDuplicateTransaction) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order sent",
		zap.Int64("order_id", int64(order.ID)),
		zap.String("from", sender),
		zap.String("to", receiver.ID),
		zap.String("stage", string(order.Stage)),
	)
	return order, nil
}

// AcceptHandover flips the pending handover and, when the previous
// worker did production work, runs the reward cascade. The state flip
// and every cascade write commit in one transaction.
func (s *Service) AcceptHandover(ctx context.Context, req domain.AcceptRequest) (*domain.AcceptResult, error) {
	lockKey := fmt.Sprintf("order:accept:%d", req.OrderID)
	token, ok, err := s.locker.TryLock(ctx, lockKey, acceptLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrLocked
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("accept lock release failed", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.HandoverStatus == domain.HandoverAccepted {
		return nil, domain.ErrInvalidTransition
	}

	acceptor, err := s.users.FindByID(ctx, s.db, req.AcceptorID)
	if err != nil {
		return nil, err
	}
	if acceptor == nil {
		return nil, domain.ErrUnknownWorker
	}

	// one settings snapshot for the whole cascade
	settings := s.holder.Get()

	order.HandoverStatus = domain.HandoverAccepted
	if order.Folder != domain.FolderCompleted {
		order.Folder = domain.FolderSave
	}
	if !order.IsPaid && acceptor.Role == userdomain.RoleCutting {
		order.IsPaid = true
	}
	order.UpdatedAt = s.clock.Now()

	result := &domain.AcceptResult{Order: order}
	cascadeAttempted := false

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if order.PreviousWorkerID == nil || *order.PreviousWorkerID == "" {
			return nil
		}

		previous, err := s.users.FindByID(ctx, tx, *order.PreviousWorkerID)
		if err != nil {
			return err
		}
		if previous == nil || previous.Role.Administrative() {
			return nil
		}

		resolution, err := s.rates.Resolve(ctx, ratedomain.ResolveRequest{
			TaskType:    order.Type,
			RoleKeyword: previous.Role.RateKeyword(),
			Quality:     order.Quality,
			Price:       order.Price,
		})
		if errors.Is(err, ratedomain.ErrRateNotFound) {
			result.CascadeSkipped = true
			orderID := order.ID
			return s.audit.RecordTx(ctx, tx, auditdomain.RecordRequest{
				Action:  auditdomain.ActionRateNotFound,
				Level:   auditdomain.LevelWarning,
				ActorID: req.AcceptorID,
				OrderID: &orderID,
				Detail: fmt.Sprintf("no rate entry for type %q role %q quality %q",
					order.Type, previous.Role, order.Quality),
			})
		}
		if err != nil {
			return err
		}

		cascadeAttempted = true
		distribution, err := s.payout.Distribute(ctx, tx, payoutdomain.DistributeRequest{
			OrderID:    order.ID,
			WorkerID:   previous.ID,
			TaskLabel:  resolution.Rate.Type,
			BasePayout: resolution.BasePayout,
			Settings:   settings,
		})
		if err != nil {
			return err
		}
		result.CascadeRun = true
		result.LedgerWrites = distribution.Written
		return nil
	})
	if err != nil {
		if cascadeAttempted {
			s.metrics.ObserveCascade("failed")
		}
		return nil, err
	}

	switch {
	case result.CascadeRun:
		s.metrics.ObserveCascade("completed")
	case result.CascadeSkipped:
		s.metrics.ObserveCascade("rate_not_found")
		s.log.Warn("cascade skipped, no matching rate entry",
			zap.Int64("order_id", int64(order.ID)),
			zap.String("type", order.Type),
		)
	}
	return result, nil
}

func (s *Service) SaveMeasurements(ctx context.Context, req domain.SaveMeasurementsRequest) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	order.Measurements = req.Data
	if req.UpdatedPrice != nil {
		if *req.UpdatedPrice < 0 {
			return nil, domain.ErrInvalidOrder
		}
		order.Price = *req.UpdatedPrice
	}
	order.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID, actorID string) error {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	orderID := order.ID
	return s.audit.Record(ctx, auditdomain.RecordRequest{
		Action:  auditdomain.ActionOrderDeleted,
		ActorID: actorID,
		OrderID: &orderID,
		Detail:  fmt.Sprintf("order for %s deleted at stage %s", order.CustomerName, order.Stage),
	})
}
