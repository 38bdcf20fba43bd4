package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/lordsbespoke/atelier/internal/audit/domain"
	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/internal/request/domain"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Node   *snowflake.Node
	Holder *config.DistributionHolder
	Users  userdomain.Repository
	Ledger ledgerdomain.Service
	Audit  auditdomain.Service
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	node   *snowflake.Node
	holder *config.DistributionHolder
	users  userdomain.Repository
	ledger ledgerdomain.Service
	audit  auditdomain.Service
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("request.service"),
		clock:  p.Clock,
		node:   p.Node,
		holder: p.Holder,
		users:  p.Users,
		ledger: p.Ledger,
		audit:  p.Audit,
		repo:   p.Repo,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Request, error) {
	if !req.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if _, err := ledgerdomain.ParseAmount(req.Amount); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnknownUser
	}
	if req.Type == domain.TypeWithdraw {
		if !s.holder.Get().WithdrawalsEnabled || !user.CanWithdraw {
			return nil, domain.ErrWithdrawalDisabled
		}
	}

	request := &domain.Request{
		ID:             s.node.Generate(),
		UserID:         user.ID,
		Type:           req.Type,
		Amount:         req.Amount,
		Status:         domain.StatusPending,
		UTR:            req.UTR,
		Method:         req.Method,
		PaymentDetails: req.PaymentDetails,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, request); err != nil {
		return nil, err
	}

	s.log.Info("request submitted",
		zap.Int64("request_id", int64(request.ID)),
		zap.String("user_id", user.ID),
		zap.String("type", string(req.Type)),
	)
	return request, nil
}

func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.Request, error) {
	request, err := s.repo.FindByID(ctx, s.db, req.RequestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	if request.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyResolved
	}

	now := s.clock.Now()
	status := domain.StatusRejected
	var amount float64
	if req.Approved {
		status = domain.StatusApproved
		// fail closed: an unparsable amount leaves the request PENDING
		amount, err = ledgerdomain.ParseAmount(request.Amount)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Approved {
			if err := s.applyLedger(ctx, tx, request, amount); err != nil {
				return err
			}
		}

		updated, err := s.repo.MarkResolved(ctx, tx, request.ID, status, req.ResolverID, now)
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrAlreadyResolved
		}

		return s.audit.RecordTx(ctx, tx, auditdomain.RecordRequest{
			Action:  auditdomain.ActionRequestResolved,
			ActorID: req.ResolverID,
			Detail: fmt.Sprintf("request %d (%s by %s) %s",
				request.ID, request.Type, request.UserID, status),
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = status
	request.ResolverID = req.ResolverID
	request.ResolvedAt = &now

	s.log.Info("request resolved",
		zap.Int64("request_id", int64(request.ID)),
		zap.String("status", string(status)),
		zap.String("resolver_id", req.ResolverID),
	)
	return request, nil
}

// applyLedger writes the single transaction an approval produces:
// ADD_FUNDS credits Booking, WITHDRAW debits Daily. The key is derived
// from the request id, so a replayed approval can never double-pay.
func (s *Service) applyLedger(ctx context.Context, tx *gorm.DB, request *domain.Request, amount float64) error {
	record := ledgerdomain.RecordRequest{
		UserID:         request.UserID,
		Amount:         amount,
		IdempotencyKey: fmt.Sprintf("req:%d", request.ID),
	}
	switch request.Type {
	case domain.TypeAddFunds:
		record.WalletType = ledgerdomain.WalletBooking
		record.Direction = ledgerdomain.DirectionCredit
		record.Description = "Funds added on approved request"
	case domain.TypeWithdraw:
		record.WalletType = ledgerdomain.WalletDaily
		record.Direction = ledgerdomain.DirectionDebit
		record.Description = "Withdrawal on approved request"
	default:
		return domain.ErrInvalidType
	}

	_, err := s.ledger.RecordTx(ctx, tx, record)
	if errors.Is(err, ledgerdomain.ErrDuplicateTransaction) {
		// a previous attempt landed the write but died before the status
		// flip; finishing the flip completes that attempt
		return nil
	}
	return err
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Request, error) {
	request, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	return request, nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]*domain.Request, error) {
	return s.repo.List(ctx, s.db, f)
}
