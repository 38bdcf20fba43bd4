package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idAllocAttempts = 10

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Register creates a worker under a sponsor. Both parent pointers start at
// the sponsor; the magic upline can be reassigned independently later.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.RegisterResponse{}, domain.ErrInvalidName
	}
	mobile := strings.TrimSpace(req.Mobile)
	if mobile == "" {
		return domain.RegisterResponse{}, domain.ErrInvalidMobile
	}
	if !req.Role.Valid() {
		return domain.RegisterResponse{}, domain.ErrInvalidRole
	}

	var uplineID *string
	if sponsor := strings.TrimSpace(req.UplineID); sponsor != "" {
		existing, err := s.repo.FindByID(ctx, s.db, sponsor)
		if err != nil {
			return domain.RegisterResponse{}, err
		}
		if existing == nil {
			return domain.RegisterResponse{}, domain.ErrUnknownUpline
		}
		uplineID = &sponsor
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	password := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	now := s.clock.Now()
	user := domain.User{
		ID:            id,
		Name:          name,
		Mobile:        mobile,
		Role:          req.Role,
		Status:        domain.StatusActive,
		UplineID:      uplineID,
		MagicUplineID: uplineID,
		Password:      password,
		CanWithdraw:   true,
		JoinedAt:      now,
		CreatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return domain.RegisterResponse{}, err
	}

	s.log.Info("registered user",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return domain.RegisterResponse{User: user, Password: password}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, strings.TrimSpace(id))
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}
	return users, nil
}

func (s *Service) UplineChain(ctx context.Context, userID string, maxHops int) ([]domain.User, error) {
	return Chain(ctx, s.db, s.repo, s.log, userID, maxHops, func(u *domain.User) *string {
		return u.UplineID
	})
}

func (s *Service) MagicChain(ctx context.Context, seedID string, maxHops int) ([]domain.User, error) {
	return Chain(ctx, s.db, s.repo, s.log, seedID, maxHops, func(u *domain.User) *string {
		return u.MagicUplineID
	})
}

func (s *Service) allocateID(ctx context.Context) (string, error) {
	for range idAllocAttempts {
		id := fmt.Sprintf("LBT-%04d", rand.Intn(9000)+1000)
		existing, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a free user id after %d attempts", idAllocAttempts)
}
