package service

import (
	"context"
	"strings"
	"time"

	"github.com/lordsbespoke/atelier/internal/rate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("rate.service"),
		repo: p.Repo,
	}
}

// Resolve matches entries by substring: the entry label must contain the
// order's task type, and the role keyword when one applies. Entries are
// scanned in id order and the first match wins; multi-matches are possible
// with overlapping labels and are resolved by that ordering alone.
func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.Resolution, error) {
	rates, err := s.repo.List(ctx, s.db)
	if err != nil {
		return domain.Resolution{}, err
	}

	taskType := strings.ToLower(strings.TrimSpace(req.TaskType))
	roleKeyword := strings.ToLower(strings.TrimSpace(req.RoleKeyword))

	for _, rate := range rates {
		if rate == nil {
			continue
		}
		label := strings.ToLower(rate.Type)
		if !strings.Contains(label, taskType) {
			continue
		}
		if roleKeyword != "" && !strings.Contains(label, roleKeyword) {
			continue
		}

		quality := req.Quality
		if !quality.Valid() {
			quality = domain.QualityRegular
		}
		raw := rate.Amount(quality)

		basePayout := raw
		if rate.RateType == domain.RateTypePercentage {
			basePayout = req.Price * raw / 100
		}

		return domain.Resolution{Rate: *rate, BasePayout: basePayout}, nil
	}

	return domain.Resolution{}, domain.ErrRateNotFound
}

func (s *Service) List(ctx context.Context) ([]domain.StitchingRate, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	rates := make([]domain.StitchingRate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rates = append(rates, *item)
	}
	return rates, nil
}

func (s *Service) Replace(ctx context.Context, rates []domain.StitchingRate) error {
	now := time.Now().UTC()
	for i := range rates {
		if strings.TrimSpace(rates[i].Type) == "" {
			return domain.ErrInvalidRate
		}
		if rates[i].RateType != domain.RateTypeFixed && rates[i].RateType != domain.RateTypePercentage {
			return domain.ErrInvalidRate
		}
		if rates[i].CreatedAt.IsZero() {
			rates[i].CreatedAt = now
		}
		rates[i].UpdatedAt = now
	}
	if err := s.repo.ReplaceAll(ctx, s.db, rates); err != nil {
		return err
	}
	s.log.Info("replaced rate table", zap.Int("entries", len(rates)))
	return nil
}
