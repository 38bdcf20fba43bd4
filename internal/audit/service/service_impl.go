package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/audit/domain"
	"github.com/lordsbespoke/atelier/internal/clock"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Node  *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	node  *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		clock: p.Clock,
		node:  p.Node,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) error {
	return s.RecordTx(ctx, s.db, req)
}

func (s *Service) RecordTx(ctx context.Context, db *gorm.DB, req domain.RecordRequest) error {
	level := req.Level
	if level == "" {
		level = domain.LevelInfo
	}
	entry := &domain.AuditLog{
		ID:        s.node.Generate(),
		Action:    req.Action,
		Level:     level,
		ActorID:   req.ActorID,
		OrderID:   req.OrderID,
		Detail:    req.Detail,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, db, entry); err != nil {
		return err
	}
	s.log.Info("audit event",
		zap.String("action", req.Action),
		zap.String("actor_id", req.ActorID),
		zap.String("detail", req.Detail),
	)
	return nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]*domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, f)
}
