package service

import (
	"context"
	"strings"

	"github.com/lordsbespoke/atelier/internal/user/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Chain walks a parent-pointer chain starting from the user above startID.
// The parent fields carry no acyclicity guarantee, so the walk is bounded by
// maxHops and by a visited set: a cycle stops the walk instead of looping.
// Exported at package level so the payout engine can walk chains inside its
// own transaction handle.
func Chain(ctx context.Context, db *gorm.DB, repo domain.Repository, log *zap.Logger, startID string, maxHops int, next func(*domain.User) *string) ([]domain.User, error) {
	startID = strings.TrimSpace(startID)
	if startID == "" {
		return nil, nil
	}

	start, err := repo.FindByID(ctx, db, startID)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, domain.ErrNotFound
	}

	visited := map[string]struct{}{startID: {}}
	chain := make([]domain.User, 0, maxHops)

	current := next(start)
	for range maxHops {
		if current == nil || *current == "" {
			break
		}
		if _, seen := visited[*current]; seen {
			if log != nil {
				log.Warn("upline chain cycle detected",
					zap.String("start_id", startID),
					zap.String("repeat_id", *current),
					zap.Int("depth", len(chain)),
				)
			}
			break
		}

		parent, err := repo.FindByID(ctx, db, *current)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}

		visited[parent.ID] = struct{}{}
		chain = append(chain, *parent)
		current = next(parent)
	}

	return chain, nil
}
