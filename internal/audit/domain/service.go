package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RecordRequest struct {
	Action  string
	Level   Level // defaults to info
	ActorID string
	OrderID *snowflake.ID
	Detail  string
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error

	// RecordTx appends against a caller-supplied handle so an audit event
	// can commit atomically with the operation it describes.
	RecordTx(ctx context.Context, db *gorm.DB, req RecordRequest) error

	List(ctx context.Context, f ListFilter) ([]*AuditLog, error)
}
