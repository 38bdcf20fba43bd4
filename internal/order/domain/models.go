package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"

	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
)

type Folder string

const (
	FolderSelf      Folder = "Self"
	FolderSave      Folder = "Save"
	FolderInbox     Folder = "Inbox"
	FolderReturn    Folder = "Return"
	FolderCompleted Folder = "Completed"
)

func (f Folder) Valid() bool {
	switch f {
	case FolderSelf, FolderSave, FolderInbox, FolderReturn, FolderCompleted:
		return true
	default:
		return false
	}
}

// Stage is the ordered production phase. Delivered is terminal.
type Stage string

const (
	StagePlaced      Stage = "Placed"
	StageMeasurement Stage = "Measurement"
	StageCutting     Stage = "Cutting"
	StageMaking      Stage = "Making"
	StageFinishing   Stage = "Finishing"
	StagePressing    Stage = "Pressing"
	StageDelivered   Stage = "Delivered"
)

var stageOrder = []Stage{
	StagePlaced, StageMeasurement, StageCutting, StageMaking,
	StageFinishing, StagePressing, StageDelivered,
}

func (s Stage) Valid() bool {
	for _, known := range stageOrder {
		if s == known {
			return true
		}
	}
	return false
}

func (s Stage) Terminal() bool { return s == StageDelivered }

type HandoverStatus string

const (
	HandoverPending  HandoverStatus = "Pending"
	HandoverAccepted HandoverStatus = "Accepted"
)

// WorkerHistory is the set of worker ids who have touched an order,
// stored as a JSON array. Add keeps set semantics.
type WorkerHistory []string

func (h WorkerHistory) Contains(id string) bool {
	for _, v := range h {
		if v == id {
			return true
		}
	}
	return false
}

func (h WorkerHistory) Add(id string) WorkerHistory {
	if id == "" || h.Contains(id) {
		return h
	}
	return append(h, id)
}

func (h WorkerHistory) Value() (driver.Value, error) {
	if h == nil {
		h = WorkerHistory{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *WorkerHistory) Scan(value any) error {
	if value == nil {
		*h = WorkerHistory{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("unsupported worker history type %T", value)
	}
}

type Order struct {
	ID               snowflake.ID       `gorm:"primaryKey" json:"id"`
	CustomerName     string             `gorm:"type:text;not null" json:"customerName"`
	CustomerMobile   string             `gorm:"type:text" json:"customerMobile,omitempty"`
	Type             string             `gorm:"type:text;not null" json:"type"`
	Quality          ratedomain.Quality `gorm:"type:text;not null" json:"quality"`
	Price            float64            `gorm:"not null" json:"price"`
	Measurements     string             `gorm:"type:text" json:"measurements,omitempty"`
	Folder           Folder             `gorm:"type:text;not null;index" json:"folder"`
	Stage            Stage              `gorm:"type:text;not null" json:"stage"`
	HandoverStatus   HandoverStatus     `gorm:"type:text;not null" json:"handoverStatus"`
	AssignedWorkerID string             `gorm:"type:text;not null;index" json:"assignedWorker"`
	PreviousWorkerID *string            `gorm:"type:text" json:"previousWorkerId,omitempty"`
	WorkerHistory    WorkerHistory      `gorm:"type:text" json:"workerHistory"`
	IsPaid           bool               `gorm:"not null;default:false" json:"isPaid"`
	CreatorID        string             `gorm:"type:text;not null" json:"creatorId"`
	SecurityCode     string             `gorm:"type:text" json:"securityCode,omitempty"`
	CreatedAt        time.Time          `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time          `gorm:"not null" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }
