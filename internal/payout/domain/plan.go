package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
)

// Hop is one upline in the worker's referral chain together with that
// upline's own magic chain, pre-resolved so planning stays pure.
type Hop struct {
	UserID string
	Magic  []string
}

type BuildInput struct {
	OrderID    snowflake.ID
	WorkerID   string
	TaskLabel  string
	BasePayout float64
	Settings   config.DistributionSettings
	Referral   []Hop
}

// Entry is one planned ledger credit.
type Entry struct {
	UserID         string
	WalletType     ledgerdomain.WalletType
	Amount         float64
	Description    string
	Level          string
	RelatedUserID  string
	IdempotencyKey string
}

type Plan struct {
	OrderID       snowflake.ID
	WorkerID      string
	BasePayout    float64
	DeductionPool float64
	WorkerNet     float64
	Entries       []Entry
}

// BuildPlan computes every credit a completed piece of work produces.
//
// The base payout splits into the worker's net share and a deduction
// pool. The pool feeds the referral chain level by level; each level's
// gross share is taxed into a magic pool that cascades down that
// upline's own magic chain. All amounts are rounded to 5 decimals and
// zero shares are dropped, so every planned entry is strictly positive.
//
// Keys are derived from (order, payee, wallet, level, seeding hop),
// which makes re-planning the same order byte-for-byte replayable.
func BuildPlan(in BuildInput) *Plan {
	s := in.Settings
	pool := ledgerdomain.Round(in.BasePayout * s.WorkDeductionPercent / 100)
	workerNet := ledgerdomain.Round(in.BasePayout - pool)

	plan := &Plan{
		OrderID:       in.OrderID,
		WorkerID:      in.WorkerID,
		BasePayout:    ledgerdomain.Round(in.BasePayout),
		DeductionPool: pool,
		WorkerNet:     workerNet,
	}

	if workerNet > 0 {
		plan.Entries = append(plan.Entries, Entry{
			UserID:         in.WorkerID,
			WalletType:     ledgerdomain.WalletDaily,
			Amount:         workerNet,
			Description:    workDescription(in.TaskLabel),
			IdempotencyKey: key(in.OrderID, in.WorkerID, ledgerdomain.WalletDaily, 0, 0),
		})
	}

	for i, hop := range in.Referral {
		level := i + 1
		if level > config.LevelCount || level > len(s.LevelDistributionRates) {
			break
		}
		gross := ledgerdomain.Round(pool * s.LevelDistributionRates[level-1] / 100)
		if gross <= 0 {
			continue
		}
		magicTax := ledgerdomain.Round(gross * s.MagicTaxPercent / 100)
		net := ledgerdomain.Round(gross - magicTax)

		if net > 0 {
			plan.Entries = append(plan.Entries, Entry{
				UserID:         hop.UserID,
				WalletType:     ledgerdomain.WalletDownline,
				Amount:         net,
				Description:    fmt.Sprintf("Level %d team income from %s", level, in.WorkerID),
				Level:          fmt.Sprintf("L%d", level),
				RelatedUserID:  in.WorkerID,
				IdempotencyKey: key(in.OrderID, hop.UserID, ledgerdomain.WalletDownline, level, 0),
			})
		}

		for j, magicID := range hop.Magic {
			magicLevel := j + 1
			if magicLevel > config.LevelCount || magicLevel > len(s.LevelDistributionRates) {
				break
			}
			share := ledgerdomain.Round(magicTax * s.LevelDistributionRates[magicLevel-1] / 100)
			if share <= 0 {
				continue
			}
			plan.Entries = append(plan.Entries, Entry{
				UserID:         magicID,
				WalletType:     ledgerdomain.WalletMagic,
				Amount:         share,
				Description:    fmt.Sprintf("Magic fund income via %s", hop.UserID),
				Level:          fmt.Sprintf("M-L%d", magicLevel),
				RelatedUserID:  hop.UserID,
				IdempotencyKey: key(in.OrderID, magicID, ledgerdomain.WalletMagic, magicLevel, level),
			})
		}
	}

	return plan
}

func workDescription(taskLabel string) string {
	if taskLabel == "" {
		return "Work payout"
	}
	return fmt.Sprintf("Work payout (%s)", taskLabel)
}

func key(orderID snowflake.ID, userID string, wallet ledgerdomain.WalletType, level, gen int) string {
	return fmt.Sprintf("%d:%s:%s:%d:%d", orderID, userID, wallet, level, gen)
}
