package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
)

func TestBuildPlanBaseSplit(t *testing.T) {
	plan := BuildPlan(BuildInput{
		OrderID:    1001,
		WorkerID:   "LBT-0007",
		TaskLabel:  "Shirt Maker",
		BasePayout: 300,
		Settings:   config.DefaultDistributionSettings(),
	})

	assert.Equal(t, 255.0, plan.WorkerNet)
	assert.Equal(t, 45.0, plan.DeductionPool)

	require.Len(t, plan.Entries, 1)
	worker := plan.Entries[0]
	assert.Equal(t, "LBT-0007", worker.UserID)
	assert.Equal(t, ledgerdomain.WalletDaily, worker.WalletType)
	assert.Equal(t, 255.0, worker.Amount)
	assert.Equal(t, "Work payout (Shirt Maker)", worker.Description)
	assert.Equal(t, "1001:LBT-0007:Daily:0:0", worker.IdempotencyKey)
}

func TestBuildPlanSingleUpline(t *testing.T) {
	plan := BuildPlan(BuildInput{
		OrderID:    1001,
		WorkerID:   "LBT-0007",
		BasePayout: 300,
		Settings:   config.DefaultDistributionSettings(),
		Referral:   []Hop{{UserID: "LBT-0002"}},
	})

	require.Len(t, plan.Entries, 2)
	upline := plan.Entries[1]
	// gross 11.25, magic tax 2.25, net 9.00
	assert.Equal(t, "LBT-0002", upline.UserID)
	assert.Equal(t, ledgerdomain.WalletDownline, upline.WalletType)
	assert.Equal(t, 9.0, upline.Amount)
	assert.Equal(t, "L1", upline.Level)
	assert.Equal(t, "LBT-0007", upline.RelatedUserID)
	assert.Equal(t, "1001:LBT-0002:Downline:1:0", upline.IdempotencyKey)
}

func TestBuildPlanMagicCascade(t *testing.T) {
	plan := BuildPlan(BuildInput{
		OrderID:    1001,
		WorkerID:   "LBT-0007",
		BasePayout: 300,
		Settings:   config.DefaultDistributionSettings(),
		Referral:   []Hop{{UserID: "LBT-0002", Magic: []string{"LBT-0003", "LBT-0004"}}},
	})

	require.Len(t, plan.Entries, 4)

	// magic pool is the L1 tax of 2.25, split 25% / 15%
	m1 := plan.Entries[2]
	assert.Equal(t, "LBT-0003", m1.UserID)
	assert.Equal(t, ledgerdomain.WalletMagic, m1.WalletType)
	assert.Equal(t, 0.5625, m1.Amount)
	assert.Equal(t, "M-L1", m1.Level)
	assert.Equal(t, "1001:LBT-0003:Magic:1:1", m1.IdempotencyKey)

	m2 := plan.Entries[3]
	assert.Equal(t, "LBT-0004", m2.UserID)
	assert.Equal(t, 0.3375, m2.Amount)
	assert.Equal(t, "M-L2", m2.Level)
	assert.Equal(t, "1001:LBT-0004:Magic:2:1", m2.IdempotencyKey)
}

func TestBuildPlanConservation(t *testing.T) {
	settings := config.DefaultDistributionSettings()
	referral := make([]Hop, config.LevelCount)
	for i := range referral {
		referral[i] = Hop{UserID: fmt.Sprintf("LBT-%04d", i+10)}
	}

	plan := BuildPlan(BuildInput{
		OrderID:    42,
		WorkerID:   "LBT-0001",
		BasePayout: 300,
		Settings:   settings,
		Referral:   referral,
	})

	// with all 10 levels occupied and rates summing to 100, the worker net
	// plus every gross share (net income + magic tax) re-assembles the base
	var grossSum float64
	for _, e := range plan.Entries[1:] {
		require.Equal(t, ledgerdomain.WalletDownline, e.WalletType)
		grossSum += e.Amount / (1 - settings.MagicTaxPercent/100)
	}
	assert.InDelta(t, 300.0, plan.WorkerNet+grossSum, 0.001)
}

func TestBuildPlanZeroShareGuard(t *testing.T) {
	settings := config.DefaultDistributionSettings()
	settings.LevelDistributionRates = []float64{25, 0, 10, 0, 0, 0, 0, 0, 0, 0}

	plan := BuildPlan(BuildInput{
		OrderID:    7,
		WorkerID:   "LBT-0001",
		BasePayout: 300,
		Settings:   settings,
		Referral: []Hop{
			{UserID: "LBT-0002"},
			{UserID: "LBT-0003"},
			{UserID: "LBT-0004"},
		},
	})

	// level 2 has a zero rate: skipped, but level 3 still pays
	require.Len(t, plan.Entries, 3)
	assert.Equal(t, "L1", plan.Entries[1].Level)
	assert.Equal(t, "LBT-0002", plan.Entries[1].UserID)
	assert.Equal(t, "L3", plan.Entries[2].Level)
	assert.Equal(t, "LBT-0004", plan.Entries[2].UserID)

	for _, e := range plan.Entries {
		assert.Greater(t, e.Amount, 0.0)
	}
}

func TestBuildPlanDeterministicKeys(t *testing.T) {
	in := BuildInput{
		OrderID:    9,
		WorkerID:   "LBT-0001",
		BasePayout: 450,
		Settings:   config.DefaultDistributionSettings(),
		Referral: []Hop{
			{UserID: "LBT-0002", Magic: []string{"LBT-0003"}},
			{UserID: "LBT-0003", Magic: []string{"LBT-0002"}},
		},
	}

	a := BuildPlan(in)
	b := BuildPlan(in)
	require.Equal(t, len(a.Entries), len(b.Entries))

	seen := map[string]bool{}
	for i := range a.Entries {
		assert.Equal(t, a.Entries[i].IdempotencyKey, b.Entries[i].IdempotencyKey)
		assert.False(t, seen[a.Entries[i].IdempotencyKey], "key reused within one plan")
		seen[a.Entries[i].IdempotencyKey] = true
	}
}

func TestBuildPlanCapsAtTenLevels(t *testing.T) {
	referral := make([]Hop, 15)
	for i := range referral {
		referral[i] = Hop{UserID: fmt.Sprintf("LBT-%04d", i+10)}
	}

	plan := BuildPlan(BuildInput{
		OrderID:    11,
		WorkerID:   "LBT-0001",
		BasePayout: 300,
		Settings:   config.DefaultDistributionSettings(),
		Referral:   referral,
	})

	// worker entry + at most 10 referral levels
	assert.LessOrEqual(t, len(plan.Entries), 11)
}
