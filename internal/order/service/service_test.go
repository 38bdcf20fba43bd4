package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	auditdomain "github.com/lordsbespoke/atelier/internal/audit/domain"
	auditrepository "github.com/lordsbespoke/atelier/internal/audit/repository"
	auditservice "github.com/lordsbespoke/atelier/internal/audit/service"
	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/config"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	ledgerrepository "github.com/lordsbespoke/atelier/internal/ledger/repository"
	ledgerservice "github.com/lordsbespoke/atelier/internal/ledger/service"
	"github.com/lordsbespoke/atelier/internal/order/domain"
	"github.com/lordsbespoke/atelier/internal/order/repository"
	payoutservice "github.com/lordsbespoke/atelier/internal/payout/service"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
	raterepository "github.com/lordsbespoke/atelier/internal/rate/repository"
	rateservice "github.com/lordsbespoke/atelier/internal/rate/service"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
	userrepository "github.com/lordsbespoke/atelier/internal/user/repository"
)

var testSchemas = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mobile TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		upline_id TEXT,
		magic_upline_id TEXT,
		password TEXT NOT NULL,
		can_withdraw BOOLEAN NOT NULL DEFAULT TRUE,
		joined_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		customer_name TEXT NOT NULL,
		customer_mobile TEXT,
		type TEXT NOT NULL,
		quality TEXT NOT NULL,
		price REAL NOT NULL,
		measurements TEXT,
		folder TEXT NOT NULL,
		stage TEXT NOT NULL,
		handover_status TEXT NOT NULL,
		assigned_worker_id TEXT NOT NULL,
		previous_worker_id TEXT,
		worker_history TEXT,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		creator_id TEXT NOT NULL,
		security_code TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		wallet_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT NOT NULL,
		related_order_id INTEGER,
		related_user_id TEXT,
		level TEXT,
		idempotency_key TEXT NOT NULL UNIQUE,
		occurred_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stitching_rates (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		normal REAL NOT NULL,
		medium REAL NOT NULL,
		regular REAL NOT NULL,
		vip REAL NOT NULL,
		rate_type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY,
		action TEXT NOT NULL,
		level TEXT NOT NULL,
		actor_id TEXT,
		order_id INTEGER,
		detail TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

type testEnv struct {
	db     *gorm.DB
	svc    domain.Service
	ledger ledgerdomain.Service
	audit  auditdomain.Service
	clock  *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:order_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	for _, schema := range testSchemas {
		require.NoError(t, db.Exec(schema).Error)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	ledger := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, Clock: fake, Node: node, Repo: ledgerrepository.Provide(),
	})
	audit := auditservice.New(auditservice.Params{
		DB: db, Log: log, Clock: fake, Node: node, Repo: auditrepository.Provide(),
	})
	rates := rateservice.New(rateservice.Params{
		DB: db, Log: log, Repo: raterepository.Provide(),
	})
	payout := payoutservice.New(payoutservice.Params{
		Log: log, Ledger: ledger, Users: userrepository.Provide(),
	})

	holder := &config.DistributionHolder{}
	require.NoError(t, holder.Store(config.DefaultDistributionSettings()))

	svc := New(Params{
		DB:     db,
		Log:    log,
		Clock:  fake,
		Node:   node,
		Holder: holder,
		Repo:   repository.Provide(),
		Users:  userrepository.Provide(),
		Rates:  rates,
		Payout: payout,
		Ledger: ledger,
		Audit:  audit,
	})

	return &testEnv{db: db, svc: svc, ledger: ledger, audit: audit, clock: fake}
}

func (e *testEnv) seedUser(t *testing.T, id string, role userdomain.Role, uplineID *string) {
	t.Helper()
	require.NoError(t, e.db.Exec(
		`INSERT INTO users (id, name, mobile, role, status, upline_id, magic_upline_id, password, can_withdraw, joined_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "User "+id, "99000"+id, role, userdomain.StatusActive,
		uplineID, uplineID, "123456", true, time.Now().UTC(), time.Now().UTC(),
	).Error)
}

func (e *testEnv) seedRate(t *testing.T, id int64, label string, normal, medium, regular, vip float64) {
	t.Helper()
	require.NoError(t, e.db.Exec(
		`INSERT INTO stitching_rates (id, type, normal, medium, regular, vip, rate_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, label, normal, medium, regular, vip, ratedomain.RateTypeFixed,
	).Error)
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID:    "LBT-0001",
		CustomerName: "Ravi Kumar",
		Type:         "Shirt",
		Price:        1200,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FolderSelf, order.Folder)
	assert.Equal(t, domain.StagePlaced, order.Stage)
	assert.Equal(t, domain.HandoverAccepted, order.HandoverStatus)
	assert.Equal(t, ratedomain.QualityRegular, order.Quality)
	assert.Equal(t, domain.WorkerHistory{"LBT-0001"}, order.WorkerHistory)
	assert.Len(t, order.SecurityCode, 4)

	got, err := env.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.CustomerName, got.CustomerName)

	_, err = env.svc.Get(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)

	_, err := env.svc.Create(ctx, domain.CreateRequest{CreatorID: "LBT-0001", Type: "Shirt"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "A", Type: "Shirt", Price: -5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-9999", CustomerName: "A", Type: "Shirt",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownWorker)
}

func TestSendSetsHandoverState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RoleMeasurement, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	sent, err := env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0001",
		ToWorkerID: "LBT-0002",
		NextStage:  domain.StageMeasurement,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FolderInbox, sent.Folder)
	assert.Equal(t, domain.StageMeasurement, sent.Stage)
	assert.Equal(t, domain.HandoverPending, sent.HandoverStatus)
	require.NotNil(t, sent.PreviousWorkerID)
	assert.Equal(t, "LBT-0001", *sent.PreviousWorkerID)
	assert.Equal(t, "LBT-0002", sent.AssignedWorkerID)
	assert.Equal(t, domain.WorkerHistory{"LBT-0001", "LBT-0002"}, sent.WorkerHistory)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID: order.ID, SenderID: "LBT-0001", ToWorkerID: "LBT-0002", NextStage: domain.Stage("Ironing"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID: 424242, SenderID: "LBT-0001", ToWorkerID: "LBT-0002", NextStage: domain.StageCutting,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendTerminalCreditsCOD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RolePress, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	sent, err := env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0002",
		ToWorkerID: "LBT-0001",
		NextStage:  domain.StageDelivered,
		CODAmount:  "₹500",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FolderCompleted, sent.Folder)

	balance, err := env.ledger.BalanceOf(ctx, "LBT-0001", ledgerdomain.WalletBooking)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)

	// a re-send of the same delivery cannot double the collection
	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0002",
		ToWorkerID: "LBT-0001",
		NextStage:  domain.StageDelivered,
		CODAmount:  "500",
	})
	require.NoError(t, err)

	balance, err = env.ledger.BalanceOf(ctx, "LBT-0001", ledgerdomain.WalletBooking)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0002",
		ToWorkerID: "LBT-0001",
		NextStage:  domain.StageDelivered,
		CODAmount:  "not money",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestSendZeroCODDeliversWithoutCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RolePress, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	// zero collected is not an error, it is the prepaid path
	sent, err := env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0002",
		ToWorkerID: "LBT-0001",
		NextStage:  domain.StageDelivered,
		CODAmount:  "0",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FolderCompleted, sent.Folder)
	assert.Equal(t, domain.StageDelivered, sent.Stage)

	balance, err := env.ledger.BalanceOf(ctx, "LBT-0001", ledgerdomain.WalletBooking)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestSendToReturnFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RoleMeasurement, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	sent, err := env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0001",
		ToWorkerID: "LBT-0002",
		Folder:     domain.FolderReturn,
		NextStage:  domain.StageMeasurement,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FolderReturn, sent.Folder)
	assert.Equal(t, domain.HandoverPending, sent.HandoverStatus)

	returned, err := env.svc.List(ctx, domain.ListFilter{
		WorkerID: "LBT-0002", Folder: domain.FolderReturn,
	})
	require.NoError(t, err)
	require.Len(t, returned, 1)
	assert.Equal(t, order.ID, returned[0].ID)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID:    order.ID,
		SenderID:   "LBT-0001",
		ToWorkerID: "LBT-0002",
		Folder:     domain.Folder("Archive"),
		NextStage:  domain.StageMeasurement,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFolder)
}

func TestAcceptRunsCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0009", userdomain.RoleCoatMaker, nil)
	env.seedUser(t, "LBT-0002", userdomain.RoleMeasurement, strPtr("LBT-0009"))
	env.seedUser(t, "LBT-0003", userdomain.RoleCutting, nil)
	env.seedRate(t, 1, "Shirt Measurement", 30, 40, 50, 70)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	// measurement worker finishes and hands off to cutting
	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID: order.ID, SenderID: "LBT-0002", ToWorkerID: "LBT-0003", NextStage: domain.StageCutting,
	})
	require.NoError(t, err)

	result, err := env.svc.AcceptHandover(ctx, domain.AcceptRequest{
		OrderID: order.ID, AcceptorID: "LBT-0003",
	})
	require.NoError(t, err)
	assert.True(t, result.CascadeRun)
	assert.False(t, result.CascadeSkipped)
	assert.Equal(t, domain.HandoverAccepted, result.Order.HandoverStatus)
	assert.Equal(t, domain.FolderSave, result.Order.Folder)

	// fixed rate 50 for Regular: worker net 42.50, pool 7.50
	workerDaily, err := env.ledger.BalanceOf(ctx, "LBT-0002", ledgerdomain.WalletDaily)
	require.NoError(t, err)
	assert.Equal(t, 42.5, workerDaily)

	// L1 upline: gross 7.50*25% = 1.875, net 1.50 after magic tax
	uplineDownline, err := env.ledger.BalanceOf(ctx, "LBT-0009", ledgerdomain.WalletDownline)
	require.NoError(t, err)
	assert.Equal(t, 1.5, uplineDownline)

	// cutting acceptor marks the order paid
	assert.True(t, result.Order.IsPaid)

	_, err = env.svc.AcceptHandover(ctx, domain.AcceptRequest{
		OrderID: order.ID, AcceptorID: "LBT-0003",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAcceptFromAdminSkipsCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RoleMeasurement, nil)
	env.seedRate(t, 1, "Shirt Measurement", 30, 40, 50, 70)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID: order.ID, SenderID: "LBT-0001", ToWorkerID: "LBT-0002", NextStage: domain.StageMeasurement,
	})
	require.NoError(t, err)

	result, err := env.svc.AcceptHandover(ctx, domain.AcceptRequest{
		OrderID: order.ID, AcceptorID: "LBT-0002",
	})
	require.NoError(t, err)
	assert.False(t, result.CascadeRun)
	assert.False(t, result.CascadeSkipped)

	total, err := env.ledger.BalanceOf(ctx, "LBT-0001", ledgerdomain.WalletTotal)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAcceptWithoutRateEntrySkipsAndAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)
	env.seedUser(t, "LBT-0002", userdomain.RoleMeasurement, nil)
	env.seedUser(t, "LBT-0003", userdomain.RoleCutting, nil)
	// rate table has no Shirt Measurement entry

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	_, err = env.svc.Send(ctx, domain.SendRequest{
		OrderID: order.ID, SenderID: "LBT-0002", ToWorkerID: "LBT-0003", NextStage: domain.StageCutting,
	})
	require.NoError(t, err)

	result, err := env.svc.AcceptHandover(ctx, domain.AcceptRequest{
		OrderID: order.ID, AcceptorID: "LBT-0003",
	})
	require.NoError(t, err)
	assert.True(t, result.CascadeSkipped)
	assert.False(t, result.CascadeRun)

	// the transition persisted
	got, err := env.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HandoverAccepted, got.HandoverStatus)
	assert.Equal(t, domain.FolderSave, got.Folder)

	// zero cascade writes
	total, err := env.ledger.BalanceOf(ctx, "LBT-0002", ledgerdomain.WalletTotal)
	require.NoError(t, err)
	assert.Zero(t, total)

	// and the gap is visible in the audit trail
	entries, err := env.audit.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionRateNotFound})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].OrderID)
	assert.Equal(t, order.ID, *entries[0].OrderID)
}

func TestSaveMeasurements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	price := 1500.0
	updated, err := env.svc.SaveMeasurements(ctx, domain.SaveMeasurementsRequest{
		OrderID:      order.ID,
		Data:         `{"chest":40,"sleeve":24}`,
		UpdatedPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"chest":40,"sleeve":24}`, updated.Measurements)
	assert.Equal(t, 1500.0, updated.Price)

	// measurement updates never touch the ledger
	total, err := env.ledger.BalanceOf(ctx, "LBT-0001", ledgerdomain.WalletTotal)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "LBT-0001", userdomain.RoleAdmin, nil)

	order, err := env.svc.Create(ctx, domain.CreateRequest{
		CreatorID: "LBT-0001", CustomerName: "Ravi", Type: "Shirt", Price: 1200,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, order.ID, "LBT-0001"))

	_, err = env.svc.Get(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := env.audit.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionOrderDeleted})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
