package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	accountrepo "github.com/smallbiznis/telcox/internal/account/repository"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	balancerepo "github.com/smallbiznis/telcox/internal/balance/repository"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/dashboard/domain"
	invoicerepo "github.com/smallbiznis/telcox/internal/invoice/repository"
	"github.com/smallbiznis/telcox/internal/testutil"
	usagerepo "github.com/smallbiznis/telcox/internal/usage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func newService(db *gorm.DB) domain.Service {
	return New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       clock.NewFakeClock(fixedNow),
		Config:      config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig()),
		AccountRepo: accountrepo.Provide(),
		BalanceRepo: balancerepo.Provide(),
		UsageRepo:   usagerepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
	})
}

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	accountID snowflake.ID
	ctx       context.Context
}

func setup(t *testing.T, withBalance bool) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.MustNode(t)
	accountID := node.Generate()

	require.NoError(t, db.Exec(
		`INSERT INTO accounts (id, name, email, password_hash, status, created_at, updated_at) VALUES (?, 'Ana', 'ana@example.com', 'x', 'active', ?, ?)`,
		accountID, fixedNow, fixedNow,
	).Error)
	if withBalance {
		require.NoError(t, db.Exec(
			`INSERT INTO balances (id, account_id, current, credit_limit, available, currency, last_updated_at, created_at, updated_at) VALUES (?, ?, 25, 100, 125, 'USD', ?, ?, ?)`,
			node.Generate(), accountID, fixedNow, fixedNow, fixedNow,
		).Error)
	}

	return fixture{
		db:        db,
		node:      node,
		accountID: accountID,
		ctx:       accountcontext.WithAccountID(context.Background(), accountID),
	}
}

func (f fixture) usage(t *testing.T, service string, qty, cost float64, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		`INSERT INTO usage_records (id, account_id, service, quantity, unit, recorded_at, class, unit_cost, total_cost, created_at) VALUES (?, ?, ?, ?, 'u', ?, 'normal', 0, ?, ?)`,
		f.node.Generate(), f.accountID, service, qty, at, cost, at,
	).Error)
}

func (f fixture) invoice(t *testing.T, status string, issuedAt time.Time) {
	t.Helper()
	id := f.node.Generate()
	require.NoError(t, f.db.Exec(
		`INSERT INTO invoices (id, account_id, number, subtotal, tax, discount, total, issued_at, due_at, status, created_at, updated_at) VALUES (?, ?, ?, 10, 1, 0, 11, ?, ?, ?, ?, ?)`,
		id, f.accountID, "INV-"+id.String(), issuedAt, issuedAt.AddDate(0, 0, 15), status, issuedAt, issuedAt,
	).Error)
}

func TestSummaryAggregatesCurrentAndPreviousMonth(t *testing.T) {
	f := setup(t, true)
	f.usage(t, "data", 100, 1, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	f.usage(t, "voice_minutes", 50, 1, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	f.usage(t, "sms", 7, 1, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC))
	f.usage(t, "sms", 9, 1, time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC))
	f.invoice(t, "pending", fixedNow.AddDate(0, 0, -3))
	f.invoice(t, "overdue", fixedNow.AddDate(0, -1, 0))
	f.invoice(t, "paid", fixedNow.AddDate(0, -2, 0))

	got, err := newService(f.db).Summary(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 150.0, got.CurrentMonthUsage)
	assert.Equal(t, 7.0, got.PreviousMonthUsage)
	assert.Equal(t, int64(1), got.PendingInvoices)
	assert.Equal(t, int64(1), got.OverdueInvoices)
	assert.Equal(t, int64(3), got.TotalInvoices)
	assert.Equal(t, f.accountID, got.Account.ID)
	assert.Equal(t, "125", got.Balance.Available.String())
}

func TestSummaryWithoutUsageIsZero(t *testing.T) {
	f := setup(t, true)

	got, err := newService(f.db).Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.CurrentMonthUsage)
	assert.Equal(t, 0.0, got.PreviousMonthUsage)
	assert.Zero(t, got.TotalInvoices)
}

func TestSummaryMissingBalance(t *testing.T) {
	f := setup(t, false)

	_, err := newService(f.db).Summary(f.ctx)
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}

func TestSummaryUnknownAccount(t *testing.T) {
	f := setup(t, true)
	ctx := accountcontext.WithAccountID(context.Background(), f.node.Generate())

	_, err := newService(f.db).Summary(ctx)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestSummaryRequiresAccountContext(t *testing.T) {
	f := setup(t, true)

	_, err := newService(f.db).Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}

func TestSummaryStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	accountID := snowflake.ID(1001)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "status", "created_at", "updated_at"}).
			AddRow(int64(accountID), "Ana", "ana@example.com", "active", fixedNow, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("FROM balances")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "current", "credit_limit", "available", "currency", "last_updated_at"}).
			AddRow(int64(2002), int64(accountID), "0", "0", "0", "USD", fixedNow))
	mock.ExpectQuery("usage_records").WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	ctx := accountcontext.WithAccountID(context.Background(), accountID)
	got, err := newService(db).Summary(ctx)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, domain.Summary{}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChartsDefaultsAndBuckets(t *testing.T) {
	f := setup(t, true)
	f.usage(t, "data", 1.5, 0.5, fixedNow.Add(-2*time.Hour))
	f.usage(t, "voice_minutes", 3.7, 0.25, fixedNow.Add(-26*time.Hour))
	f.usage(t, "sms", 2, 0.1, fixedNow.AddDate(0, 0, -40))
	f.usage(t, "data", 9, 9, fixedNow.AddDate(0, 0, -400))
	f.invoice(t, "pending", fixedNow.AddDate(0, 0, -5))
	f.invoice(t, "paid", fixedNow.AddDate(0, -1, 0))

	charts, err := newService(f.db).Charts(f.ctx, domain.ChartsRequest{})
	require.NoError(t, err)

	assert.Equal(t, 7, charts.Days)
	assert.Equal(t, 6, charts.Months)

	require.Len(t, charts.DailyUsage, 2)
	assert.Equal(t, "2024-03-19", charts.DailyUsage[0].Key)
	assert.Equal(t, int64(3), charts.DailyUsage[0].VoiceTotal)
	assert.Equal(t, "2024-03-20", charts.DailyUsage[1].Key)
	assert.Equal(t, 1.5, charts.DailyUsage[1].DataTotal)

	require.Len(t, charts.MonthlyUsage, 2)
	assert.Equal(t, "2024-02", charts.MonthlyUsage[0].Key)
	assert.Equal(t, int64(2), charts.MonthlyUsage[0].SMSTotal)
	assert.Equal(t, "2024-03", charts.MonthlyUsage[1].Key)

	require.Len(t, charts.MonthlyInvoice, 2)
	assert.Equal(t, int64(1), charts.MonthlyInvoice[0].Paid)
	assert.Equal(t, int64(1), charts.MonthlyInvoice[1].Pending)
	assert.Equal(t, "11", charts.MonthlyInvoice[0].Total.String())
	assert.Equal(t, "11", charts.MonthlyInvoice[1].Total.String())
}

func TestChartsEmptyIsNotNil(t *testing.T) {
	f := setup(t, true)
	days, months := 1, 1

	charts, err := newService(f.db).Charts(f.ctx, domain.ChartsRequest{Days: &days, Months: &months})
	require.NoError(t, err)
	assert.NotNil(t, charts.DailyUsage)
	assert.Empty(t, charts.DailyUsage)
	assert.NotNil(t, charts.MonthlyInvoice)
}

func TestChartsRejectsOutOfRangeWindow(t *testing.T) {
	f := setup(t, true)
	svc := newService(f.db)

	for _, n := range []int{0, -1, 91} {
		days := n
		_, err := svc.Charts(f.ctx, domain.ChartsRequest{Days: &days})
		assert.ErrorIs(t, err, domain.ErrInvalidWindow, "days=%d", n)
	}
	months := 25
	_, err := svc.Charts(f.ctx, domain.ChartsRequest{Months: &months})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
