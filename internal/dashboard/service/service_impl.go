package service

import (
	"context"
	"errors"
	"fmt"

	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/dashboard/aggregate"
	"github.com/smallbiznis/telcox/internal/dashboard/domain"
	"github.com/smallbiznis/telcox/internal/dashboard/summary"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Config      *config.DashboardConfigHolder
	AccountRepo accountdomain.Repository
	BalanceRepo balancedomain.Repository
	UsageRepo   usagedomain.Repository
	InvoiceRepo invoicedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	config      *config.DashboardConfigHolder
	accountRepo accountdomain.Repository
	balanceRepo balancedomain.Repository
	usageRepo   usagedomain.Repository
	invoiceRepo invoicedomain.Repository
}

func New(p Params) domain.Service {
	holder := p.Config
	if holder == nil {
		holder = config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig())
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("dashboard.service"),
		clock:       p.Clock,
		config:      holder,
		accountRepo: p.AccountRepo,
		balanceRepo: p.BalanceRepo,
		usageRepo:   p.UsageRepo,
		invoiceRepo: p.InvoiceRepo,
	}
}

// Summary reads everything inside one transaction so the counts and sums
// describe the same snapshot.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Summary{}, domain.ErrInvalidAccount
	}

	var result domain.Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.FindByID(ctx, tx, accountID)
		if err != nil {
			return unavailable("account", err)
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		balance, err := s.balanceRepo.FindByAccountID(ctx, tx, accountID)
		if err != nil {
			return unavailable("balance", err)
		}

		store := txStore{tx: tx, usage: s.usageRepo, invoices: s.invoiceRepo}
		result, err = summary.Calculate(ctx, store, summary.Input{
			Account: *account,
			Balance: balance,
			Now:     s.clock.Now(),
		})
		return err
	})
	if err != nil {
		s.logFailure("summary", accountID.String(), err)
		return domain.Summary{}, wrapTxErr(err)
	}
	return result, nil
}

func (s *Service) Charts(ctx context.Context, req domain.ChartsRequest) (domain.Charts, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Charts{}, domain.ErrInvalidAccount
	}

	cfg := s.config.Get()
	days, err := resolveWindow(req.Days, cfg.DefaultDays, cfg.MaxDays)
	if err != nil {
		return domain.Charts{}, err
	}
	months, err := resolveWindow(req.Months, cfg.DefaultMonths, cfg.MaxMonths)
	if err != nil {
		return domain.Charts{}, err
	}

	now := s.clock.Now()
	charts := domain.Charts{Days: days, Months: months}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		daily, err := s.usageRepo.FetchRange(ctx, tx, accountID, aggregate.DailyWindowStart(now, days))
		if err != nil {
			return unavailable("daily usage", err)
		}
		monthlyStart := aggregate.MonthlyWindowStart(now, months)
		monthly, err := s.usageRepo.FetchRange(ctx, tx, accountID, monthlyStart)
		if err != nil {
			return unavailable("monthly usage", err)
		}
		invoices, err := s.invoiceRepo.ListIssuedSince(ctx, tx, accountID, monthlyStart)
		if err != nil {
			return unavailable("monthly invoices", err)
		}

		charts.DailyUsage = aggregate.AggregateUsage(daily, domain.Day)
		charts.MonthlyUsage = aggregate.AggregateUsage(monthly, domain.Month)
		charts.MonthlyInvoice = aggregate.AggregateInvoices(invoices, domain.Month)
		return nil
	})
	if err != nil {
		s.logFailure("charts", accountID.String(), err)
		return domain.Charts{}, wrapTxErr(err)
	}
	return charts, nil
}

func (s *Service) logFailure(op, accountID string, err error) {
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		return
	}
	s.log.Error("dashboard read failed",
		zap.String("operation", op),
		zap.String("account_id", accountID),
		zap.Error(err),
	)
}

// resolveWindow applies the default when requested is nil and rejects
// values outside [1, max].
func resolveWindow(requested *int, def, max int) (int, error) {
	if requested == nil {
		return def, nil
	}
	if *requested <= 0 || *requested > max {
		return 0, domain.ErrInvalidWindow
	}
	return *requested, nil
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, what, err)
}

// wrapTxErr classifies begin and commit failures, which surface without a
// domain sentinel.
func wrapTxErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrBalanceNotFound):
		return err
	default:
		return unavailable("transaction", err)
	}
}
