// Package summary computes the month-over-month billing summary of an account.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	"github.com/smallbiznis/telcox/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
)

// Store is the read-only view the calculator needs. Implementations return
// 0 for empty ranges and an error only when the store itself fails.
type Store interface {
	SumQuantity(ctx context.Context, accountID snowflake.ID, from, to *time.Time) (float64, error)
	CountInvoices(ctx context.Context, accountID snowflake.ID, status *invoicedomain.Status) (int64, error)
}

type Input struct {
	Account accountdomain.Account
	Balance *balancedomain.Balance
	Now     time.Time
}

// Window is a closed time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthStart is the first instant of the calendar month of now, in now's location.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// PreviousMonth spans from the first instant of the month before monthStart
// to one second before monthStart.
func PreviousMonth(monthStart time.Time) Window {
	lastDay := monthStart.AddDate(0, 0, -1)
	return Window{
		Start: time.Date(lastDay.Year(), lastDay.Month(), 1, 0, 0, 0, 0, monthStart.Location()),
		End:   monthStart.Add(-time.Second),
	}
}

// Calculate builds the summary. A missing balance fails before any read.
func Calculate(ctx context.Context, store Store, in Input) (domain.Summary, error) {
	if in.Balance == nil {
		return domain.Summary{}, domain.ErrBalanceNotFound
	}
	accountID := in.Account.ID

	monthStart := MonthStart(in.Now)
	current, err := store.SumQuantity(ctx, accountID, &monthStart, nil)
	if err != nil {
		return domain.Summary{}, unavailable("current month usage", err)
	}

	previous := PreviousMonth(monthStart)
	previousUsage, err := store.SumQuantity(ctx, accountID, &previous.Start, &previous.End)
	if err != nil {
		return domain.Summary{}, unavailable("previous month usage", err)
	}

	pendingStatus := invoicedomain.StatusPending
	pending, err := store.CountInvoices(ctx, accountID, &pendingStatus)
	if err != nil {
		return domain.Summary{}, unavailable("pending invoices", err)
	}

	overdueStatus := invoicedomain.StatusOverdue
	overdue, err := store.CountInvoices(ctx, accountID, &overdueStatus)
	if err != nil {
		return domain.Summary{}, unavailable("overdue invoices", err)
	}

	total, err := store.CountInvoices(ctx, accountID, nil)
	if err != nil {
		return domain.Summary{}, unavailable("total invoices", err)
	}

	return domain.Summary{
		Account:            in.Account,
		Balance:            *in.Balance,
		CurrentMonthUsage:  current,
		PreviousMonthUsage: previousUsage,
		PendingInvoices:    pending,
		OverdueInvoices:    overdue,
		TotalInvoices:      total,
	}, nil
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, what, err)
}
