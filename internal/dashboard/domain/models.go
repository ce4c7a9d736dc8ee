package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
)

type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
)

// Layout is the time layout of the bucket key for g.
func (g Granularity) Layout() string {
	if g == Month {
		return "2006-01"
	}
	return "2006-01-02"
}

// UsageBucket holds the usage totals of one day or month.
type UsageBucket struct {
	Key        string  `json:"bucket_key"`
	DataTotal  float64 `json:"data_total"`
	VoiceTotal int64   `json:"voice_total"`
	SMSTotal   int64   `json:"sms_total"`
	CostTotal  float64 `json:"cost_total"`
}

// InvoiceBucket holds the amount billed in one month. Total is the sum of
// invoice totals; Pending and Paid count invoices by status.
type InvoiceBucket struct {
	Key     string          `json:"bucket_key"`
	Total   decimal.Decimal `json:"total"`
	Pending int64           `json:"pending"`
	Paid    int64           `json:"paid"`
}

type Summary struct {
	Account            accountdomain.Account `json:"account"`
	Balance            balancedomain.Balance `json:"balance"`
	CurrentMonthUsage  float64               `json:"current_month_usage"`
	PreviousMonthUsage float64               `json:"previous_month_usage"`
	PendingInvoices    int64                 `json:"pending_invoices"`
	OverdueInvoices    int64                 `json:"overdue_invoices"`
	TotalInvoices      int64                 `json:"total_invoices"`
}

type Charts struct {
	Days           int             `json:"days"`
	Months         int             `json:"months"`
	DailyUsage     []UsageBucket   `json:"daily_usage"`
	MonthlyUsage   []UsageBucket   `json:"monthly_usage"`
	MonthlyInvoice []InvoiceBucket `json:"monthly_invoices"`
}

type ChartsRequest struct {
	Days   *int
	Months *int
}

type Service interface {
	Summary(context.Context) (Summary, error)
	Charts(context.Context, ChartsRequest) (Charts, error)
}

var (
	ErrInvalidAccount   = errors.New("invalid_account")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrBalanceNotFound  = errors.New("balance_not_found")
	ErrStoreUnavailable = errors.New("store_unavailable")
	ErrInvalidWindow    = errors.New("invalid_window")
)
