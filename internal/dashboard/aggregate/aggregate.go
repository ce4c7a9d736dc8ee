// Package aggregate buckets usage records and invoices into chart series.
//
// Bucket keys are formatted in the location carried by each timestamp; no
// zone conversion happens here. Output is sparse and keeps the order in
// which keys were first seen, so callers that want chronological series
// pass records sorted by timestamp ascending.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/telcox/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
)

const (
	day          = 24 * time.Hour
	daysPerMonth = 30
)

// AggregateUsage sums records per bucket. Data quantities are summed as
// reals, voice minutes and SMS are truncated per record before summing,
// and every record adds its total cost, whatever its service kind.
func AggregateUsage(records []usagedomain.UsageRecord, g domain.Granularity) []domain.UsageBucket {
	layout := g.Layout()
	buckets := make([]domain.UsageBucket, 0)
	index := make(map[string]int)

	for _, record := range records {
		key := record.RecordedAt.Format(layout)
		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, domain.UsageBucket{Key: key})
		}

		bucket := &buckets[pos]
		switch record.Service {
		case usagedomain.ServiceData:
			bucket.DataTotal += record.Quantity
		case usagedomain.ServiceVoiceMinutes:
			bucket.VoiceTotal += int64(record.Quantity)
		case usagedomain.ServiceSMS:
			bucket.SMSTotal += int64(record.Quantity)
		}
		bucket.CostTotal += record.TotalCost
	}

	return buckets
}

// AggregateInvoices sums invoice totals per issue bucket.
func AggregateInvoices(invoices []invoicedomain.Invoice, g domain.Granularity) []domain.InvoiceBucket {
	layout := g.Layout()
	buckets := make([]domain.InvoiceBucket, 0)
	index := make(map[string]int)

	for _, invoice := range invoices {
		key := invoice.IssuedAt.Format(layout)
		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, domain.InvoiceBucket{Key: key, Total: decimal.Zero})
		}

		bucket := &buckets[pos]
		bucket.Total = bucket.Total.Add(invoice.Total)
		switch invoice.Status {
		case invoicedomain.StatusPending:
			bucket.Pending++
		case invoicedomain.StatusPaid:
			bucket.Paid++
		}
	}

	return buckets
}

// DailyWindowStart is the lower bound of a window covering the last days days.
func DailyWindowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * day)
}

// MonthlyWindowStart counts a month as exactly 30 days, not a calendar month.
func MonthlyWindowStart(now time.Time, months int) time.Time {
	return now.Add(-time.Duration(months*daysPerMonth) * day)
}
