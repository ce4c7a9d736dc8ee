package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}-{ULID}"

// FormatInvoiceNumber expands the template with the issue date and a ULID
// minted at the issue instant.
func FormatInvoiceNumber(template string, issuedAt time.Time) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	id, err := ulid.New(ulid.Timestamp(issuedAt), ulid.DefaultEntropy())
	if err != nil {
		return "", fmt.Errorf("mint invoice ulid: %w", err)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))
	out = strings.ReplaceAll(out, "{ULID}", id.String())

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}

// Money renders an amount with two decimals and the currency code.
func Money(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
