package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	Subtotal decimal.Decimal  `json:"subtotal"`
	Tax      decimal.Decimal  `json:"tax"`
	Discount decimal.Decimal  `json:"discount"`
	Total    *decimal.Decimal `json:"total"`
	IssuedAt *time.Time       `json:"issued_at"`
	DueAt    *time.Time       `json:"due_at"`
}

type ListRequest struct {
	pagination.Pagination
	Status string
}

type PayRequest struct {
	ID            string `json:"-"`
	PaymentMethod string `json:"payment_method" binding:"required,max=50"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context, ListRequest) (pagination.Page[Invoice], error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Pay(context.Context, PayRequest) (Invoice, error)
	// RenderPDF renders the invoice document for download.
	RenderPDF(ctx context.Context, id string) ([]byte, Invoice, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidDueDate = errors.New("invalid_due_date")
	ErrInvalidMethod  = errors.New("invalid_payment_method")
	ErrNotPayable     = errors.New("invoice_not_payable")
	ErrNotFound       = errors.New("not_found")
)
