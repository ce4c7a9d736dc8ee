package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/invoice/domain"
	"github.com/smallbiznis/telcox/internal/invoice/format"
	obsmetrics "github.com/smallbiznis/telcox/internal/observability/metrics"
	"github.com/smallbiznis/telcox/internal/providers/pdf"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPaymentTerm = 15 * 24 * time.Hour

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	Renderer    pdf.Renderer
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	issuer      string
	repo        domain.Repository
	accountRepo accountdomain.Repository
	renderer    pdf.Renderer
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		issuer:      p.Config.AppName,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		renderer:    p.Renderer,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}

	if req.Subtotal.IsNegative() || req.Tax.IsNegative() || req.Discount.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	total := req.Subtotal.Add(req.Tax).Sub(req.Discount)
	if req.Total != nil {
		total = *req.Total
	}
	if total.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	issuedAt := now
	if req.IssuedAt != nil && !req.IssuedAt.IsZero() {
		issuedAt = *req.IssuedAt
	}
	dueAt := issuedAt.Add(defaultPaymentTerm)
	if req.DueAt != nil && !req.DueAt.IsZero() {
		dueAt = *req.DueAt
	}
	if dueAt.Before(issuedAt) {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}

	number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, issuedAt)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Number:    number,
		Subtotal:  req.Subtotal.Round(2),
		Tax:       req.Tax.Round(2),
		Discount:  req.Discount.Round(2),
		Total:     total.Round(2),
		IssuedAt:  issuedAt,
		DueAt:     dueAt,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("account_id", accountID.String()),
	)
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.Invoice], error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return pagination.Page[domain.Invoice]{}, domain.ErrInvalidAccount
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != "" && !status.Known() {
		return pagination.Page[domain.Invoice]{}, domain.ErrInvalidStatus
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, accountID, status, page)
	if err != nil {
		return pagination.Page[domain.Invoice]{}, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return pagination.NewPage(invoices, total, page), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, accountID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Pay(ctx context.Context, req domain.PayRequest) (domain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}
	invoiceID, err := parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		return domain.Invoice{}, domain.ErrInvalidMethod
	}

	var paid domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindForUpdate(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if !invoice.Status.Payable() {
			return domain.ErrNotPayable
		}

		now := s.clock.Now()
		if err := s.repo.MarkPaid(ctx, tx, invoice.ID, method, now); err != nil {
			return err
		}
		invoice.Status = domain.StatusPaid
		invoice.PaymentMethod = method
		invoice.PaidAt = &now
		invoice.UpdatedAt = now
		paid = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.obsMetrics.RecordInvoicePayment(ctx, method)
	s.log.Info("invoice paid",
		zap.String("invoice_id", paid.ID.String()),
		zap.String("payment_method", method),
	)
	return paid, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, domain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Invoice{}, err
	}

	account, err := s.accountRepo.FindByID(ctx, s.db, invoice.AccountID)
	if err != nil {
		return nil, domain.Invoice{}, err
	}
	if account == nil {
		return nil, domain.Invoice{}, domain.ErrNotFound
	}

	body, err := s.renderer.RenderInvoice(ctx, buildDocument(s.issuer, invoice, *account))
	if err != nil {
		return nil, domain.Invoice{}, err
	}
	return body, invoice, nil
}

func buildDocument(issuer string, invoice domain.Invoice, account accountdomain.Account) pdf.InvoiceDocument {
	const currency = "USD"
	doc := pdf.InvoiceDocument{
		IssuerName:   issuer,
		Number:       invoice.Number,
		IssueDate:    format.Date(invoice.IssuedAt),
		DueDate:      format.Date(invoice.DueAt),
		Status:       string(invoice.Status),
		AccountName:  account.Name,
		AccountEmail: account.Email,
		AccountPhone: account.Phone,
		Lines: []pdf.InvoiceLine{{
			Description: "Telecom services " + invoice.IssuedAt.Format("2006-01"),
			Amount:      format.Money(invoice.Subtotal, currency),
		}},
		Subtotal: format.Money(invoice.Subtotal, currency),
		Tax:      format.Money(invoice.Tax, currency),
		Discount: format.Money(invoice.Discount.Neg(), currency),
		Total:    format.Money(invoice.Total, currency),
	}
	if invoice.PaidAt != nil {
		doc.PaidDate = format.Date(*invoice.PaidAt)
	}
	return doc
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

