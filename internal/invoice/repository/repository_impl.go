package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/invoice/domain"
	"github.com/smallbiznis/telcox/pkg/db/option"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceColumns = `id, account_id, number, subtotal, tax, discount, total, issued_at, due_at,
		        status, payment_method, paid_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, account_id, number, subtotal, tax, discount, total, issued_at, due_at,
		                       status, payment_method, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.AccountID,
		invoice.Number,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Discount,
		invoice.Total,
		invoice.IssuedAt,
		invoice.DueAt,
		invoice.Status,
		invoice.PaymentMethod,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices WHERE account_id = ? AND id = ?`,
		accountID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

// FindForUpdate row-locks the invoice on dialects that support it.
func (r *repo) FindForUpdate(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, status domain.Status, page pagination.Pagination) ([]*domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("account_id = ?", accountID)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*domain.Invoice
	err := option.ApplyPagination(page).Apply(stmt).
		Order("issued_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, accountID snowflake.ID, status *domain.Status) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("account_id = ?", accountID)
	if status != nil {
		stmt = stmt.Where("status = ?", *status)
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListIssuedSince(ctx context.Context, db *gorm.DB, accountID snowflake.ID, since time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices
		 WHERE account_id = ? AND issued_at >= ?
		 ORDER BY issued_at ASC, id ASC`,
		accountID,
		since,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, method string, paidAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, payment_method = ?, paid_at = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusPaid,
		method,
		paidAt,
		paidAt,
		id,
	).Error
}
