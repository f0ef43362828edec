package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/inkworks/printshop/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO invoices
			 (id, customer_id, customer_name, issue_date, due_date, status,
			  subtotal, tax_rate, tax_amount, total_amount, metadata, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			invoice.ID,
			invoice.CustomerID,
			invoice.CustomerName,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.Status,
			invoice.Subtotal,
			invoice.TaxRate,
			invoice.TaxAmount,
			invoice.TotalAmount,
			invoice.Metadata,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		).Error; err != nil {
			return err
		}
		for _, item := range invoice.LineItems {
			if err := tx.Exec(
				`INSERT INTO invoice_line_items
				 (id, invoice_id, product_id, category, area, quantity, unit_price, line_total, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				invoice.ID,
				item.ProductID,
				item.Category,
				item.Area,
				item.Quantity,
				item.UnitPrice,
				item.LineTotal,
				item.CreatedAt,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, customer_name, issue_date, due_date, status,
		        subtotal, tax_rate, tax_amount, total_amount, metadata, created_at, updated_at
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, domain.ErrNotFound
	}

	err = r.db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, product_id, category, area, quantity, unit_price, line_total, created_at
		 FROM invoice_line_items WHERE invoice_id = ? ORDER BY created_at ASC, id ASC`,
		id,
	).Scan(&invoice.LineItems).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) ListByIssueDate(ctx context.Context, start, end time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, customer_name, issue_date, due_date, status,
		        subtotal, tax_rate, tax_amount, total_amount, metadata, created_at, updated_at
		 FROM invoices
		 WHERE issue_date >= ? AND issue_date <= ?
		 ORDER BY issue_date ASC, id ASC`,
		start,
		end,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListLineItemsByIssueDate(ctx context.Context, start, end time.Time) ([]domain.InvoiceLineItem, error) {
	var items []domain.InvoiceLineItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT li.id, li.invoice_id, li.product_id, li.category, li.area,
		        li.quantity, li.unit_price, li.line_total, li.created_at
		 FROM invoice_line_items li
		 JOIN invoices i ON i.id = li.invoice_id
		 WHERE i.issue_date >= ? AND i.issue_date <= ? AND i.status <> ?
		 ORDER BY i.issue_date ASC, li.id ASC`,
		start,
		end,
		domain.InvoiceStatusCancelled,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListOutstanding(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, customer_name, issue_date, due_date, status,
		        subtotal, tax_rate, tax_amount, total_amount, metadata, created_at, updated_at
		 FROM invoices
		 WHERE status IN (?, ?)
		 ORDER BY due_date ASC, id ASC`,
		domain.InvoiceStatusPending,
		domain.InvoiceStatusOverdue,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.InvoiceStatus, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		updatedAt,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
