package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound       = errors.New("invoice_not_found")
	ErrInvalidRequest = errors.New("invalid_invoice_request")
)

type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	// FindByID loads an invoice with its line items.
	FindByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	// ListByIssueDate returns invoices issued within [start, end], ordered by
	// issue date. Line items are not loaded.
	ListByIssueDate(ctx context.Context, start, end time.Time) ([]Invoice, error)
	// ListLineItemsByIssueDate returns every line item belonging to a
	// non-cancelled invoice issued within [start, end].
	ListLineItemsByIssueDate(ctx context.Context, start, end time.Time) ([]InvoiceLineItem, error)
	// ListOutstanding returns invoices whose status is PENDING or OVERDUE.
	ListOutstanding(ctx context.Context) ([]Invoice, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status InvoiceStatus, updatedAt time.Time) error
}
