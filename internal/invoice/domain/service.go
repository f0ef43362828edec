package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest describes one line on a new invoice. The line total
// is never accepted from the caller.
type CreateLineItemRequest struct {
	ProductID snowflake.ID    `json:"product_id"`
	Area      decimal.Decimal `json:"area"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	CustomerID   snowflake.ID            `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	IssueDate    time.Time               `json:"issue_date"`
	DueDate      time.Time               `json:"due_date"`
	TaxRate      decimal.Decimal         `json:"tax_rate"`
	LineItems    []CreateLineItemRequest `json:"line_items"`
}

type Service interface {
	// Create books an invoice, snapshotting each line's product category and
	// recomputing line totals, subtotal, tax and total.
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	Get(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, start, end time.Time) ([]Invoice, error)
	SetStatus(ctx context.Context, id snowflake.ID, status InvoiceStatus) error
}
