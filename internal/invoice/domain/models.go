// Package domain contains billing models for invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Outstanding reports whether the invoice still carries receivables.
func (s InvoiceStatus) Outstanding() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

// Invoice is the billed record for one or more jobs. Subtotal, tax and total
// are always recomputed from the line items at write time; values supplied by
// callers are never trusted.
type Invoice struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	CustomerID   snowflake.ID      `json:"customer_id" gorm:"not null;index"`
	CustomerName string            `json:"customer_name" gorm:"type:text;not null"`
	IssueDate    time.Time         `json:"issue_date" gorm:"not null;index"`
	DueDate      time.Time         `json:"due_date" gorm:"not null;index"`
	Status       InvoiceStatus     `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	Subtotal     decimal.Decimal   `json:"subtotal" gorm:"type:numeric;not null"`
	TaxRate      decimal.Decimal   `json:"tax_rate" gorm:"type:numeric;not null"`
	TaxAmount    decimal.Decimal   `json:"tax_amount" gorm:"type:numeric;not null"`
	TotalAmount  decimal.Decimal   `json:"total_amount" gorm:"type:numeric;not null"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	LineItems    []InvoiceLineItem `json:"line_items,omitempty" gorm:"-"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceLineItem is a booked sale on an invoice. LineTotal is derived from
// quantity and unit price at write time.
type InvoiceLineItem struct {
	ID        snowflake.ID                  `json:"id" gorm:"primaryKey"`
	InvoiceID snowflake.ID                  `json:"invoice_id" gorm:"not null;index"`
	ProductID snowflake.ID                  `json:"product_id" gorm:"not null;index"`
	Category  catalogdomain.ProductCategory `json:"category" gorm:"type:text;not null"`
	Area      decimal.Decimal               `json:"area" gorm:"type:numeric;not null"`
	Quantity  int64                         `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal               `json:"unit_price" gorm:"type:numeric;not null"`
	LineTotal decimal.Decimal               `json:"line_total" gorm:"type:numeric;not null"`
	CreatedAt time.Time                     `json:"created_at" gorm:"not null"`
}

func (InvoiceLineItem) TableName() string { return "invoice_line_items" }
