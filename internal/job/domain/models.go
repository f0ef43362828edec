// Package domain contains print job models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// JobStatus represents job lifecycle states.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// Job is a unit of print work requested by a customer. A job may be linked
// to the invoice that billed it; unlinked jobs are still visible in
// reporting with zero revenue.
type Job struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	CustomerID snowflake.ID  `json:"customer_id" gorm:"not null;index"`
	InvoiceID  *snowflake.ID `json:"invoice_id,omitempty" gorm:"index"`
	Name       string        `json:"name" gorm:"type:text;not null"`
	Status     JobStatus     `json:"status" gorm:"type:text;not null;default:'IN_PROGRESS'"`
	LineItems  []JobLineItem `json:"line_items,omitempty" gorm:"-"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"not null"`
}

func (Job) TableName() string { return "jobs" }

// JobLineItem is one requested product on a job. Category is snapshotted at
// write time so later catalog edits do not change booked costs.
type JobLineItem struct {
	ID                 snowflake.ID                  `json:"id" gorm:"primaryKey"`
	JobID              snowflake.ID                  `json:"job_id" gorm:"not null;index"`
	ProductID          snowflake.ID                  `json:"product_id" gorm:"not null;index"`
	Category           catalogdomain.ProductCategory `json:"category" gorm:"type:text;not null"`
	RequestedQuantity  int64                         `json:"requested_quantity" gorm:"not null"`
	CompletedQuantity  int64                         `json:"completed_quantity" gorm:"not null;default:0"`
	ElapsedTimeMinutes int64                         `json:"elapsed_time_minutes" gorm:"not null;default:0"`
	InkVolumeMl        decimal.Decimal               `json:"ink_volume_ml" gorm:"type:numeric;not null"`
	InkCostPerUnit     decimal.Decimal               `json:"ink_cost_per_unit" gorm:"type:numeric;not null"`
	CreatedAt          time.Time                     `json:"created_at" gorm:"not null"`
}

func (JobLineItem) TableName() string { return "job_line_items" }
