// Package domain contains the derived per-job cost and profit metrics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// JobMetrics is the derived cost/profit view of one job. It is never edited
// by hand: every figure must be reproducible by re-running the calculator
// against the same job and invoice snapshot.
type JobMetrics struct {
	JobID            snowflake.ID    `json:"job_id" gorm:"column:job_id;primaryKey"`
	Revenue          decimal.Decimal `json:"revenue" gorm:"type:numeric;not null"`
	MaterialCost     decimal.Decimal `json:"material_cost" gorm:"type:numeric;not null"`
	InkCost          decimal.Decimal `json:"ink_cost" gorm:"type:numeric;not null"`
	GrossProfit      decimal.Decimal `json:"gross_profit" gorm:"type:numeric;not null"`
	ProfitMargin     decimal.Decimal `json:"profit_margin" gorm:"type:numeric;not null"`
	TotalQuantity    int64           `json:"total_quantity" gorm:"not null"`
	TotalTimeMinutes int64           `json:"total_time_minutes" gorm:"not null"`
	LastUpdated      time.Time       `json:"last_updated" gorm:"not null"`
}

func (JobMetrics) TableName() string { return "job_metrics" }
