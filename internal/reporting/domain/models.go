// Package domain contains the financial reporting query contracts.
package domain

import (
	"context"
	"errors"
	"time"
)

// TimeRange is a named reporting window resolved against the current day.
type TimeRange string

const (
	Range12Months TimeRange = "12months"
	Range24Months TimeRange = "24months"
	RangeYTD      TimeRange = "ytd"
)

var ErrInvalidTimeRange = errors.New("invalid_time_range")

// Resolve converts a named range into concrete [start, end] bounds.
// An empty range defaults to the trailing twelve months.
func (r TimeRange) Resolve(now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	switch r {
	case Range12Months, "":
		return end.AddDate(-1, 0, 0), end, nil
	case Range24Months:
		return end.AddDate(-2, 0, 0), end, nil
	case RangeYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), end, nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
}

// ReportRequest bounds a reporting query.
type ReportRequest struct {
	Start time.Time
	End   time.Time
}

type RevenueTrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type RevenueTrendSummary struct {
	TotalRevenue        float64 `json:"total_revenue"`
	CurrentWeekRevenue  float64 `json:"current_week_revenue"`
	PreviousWeekRevenue float64 `json:"previous_week_revenue"`
	WeekOverWeekGrowth  float64 `json:"week_over_week_growth"`
}

type RevenueTrendReport struct {
	Data    []RevenueTrendPoint `json:"data"`
	Summary RevenueTrendSummary `json:"summary"`
}

type MonthlyInvoiceValue struct {
	Month        string  `json:"month"`
	InvoiceCount int     `json:"invoice_count"`
	AverageValue float64 `json:"average_value"`
}

type InvoiceValueSummary struct {
	InvoiceCount int     `json:"invoice_count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

type InvoiceValueReport struct {
	Data    []MonthlyInvoiceValue `json:"data"`
	Summary InvoiceValueSummary   `json:"summary"`
}

type MonthlyDSO struct {
	Month             string  `json:"month"`
	DSO               float64 `json:"dso"`
	TotalSales        float64 `json:"total_sales"`
	UnpaidReceivables float64 `json:"unpaid_receivables"`
	PeriodDays        int     `json:"period_days"`
}

const (
	DSOTrendImproving = "improving"
	DSOTrendWorsening = "worsening"
	DSOTrendStable    = "stable"
)

type DSOSummary struct {
	OverallDSO float64 `json:"overall_dso"`
	Trend      string  `json:"trend"`
}

type DSOReport struct {
	Data    []MonthlyDSO `json:"data"`
	Summary DSOSummary   `json:"summary"`
}

type AgingInvoice struct {
	InvoiceID   string  `json:"invoice_id"`
	Customer    string  `json:"customer"`
	Amount      float64 `json:"amount"`
	DaysOverdue int     `json:"days_overdue"`
	DueDate     string  `json:"due_date"`
}

type AgingBucket struct {
	Label    string         `json:"label"`
	Count    int            `json:"count"`
	Total    float64        `json:"total"`
	Invoices []AgingInvoice `json:"invoices"`
}

type AgingSummary struct {
	OutstandingCount int     `json:"outstanding_count"`
	OutstandingTotal float64 `json:"outstanding_total"`
}

type AgingReport struct {
	Data    []AgingBucket `json:"data"`
	Summary AgingSummary  `json:"summary"`
}

type CategoryRevenue struct {
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_revenue"`
	Percentage   float64 `json:"percentage"`
	JobCount     int     `json:"job_count"`
}

type CategoryRevenueSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
}

type CategoryRevenueReport struct {
	Data    []CategoryRevenue      `json:"data"`
	Summary CategoryRevenueSummary `json:"summary"`
}

type JobTypeMargin struct {
	Category      string  `json:"category"`
	JobCount      int     `json:"job_count"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	GrossProfit   float64 `json:"gross_profit"`
	AverageMargin float64 `json:"average_margin"`
}

type JobTypeMarginSummary struct {
	Revenue     float64 `json:"revenue"`
	Cost        float64 `json:"cost"`
	GrossProfit float64 `json:"gross_profit"`
}

type JobTypeMarginReport struct {
	Data    []JobTypeMargin      `json:"data"`
	Summary JobTypeMarginSummary `json:"summary"`
}

// Service exposes the read-only financial aggregations. Every method
// tolerates an empty input set by returning a zero-valued report.
type Service interface {
	RevenueTrends(ctx context.Context, req ReportRequest) (RevenueTrendReport, error)
	AverageInvoiceValue(ctx context.Context, req ReportRequest) (InvoiceValueReport, error)
	DSO(ctx context.Context, req ReportRequest) (DSOReport, error)
	OutstandingInvoices(ctx context.Context) (AgingReport, error)
	RevenueByCategory(ctx context.Context, req ReportRequest) (CategoryRevenueReport, error)
	ProfitMarginsByJobType(ctx context.Context, req ReportRequest) (JobTypeMarginReport, error)
}
