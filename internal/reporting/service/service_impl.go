package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/clock"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	"github.com/inkworks/printshop/internal/reporting/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Invoices invoicedomain.Repository
}

// Service aggregates booked invoices and derived job metrics into the
// reporting views. All money math runs on decimals; figures are rounded
// to two places only when the report is assembled. Cancelled invoices
// carry no revenue and are excluded everywhere.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	invoices invoicedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("reporting.service"),
		clock:    p.Clock,
		invoices: p.Invoices,
	}
}

func (s *Service) RevenueTrends(ctx context.Context, req domain.ReportRequest) (domain.RevenueTrendReport, error) {
	invoices, err := s.billedInvoices(ctx, req)
	if err != nil {
		return domain.RevenueTrendReport{}, err
	}

	byDay := make(map[string]decimal.Decimal)
	total := decimal.Zero
	currentWeek := decimal.Zero
	previousWeek := decimal.Zero
	weekStart := req.End.AddDate(0, 0, -7)
	prevWeekStart := req.End.AddDate(0, 0, -14)

	for _, inv := range invoices {
		day := inv.IssueDate.UTC().Format("2006-01-02")
		byDay[day] = byDay[day].Add(inv.TotalAmount)
		total = total.Add(inv.TotalAmount)
		switch {
		case inv.IssueDate.After(weekStart):
			currentWeek = currentWeek.Add(inv.TotalAmount)
		case inv.IssueDate.After(prevWeekStart):
			previousWeek = previousWeek.Add(inv.TotalAmount)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	data := make([]domain.RevenueTrendPoint, 0, len(days))
	for _, day := range days {
		data = append(data, domain.RevenueTrendPoint{
			Date:    day,
			Revenue: round2(byDay[day]),
		})
	}

	growth := decimal.Zero
	if !previousWeek.IsZero() {
		growth = currentWeek.Sub(previousWeek).Div(previousWeek).Mul(decimal.NewFromInt(100))
	}

	return domain.RevenueTrendReport{
		Data: data,
		Summary: domain.RevenueTrendSummary{
			TotalRevenue:        round2(total),
			CurrentWeekRevenue:  round2(currentWeek),
			PreviousWeekRevenue: round2(previousWeek),
			WeekOverWeekGrowth:  round2(growth),
		},
	}, nil
}

func (s *Service) AverageInvoiceValue(ctx context.Context, req domain.ReportRequest) (domain.InvoiceValueReport, error) {
	invoices, err := s.billedInvoices(ctx, req)
	if err != nil {
		return domain.InvoiceValueReport{}, err
	}
	if len(invoices) == 0 {
		return domain.InvoiceValueReport{Data: []domain.MonthlyInvoiceValue{}}, nil
	}

	type monthAgg struct {
		count int
		total decimal.Decimal
	}
	byMonth := make(map[string]*monthAgg)
	values := make([]decimal.Decimal, 0, len(invoices))
	total := decimal.Zero

	for _, inv := range invoices {
		month := inv.IssueDate.UTC().Format("2006-01")
		agg, ok := byMonth[month]
		if !ok {
			agg = &monthAgg{}
			byMonth[month] = agg
		}
		agg.count++
		agg.total = agg.total.Add(inv.TotalAmount)
		values = append(values, inv.TotalAmount)
		total = total.Add(inv.TotalAmount)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	data := make([]domain.MonthlyInvoiceValue, 0, len(months))
	for _, month := range months {
		agg := byMonth[month]
		data = append(data, domain.MonthlyInvoiceValue{
			Month:        month,
			InvoiceCount: agg.count,
			AverageValue: round2(agg.total.Div(decimal.NewFromInt(int64(agg.count)))),
		})
	}

	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	return domain.InvoiceValueReport{
		Data: data,
		Summary: domain.InvoiceValueSummary{
			InvoiceCount: len(values),
			Mean:         round2(total.Div(decimal.NewFromInt(int64(len(values))))),
			Median:       round2(median(values)),
			Min:          round2(values[0]),
			Max:          round2(values[len(values)-1]),
		},
	}, nil
}

func (s *Service) DSO(ctx context.Context, req domain.ReportRequest) (domain.DSOReport, error) {
	invoices, err := s.billedInvoices(ctx, req)
	if err != nil {
		return domain.DSOReport{}, err
	}

	type monthAgg struct {
		sales  decimal.Decimal
		unpaid decimal.Decimal
	}
	byMonth := make(map[string]*monthAgg)
	totalSales := decimal.Zero
	totalUnpaid := decimal.Zero

	for _, inv := range invoices {
		month := inv.IssueDate.UTC().Format("2006-01")
		agg, ok := byMonth[month]
		if !ok {
			agg = &monthAgg{sales: decimal.Zero, unpaid: decimal.Zero}
			byMonth[month] = agg
		}
		agg.sales = agg.sales.Add(inv.TotalAmount)
		totalSales = totalSales.Add(inv.TotalAmount)
		if inv.Status.Outstanding() {
			agg.unpaid = agg.unpaid.Add(inv.TotalAmount)
			totalUnpaid = totalUnpaid.Add(inv.TotalAmount)
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	data := make([]domain.MonthlyDSO, 0, len(months))
	for _, month := range months {
		agg := byMonth[month]
		t, _ := time.Parse("2006-01", month)
		days := daysInMonth(t)
		dso := decimal.Zero
		if !agg.sales.IsZero() {
			dso = agg.unpaid.Div(agg.sales).Mul(decimal.NewFromInt(int64(days)))
		}
		data = append(data, domain.MonthlyDSO{
			Month:             month,
			DSO:               round2(dso),
			TotalSales:        round2(agg.sales),
			UnpaidReceivables: round2(agg.unpaid),
			PeriodDays:        days,
		})
	}

	overall := decimal.Zero
	if !totalSales.IsZero() {
		periodDays := int64(req.End.Sub(req.Start).Hours() / 24)
		overall = totalUnpaid.Div(totalSales).Mul(decimal.NewFromInt(periodDays))
	}

	return domain.DSOReport{
		Data: data,
		Summary: domain.DSOSummary{
			OverallDSO: round2(overall),
			Trend:      dsoTrend(data),
		},
	}, nil
}

func (s *Service) OutstandingInvoices(ctx context.Context) (domain.AgingReport, error) {
	invoices, err := s.invoices.ListOutstanding(ctx)
	if err != nil {
		return domain.AgingReport{}, err
	}

	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	buckets := make([]domain.AgingBucket, len(agingBuckets))
	for i, b := range agingBuckets {
		buckets[i] = domain.AgingBucket{Label: b.label, Invoices: []domain.AgingInvoice{}}
	}

	total := decimal.Zero
	bucketTotals := make([]decimal.Decimal, len(agingBuckets))
	for _, inv := range invoices {
		due := inv.DueDate.UTC().Truncate(24 * time.Hour)
		overdue := int(today.Sub(due).Hours() / 24)
		idx := bucketIndex(overdue)

		buckets[idx].Count++
		bucketTotals[idx] = bucketTotals[idx].Add(inv.TotalAmount)
		buckets[idx].Invoices = append(buckets[idx].Invoices, domain.AgingInvoice{
			InvoiceID:   inv.ID.String(),
			Customer:    inv.CustomerName,
			Amount:      round2(inv.TotalAmount),
			DaysOverdue: overdue,
			DueDate:     inv.DueDate.UTC().Format("2006-01-02"),
		})
		total = total.Add(inv.TotalAmount)
	}
	for i := range buckets {
		buckets[i].Total = round2(bucketTotals[i])
	}

	return domain.AgingReport{
		Data: buckets,
		Summary: domain.AgingSummary{
			OutstandingCount: len(invoices),
			OutstandingTotal: round2(total),
		},
	}, nil
}

func (s *Service) RevenueByCategory(ctx context.Context, req domain.ReportRequest) (domain.CategoryRevenueReport, error) {
	lines, err := s.invoices.ListLineItemsByIssueDate(ctx, req.Start, req.End)
	if err != nil {
		return domain.CategoryRevenueReport{}, err
	}

	byCategory := make(map[catalogdomain.ProductCategory]decimal.Decimal)
	total := decimal.Zero
	for _, line := range lines {
		byCategory[line.Category] = byCategory[line.Category].Add(line.LineTotal)
		total = total.Add(line.LineTotal)
	}

	jobCounts, err := s.jobCountsByCategory(ctx, req)
	if err != nil {
		return domain.CategoryRevenueReport{}, err
	}

	data := make([]domain.CategoryRevenue, 0, len(byCategory))
	for category, revenue := range byCategory {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = revenue.Div(total).Mul(decimal.NewFromInt(100))
		}
		data = append(data, domain.CategoryRevenue{
			Category:     string(category),
			TotalRevenue: round2(revenue),
			Percentage:   round2(pct),
			JobCount:     jobCounts[category],
		})
	}
	sort.Slice(data, func(i, j int) bool {
		if data[i].TotalRevenue != data[j].TotalRevenue {
			return data[i].TotalRevenue > data[j].TotalRevenue
		}
		return data[i].Category < data[j].Category
	})

	return domain.CategoryRevenueReport{
		Data:    data,
		Summary: domain.CategoryRevenueSummary{TotalRevenue: round2(total)},
	}, nil
}

func (s *Service) ProfitMarginsByJobType(ctx context.Context, req domain.ReportRequest) (domain.JobTypeMarginReport, error) {
	type metricRow struct {
		JobID        snowflake.ID
		Revenue      decimal.Decimal
		MaterialCost decimal.Decimal
		InkCost      decimal.Decimal
		GrossProfit  decimal.Decimal
		ProfitMargin decimal.Decimal
	}
	var rows []metricRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT m.job_id, m.revenue, m.material_cost, m.ink_cost, m.gross_profit, m.profit_margin
		 FROM job_metrics m
		 JOIN jobs j ON j.id = m.job_id
		 LEFT JOIN invoices i ON i.id = j.invoice_id
		 WHERE i.id IS NULL OR (i.issue_date >= ? AND i.issue_date <= ? AND i.status <> ?)`,
		req.Start,
		req.End,
		invoicedomain.InvoiceStatusCancelled,
	).Scan(&rows).Error
	if err != nil {
		return domain.JobTypeMarginReport{}, err
	}

	jobTypes, err := s.jobTypes(ctx)
	if err != nil {
		return domain.JobTypeMarginReport{}, err
	}

	type groupAgg struct {
		jobs      int
		revenue   decimal.Decimal
		cost      decimal.Decimal
		profit    decimal.Decimal
		marginSum decimal.Decimal
	}
	groups := make(map[catalogdomain.ProductCategory]*groupAgg)
	totalRevenue := decimal.Zero
	totalCost := decimal.Zero
	totalProfit := decimal.Zero

	for _, row := range rows {
		category, ok := jobTypes[row.JobID]
		if !ok {
			continue
		}
		agg, ok := groups[category]
		if !ok {
			agg = &groupAgg{}
			groups[category] = agg
		}
		cost := row.MaterialCost.Add(row.InkCost)
		agg.jobs++
		agg.revenue = agg.revenue.Add(row.Revenue)
		agg.cost = agg.cost.Add(cost)
		agg.profit = agg.profit.Add(row.GrossProfit)
		agg.marginSum = agg.marginSum.Add(row.ProfitMargin)
		totalRevenue = totalRevenue.Add(row.Revenue)
		totalCost = totalCost.Add(cost)
		totalProfit = totalProfit.Add(row.GrossProfit)
	}

	data := make([]domain.JobTypeMargin, 0, len(groups))
	for category, agg := range groups {
		avgMargin := agg.marginSum.Div(decimal.NewFromInt(int64(agg.jobs))).Mul(decimal.NewFromInt(100))
		data = append(data, domain.JobTypeMargin{
			Category:      string(category),
			JobCount:      agg.jobs,
			Revenue:       round2(agg.revenue),
			Cost:          round2(agg.cost),
			GrossProfit:   round2(agg.profit),
			AverageMargin: round2(avgMargin),
		})
	}
	sort.Slice(data, func(i, j int) bool {
		if data[i].AverageMargin != data[j].AverageMargin {
			return data[i].AverageMargin > data[j].AverageMargin
		}
		return data[i].Category < data[j].Category
	})

	return domain.JobTypeMarginReport{
		Data: data,
		Summary: domain.JobTypeMarginSummary{
			Revenue:     round2(totalRevenue),
			Cost:        round2(totalCost),
			GrossProfit: round2(totalProfit),
		},
	}, nil
}

// billedInvoices returns the invoices issued in the window, minus
// cancelled ones.
func (s *Service) billedInvoices(ctx context.Context, req domain.ReportRequest) ([]invoicedomain.Invoice, error) {
	invoices, err := s.invoices.ListByIssueDate(ctx, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	billed := invoices[:0]
	for _, inv := range invoices {
		if inv.Status != invoicedomain.InvoiceStatusCancelled {
			billed = append(billed, inv)
		}
	}
	return billed, nil
}

func (s *Service) jobCountsByCategory(ctx context.Context, req domain.ReportRequest) (map[catalogdomain.ProductCategory]int, error) {
	type countRow struct {
		Category catalogdomain.ProductCategory
		JobCount int
	}
	var rows []countRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT li.category AS category, COUNT(DISTINCT j.id) AS job_count
		 FROM job_line_items li
		 JOIN jobs j ON j.id = li.job_id
		 JOIN invoices i ON i.id = j.invoice_id
		 WHERE i.issue_date >= ? AND i.issue_date <= ? AND i.status <> ?
		 GROUP BY li.category`,
		req.Start,
		req.End,
		invoicedomain.InvoiceStatusCancelled,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[catalogdomain.ProductCategory]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.JobCount
	}
	return counts, nil
}

// jobTypes maps every job to the category of its earliest line item,
// which stands in as the job's type for margin grouping.
func (s *Service) jobTypes(ctx context.Context) (map[snowflake.ID]catalogdomain.ProductCategory, error) {
	type lineRow struct {
		JobID    snowflake.ID
		Category catalogdomain.ProductCategory
	}
	var rows []lineRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT job_id, category
		 FROM job_line_items
		 ORDER BY job_id ASC, created_at ASC, id ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	types := make(map[snowflake.ID]catalogdomain.ProductCategory)
	for _, row := range rows {
		if _, ok := types[row.JobID]; !ok {
			types[row.JobID] = row.Category
		}
	}
	return types, nil
}

type bucketRange struct {
	label string
	min   int
	max   int
}

var agingBuckets = []bucketRange{
	{label: "Current", min: -1 << 31, max: 0},
	{label: "1-30 days", min: 1, max: 30},
	{label: "31-60 days", min: 31, max: 60},
	{label: "61-90 days", min: 61, max: 90},
	{label: "Over 90 days", min: 91, max: 1<<31 - 1},
}

func bucketIndex(daysOverdue int) int {
	for i, b := range agingBuckets {
		if daysOverdue >= b.min && daysOverdue <= b.max {
			return i
		}
	}
	return len(agingBuckets) - 1
}

func dsoTrend(data []domain.MonthlyDSO) string {
	withSales := make([]float64, 0, len(data))
	for _, m := range data {
		if m.TotalSales > 0 {
			withSales = append(withSales, m.DSO)
		}
	}
	if len(withSales) < 2 {
		return domain.DSOTrendStable
	}
	first, last := withSales[0], withSales[len(withSales)-1]
	switch {
	case last < first*0.9:
		return domain.DSOTrendImproving
	case last > first*1.1:
		return domain.DSOTrendWorsening
	default:
		return domain.DSOTrendStable
	}
}

// median assumes values is sorted ascending and non-empty.
func median(values []decimal.Decimal) decimal.Decimal {
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return values[n/2-1].Add(values[n/2]).Div(decimal.NewFromInt(2))
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
