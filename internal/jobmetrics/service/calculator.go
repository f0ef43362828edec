package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/costing"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	"github.com/inkworks/printshop/internal/jobmetrics/domain"
	"github.com/shopspring/decimal"
)

// Calculate derives one job's metrics from its line items and linked invoice.
//
// Revenue is the linked invoice's subtotal, or zero for unlinked jobs, which
// are still processed so in-progress work shows up in reporting. Material
// cost comes from the invoice's booked lines when an invoice exists; without
// one it falls back to estimating from the job's own lines at base price
// times requested quantity. The two paths can diverge for wide-format work
// priced by area; the invoice is treated as the source of truth once booked.
//
// A line item referencing a missing product aborts the calculation: a silent
// zero cost would corrupt profit reporting.
func (s *Service) Calculate(ctx context.Context, jobID snowflake.ID) (*domain.JobMetrics, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var invoice *invoicedomain.Invoice
	if job.InvoiceID != nil && *job.InvoiceID != 0 {
		invoice, err = s.invoices.FindByID(ctx, *job.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", jobID, err)
		}
	}

	products, err := s.loadReferencedProducts(ctx, job, invoice)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	if invoice != nil {
		revenue = invoice.Subtotal
	}

	materialCost, err := materialCost(job, invoice, products)
	if err != nil {
		return nil, err
	}

	inkCost := decimal.Zero
	for _, line := range job.LineItems {
		rule := costing.ForCategory(line.Category)
		inkCost = inkCost.Add(rule.Ink(costing.InkInput{
			InkVolumeMl:       line.InkVolumeMl,
			InkCostPerUnit:    line.InkCostPerUnit,
			CompletedQuantity: line.CompletedQuantity,
		}))
	}

	grossProfit := revenue.Sub(materialCost).Sub(inkCost)
	profitMargin := decimal.Zero
	if !revenue.IsZero() {
		profitMargin = grossProfit.Div(revenue)
	}

	var totalQuantity, totalTime int64
	for _, line := range job.LineItems {
		totalQuantity += line.CompletedQuantity
		totalTime += line.ElapsedTimeMinutes
	}

	return &domain.JobMetrics{
		JobID:            job.ID,
		Revenue:          revenue,
		MaterialCost:     materialCost,
		InkCost:          inkCost,
		GrossProfit:      grossProfit,
		ProfitMargin:     profitMargin,
		TotalQuantity:    totalQuantity,
		TotalTimeMinutes: totalTime,
		LastUpdated:      s.clock.Now(),
	}, nil
}

func (s *Service) loadReferencedProducts(
	ctx context.Context,
	job *jobdomain.Job,
	invoice *invoicedomain.Invoice,
) (map[snowflake.ID]catalogdomain.Product, error) {
	seen := make(map[snowflake.ID]struct{})
	ids := make([]snowflake.ID, 0, len(job.LineItems))
	add := func(id snowflake.ID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, line := range job.LineItems {
		add(line.ProductID)
	}
	if invoice != nil {
		for _, line := range invoice.LineItems {
			add(line.ProductID)
		}
	}
	return s.products.FindByIDs(ctx, ids)
}

func materialCost(
	job *jobdomain.Job,
	invoice *invoicedomain.Invoice,
	products map[snowflake.ID]catalogdomain.Product,
) (decimal.Decimal, error) {
	total := decimal.Zero

	if invoice != nil {
		for _, line := range invoice.LineItems {
			product, ok := products[line.ProductID]
			if !ok {
				return decimal.Zero, fmt.Errorf("job %s: invoice %s line product %s: %w",
					job.ID, invoice.ID, line.ProductID, catalogdomain.ErrNotFound)
			}
			rule := costing.ForCategory(line.Category)
			total = total.Add(rule.Material(costing.MaterialInput{
				BasePrice:       product.BasePrice,
				CostPerAreaUnit: product.CostPerAreaUnit,
				Area:            line.Area,
				Quantity:        line.Quantity,
			}))
		}
		return total, nil
	}

	// No booked invoice yet: estimate from the job's own lines.
	for _, line := range job.LineItems {
		product, ok := products[line.ProductID]
		if !ok {
			return decimal.Zero, fmt.Errorf("job %s: line product %s: %w",
				job.ID, line.ProductID, catalogdomain.ErrNotFound)
		}
		total = total.Add(product.BasePrice.Mul(decimal.NewFromInt(line.RequestedQuantity)))
	}
	return total, nil
}
