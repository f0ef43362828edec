package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	catalogrepo "github.com/inkworks/printshop/internal/catalog/repository"
	"github.com/inkworks/printshop/internal/clock"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	invoicerepo "github.com/inkworks/printshop/internal/invoice/repository"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	jobrepo "github.com/inkworks/printshop/internal/job/repository"
	"github.com/inkworks/printshop/internal/jobmetrics/domain"
	metricsrepo "github.com/inkworks/printshop/internal/jobmetrics/repository"
	"github.com/inkworks/printshop/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type metricsFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
	jobs  jobdomain.Repository
}

func setupMetricsFixture(t *testing.T) *metricsFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&catalogdomain.Product{},
		&jobdomain.Job{},
		&jobdomain.JobLineItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
		&domain.JobMetrics{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	jobs := jobrepo.Provide(dbConn)
	svc := NewService(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		Clock:    fakeClock,
		Repo:     metricsrepo.Provide(),
		Jobs:     jobs,
		Invoices: invoicerepo.Provide(dbConn),
		Products: catalogrepo.Provide(dbConn),
	})

	return &metricsFixture{db: dbConn, node: node, clock: fakeClock, svc: svc, jobs: jobs}
}

func (f *metricsFixture) createProduct(t *testing.T, category catalogdomain.ProductCategory, basePrice, costPerArea string) catalogdomain.Product {
	t.Helper()
	now := f.clock.Now()
	product := catalogdomain.Product{
		ID:              f.node.Generate(),
		Name:            "test product",
		Category:        category,
		BasePrice:       dec(basePrice),
		CostPerAreaUnit: dec(costPerArea),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func (f *metricsFixture) createInvoice(t *testing.T, lines []invoicedomain.InvoiceLineItem) invoicedomain.Invoice {
	t.Helper()
	now := f.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:           f.node.Generate(),
		CustomerID:   f.node.Generate(),
		CustomerName: "Acme Print Buyer",
		IssueDate:    now.AddDate(0, 0, -10),
		DueDate:      now.AddDate(0, 0, 20),
		Status:       invoicedomain.InvoiceStatusPending,
		TaxRate:      dec("0.2"),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	subtotal := decimal.Zero
	for i := range lines {
		lines[i].ID = f.node.Generate()
		lines[i].InvoiceID = invoice.ID
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(lines[i].Quantity))
		lines[i].CreatedAt = now
		subtotal = subtotal.Add(lines[i].LineTotal)
	}
	invoice.Subtotal = subtotal
	invoice.TaxAmount = subtotal.Mul(invoice.TaxRate)
	invoice.TotalAmount = subtotal.Add(invoice.TaxAmount)

	require.NoError(t, f.db.Create(&invoice).Error)
	for i := range lines {
		require.NoError(t, f.db.Create(&lines[i]).Error)
	}
	invoice.LineItems = lines
	return invoice
}

func (f *metricsFixture) createJob(t *testing.T, invoiceID *snowflake.ID, lines []jobdomain.JobLineItem) jobdomain.Job {
	t.Helper()
	now := f.clock.Now()
	job := jobdomain.Job{
		ID:         f.node.Generate(),
		CustomerID: f.node.Generate(),
		InvoiceID:  invoiceID,
		Name:       "test job",
		Status:     jobdomain.JobStatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i := range lines {
		lines[i].ID = f.node.Generate()
		lines[i].JobID = job.ID
		lines[i].CreatedAt = now.Add(time.Duration(i) * time.Minute)
	}
	job.LineItems = lines
	require.NoError(t, f.jobs.Create(context.Background(), &job))
	return job
}

func TestCalculateWideFormatJob(t *testing.T) {
	f := setupMetricsFixture(t)

	banner := f.createProduct(t, catalogdomain.CategoryWideFormat, "45", "3.25")
	invoice := f.createInvoice(t, []invoicedomain.InvoiceLineItem{
		{ProductID: banner.ID, Category: banner.Category, Area: dec("6"), Quantity: 2, UnitPrice: dec("52")},
	})
	job := f.createJob(t, &invoice.ID, []jobdomain.JobLineItem{
		{
			ProductID:          banner.ID,
			Category:           banner.Category,
			RequestedQuantity:  2,
			CompletedQuantity:  2,
			ElapsedTimeMinutes: 95,
			InkVolumeMl:        dec("140"),
			InkCostPerUnit:     dec("0"),
		},
	})

	metrics, err := f.svc.Calculate(context.Background(), job.ID)
	require.NoError(t, err)

	// revenue = invoice subtotal; material = 3.25 * 6 * 2; ink = 140 * 0.16
	assert.True(t, metrics.Revenue.Equal(dec("104")), "revenue %s", metrics.Revenue)
	assert.True(t, metrics.MaterialCost.Equal(dec("39")), "material %s", metrics.MaterialCost)
	assert.True(t, metrics.InkCost.Equal(dec("22.4")), "ink %s", metrics.InkCost)
	assert.True(t, metrics.GrossProfit.Equal(dec("42.6")), "profit %s", metrics.GrossProfit)
	assert.True(t, metrics.ProfitMargin.Equal(dec("42.6").Div(dec("104"))), "margin %s", metrics.ProfitMargin)
	assert.Equal(t, int64(2), metrics.TotalQuantity)
	assert.Equal(t, int64(95), metrics.TotalTimeMinutes)
	assert.Equal(t, f.clock.Now(), metrics.LastUpdated.UTC())
}

func TestCalculateUnlinkedJobEstimatesFromBasePrice(t *testing.T) {
	f := setupMetricsFixture(t)

	box := f.createProduct(t, catalogdomain.CategoryPackaging, "1.8", "0")
	job := f.createJob(t, nil, []jobdomain.JobLineItem{
		{
			ProductID:          box.ID,
			Category:           box.Category,
			RequestedQuantity:  300,
			CompletedQuantity:  120,
			ElapsedTimeMinutes: 210,
			InkVolumeMl:        dec("0"),
			InkCostPerUnit:     dec("0.05"),
		},
	})

	metrics, err := f.svc.Calculate(context.Background(), job.ID)
	require.NoError(t, err)

	assert.True(t, metrics.Revenue.IsZero(), "revenue %s", metrics.Revenue)
	assert.True(t, metrics.MaterialCost.Equal(dec("540")), "material %s", metrics.MaterialCost)
	assert.True(t, metrics.InkCost.Equal(dec("6")), "ink %s", metrics.InkCost)
	assert.True(t, metrics.GrossProfit.Equal(dec("-546")), "profit %s", metrics.GrossProfit)
	// Zero revenue must not divide; margin stays zero.
	assert.True(t, metrics.ProfitMargin.IsZero(), "margin %s", metrics.ProfitMargin)
}

func TestUpsertOneIsIdempotent(t *testing.T) {
	f := setupMetricsFixture(t)

	leaflet := f.createProduct(t, catalogdomain.CategoryLeaflets, "0.12", "0")
	invoice := f.createInvoice(t, []invoicedomain.InvoiceLineItem{
		{ProductID: leaflet.ID, Category: leaflet.Category, Area: dec("0"), Quantity: 500, UnitPrice: dec("0.18")},
	})
	job := f.createJob(t, &invoice.ID, []jobdomain.JobLineItem{
		{
			ProductID:          leaflet.ID,
			Category:           leaflet.Category,
			RequestedQuantity:  500,
			CompletedQuantity:  500,
			ElapsedTimeMinutes: 40,
			InkVolumeMl:        dec("0"),
			InkCostPerUnit:     dec("0"),
		},
	})

	first, err := f.svc.UpsertOne(context.Background(), job.ID)
	require.NoError(t, err)
	second, err := f.svc.UpsertOne(context.Background(), job.ID)
	require.NoError(t, err)

	assert.True(t, first.Revenue.Equal(second.Revenue))
	assert.True(t, first.MaterialCost.Equal(second.MaterialCost))
	assert.True(t, first.InkCost.Equal(second.InkCost))
	assert.True(t, first.GrossProfit.Equal(second.GrossProfit))
	assert.True(t, first.ProfitMargin.Equal(second.ProfitMargin))

	rows, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// leaflet ink = 0.004 per completed unit
	assert.True(t, rows[0].InkCost.Equal(dec("2")), "ink %s", rows[0].InkCost)
}

func TestRecalculateAllRebuildsEveryJob(t *testing.T) {
	f := setupMetricsFixture(t)

	mug := f.createProduct(t, catalogdomain.CategoryFinished, "6.5", "0")
	jobA := f.createJob(t, nil, []jobdomain.JobLineItem{
		{ProductID: mug.ID, Category: mug.Category, RequestedQuantity: 10, CompletedQuantity: 10, InkVolumeMl: dec("5"), InkCostPerUnit: dec("0")},
	})
	jobB := f.createJob(t, nil, []jobdomain.JobLineItem{
		{ProductID: mug.ID, Category: mug.Category, RequestedQuantity: 4, CompletedQuantity: 2, InkVolumeMl: dec("1"), InkCostPerUnit: dec("0")},
	})

	// Stale row that should be wiped by the rebuild.
	stale := domain.JobMetrics{JobID: f.node.Generate(), Revenue: dec("999"), LastUpdated: f.clock.Now()}
	require.NoError(t, f.db.Create(&stale).Error)

	recalculated, err := f.svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, recalculated)

	rows, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	gotIDs := []snowflake.ID{rows[0].JobID, rows[1].JobID}
	assert.ElementsMatch(t, []snowflake.ID{jobA.ID, jobB.ID}, gotIDs)

	// Every rebuilt row must match what a single upsert of the same job
	// produces from the same snapshot.
	for _, row := range rows {
		single, err := f.svc.UpsertOne(context.Background(), row.JobID)
		require.NoError(t, err)
		assert.True(t, row.Revenue.Equal(single.Revenue), "job %s revenue %s vs %s", row.JobID, row.Revenue, single.Revenue)
		assert.True(t, row.MaterialCost.Equal(single.MaterialCost), "job %s material %s vs %s", row.JobID, row.MaterialCost, single.MaterialCost)
		assert.True(t, row.InkCost.Equal(single.InkCost), "job %s ink %s vs %s", row.JobID, row.InkCost, single.InkCost)
		assert.True(t, row.GrossProfit.Equal(single.GrossProfit), "job %s profit %s vs %s", row.JobID, row.GrossProfit, single.GrossProfit)
		assert.True(t, row.ProfitMargin.Equal(single.ProfitMargin), "job %s margin %s vs %s", row.JobID, row.ProfitMargin, single.ProfitMargin)
		assert.Equal(t, single.TotalQuantity, row.TotalQuantity)
		assert.Equal(t, single.TotalTimeMinutes, row.TotalTimeMinutes)
		assert.Equal(t, single.LastUpdated.UTC(), row.LastUpdated.UTC())
	}
}

func TestRecalculateAllRollsBackOnMissingProduct(t *testing.T) {
	f := setupMetricsFixture(t)

	mug := f.createProduct(t, catalogdomain.CategoryFinished, "6.5", "0")
	good := f.createJob(t, nil, []jobdomain.JobLineItem{
		{ProductID: mug.ID, Category: mug.Category, RequestedQuantity: 10, CompletedQuantity: 10, InkVolumeMl: dec("5"), InkCostPerUnit: dec("0")},
	})
	f.createJob(t, nil, []jobdomain.JobLineItem{
		{ProductID: f.node.Generate(), Category: mug.Category, RequestedQuantity: 1, CompletedQuantity: 1, InkVolumeMl: dec("0"), InkCostPerUnit: dec("0")},
	})

	// Existing rows must survive a failed rebuild.
	existing := domain.JobMetrics{JobID: good.ID, Revenue: dec("123"), LastUpdated: f.clock.Now()}
	require.NoError(t, f.db.Create(&existing).Error)

	_, err := f.svc.RecalculateAll(context.Background())
	require.Error(t, err)

	var recErr *domain.RecalculateError
	require.True(t, errors.As(err, &recErr))
	assert.True(t, errors.Is(err, catalogdomain.ErrNotFound))

	rows, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, good.ID, rows[0].JobID)
	assert.True(t, rows[0].Revenue.Equal(dec("123")), "revenue %s", rows[0].Revenue)
}

func TestCalculateUnknownJob(t *testing.T) {
	f := setupMetricsFixture(t)

	_, err := f.svc.Calculate(context.Background(), f.node.Generate())
	assert.ErrorIs(t, err, jobdomain.ErrNotFound)
}
