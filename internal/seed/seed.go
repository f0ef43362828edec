// Package seed installs a small demo dataset for local evaluation.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/clock"
	"github.com/inkworks/printshop/internal/config"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, conn *gorm.DB, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if !cfg.SeedDemo {
			return nil
		}
		return EnsureDemoData(conn, genID, clk, log.Named("seed"))
	}),
)

// EnsureDemoData inserts demo products, jobs and invoices once. A non-empty
// catalog means the data is already present (or the instance is real), so
// the seeder backs off.
func EnsureDemoData(conn *gorm.DB, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
	var count int64
	if err := conn.Raw(`SELECT COUNT(*) FROM products`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("demo seed skipped, catalog not empty")
		return nil
	}

	now := clk.Now()
	dec := decimal.RequireFromString

	banner := catalogdomain.Product{
		ID:              genID.Generate(),
		Name:            "Outdoor Banner",
		Category:        catalogdomain.CategoryWideFormat,
		BasePrice:       dec("45.00"),
		CostPerAreaUnit: dec("3.25"),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	box := catalogdomain.Product{
		ID:              genID.Generate(),
		Name:            "Shipping Box",
		Category:        catalogdomain.CategoryPackaging,
		BasePrice:       dec("1.80"),
		CostPerAreaUnit: dec("0"),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	leaflet := catalogdomain.Product{
		ID:              genID.Generate(),
		Name:            "A5 Leaflet",
		Category:        catalogdomain.CategoryLeaflets,
		BasePrice:       dec("0.12"),
		CostPerAreaUnit: dec("0"),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	mug := catalogdomain.Product{
		ID:              genID.Generate(),
		Name:            "Printed Mug",
		Category:        catalogdomain.CategoryFinished,
		BasePrice:       dec("6.50"),
		CostPerAreaUnit: dec("0"),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, product := range []catalogdomain.Product{banner, box, leaflet, mug} {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		}

		customerID := genID.Generate()
		invoice := invoicedomain.Invoice{
			ID:           genID.Generate(),
			CustomerID:   customerID,
			CustomerName: "Harbor Lane Cafe",
			IssueDate:    now.AddDate(0, 0, -21),
			DueDate:      now.AddDate(0, 0, -7),
			Status:       invoicedomain.InvoiceStatusOverdue,
			TaxRate:      dec("0.21"),
			Metadata:     datatypes.JSONMap{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		lines := []invoicedomain.InvoiceLineItem{
			{
				ID:        genID.Generate(),
				InvoiceID: invoice.ID,
				ProductID: banner.ID,
				Category:  banner.Category,
				Area:      dec("6"),
				Quantity:  2,
				UnitPrice: dec("52.00"),
				CreatedAt: now,
			},
			{
				ID:        genID.Generate(),
				InvoiceID: invoice.ID,
				ProductID: leaflet.ID,
				Category:  leaflet.Category,
				Area:      dec("0"),
				Quantity:  500,
				UnitPrice: dec("0.18"),
				CreatedAt: now,
			},
		}
		subtotal := decimal.Zero
		for i := range lines {
			lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(lines[i].Quantity))
			subtotal = subtotal.Add(lines[i].LineTotal)
		}
		invoice.Subtotal = subtotal
		invoice.TaxAmount = subtotal.Mul(invoice.TaxRate)
		invoice.TotalAmount = subtotal.Add(invoice.TaxAmount)

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range lines {
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}

		invoiceID := invoice.ID
		job := jobdomain.Job{
			ID:         genID.Generate(),
			CustomerID: customerID,
			InvoiceID:  &invoiceID,
			Name:       "Cafe reopening campaign",
			Status:     jobdomain.JobStatusCompleted,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		jobLines := []jobdomain.JobLineItem{
			{
				ID:                 genID.Generate(),
				JobID:              job.ID,
				ProductID:          banner.ID,
				Category:           banner.Category,
				RequestedQuantity:  2,
				CompletedQuantity:  2,
				ElapsedTimeMinutes: 95,
				InkVolumeMl:        dec("140"),
				InkCostPerUnit:     dec("0"),
				CreatedAt:          now,
			},
			{
				ID:                 genID.Generate(),
				JobID:              job.ID,
				ProductID:          leaflet.ID,
				Category:           leaflet.Category,
				RequestedQuantity:  500,
				CompletedQuantity:  500,
				ElapsedTimeMinutes: 40,
				InkVolumeMl:        dec("0"),
				InkCostPerUnit:     dec("0"),
				CreatedAt:          now.Add(time.Minute),
			},
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		for i := range jobLines {
			if err := tx.Create(&jobLines[i]).Error; err != nil {
				return err
			}
		}

		inProgress := jobdomain.Job{
			ID:         genID.Generate(),
			CustomerID: genID.Generate(),
			Name:       "Trade fair packaging run",
			Status:     jobdomain.JobStatusInProgress,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		inProgressLine := jobdomain.JobLineItem{
			ID:                 genID.Generate(),
			JobID:              inProgress.ID,
			ProductID:          box.ID,
			Category:           box.Category,
			RequestedQuantity:  300,
			CompletedQuantity:  120,
			ElapsedTimeMinutes: 210,
			InkVolumeMl:        dec("0"),
			InkCostPerUnit:     dec("0.05"),
			CreatedAt:          now,
		}
		if err := tx.Create(&inProgress).Error; err != nil {
			return err
		}
		if err := tx.Create(&inProgressLine).Error; err != nil {
			return err
		}

		log.Info("demo data seeded",
			zap.Int("products", 4),
			zap.Int("invoices", 1),
			zap.Int("jobs", 2),
		)
		return nil
	})
}
