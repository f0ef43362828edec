package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/inkworks/printshop/internal/job/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO jobs (id, customer_id, invoice_id, name, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			job.ID,
			job.CustomerID,
			job.InvoiceID,
			job.Name,
			job.Status,
			job.CreatedAt,
			job.UpdatedAt,
		).Error; err != nil {
			return err
		}
		for _, item := range job.LineItems {
			if err := tx.Exec(
				`INSERT INTO job_line_items
				 (id, job_id, product_id, category, requested_quantity, completed_quantity,
				  elapsed_time_minutes, ink_volume_ml, ink_cost_per_unit, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				job.ID,
				item.ProductID,
				item.Category,
				item.RequestedQuantity,
				item.CompletedQuantity,
				item.ElapsedTimeMinutes,
				item.InkVolumeMl,
				item.InkCostPerUnit,
				item.CreatedAt,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, invoice_id, name, status, created_at, updated_at
		 FROM jobs WHERE id = ?`,
		id,
	).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, domain.ErrNotFound
	}

	err = r.db.WithContext(ctx).Raw(
		`SELECT id, job_id, product_id, category, requested_quantity, completed_quantity,
		        elapsed_time_minutes, ink_volume_ml, ink_cost_per_unit, created_at
		 FROM job_line_items WHERE job_id = ? ORDER BY created_at ASC, id ASC`,
		id,
	).Scan(&job.LineItems).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repo) FindAll(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, invoice_id, name, status, created_at, updated_at
		 FROM jobs ORDER BY created_at ASC`,
	).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) ListIDsWithLineItems(ctx context.Context) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT j.id
		 FROM jobs j
		 JOIN job_line_items li ON li.job_id = j.id
		 ORDER BY j.id ASC`,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
