package repository

import (
	"context"

	"github.com/inkworks/printshop/internal/jobmetrics/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, metrics *domain.JobMetrics) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(metrics).Error
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(`DELETE FROM job_metrics`).Error
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.JobMetrics, error) {
	var rows []domain.JobMetrics
	err := db.WithContext(ctx).Raw(
		`SELECT job_id, revenue, material_cost, ink_cost, gross_profit, profit_margin,
		        total_quantity, total_time_minutes, last_updated
		 FROM job_metrics ORDER BY job_id ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
