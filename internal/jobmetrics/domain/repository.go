package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists job metrics rows. Methods take the database handle so
// callers can run them inside a surrounding transaction.
type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, metrics *JobMetrics) error
	DeleteAll(ctx context.Context, db *gorm.DB) error
	FindAll(ctx context.Context, db *gorm.DB) ([]JobMetrics, error)
}
