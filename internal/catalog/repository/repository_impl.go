package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/inkworks/printshop/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, category, base_price, cost_per_area_unit, active, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *repo) FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.Product, error) {
	result := make(map[snowflake.ID]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var items []domain.Product
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, category, base_price, cost_per_area_unit, active, created_at, updated_at
		 FROM products WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.ID] = item
	}
	return result, nil
}

func (r *repo) FindAll(ctx context.Context) ([]domain.Product, error) {
	var items []domain.Product
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, category, base_price, cost_per_area_unit, active, created_at, updated_at
		 FROM products ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
