package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("product_not_found")

type Repository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]Product, error)
	FindAll(ctx context.Context) ([]Product, error)
}
