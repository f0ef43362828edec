package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound       = errors.New("job_not_found")
	ErrInvalidRequest = errors.New("invalid_job_request")
)

type Repository interface {
	Create(ctx context.Context, job *Job) error
	// FindByID loads a job with its line items.
	FindByID(ctx context.Context, id snowflake.ID) (*Job, error)
	FindAll(ctx context.Context) ([]Job, error)
	// ListIDsWithLineItems returns every job id that has at least one line item.
	ListIDsWithLineItems(ctx context.Context) ([]snowflake.ID, error)
}
