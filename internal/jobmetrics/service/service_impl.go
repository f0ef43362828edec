package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/clock"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	"github.com/inkworks/printshop/internal/jobmetrics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Jobs     jobdomain.Repository
	Invoices invoicedomain.Repository
	Products catalogdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	jobs     jobdomain.Repository
	invoices invoicedomain.Repository
	products catalogdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("jobmetrics.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		jobs:     p.Jobs,
		invoices: p.Invoices,
		products: p.Products,
	}
}

func (s *Service) UpsertOne(ctx context.Context, jobID snowflake.ID) (*domain.JobMetrics, error) {
	metrics, err := s.Calculate(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, s.db, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (s *Service) RecalculateAll(ctx context.Context) (int, error) {
	jobIDs, err := s.jobs.ListIDsWithLineItems(ctx)
	if err != nil {
		return 0, err
	}

	// Calculate everything up front so the wipe-and-rewrite transaction
	// holds no reads: a failed calculation leaves the table untouched.
	succeeded := 0
	recalculated := make([]*domain.JobMetrics, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		metrics, calcErr := s.Calculate(ctx, jobID)
		if calcErr != nil {
			err := &domain.RecalculateError{Succeeded: succeeded, JobID: jobID, Err: calcErr}
			s.log.Error("metrics recalculation failed",
				zap.Int("succeeded", succeeded),
				zap.Error(err),
			)
			return succeeded, err
		}
		recalculated = append(recalculated, metrics)
		succeeded++
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteAll(ctx, tx); err != nil {
			return err
		}
		for _, metrics := range recalculated {
			if err := s.repo.Upsert(ctx, tx, metrics); err != nil {
				return &domain.RecalculateError{Succeeded: succeeded, JobID: metrics.JobID, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("metrics recalculation failed",
			zap.Int("succeeded", succeeded),
			zap.Error(err),
		)
		return succeeded, err
	}

	s.log.Info("metrics recalculated", zap.Int("jobs", succeeded))
	return succeeded, nil
}

func (s *Service) List(ctx context.Context) ([]domain.JobMetrics, error) {
	return s.repo.FindAll(ctx, s.db)
}
