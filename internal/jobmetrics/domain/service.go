package domain

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// RecalculateError reports a full-table recalculation that failed partway.
// Succeeded is how many jobs were recomputed before the failing one. The
// rebuild is all-or-nothing, so the table still holds its previous contents.
type RecalculateError struct {
	Succeeded int
	JobID     snowflake.ID
	Err       error
}

func (e *RecalculateError) Error() string {
	return fmt.Sprintf("recalculate aborted at job %s after %d succeeded: %v", e.JobID, e.Succeeded, e.Err)
}

func (e *RecalculateError) Unwrap() error { return e.Err }

type Service interface {
	// Calculate derives the metrics for one job without persisting anything.
	Calculate(ctx context.Context, jobID snowflake.ID) (*JobMetrics, error)
	// UpsertOne recomputes one job's metrics and writes-or-replaces its row.
	// Repeated calls with unchanged inputs produce an identical row.
	UpsertOne(ctx context.Context, jobID snowflake.ID) (*JobMetrics, error)
	// RecalculateAll wipes the metrics table and rebuilds a row for every job
	// with at least one line item, all inside one transaction. On failure it
	// returns a *RecalculateError naming the failing job and the count
	// recomputed before it.
	RecalculateAll(ctx context.Context) (int, error)
	List(ctx context.Context) ([]JobMetrics, error)
}
