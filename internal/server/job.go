package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	"github.com/shopspring/decimal"
)

type createJobLineRequest struct {
	ProductID          snowflake.ID    `json:"product_id"`
	RequestedQuantity  int64           `json:"requested_quantity"`
	CompletedQuantity  int64           `json:"completed_quantity"`
	ElapsedTimeMinutes int64           `json:"elapsed_time_minutes"`
	InkVolumeMl        decimal.Decimal `json:"ink_volume_ml"`
	InkCostPerUnit     decimal.Decimal `json:"ink_cost_per_unit"`
}

type createJobRequest struct {
	CustomerID snowflake.ID           `json:"customer_id"`
	InvoiceID  *snowflake.ID          `json:"invoice_id"`
	Name       string                 `json:"name"`
	Status     string                 `json:"status"`
	LineItems  []createJobLineRequest `json:"line_items"`
}

func (s *Server) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validateCreateJobRequest(req); err != nil {
		AbortWithError(c, err)
		return
	}

	status := jobdomain.JobStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status == "" {
		status = jobdomain.JobStatusInProgress
	}
	switch status {
	case jobdomain.JobStatusInProgress, jobdomain.JobStatusCompleted:
	default:
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid job status"))
		return
	}

	ctx := c.Request.Context()
	productIDs := make([]snowflake.ID, 0, len(req.LineItems))
	for _, line := range req.LineItems {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := s.clock.Now()
	job := &jobdomain.Job{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		InvoiceID:  req.InvoiceID,
		Name:       strings.TrimSpace(req.Name),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for _, line := range req.LineItems {
		product, ok := products[line.ProductID]
		if !ok {
			AbortWithError(c, fmt.Errorf("job line product %s: %w", line.ProductID, catalogdomain.ErrNotFound))
			return
		}
		job.LineItems = append(job.LineItems, jobdomain.JobLineItem{
			ID:                 s.genID.Generate(),
			JobID:              job.ID,
			ProductID:          line.ProductID,
			Category:           product.Category,
			RequestedQuantity:  line.RequestedQuantity,
			CompletedQuantity:  line.CompletedQuantity,
			ElapsedTimeMinutes: line.ElapsedTimeMinutes,
			InkVolumeMl:        line.InkVolumeMl,
			InkCostPerUnit:     line.InkCostPerUnit,
			CreatedAt:          now,
		})
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func (s *Server) ListJobs(c *gin.Context) {
	jobs, err := s.jobRepo.FindAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (s *Server) GetJobByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, jobdomain.ErrNotFound)
		return
	}

	job, err := s.jobRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func validateCreateJobRequest(req createJobRequest) error {
	if req.CustomerID == 0 {
		return newValidationError("customer_id", "required", "customer_id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return newValidationError("name", "required", "name is required")
	}
	for _, line := range req.LineItems {
		if line.ProductID == 0 {
			return newValidationError("line_items.product_id", "required", "product_id is required")
		}
		if line.RequestedQuantity <= 0 {
			return newValidationError("line_items.requested_quantity", "invalid_quantity", "requested_quantity must be positive")
		}
		if line.CompletedQuantity < 0 || line.ElapsedTimeMinutes < 0 {
			return newValidationError("line_items", "invalid_progress", "completed quantity and elapsed time must not be negative")
		}
		if line.CompletedQuantity > line.RequestedQuantity {
			return newValidationError("line_items.completed_quantity", "exceeds_requested", "completed_quantity must not exceed requested_quantity")
		}
		if line.InkVolumeMl.IsNegative() || line.InkCostPerUnit.IsNegative() {
			return newValidationError("line_items", "invalid_ink", "ink figures must not be negative")
		}
	}
	return nil
}
