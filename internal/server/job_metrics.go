package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jobmetricsdomain "github.com/inkworks/printshop/internal/jobmetrics/domain"
	reportingdomain "github.com/inkworks/printshop/internal/reporting/domain"
	"github.com/shopspring/decimal"
)

type jobMetricsRow struct {
	JobID            string    `json:"job_id"`
	Revenue          float64   `json:"revenue"`
	MaterialCost     float64   `json:"material_cost"`
	InkCost          float64   `json:"ink_cost"`
	GrossProfit      float64   `json:"gross_profit"`
	ProfitMargin     float64   `json:"profit_margin"`
	TotalQuantity    int64     `json:"total_quantity"`
	TotalTimeMinutes int64     `json:"total_time_minutes"`
	LastUpdated      time.Time `json:"last_updated"`
}

func (s *Server) ListJobMetrics(c *gin.Context) {
	recalculate, err := parseOptionalBool(c.Query("recalculate"))
	if err != nil {
		AbortWithError(c, newValidationError("recalculate", "invalid_recalculate", "invalid recalculate flag"))
		return
	}

	ctx := c.Request.Context()
	if recalculate != nil && *recalculate {
		if _, err := s.metricsSvc.RecalculateAll(ctx); err != nil {
			s.metrics.ObserveRecalculation("error")
			abortRecalculate(c, err)
			return
		}
		s.metrics.ObserveRecalculation("ok")
	}

	rows, err := s.metricsSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := make([]jobMetricsRow, 0, len(rows))
	for _, m := range rows {
		data = append(data, jobMetricsRow{
			JobID:            m.JobID.String(),
			Revenue:          roundMoney(m.Revenue),
			MaterialCost:     roundMoney(m.MaterialCost),
			InkCost:          roundMoney(m.InkCost),
			GrossProfit:      roundMoney(m.GrossProfit),
			ProfitMargin:     roundMoney(m.ProfitMargin),
			TotalQuantity:    m.TotalQuantity,
			TotalTimeMinutes: m.TotalTimeMinutes,
			LastUpdated:      m.LastUpdated,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    data,
		"summary": gin.H{"job_count": len(data)},
	})
}

func (s *Server) RecalculateJobMetrics(c *gin.Context) {
	recalculated, err := s.metricsSvc.RecalculateAll(c.Request.Context())
	if err != nil {
		s.metrics.ObserveRecalculation("error")
		abortRecalculate(c, err)
		return
	}
	s.metrics.ObserveRecalculation("ok")

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"recalculated": recalculated},
	})
}

// abortRecalculate keeps the partial-progress report in the response when a
// full rebuild fails partway.
func abortRecalculate(c *gin.Context, err error) {
	var recErr *jobmetricsdomain.RecalculateError
	if errors.As(err, &recErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"type":    "recalculate_failed",
				"message": recErr.Error(),
			},
			"succeeded": recErr.Succeeded,
		})
		return
	}
	AbortWithError(c, err)
}

func (s *Server) GetRevenueTrends(c *gin.Context) {
	req, err := s.parseReportRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.RevenueTrends(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetAverageInvoiceValue(c *gin.Context) {
	req, err := s.parseReportRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.AverageInvoiceValue(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetDSO(c *gin.Context) {
	req, err := s.parseReportRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.DSO(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOutstandingInvoices(c *gin.Context) {
	resp, err := s.reportingSvc.OutstandingInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetRevenueByProduct(c *gin.Context) {
	req, err := s.parseReportRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.RevenueByCategory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProfitMargins(c *gin.Context) {
	req, err := s.parseReportRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.ProfitMarginsByJobType(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) parseReportRequest(c *gin.Context) (reportingdomain.ReportRequest, error) {
	timeRange := reportingdomain.TimeRange(strings.TrimSpace(c.Query("timeRange")))
	start, end, err := timeRange.Resolve(s.clock.Now())
	if err != nil {
		return reportingdomain.ReportRequest{}, newValidationError("timeRange", "invalid_time_range", "invalid time range")
	}
	return reportingdomain.ReportRequest{Start: start, End: end}, nil
}

func roundMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
