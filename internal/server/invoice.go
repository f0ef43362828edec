package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

type createInvoiceLineRequest struct {
	ProductID snowflake.ID    `json:"product_id"`
	Area      decimal.Decimal `json:"area"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	CustomerID   snowflake.ID               `json:"customer_id"`
	CustomerName string                     `json:"customer_name"`
	IssueDate    string                     `json:"issue_date"`
	DueDate      string                     `json:"due_date"`
	TaxRate      decimal.Decimal            `json:"tax_rate"`
	LineItems    []createInvoiceLineRequest `json:"line_items"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseOptionalTime(req.IssueDate, false)
	if err != nil || issueDate == nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_time", "invalid issue date"))
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil || dueDate == nil {
		AbortWithError(c, newValidationError("due_date", "invalid_time", "invalid due date"))
		return
	}

	create := invoicedomain.CreateInvoiceRequest{
		CustomerID:   req.CustomerID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		IssueDate:    *issueDate,
		DueDate:      *dueDate,
		TaxRate:      req.TaxRate,
	}
	for _, line := range req.LineItems {
		create.LineItems = append(create.LineItems, invoicedomain.CreateLineItemRequest{
			ProductID: line.ProductID,
			Area:      line.Area,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	start, err := parseOptionalTime(c.Query("start"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start", "invalid_time", "invalid start time"))
		return
	}
	end, err := parseOptionalTime(c.Query("end"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end", "invalid_time", "invalid end time"))
		return
	}

	now := s.clock.Now()
	if start == nil {
		from := now.AddDate(-1, 0, 0)
		start = &from
	}
	if end == nil {
		end = &now
	}
	if start.After(*end) {
		AbortWithError(c, newValidationError("range", "invalid_range", "start must be before end"))
		return
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), *start, *end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}

	invoice, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

type setInvoiceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetInvoiceStatus(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}

	var req setInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := invoicedomain.InvoiceStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err := s.invoiceSvc.SetStatus(c.Request.Context(), id, status); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
