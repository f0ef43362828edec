package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	BasePrice       decimal.Decimal `json:"base_price"`
	CostPerAreaUnit decimal.Decimal `json:"cost_per_area_unit"`
	Active          *bool           `json:"active"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}
	if req.BasePrice.IsNegative() || req.CostPerAreaUnit.IsNegative() {
		AbortWithError(c, newValidationError("base_price", "invalid_price", "prices must not be negative"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	product := &catalogdomain.Product{
		ID:              s.genID.Generate(),
		Name:            name,
		Category:        catalogdomain.ProductCategory(strings.ToUpper(strings.TrimSpace(req.Category))),
		BasePrice:       req.BasePrice,
		CostPerAreaUnit: req.CostPerAreaUnit,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.productRepo.Create(c.Request.Context(), product); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.productRepo.FindAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, catalogdomain.ErrNotFound)
		return
	}

	product, err := s.productRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
