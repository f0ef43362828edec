package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/clock"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Repo     invoicedomain.Repository
	Products catalogdomain.Repository
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
}

type Service struct {
	repo     invoicedomain.Repository
	products catalogdomain.Repository
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		repo:     p.Repo,
		products: p.Products,
		log:      p.Log.Named("invoice.service"),
		clock:    p.Clock,
		genID:    p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]snowflake.ID, 0, len(req.LineItems))
	for _, line := range req.LineItems {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invoice := &invoicedomain.Invoice{
		ID:           s.genID.Generate(),
		CustomerID:   req.CustomerID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		IssueDate:    req.IssueDate.UTC(),
		DueDate:      req.DueDate.UTC(),
		Status:       invoicedomain.InvoiceStatusPending,
		TaxRate:      req.TaxRate,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	subtotal := decimal.Zero
	for _, line := range req.LineItems {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("invoice line product %s: %w", line.ProductID, catalogdomain.ErrNotFound)
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		invoice.LineItems = append(invoice.LineItems, invoicedomain.InvoiceLineItem{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			ProductID: line.ProductID,
			Category:  product.Category,
			Area:      line.Area,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: lineTotal,
			CreatedAt: now,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	invoice.Subtotal = subtotal
	invoice.TaxAmount = subtotal.Mul(req.TaxRate)
	invoice.TotalAmount = subtotal.Add(invoice.TaxAmount)

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("customer", invoice.CustomerName),
		zap.String("subtotal", invoice.Subtotal.String()),
	)
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, start, end time.Time) ([]invoicedomain.Invoice, error) {
	return s.repo.ListByIssueDate(ctx, start, end)
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status invoicedomain.InvoiceStatus) error {
	switch status {
	case invoicedomain.InvoiceStatusPending,
		invoicedomain.InvoiceStatusPaid,
		invoicedomain.InvoiceStatusOverdue,
		invoicedomain.InvoiceStatusCancelled:
	default:
		return invoicedomain.ErrInvalidRequest
	}
	return s.repo.UpdateStatus(ctx, id, status, s.clock.Now())
}

func validateCreateRequest(req invoicedomain.CreateInvoiceRequest) error {
	if req.CustomerID == 0 || strings.TrimSpace(req.CustomerName) == "" {
		return invoicedomain.ErrInvalidRequest
	}
	if req.IssueDate.IsZero() || req.DueDate.IsZero() || req.DueDate.Before(req.IssueDate) {
		return invoicedomain.ErrInvalidRequest
	}
	if req.TaxRate.IsNegative() {
		return invoicedomain.ErrInvalidRequest
	}
	if len(req.LineItems) == 0 {
		return invoicedomain.ErrInvalidRequest
	}
	for _, line := range req.LineItems {
		if line.ProductID == 0 || line.Quantity <= 0 || line.UnitPrice.IsNegative() || line.Area.IsNegative() {
			return invoicedomain.ErrInvalidRequest
		}
	}
	return nil
}
