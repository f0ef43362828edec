package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	catalogrepo "github.com/inkworks/printshop/internal/catalog/repository"
	"github.com/inkworks/printshop/internal/clock"
	"github.com/inkworks/printshop/internal/config"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	invoicerepo "github.com/inkworks/printshop/internal/invoice/repository"
	invoiceservice "github.com/inkworks/printshop/internal/invoice/service"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	jobrepo "github.com/inkworks/printshop/internal/job/repository"
	jobmetricsdomain "github.com/inkworks/printshop/internal/jobmetrics/domain"
	jobmetricsrepo "github.com/inkworks/printshop/internal/jobmetrics/repository"
	jobmetricsservice "github.com/inkworks/printshop/internal/jobmetrics/service"
	obsmetrics "github.com/inkworks/printshop/internal/observability/metrics"
	reportingservice "github.com/inkworks/printshop/internal/reporting/service"
	"github.com/inkworks/printshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serverFixture struct {
	srv   *Server
	clock *clock.FakeClock
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&catalogdomain.Product{},
		&jobdomain.Job{},
		&jobdomain.JobLineItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
		&jobmetricsdomain.JobMetrics{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	products := catalogrepo.Provide(dbConn)
	jobs := jobrepo.Provide(dbConn)
	invoices := invoicerepo.Provide(dbConn)

	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		Repo:     invoices,
		Products: products,
		Log:      log,
		Clock:    fakeClock,
		GenID:    node,
	})
	metricsSvc := jobmetricsservice.NewService(jobmetricsservice.Params{
		DB:       dbConn,
		Log:      log,
		Clock:    fakeClock,
		Repo:     jobmetricsrepo.Provide(),
		Jobs:     jobs,
		Invoices: invoices,
		Products: products,
	})
	reportingSvc := reportingservice.NewService(reportingservice.Params{
		DB:       dbConn,
		Log:      log,
		Clock:    fakeClock,
		Invoices: invoices,
	})

	httpMetrics := obsmetrics.New()
	engine := NewEngine(log, httpMetrics)
	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{AppName: "printshop-test"},
		DB:           dbConn,
		Clock:        fakeClock,
		GenID:        node,
		Metrics:      httpMetrics,
		ProductRepo:  products,
		JobRepo:      jobs,
		InvoiceSvc:   invoiceSvc,
		MetricsSvc:   metricsSvc,
		ReportingSvc: reportingSvc,
	})

	return &serverFixture{srv: srv, clock: fakeClock}
}

func (f *serverFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealth(t *testing.T) {
	f := setupServerFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductLifecycle(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{
		"name":               "Outdoor Banner",
		"category":           "WIDE_FORMAT",
		"base_price":         "45.00",
		"cost_per_area_unit": "3.25",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)["data"].(map[string]any)
	id, ok := created["id"].(string)
	require.True(t, ok, "product id should serialize as a string")

	rec = f.do(t, http.MethodGet, "/api/products/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Outdoor Banner", fetched["name"])
	assert.Equal(t, "WIDE_FORMAT", fetched["category"])

	rec = f.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["data"].([]any)
	assert.Len(t, list, 1)
}

func TestProductValidation(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{"category": "LEAFLETS"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeBody(t, rec)
	errObj := payload["error"].(map[string]any)
	assert.Equal(t, "validation_error", errObj["type"])
}

func TestProductNotFound(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/products/123456789", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "not_found", errObj["type"])
}

func TestInvoiceJobMetricsFlow(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{
		"name":               "Outdoor Banner",
		"category":           "WIDE_FORMAT",
		"base_price":         "45.00",
		"cost_per_area_unit": "3.25",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	productID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/invoices", gin.H{
		"customer_id":   "7001",
		"customer_name": "Harbor Lane Cafe",
		"issue_date":    "2024-05-20",
		"due_date":      "2024-06-20",
		"tax_rate":      "0.21",
		"line_items": []gin.H{
			{"product_id": productID, "area": "6", "quantity": 2, "unit_price": "52.00"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	invoiceID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/jobs", gin.H{
		"customer_id": "7001",
		"invoice_id":  invoiceID,
		"name":        "Cafe reopening campaign",
		"status":      "COMPLETED",
		"line_items": []gin.H{
			{
				"product_id":           productID,
				"requested_quantity":   2,
				"completed_quantity":   2,
				"elapsed_time_minutes": 95,
				"ink_volume_ml":        "140",
				"ink_cost_per_unit":    "0",
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/metrics/recalculate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["recalculated"])

	rec = f.do(t, http.MethodGet, "/metrics/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	rows := payload["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	// revenue = 104, material = 39, ink = 140 * 0.16 = 22.4
	assert.InDelta(t, 104.0, row["revenue"].(float64), 0.001)
	assert.InDelta(t, 39.0, row["material_cost"].(float64), 0.001)
	assert.InDelta(t, 22.4, row["ink_cost"].(float64), 0.001)
	assert.InDelta(t, 42.6, row["gross_profit"].(float64), 0.001)
	summary := payload["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["job_count"])

	rec = f.do(t, http.MethodGet, "/metrics/revenue-trends?timeRange=12months", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trendSummary := decodeBody(t, rec)["summary"].(map[string]any)
	assert.InDelta(t, 125.84, trendSummary["total_revenue"].(float64), 0.001)

	rec = f.do(t, http.MethodGet, "/metrics/outstanding-invoices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	aging := decodeBody(t, rec)["summary"].(map[string]any)
	assert.Equal(t, float64(1), aging["outstanding_count"])
}

func TestListJobMetricsRecalculateFlag(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{
		"name":       "Printed Mug",
		"category":   "FINISHED",
		"base_price": "6.50",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	productID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/jobs", gin.H{
		"customer_id": "7002",
		"name":        "Mug run",
		"line_items": []gin.H{
			{"product_id": productID, "requested_quantity": 10, "completed_quantity": 10},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Without the flag the table is still empty.
	rec = f.do(t, http.MethodGet, "/metrics/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 0)

	rec = f.do(t, http.MethodGet, "/metrics/jobs?recalculate=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 1)
}

func TestCreateJobRejectsOverCompletion(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{
		"name":       "Printed Mug",
		"category":   "FINISHED",
		"base_price": "6.50",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	productID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/jobs", gin.H{
		"customer_id": "7004",
		"name":        "Mug overrun",
		"line_items": []gin.H{
			{"product_id": productID, "requested_quantity": 10, "completed_quantity": 50},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "validation_error", errObj["type"])

	// Nothing was persisted.
	rec = f.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["data"])
}

func TestInvalidTimeRange(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics/dso?timeRange=forever", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "validation_error", errObj["type"])
}

func TestSetInvoiceStatus(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/products", gin.H{
		"name":       "A5 Leaflet",
		"category":   "LEAFLETS",
		"base_price": "0.12",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	productID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/invoices", gin.H{
		"customer_id":   "7003",
		"customer_name": "Leaflet Buyer",
		"issue_date":    "2024-05-01",
		"due_date":      "2024-05-31",
		"tax_rate":      "0",
		"line_items": []gin.H{
			{"product_id": productID, "quantity": 500, "unit_price": "0.18"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	invoiceID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/invoices/%s/status", invoiceID), gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/invoices/%s/status", invoiceID), gin.H{"status": "SHREDDED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/invoices/"+invoiceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	invoice := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "PAID", invoice["status"])
}
