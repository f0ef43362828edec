package costing

import (
	"testing"

	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestMaterialCostByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category catalogdomain.ProductCategory
		in       MaterialInput
		want     string
	}{
		{
			name:     "wide format uses area times cost per area unit",
			category: catalogdomain.CategoryWideFormat,
			in:       MaterialInput{CostPerAreaUnit: dec("2.50"), Area: dec("3"), Quantity: 4},
			want:     "30",
		},
		{
			name:     "packaging uses base price times quantity",
			category: catalogdomain.CategoryPackaging,
			in:       MaterialInput{BasePrice: dec("1.20"), Quantity: 100},
			want:     "120",
		},
		{
			name:     "leaflets use base price times quantity",
			category: catalogdomain.CategoryLeaflets,
			in:       MaterialInput{BasePrice: dec("0.05"), Quantity: 1000},
			want:     "50",
		},
		{
			name:     "finished uses base price times quantity",
			category: catalogdomain.CategoryFinished,
			in:       MaterialInput{BasePrice: dec("9.99"), Quantity: 2},
			want:     "19.98",
		},
		{
			name:     "unknown category falls back to finished",
			category: catalogdomain.ProductCategory("EMBOSSING"),
			in:       MaterialInput{BasePrice: dec("4"), Quantity: 5},
			want:     "20",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ForCategory(tc.category).Material(tc.in)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestInkCostByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category catalogdomain.ProductCategory
		in       InkInput
		want     string
	}{
		{
			name:     "wide format charges per ml",
			category: catalogdomain.CategoryWideFormat,
			in:       InkInput{InkVolumeMl: dec("250")},
			want:     "40",
		},
		{
			name:     "packaging charges per completed unit",
			category: catalogdomain.CategoryPackaging,
			in:       InkInput{InkCostPerUnit: dec("0.03"), CompletedQuantity: 500},
			want:     "15",
		},
		{
			name:     "leaflets charge a flat per-unit rate",
			category: catalogdomain.CategoryLeaflets,
			in:       InkInput{CompletedQuantity: 2000},
			want:     "8",
		},
		{
			name:     "finished charges per ml",
			category: catalogdomain.CategoryFinished,
			in:       InkInput{InkVolumeMl: dec("12.5")},
			want:     "2",
		},
		{
			name:     "unknown category uses the per-ml fallback",
			category: catalogdomain.ProductCategory("VINYL"),
			in:       InkInput{InkVolumeMl: dec("100")},
			want:     "16",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ForCategory(tc.category).Ink(tc.in)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}
