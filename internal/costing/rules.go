// Package costing maps product categories to material and ink cost formulas.
// It is the single place per-category cost arithmetic lives; callers look a
// rule up by category and never branch on categories themselves.
package costing

import (
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

var (
	// inkRatePerMl prices ink by measured volume for wide-format and
	// finished work.
	inkRatePerMl = decimal.RequireFromString("0.16")
	// leafletInkRatePerUnit is the flat per-sheet ink charge for leaflets.
	leafletInkRatePerUnit = decimal.RequireFromString("0.004")
)

// MaterialInput carries the figures a material-cost formula may use. Booked
// sales supply the invoice line's area and quantity; jobs without an invoice
// supply the requested quantity instead.
type MaterialInput struct {
	BasePrice       decimal.Decimal
	CostPerAreaUnit decimal.Decimal
	Area            decimal.Decimal
	Quantity        int64
}

// InkInput carries the figures an ink-cost formula may use.
type InkInput struct {
	InkVolumeMl       decimal.Decimal
	InkCostPerUnit    decimal.Decimal
	CompletedQuantity int64
}

// Rule is a pure pair of cost formulas for one product category.
type Rule struct {
	Material func(MaterialInput) decimal.Decimal
	Ink      func(InkInput) decimal.Decimal
}

var rules = map[catalogdomain.ProductCategory]Rule{
	catalogdomain.CategoryWideFormat: {
		Material: func(in MaterialInput) decimal.Decimal {
			return in.CostPerAreaUnit.Mul(in.Area).Mul(decimal.NewFromInt(in.Quantity))
		},
		Ink: inkByVolume,
	},
	catalogdomain.CategoryPackaging: {
		Material: materialByBasePrice,
		Ink: func(in InkInput) decimal.Decimal {
			return in.InkCostPerUnit.Mul(decimal.NewFromInt(in.CompletedQuantity))
		},
	},
	catalogdomain.CategoryLeaflets: {
		Material: materialByBasePrice,
		Ink: func(in InkInput) decimal.Decimal {
			return leafletInkRatePerUnit.Mul(decimal.NewFromInt(in.CompletedQuantity))
		},
	},
	catalogdomain.CategoryFinished: {
		Material: materialByBasePrice,
		Ink:      inkByVolume,
	},
}

// ForCategory returns the cost rule for a category. Unknown or legacy
// categories normalize onto the FINISHED rule instead of failing.
func ForCategory(category catalogdomain.ProductCategory) Rule {
	return rules[category.Normalize()]
}

func materialByBasePrice(in MaterialInput) decimal.Decimal {
	return in.BasePrice.Mul(decimal.NewFromInt(in.Quantity))
}

func inkByVolume(in InkInput) decimal.Decimal {
	return in.InkVolumeMl.Mul(inkRatePerMl)
}
