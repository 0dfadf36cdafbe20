package checkout

import (
	"github.com/ginzapet/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// TaxRate is the fixed 11% applied to every order, regardless of product or
// city.
var TaxRate = decimal.NewFromFloat(0.11)

// Totals carries the derived amounts for the resolved cart. Values stay
// decimal until display so the tax fraction is never truncated early.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums the resolved product prices and applies the tax rate.
func ComputeTotals(products []catalog.Product) Totals {
	subtotal := decimal.Zero
	for _, product := range products {
		subtotal = subtotal.Add(decimal.NewFromInt(int64(product.Price)))
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
