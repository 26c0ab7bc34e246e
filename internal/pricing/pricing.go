// Package pricing computes order totals from resolved cart lines.
package pricing

import (
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FreeShippingThreshold = 999
	ShippingFee           = 40
)

var TaxRate = decimal.NewFromFloat(0.18)

// Calculate returns subtotal, tax, shipping and total for the given lines.
// Lines without a resolved product contribute nothing. Shipping is waived
// only when the subtotal is strictly above FreeShippingThreshold.
func Calculate(items []domain.LineItem) domain.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		line := decimal.NewFromFloat(it.Product.EffectivePrice()).Mul(decimal.NewFromInt(int64(it.Entry.Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(TaxRate)
	shipping := decimal.NewFromInt(ShippingFee)
	if subtotal.GreaterThan(decimal.NewFromInt(FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	total := subtotal.Add(tax).Add(shipping)

	return domain.Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// MinorUnits converts an amount to the smallest currency unit, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// DiscountPercentage is the whole-number percentage saved by selling at sale
// instead of original. Zero when there is no discount.
func DiscountPercentage(original, sale float64) int {
	if original <= 0 || sale <= 0 || sale >= original {
		return 0
	}
	o := decimal.NewFromFloat(original)
	pct := o.Sub(decimal.NewFromFloat(sale)).Div(o).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// Equal reports whether two totals agree to the minor unit.
func Equal(a, b domain.Totals) bool {
	return MinorUnits(a.Subtotal) == MinorUnits(b.Subtotal) &&
		MinorUnits(a.Tax) == MinorUnits(b.Tax) &&
		MinorUnits(a.Shipping) == MinorUnits(b.Shipping) &&
		MinorUnits(a.Total) == MinorUnits(b.Total)
}
