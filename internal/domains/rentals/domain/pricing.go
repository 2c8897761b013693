package domain

import "github.com/shopspring/decimal"

// TaxRate is applied on top of the rental subtotal.
var TaxRate = decimal.RequireFromString("0.18")

// LineItem is a priced order line before persistence.
type LineItem struct {
	VariantID  int64
	Quantity   int
	Period     Period
	PriceDaily decimal.Decimal
}

// Amount is price_daily x quantity x days.
func (l LineItem) Amount() decimal.Decimal {
	return l.PriceDaily.
		Mul(decimal.NewFromInt(int64(l.Quantity))).
		Mul(decimal.NewFromInt(l.Period.Days()))
}

// Totals is the priced summary of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals sums line amounts and applies the fixed tax rate, rounding to cents.
func CalculateTotals(items []LineItem) Totals {
	return TotalsFor(AddLines(decimal.Zero, items))
}

// AddLines adds the line amounts to an existing subtotal.
func AddLines(subtotal decimal.Decimal, items []LineItem) decimal.Decimal {
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	return subtotal
}

// TotalsFor applies the fixed tax rate to subtotal, rounding to cents.
func TotalsFor(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal.Round(2),
		Tax:      tax.Round(2),
		Total:    subtotal.Add(tax).Round(2),
	}
}
