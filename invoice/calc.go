package invoice

import "github.com/xraph/facture/types"

// Totals is the result of running the calculator over a set of lines.
type Totals struct {
	ZeroRatedBase types.Money
	Subtotal      types.Money
	TaxAmount     types.Money
	Total         types.Money
}

// Calculate derives invoice totals from the given lines and tax rate.
// It is pure: same lines and rate always produce the same totals, and
// the lines themselves are not modified.
//
//	subtotal = Σ quantity × unit price
//	tax      = rate applied to subtotal, rounded half up
//	total    = subtotal + tax
//
// ZeroRatedBase is reserved for tax-exempt positions and is always zero
// for now. All amounts carry the given currency, including for an empty
// line set.
func Calculate(lines []LineItem, rate types.TaxRate, currency string) Totals {
	subtotal := types.Zero(currency)
	for _, line := range lines {
		subtotal = subtotal.Add(LineAmount(line))
	}

	tax := rate.Apply(subtotal)
	return Totals{
		ZeroRatedBase: types.Zero(currency),
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         subtotal.Add(tax),
	}
}

// LineAmount computes a single line's extended amount, quantity times
// unit price.
func LineAmount(line LineItem) types.Money {
	return line.UnitPrice.Multiply(line.Quantity)
}
