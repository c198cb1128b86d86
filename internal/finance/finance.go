// Package finance holds the money arithmetic for invoices, payments
// and job profitability. Everything here is deterministic and
// side-effect free; sign validation happens at the HTTP boundary.
package finance

import (
	"github.com/shopspring/decimal"

	"glassops/internal/model"
)

// Stripe's standard card fee: 2.9% + $0.30.
var (
	stripeFeeRate = decimal.NewFromFloat(0.029)
	stripeFeeFlat = decimal.NewFromFloat(0.30)
	// 1 - 0.029, used to invert the fee formula
	stripeNetRate = decimal.NewFromFloat(0.971)

	hundred = decimal.NewFromInt(100)
)

// InvoiceTotals is the result of the fixed subtotal -> discount ->
// tax -> total chain.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// StripeAmounts pairs a processor fee with the amount retained.
type StripeAmounts struct {
	Fee decimal.Decimal
	Net decimal.Decimal
}

// GrossAmounts pairs a derived gross charge with its fee.
type GrossAmounts struct {
	Gross decimal.Decimal
	Fee   decimal.Decimal
}

// JobNetResult summarizes job profitability.
type JobNetResult struct {
	Revenue decimal.Decimal
	Costs   decimal.Decimal
	Net     decimal.Decimal
	Margin  decimal.Decimal // percent, 1 decimal; 0 when revenue is 0 ("no data", not break-even)
}

// LineTotal returns qty * unitPrice rounded to cents, half-up.
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Round(2)
}

// ComputeInvoiceTotals runs the totals chain over the given line
// items. The order is a policy invariant: discount applies to the
// subtotal, tax applies to the post-discount amount. Swapping the two
// is a defect.
func ComputeInvoiceTotals(items []model.LineItem, discountApplied bool, discountPercent decimal.Decimal, taxApplied bool, taxRate decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}

	discountAmount := decimal.Zero
	if discountApplied {
		discountAmount = subtotal.Mul(discountPercent).Div(hundred).Round(2)
	}
	afterDiscount := subtotal.Sub(discountAmount)

	tax := decimal.Zero
	if taxApplied {
		tax = afterDiscount.Mul(taxRate).Div(hundred).Round(2)
	}

	return InvoiceTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  afterDiscount,
		Tax:            tax,
		Total:          afterDiscount.Add(tax),
	}
}

// ComputeStripeFee derives the fee and net amount from a gross
// charge. The fee is rounded to cents first, then subtracted; the net
// is not rounded from unrounded intermediates.
func ComputeStripeFee(gross decimal.Decimal) StripeAmounts {
	fee := gross.Mul(stripeFeeRate).Add(stripeFeeFlat).Round(2)
	return StripeAmounts{
		Fee: fee,
		Net: gross.Sub(fee),
	}
}

// ComputeGrossFromNet inverts ComputeStripeFee: the gross charge
// needed so the payee retains net. The inversion ignores the forward
// direction's fee rounding, so round-tripping may drift by a cent.
func ComputeGrossFromNet(net decimal.Decimal) GrossAmounts {
	gross := net.Add(stripeFeeFlat).Div(stripeNetRate).Round(2)
	return GrossAmounts{
		Gross: gross,
		Fee:   gross.Sub(net),
	}
}

// ComputeJobNet sums payments against expenses for one job. Margin is
// a percentage with one decimal; a job with no revenue reports margin
// 0, which callers must read as "no data".
func ComputeJobNet(payments []model.Payment, expenses []model.Expense) JobNetResult {
	revenue := decimal.Zero
	for _, p := range payments {
		revenue = revenue.Add(p.Amount)
	}
	costs := decimal.Zero
	for _, e := range expenses {
		costs = costs.Add(e.Amount)
	}

	net := revenue.Sub(costs)
	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = net.Div(revenue).Mul(hundred).Round(1)
	}

	return JobNetResult{
		Revenue: revenue,
		Costs:   costs,
		Net:     net,
		Margin:  margin,
	}
}
