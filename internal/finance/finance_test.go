package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glassops/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(desc, qty, unitPrice string) model.LineItem {
	q := dec(qty)
	p := dec(unitPrice)
	return model.LineItem{
		Description: desc,
		Qty:         q,
		UnitPrice:   p,
		LineTotal:   LineTotal(q, p),
	}
}

func TestLineTotal(t *testing.T) {
	assert.True(t, dec("300.00").Equal(LineTotal(dec("2"), dec("150.00"))))
	assert.True(t, dec("0").Equal(LineTotal(dec("0"), dec("150.00"))))
	// Rounds to cents half-up
	assert.True(t, dec("33.33").Equal(LineTotal(dec("3"), dec("11.111"))))
	assert.True(t, dec("0.10").Equal(LineTotal(dec("3"), dec("0.0325"))))
}

func TestComputeInvoiceTotals(t *testing.T) {
	items := []model.LineItem{item("Glass panel", "2", "150.00")}

	totals := ComputeInvoiceTotals(items, true, dec("10"), true, dec("8.875"))

	assert.True(t, dec("300.00").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, dec("30.00").Equal(totals.DiscountAmount), "discount %s", totals.DiscountAmount)
	assert.True(t, dec("270.00").Equal(totals.AfterDiscount), "after discount %s", totals.AfterDiscount)
	// 270 * 0.08875 = 23.9625 -> 23.96
	assert.True(t, dec("23.96").Equal(totals.Tax), "tax %s", totals.Tax)
	assert.True(t, dec("293.96").Equal(totals.Total), "total %s", totals.Total)
}

func TestComputeInvoiceTotalsTaxAfterDiscount(t *testing.T) {
	// Tax is levied on the discounted amount, never the raw subtotal.
	items := []model.LineItem{item("Shower door", "1", "1000.00")}

	totals := ComputeInvoiceTotals(items, true, dec("50"), true, dec("10"))

	assert.True(t, dec("50.00").Equal(totals.Tax), "tax must be 10%% of 500, got %s", totals.Tax)
	assert.True(t, dec("550.00").Equal(totals.Total))
}

func TestComputeInvoiceTotalsFlagsOff(t *testing.T) {
	items := []model.LineItem{
		item("Glass panel", "2", "150.00"),
		item("Install labor", "1", "250.00"),
	}

	totals := ComputeInvoiceTotals(items, false, dec("10"), false, dec("8.875"))

	assert.True(t, dec("550.00").Equal(totals.Subtotal))
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, dec("550.00").Equal(totals.Total))
}

func TestComputeInvoiceTotalsEmpty(t *testing.T) {
	totals := ComputeInvoiceTotals(nil, true, dec("10"), true, dec("8.875"))

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeStripeFee(t *testing.T) {
	got := ComputeStripeFee(dec("100.00"))

	// 100*0.029 + 0.30 = 3.20
	assert.True(t, dec("3.20").Equal(got.Fee), "fee %s", got.Fee)
	assert.True(t, dec("96.80").Equal(got.Net), "net %s", got.Net)
}

func TestComputeStripeFeeRoundsFeeFirst(t *testing.T) {
	got := ComputeStripeFee(dec("123.45"))

	// 123.45*0.029 = 3.58005, +0.30 = 3.88005 -> 3.88
	assert.True(t, dec("3.88").Equal(got.Fee), "fee %s", got.Fee)
	assert.True(t, dec("119.57").Equal(got.Net), "net %s", got.Net)
}

func TestComputeGrossFromNet(t *testing.T) {
	got := ComputeGrossFromNet(dec("96.80"))

	// (96.80 + 0.30) / 0.971 = 100.0000... -> 100.00
	assert.True(t, dec("100.00").Equal(got.Gross), "gross %s", got.Gross)
	assert.True(t, dec("3.20").Equal(got.Fee), "fee %s", got.Fee)
}

func TestStripeRoundTripConvergesWithinOneCent(t *testing.T) {
	// The inverse is approximate; assert convergence, not equality.
	for _, s := range []string{"50.00", "100.00", "123.45", "999.99", "2500.00"} {
		gross := dec(s)
		forward := ComputeStripeFee(gross)
		back := ComputeGrossFromNet(forward.Net)

		drift := back.Gross.Sub(gross).Abs()
		require.True(t, drift.LessThanOrEqual(dec("0.01")),
			"gross %s round-tripped to %s (drift %s)", gross, back.Gross, drift)
	}
}

func TestComputeJobNet(t *testing.T) {
	payments := []model.Payment{{Amount: dec("1000")}}
	expenses := []model.Expense{{Amount: dec("400")}}

	got := ComputeJobNet(payments, expenses)

	assert.True(t, dec("1000").Equal(got.Revenue))
	assert.True(t, dec("400").Equal(got.Costs))
	assert.True(t, dec("600").Equal(got.Net))
	assert.True(t, dec("60.0").Equal(got.Margin), "margin %s", got.Margin)
}

func TestComputeJobNetNoRevenue(t *testing.T) {
	got := ComputeJobNet(nil, nil)

	assert.True(t, got.Revenue.IsZero())
	assert.True(t, got.Costs.IsZero())
	assert.True(t, got.Net.IsZero())
	assert.True(t, got.Margin.IsZero(), "zero revenue must report margin 0, not error")

	// Costs without revenue: net goes negative, margin stays 0
	got = ComputeJobNet(nil, []model.Expense{{Amount: dec("250")}})
	assert.True(t, dec("-250").Equal(got.Net))
	assert.True(t, got.Margin.IsZero())
}

func TestComputeJobNetMarginRounding(t *testing.T) {
	payments := []model.Payment{{Amount: dec("300")}}
	expenses := []model.Expense{{Amount: dec("100")}}

	got := ComputeJobNet(payments, expenses)

	// 200/300*100 = 66.666... -> 66.7
	assert.True(t, dec("66.7").Equal(got.Margin), "margin %s", got.Margin)
}
