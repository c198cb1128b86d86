package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

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

func strptr(s string) *string { return &s }

func sampleInvoice() *model.Invoice {
	addr := "123 Main St\nBrooklyn, NY 11201"
	return &model.Invoice{
		InvoiceNumber:   1042,
		InvoiceDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
		CustomerName:    "Jane Smith",
		CustomerAddress: &addr,
		LineItems: model.LineItems{
			{Description: "Glass panel", Qty: dec("2"), UnitPrice: dec("150.00"), LineTotal: dec("300.00")},
		},
		Subtotal:        dec("300.00"),
		DiscountApplied: true,
		DiscountPercent: dec("10"),
		DiscountAmount:  dec("30.00"),
		TaxApplied:      true,
		TaxRate:         dec("8.875"),
		Tax:             dec("23.96"),
		Total:           dec("293.96"),
		Status:          model.InvoiceStatusSent,
		CreatedAt:       time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

// renderPlain renders with compression off so the content stream can
// be inspected as text.
func renderPlain(t *testing.T, inv *model.Invoice) string {
	t.Helper()
	r := &Renderer{Company: DefaultCompany(), DisableCompression: true}
	out, err := r.Render(inv)
	require.NoError(t, err)
	return string(out)
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(DefaultCompany())

	inv := sampleInvoice()
	first, err := r.Render(inv)
	require.NoError(t, err)
	second, err := r.Render(inv)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "same snapshot must produce identical bytes")
}

func TestRenderContainsCoreBands(t *testing.T) {
	out := renderPlain(t, sampleInvoice())

	assert.Contains(t, out, "MetroGlass")
	assert.Contains(t, out, "INVOICE")
	assert.Contains(t, out, "#1042")
	assert.Contains(t, out, "Mar 10, 2025")
	assert.Contains(t, out, "Mar 24, 2025")
	assert.Contains(t, out, "Jane Smith")
	// Multi-line address renders one output line per input line
	assert.Contains(t, out, "123 Main St")
	assert.Contains(t, out, "Brooklyn, NY 11201")
	assert.Contains(t, out, "Glass panel")
	assert.Contains(t, out, "Subtotal")
	assert.Contains(t, out, "$300.00")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "$293.96")
	assert.Contains(t, out, "Thank you for your business!")
}

func TestRenderDiscountAndTaxLines(t *testing.T) {
	out := renderPlain(t, sampleInvoice())

	assert.Contains(t, out, "Discount")
	assert.Contains(t, out, "-$30.00", "discount renders as a negative amount")
	assert.Contains(t, out, "8.875%")
	assert.Contains(t, out, "$23.96")
}

func TestRenderOmitsDiscountAndTaxWhenNotApplied(t *testing.T) {
	inv := sampleInvoice()
	inv.DiscountApplied = false
	inv.DiscountAmount = decimal.Zero
	inv.TaxApplied = false
	inv.Tax = decimal.Zero
	inv.Total = dec("300.00")

	out := renderPlain(t, inv)

	assert.NotContains(t, out, "Discount")
	assert.NotContains(t, out, "-$")
	assert.NotContains(t, out, "8.875%")
}

func TestRenderOmitsDiscountWhenZeroAmount(t *testing.T) {
	// Flag on but amount zero: line is still omitted.
	inv := sampleInvoice()
	inv.DiscountPercent = dec("0")
	inv.DiscountAmount = decimal.Zero

	out := renderPlain(t, inv)

	assert.NotContains(t, out, "Discount")
}

func TestRenderTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("ab", 40) // 80 chars
	inv := sampleInvoice()
	inv.LineItems = model.LineItems{
		{Description: long, Qty: dec("1"), UnitPrice: dec("100.00"), LineTotal: dec("100.00")},
	}

	out := renderPlain(t, inv)

	assert.Contains(t, out, long[:50])
	assert.NotContains(t, out, long[:51], "descriptions are hard-truncated at 50 characters")
}

func TestRenderWrapsNotesWithoutTruncating(t *testing.T) {
	words := make([]string, 60)
	for i := range words {
		words[i] = "installation"
	}
	notes := strings.Join(words, " ") + " finalword"
	inv := sampleInvoice()
	inv.Notes = &notes

	out := renderPlain(t, inv)

	assert.Contains(t, out, "Notes")
	// Word-wrapped, never truncated: the last word survives
	assert.Contains(t, out, "finalword")
}

func TestRenderPaginatesOverflowingLineItems(t *testing.T) {
	inv := sampleInvoice()
	inv.LineItems = nil
	for i := 0; i < 60; i++ {
		inv.LineItems = append(inv.LineItems, model.LineItem{
			Description: "Tempered panel",
			Qty:         dec("1"),
			UnitPrice:   dec("50.00"),
			LineTotal:   dec("50.00"),
		})
	}

	single := renderPlain(t, sampleInvoice())
	multi := renderPlain(t, inv)

	singlePages := strings.Count(single, "/Type /Page")
	multiPages := strings.Count(multi, "/Type /Page")
	assert.Greater(t, multiPages, singlePages, "overflowing line items must add pages")

	// Totals carry to the final page, header row repeats
	assert.Contains(t, multi, "TOTAL")
	assert.GreaterOrEqual(t, strings.Count(multi, "Description"), 2)
}

func TestRenderMissingDescriptionFails(t *testing.T) {
	inv := sampleInvoice()
	inv.LineItems = model.LineItems{
		{Description: "Glass panel", Qty: dec("1"), UnitPrice: dec("10.00"), LineTotal: dec("10.00")},
		{Description: "", Qty: dec("1"), UnitPrice: dec("10.00"), LineTotal: dec("10.00")},
	}

	r := NewRenderer(DefaultCompany())
	_, err := r.Render(inv)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line item 2")
}

func TestObjectNameEncodesNumberAndTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	name := ObjectName(1042, at)

	assert.Equal(t, "invoice_1042_1741608000000.pdf", name)

	// Two renders at different instants store distinct objects
	assert.NotEqual(t, name, ObjectName(1042, at.Add(time.Second)))
}

func TestRenderStableAcrossStorageTimestamps(t *testing.T) {
	// The storage filename timestamp never leaks into document bytes.
	r := NewRenderer(DefaultCompany())
	inv := sampleInvoice()

	a, err := r.Render(inv)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	b, err := r.Render(inv)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a, b))
}
