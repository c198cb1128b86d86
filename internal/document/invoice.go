// Package document renders invoices into fixed-layout PDF documents.
// The renderer treats the invoice as a read-only snapshot: the same
// snapshot always produces byte-identical output.
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"glassops/internal/model"
)

// CompanyInfo is the branding block printed on every invoice. It is
// passed in explicitly rather than read from ambient state.
type CompanyInfo struct {
	Name       string // main mark, navy
	NameAccent string // suffix mark, orange
	Tagline    string
	Email      string
	PhoneLine  string
	FooterNote string
	FooterLine string
}

// DefaultCompany returns the MetroGlass Pro letterhead.
func DefaultCompany() CompanyInfo {
	return CompanyInfo{
		Name:       "MetroGlass",
		NameAccent: "Pro",
		Tagline:    "Custom Shower Glass Installation",
		Email:      "operations@metroglasspro.com",
		PhoneLine:  "Phone: 332-999-3846 | 646-520-5412",
		FooterNote: "Thank you for your business!",
		FooterLine: "MetroGlass Pro Inc - NYC/NJ/CT",
	}
}

// Renderer produces invoice PDFs. DisableCompression leaves content
// streams uncompressed; tests use it to inspect rendered text.
type Renderer struct {
	Company            CompanyInfo
	DisableCompression bool
}

func NewRenderer(company CompanyInfo) *Renderer {
	return &Renderer{Company: company}
}

// Page geometry, millimeters on A4 portrait.
const (
	pageMargin    = 20.0
	rowHeight     = 8.0
	bottomReserve = 30.0 // keep clear of the footer band

	descriptionLimit = 50 // hard truncation, no ellipsis
)

const dateLayout = "Jan 2, 2006"

// Brand palette
var (
	colorNavy   = rgb{27, 43, 90}
	colorOrange = rgb{245, 166, 35}
	colorGray   = rgb{107, 114, 128}
	colorShade  = rgb{247, 241, 230}
	colorRed    = rgb{220, 38, 38}
	colorRule   = rgb{200, 200, 200}
)

type rgb struct{ r, g, b int }

// Render lays out the invoice and returns the PDF bytes. The creation
// date embedded in the PDF is pinned to the invoice's own timestamp so
// re-rendering an unchanged snapshot is reproducible.
func (r *Renderer) Render(inv *model.Invoice) ([]byte, error) {
	for i, item := range inv.LineItems {
		if item.Description == "" {
			return nil, fmt.Errorf("line item %d: missing description", i+1)
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(inv.CreatedAt.UTC())
	if r.DisableCompression {
		pdf.SetCompression(false)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - pageMargin*2

	y := r.drawHeader(pdf, inv, pageWidth)
	y = r.drawMeta(pdf, inv, y, pageWidth)
	y = r.drawLineItems(pdf, inv, y, pageWidth, pageHeight)
	y = r.drawTotals(pdf, inv, y, pageWidth, pageHeight)
	r.drawNotes(pdf, inv, y, contentWidth)
	r.drawFooter(pdf, pageWidth, pageHeight)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoice layout failed: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(pdf *gofpdf.Fpdf, inv *model.Invoice, pageWidth float64) float64 {
	y := pageMargin

	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, colorNavy)
	pdf.Text(pageMargin, y, r.Company.Name)
	setText(pdf, colorOrange)
	pdf.Text(pageMargin+pdf.GetStringWidth(r.Company.Name)+1.5, y, r.Company.NameAccent)

	y += 8
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorGray)
	pdf.Text(pageMargin, y, r.Company.Tagline)
	y += 5
	pdf.Text(pageMargin, y, r.Company.Email)
	pdf.Text(pageMargin, y+4, r.Company.PhoneLine)

	pdf.SetFont("Helvetica", "B", 28)
	setText(pdf, colorNavy)
	textRight(pdf, pageWidth-pageMargin, pageMargin, "INVOICE")
	pdf.SetFont("Helvetica", "", 12)
	textRight(pdf, pageWidth-pageMargin, pageMargin+10, fmt.Sprintf("#%d", inv.InvoiceNumber))

	y += 20
	setDraw(pdf, colorNavy)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)

	return y + 10
}

func (r *Renderer) drawMeta(pdf *gofpdf.Fpdf, inv *model.Invoice, y, pageWidth float64) float64 {
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorGray)
	pdf.Text(pageMargin, y, "Invoice Date")
	pdf.Text(pageMargin+50, y, "Due Date")

	billToX := pageWidth - pageMargin - 70
	pdf.Text(billToX, y, "Bill To")

	y += 5
	pdf.SetFont("Helvetica", "B", 9)
	setText(pdf, colorNavy)
	pdf.Text(pageMargin, y, inv.InvoiceDate.Format(dateLayout))
	pdf.Text(pageMargin+50, y, inv.DueDate.Format(dateLayout))
	pdf.Text(billToX, y, inv.CustomerName)

	// Each address line gets its own output line
	if inv.CustomerAddress != nil && *inv.CustomerAddress != "" {
		pdf.SetFont("Helvetica", "", 9)
		addrY := y + 5
		for _, line := range splitLines(*inv.CustomerAddress) {
			pdf.Text(billToX, addrY, line)
			addrY += 4
		}
	}

	return y + 20
}

// drawTableHeader paints the navy column header band and returns the y
// position of the first row under it.
func (r *Renderer) drawTableHeader(pdf *gofpdf.Fpdf, y, pageWidth float64) float64 {
	contentWidth := pageWidth - pageMargin*2

	setFill(pdf, colorNavy)
	pdf.Rect(pageMargin, y, contentWidth, rowHeight, "F")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(255, 255, 255)
	pdf.Text(pageMargin+3, y+5.5, "Description")
	pdf.Text(pageMargin+100, y+5.5, "Qty")
	pdf.Text(pageMargin+120, y+5.5, "Price")
	textRight(pdf, pageWidth-pageMargin-3, y+5.5, "Amount")

	return y + 12
}

func (r *Renderer) drawLineItems(pdf *gofpdf.Fpdf, inv *model.Invoice, y, pageWidth, pageHeight float64) float64 {
	contentWidth := pageWidth - pageMargin*2
	limit := pageHeight - bottomReserve

	y = r.drawTableHeader(pdf, y, pageWidth)

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorNavy)

	for i, item := range inv.LineItems {
		// Overflow: new page with a fresh header row. The brand band
		// stays on page one only.
		if y+rowHeight > limit {
			pdf.AddPage()
			y = r.drawTableHeader(pdf, pageMargin, pageWidth)
			pdf.SetFont("Helvetica", "", 9)
			setText(pdf, colorNavy)
		}

		if i%2 == 0 {
			setFill(pdf, colorShade)
			pdf.Rect(pageMargin, y-4, contentWidth, rowHeight, "F")
		}

		pdf.Text(pageMargin+3, y, truncate(item.Description, descriptionLimit))
		pdf.Text(pageMargin+100, y, item.Qty.String())
		pdf.Text(pageMargin+120, y, money(item.UnitPrice))
		textRight(pdf, pageWidth-pageMargin-3, y, money(item.LineTotal))

		y += rowHeight
	}

	return y + 5
}

func (r *Renderer) drawTotals(pdf *gofpdf.Fpdf, inv *model.Invoice, y, pageWidth, pageHeight float64) float64 {
	if y+40 > pageHeight-bottomReserve {
		pdf.AddPage()
		y = pageMargin
	}

	totalsX := pageWidth - pageMargin - 60
	rightEdge := pageWidth - pageMargin

	setDraw(pdf, colorRule)
	pdf.SetLineWidth(0.2)
	pdf.Line(totalsX, y, rightEdge, y)
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorGray)
	pdf.Text(totalsX, y, "Subtotal")
	setText(pdf, colorNavy)
	textRight(pdf, rightEdge, y, money(inv.Subtotal))
	y += 6

	if inv.DiscountApplied && inv.DiscountAmount.IsPositive() {
		setText(pdf, colorGray)
		pdf.Text(totalsX, y, fmt.Sprintf("Discount (%s%%)", inv.DiscountPercent.String()))
		setText(pdf, colorRed)
		textRight(pdf, rightEdge, y, "-"+money(inv.DiscountAmount))
		y += 6
	}

	if inv.TaxApplied && inv.Tax.IsPositive() {
		setText(pdf, colorGray)
		pdf.Text(totalsX, y, fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String()))
		setText(pdf, colorNavy)
		textRight(pdf, rightEdge, y, money(inv.Tax))
		y += 6
	}

	setDraw(pdf, colorNavy)
	pdf.SetLineWidth(0.5)
	pdf.Line(totalsX, y, rightEdge, y)
	y += 8

	pdf.SetFont("Helvetica", "B", 12)
	setText(pdf, colorNavy)
	pdf.Text(totalsX, y, "TOTAL")
	textRight(pdf, rightEdge, y, money(inv.Total))

	return y + 20
}

func (r *Renderer) drawNotes(pdf *gofpdf.Fpdf, inv *model.Invoice, y, contentWidth float64) {
	if inv.Notes == nil || *inv.Notes == "" {
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	setText(pdf, colorGray)
	pdf.Text(pageMargin, y, "Notes")
	y += 5

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorNavy)
	// Word-wrapped to the content width, never truncated
	for _, line := range pdf.SplitText(*inv.Notes, contentWidth) {
		pdf.Text(pageMargin, y, line)
		y += 4
	}
}

func (r *Renderer) drawFooter(pdf *gofpdf.Fpdf, pageWidth, pageHeight float64) {
	footerY := pageHeight - 15

	pdf.SetFont("Helvetica", "", 8)
	setText(pdf, colorGray)
	textCenter(pdf, pageWidth/2, footerY, r.Company.FooterNote)
	textCenter(pdf, pageWidth/2, footerY+4, r.Company.FooterLine)
}

// --- helpers ---

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func textRight(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}

func textCenter(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}

func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDraw(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }

// Timestamp used in stored object names, not in document content.
func ObjectName(invoiceNumber int64, now time.Time) string {
	return fmt.Sprintf("invoice_%d_%d.pdf", invoiceNumber, now.UnixMilli())
}
