package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glassops/internal/document"
	"glassops/internal/finance"
	"glassops/internal/model"
	"glassops/internal/repository"
	"glassops/internal/storage"
	ws "glassops/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pipeline sentinels. GeneratePDF failures fall into exactly one of
// these so callers can tell a missing invoice from a stale record.
var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrReferenceWrite means the document was stored but the invoice
	// record still points at the previous one (or none). The caller
	// should retry: re-rendering overwrites under a fresh name.
	ErrReferenceWrite = errors.New("document stored but invoice record not updated")
)

// --- DTOs ---

type LineItemRequest struct {
	Description string `json:"description" binding:"required"`
	Qty         string `json:"qty" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreateInvoiceRequest struct {
	JobID           string            `json:"job_id" binding:"required"`
	InvoiceDate     string            `json:"invoice_date"` // YYYY-MM-DD, defaults to today
	DueDate         string            `json:"due_date"`     // YYYY-MM-DD, defaults to invoice date + 14 days
	Notes           string            `json:"notes"`
	LineItems       []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	DiscountApplied bool              `json:"discount_applied"`
	DiscountPercent string            `json:"discount_percent"` // 0-100
	TaxApplied      bool              `json:"tax_applied"`
	TaxRate         string            `json:"tax_rate"` // percent
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=sent deposit_paid paid"`
}

type InvoiceFilter struct {
	Status string
	JobID  string
	Page   int
	Limit  int
}

type LineItemResponse struct {
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type InvoiceResponse struct {
	ID              string             `json:"id"`
	JobID           string             `json:"job_id"`
	InvoiceNumber   int64              `json:"invoice_number"`
	InvoiceDate     string             `json:"invoice_date"`
	DueDate         string             `json:"due_date"`
	CustomerName    string             `json:"customer_name"`
	CustomerAddress *string            `json:"customer_address"`
	Notes           *string            `json:"notes"`
	LineItems       []LineItemResponse `json:"line_items"`
	Subtotal        string             `json:"subtotal"`
	DiscountApplied bool               `json:"discount_applied"`
	DiscountPercent string             `json:"discount_percent"`
	DiscountAmount  string             `json:"discount_amount"`
	TaxApplied      bool               `json:"tax_applied"`
	TaxRate         string             `json:"tax_rate"`
	Tax             string             `json:"tax"`
	Total           string             `json:"total"`
	Status          string             `json:"status"`
	PDFURL          *string            `json:"pdf_url"`
	CreatedAt       string             `json:"created_at"`
}

type GeneratePDFResult struct {
	PDFURL string `json:"pdf_url"`
}

// DocumentRenderer turns an invoice snapshot into document bytes.
type DocumentRenderer interface {
	Render(inv *model.Invoice) ([]byte, error)
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateInvoiceStatusRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	GeneratePDF(ctx context.Context, id string) (GeneratePDFResult, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	jobRepo     repository.JobRepository
	clientRepo  repository.ClientRepository
	seqRepo     repository.SequenceRepository
	txManager   repository.TransactionManager
	renderer    DocumentRenderer
	store       storage.ObjectStore
	hub         *ws.Hub
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	jobRepo repository.JobRepository,
	clientRepo repository.ClientRepository,
	seqRepo repository.SequenceRepository,
	txManager repository.TransactionManager,
	renderer DocumentRenderer,
	store storage.ObjectStore,
	hub *ws.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		jobRepo:     jobRepo,
		clientRepo:  clientRepo,
		seqRepo:     seqRepo,
		txManager:   txManager,
		renderer:    renderer,
		store:       store,
		hub:         hub,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid job_id: %w", err)
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("referenced job not found: %w", err)
	}

	items, err := parseLineItems(req.LineItems)
	if err != nil {
		return InvoiceResponse{}, err
	}

	discountPercent, err := parseRate(req.DiscountPercent, "discount_percent")
	if err != nil {
		return InvoiceResponse{}, err
	}
	if discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return InvoiceResponse{}, fmt.Errorf("discount_percent must be between 0 and 100")
	}
	taxRate, err := parseRate(req.TaxRate, "tax_rate")
	if err != nil {
		return InvoiceResponse{}, err
	}

	totals := finance.ComputeInvoiceTotals(items, req.DiscountApplied, discountPercent, req.TaxApplied, taxRate)

	invoiceDate, err := parseDateOr(req.InvoiceDate, s.now())
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice_date: %w", err)
	}
	dueDate, err := parseDateOr(req.DueDate, invoiceDate.AddDate(0, 0, 14))
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid due_date: %w", err)
	}

	// Customer fields are a hard copy taken now; later client edits do
	// not touch issued invoices.
	customerName := job.JobName
	var customerAddress *string
	if job.Address != "" {
		addr := job.Address
		customerAddress = &addr
	}
	if job.ClientID != nil {
		if client, clientErr := s.clientRepo.FindByID(ctx, *job.ClientID); clientErr == nil {
			customerName = client.Name
			if client.BillingAddress != nil && *client.BillingAddress != "" {
				customerAddress = client.BillingAddress
			}
		}
	}

	invoice := model.Invoice{
		JobID:           jobID,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		CustomerName:    customerName,
		CustomerAddress: customerAddress,
		LineItems:       items,
		Subtotal:        totals.Subtotal,
		DiscountApplied: req.DiscountApplied,
		DiscountPercent: discountPercent,
		DiscountAmount:  totals.DiscountAmount,
		TaxApplied:      req.TaxApplied,
		TaxRate:         taxRate,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          model.InvoiceStatusSent,
	}
	if req.Notes != "" {
		invoice.Notes = &req.Notes
	}

	// Sequence increment and insert share a transaction so the number
	// is never burned on a failed insert.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, seqErr := s.seqRepo.Next(txCtx)
		if seqErr != nil {
			return fmt.Errorf("failed to assign invoice number: %w", seqErr)
		}
		invoice.InvoiceNumber = number

		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.JobID != "" {
		jobID, err := uuid.Parse(filter.JobID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid job_id: %w", err)
		}
		repoFilter.JobID = &jobID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id string, req UpdateInvoiceStatusRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}

	if !model.CanTransitionInvoiceStatus(invoice.Status, req.Status) {
		return InvoiceResponse{}, fmt.Errorf("cannot transition invoice from %s to %s", invoice.Status, req.Status)
	}

	invoice.Status = req.Status
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}
	return s.invoiceRepo.Delete(ctx, invoiceID)
}

// GeneratePDF runs the full render-and-upload sequence: fetch the
// persisted snapshot, render, store under a timestamped name, then
// record the new reference. Each render stores a fresh object; the
// invoice always points at the most recent.
func (s *invoiceService) GeneratePDF(ctx context.Context, id string) (GeneratePDFResult, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return GeneratePDFResult{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithJob(ctx, invoiceID)
	if err != nil {
		return GeneratePDFResult{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}

	data, err := s.renderer.Render(invoice)
	if err != nil {
		return GeneratePDFResult{}, fmt.Errorf("failed to render invoice %d: %w", invoice.InvoiceNumber, err)
	}

	name := document.ObjectName(invoice.InvoiceNumber, s.now())
	url, err := s.store.Put(ctx, name, "application/pdf", data)
	if err != nil {
		// Nothing recorded: pdf_url keeps its previous value (or stays
		// null on a first-ever render).
		return GeneratePDFResult{}, fmt.Errorf("failed to upload invoice document: %w", err)
	}

	if err := s.invoiceRepo.UpdatePDFURL(ctx, invoiceID, url); err != nil {
		// The object exists but the canonical record is stale. Report
		// failure so the caller knows to retry.
		return GeneratePDFResult{}, fmt.Errorf("%w: %v", ErrReferenceWrite, err)
	}

	s.hub.BroadcastEvent(ws.EventInvoiceGenerated, map[string]interface{}{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"pdf_url":        url,
	})

	return GeneratePDFResult{PDFURL: url}, nil
}

// --- Helpers ---

func parseLineItems(reqs []LineItemRequest) (model.LineItems, error) {
	items := make(model.LineItems, 0, len(reqs))
	for i, r := range reqs {
		qty, err := decimal.NewFromString(r.Qty)
		if err != nil {
			return nil, fmt.Errorf("line item %d: invalid qty: %w", i+1, err)
		}
		unitPrice, err := decimal.NewFromString(r.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("line item %d: invalid unit_price: %w", i+1, err)
		}
		if qty.IsNegative() || unitPrice.IsNegative() {
			return nil, fmt.Errorf("line item %d: qty and unit_price must not be negative", i+1)
		}

		items = append(items, model.LineItem{
			Description: r.Description,
			Qty:         qty,
			UnitPrice:   unitPrice,
			LineTotal:   finance.LineTotal(qty, unitPrice),
		})
	}
	return items, nil
}

func parseRate(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return rate, nil
}

func parseDateOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback.Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, 0, len(inv.LineItems))
	for _, item := range inv.LineItems {
		items = append(items, LineItemResponse{
			Description: item.Description,
			Qty:         item.Qty.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}

	return InvoiceResponse{
		ID:              inv.ID.String(),
		JobID:           inv.JobID.String(),
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate.Format("2006-01-02"),
		DueDate:         inv.DueDate.Format("2006-01-02"),
		CustomerName:    inv.CustomerName,
		CustomerAddress: inv.CustomerAddress,
		Notes:           inv.Notes,
		LineItems:       items,
		Subtotal:        inv.Subtotal.StringFixed(2),
		DiscountApplied: inv.DiscountApplied,
		DiscountPercent: inv.DiscountPercent.String(),
		DiscountAmount:  inv.DiscountAmount.StringFixed(2),
		TaxApplied:      inv.TaxApplied,
		TaxRate:         inv.TaxRate.String(),
		Tax:             inv.Tax.StringFixed(2),
		Total:           inv.Total.StringFixed(2),
		Status:          inv.Status,
		PDFURL:          inv.PDFURL,
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
}
