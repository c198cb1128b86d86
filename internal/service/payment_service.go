package service

import (
	"context"
	"fmt"
	"time"

	"glassops/internal/finance"
	"glassops/internal/model"
	"glassops/internal/repository"
	ws "glassops/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	JobID     string  `json:"job_id" binding:"required"`
	InvoiceID *string `json:"invoice_id"`
	Date      string  `json:"date" binding:"required"` // YYYY-MM-DD
	// For Stripe payments exactly one of amount (net) or gross_amount
	// is required; the missing side is derived. Other methods take
	// amount only.
	Amount               *string `json:"amount"`
	GrossAmount          *string `json:"gross_amount"`
	PaymentType          string  `json:"payment_type" binding:"required,oneof=deposit final other"`
	Method               string  `json:"method" binding:"required,oneof=stripe check zelle venmo cashapp cash other"`
	Note                 *string `json:"note"`
	ConfirmationImageURL *string `json:"confirmation_image_url"`
}

type UpdatePaymentRequest struct {
	Date                 *string `json:"date"`
	Amount               *string `json:"amount"`
	GrossAmount          *string `json:"gross_amount"`
	PaymentType          *string `json:"payment_type" binding:"omitempty,oneof=deposit final other"`
	Method               *string `json:"method" binding:"omitempty,oneof=stripe check zelle venmo cashapp cash other"`
	Note                 *string `json:"note"`
	ConfirmationImageURL *string `json:"confirmation_image_url"`
}

type PaymentFilter struct {
	JobID     string
	InvoiceID string
	Method    string
	From      string
	To        string
	Page      int
	Limit     int
}

type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*model.Payment, error)
	GetPayment(ctx context.Context, id string) (*model.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	UpdatePayment(ctx context.Context, id string, req UpdatePaymentRequest) (*model.Payment, error)
	DeletePayment(ctx context.Context, id string) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	jobRepo     repository.JobRepository
	invoiceRepo repository.InvoiceRepository
	hub         *ws.Hub
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	jobRepo repository.JobRepository,
	invoiceRepo repository.InvoiceRepository,
	hub *ws.Hub,
) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, jobRepo: jobRepo, invoiceRepo: invoiceRepo, hub: hub}
}

func (s *paymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*model.Payment, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job_id: %w", err)
	}
	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, fmt.Errorf("referenced job not found: %w", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	payment := model.Payment{
		JobID:                jobID,
		Date:                 date,
		PaymentType:          req.PaymentType,
		Method:               req.Method,
		Note:                 req.Note,
		ConfirmationImageURL: req.ConfirmationImageURL,
	}

	if req.InvoiceID != nil && *req.InvoiceID != "" {
		invoiceID, parseErr := uuid.Parse(*req.InvoiceID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid invoice_id: %w", parseErr)
		}
		if _, findErr := s.invoiceRepo.FindByID(ctx, invoiceID); findErr != nil {
			return nil, fmt.Errorf("referenced invoice not found: %w", findErr)
		}
		payment.InvoiceID = &invoiceID
	}

	if err := s.applyAmounts(&payment, req); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Create(ctx, &payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.hub.BroadcastEvent(ws.EventPaymentRecorded, map[string]interface{}{
		"payment_id":   payment.ID.String(),
		"job_id":       payment.JobID.String(),
		"payment_type": payment.PaymentType,
		"amount":       payment.Amount.StringFixed(2),
	})
	return &payment, nil
}

// applyAmounts fills Amount, GrossAmount and StripeFee. Stripe
// payments record all three; anything else records Amount alone with
// a zero fee.
func (s *paymentService) applyAmounts(payment *model.Payment, req CreatePaymentRequest) error {
	if req.Method != model.MethodStripe {
		if req.Amount == nil {
			return fmt.Errorf("amount is required")
		}
		amount, err := parseMoney(*req.Amount, "amount")
		if err != nil {
			return err
		}
		payment.Amount = amount
		return nil
	}

	switch {
	case req.GrossAmount != nil && *req.GrossAmount != "":
		gross, err := parseMoney(*req.GrossAmount, "gross_amount")
		if err != nil {
			return err
		}
		derived := finance.ComputeStripeFee(gross)
		payment.GrossAmount = &gross
		payment.StripeFee = derived.Fee
		payment.Amount = derived.Net
	case req.Amount != nil && *req.Amount != "":
		net, err := parseMoney(*req.Amount, "amount")
		if err != nil {
			return err
		}
		derived := finance.ComputeGrossFromNet(net)
		payment.GrossAmount = &derived.Gross
		payment.StripeFee = derived.Fee
		payment.Amount = net
	default:
		return fmt.Errorf("stripe payments require amount or gross_amount")
	}
	return nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id: %w", err)
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.PaymentListFilter{
		Method: filter.Method,
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
	if filter.InvoiceID != "" {
		invoiceID, err := uuid.Parse(filter.InvoiceID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid invoice_id: %w", err)
		}
		repoFilter.InvoiceID = &invoiceID
	}
	var err error
	if repoFilter.From, err = parseOptionalDate(&filter.From, "from"); err != nil {
		return nil, 0, err
	}
	if repoFilter.To, err = parseOptionalDate(&filter.To, "to"); err != nil {
		return nil, 0, err
	}

	payments, total, err := s.paymentRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, total, nil
}

// UpdatePayment edits a recorded payment. Changing the method or an
// amount re-derives the Stripe fee fields the same way create does.
func (s *paymentService) UpdatePayment(ctx context.Context, id string, req UpdatePaymentRequest) (*model.Payment, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id: %w", err)
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}

	if req.Date != nil {
		date, parseErr := time.Parse("2006-01-02", *req.Date)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date: %w", parseErr)
		}
		payment.Date = date
	}
	if req.PaymentType != nil {
		payment.PaymentType = *req.PaymentType
	}
	if req.Note != nil {
		payment.Note = req.Note
	}
	if req.ConfirmationImageURL != nil {
		payment.ConfirmationImageURL = req.ConfirmationImageURL
	}

	if req.Method != nil || req.Amount != nil || req.GrossAmount != nil {
		method := payment.Method
		if req.Method != nil {
			method = *req.Method
		}

		createReq := CreatePaymentRequest{Method: method, Amount: req.Amount, GrossAmount: req.GrossAmount}
		if method != model.MethodStripe && req.Amount == nil {
			amount := payment.Amount.String()
			createReq.Amount = &amount
		}
		if method == model.MethodStripe && req.Amount == nil && req.GrossAmount == nil {
			amount := payment.Amount.String()
			createReq.Amount = &amount
		}

		payment.Method = method
		payment.GrossAmount = nil
		payment.StripeFee = decimal.Zero
		if err := s.applyAmounts(payment, createReq); err != nil {
			return nil, err
		}
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return payment, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid payment id: %w", err)
	}
	if _, err := s.paymentRepo.FindByID(ctx, paymentID); err != nil {
		return fmt.Errorf("payment not found: %w", err)
	}
	return s.paymentRepo.Delete(ctx, paymentID)
}
