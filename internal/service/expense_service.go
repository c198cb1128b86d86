package service

import (
	"context"
	"fmt"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"
	ws "glassops/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	JobID           *string `json:"job_id"`
	Date            string  `json:"date" binding:"required"` // YYYY-MM-DD
	Amount          string  `json:"amount" binding:"required"`
	Vendor          string  `json:"vendor" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	PaymentMethod   string  `json:"payment_method"`
	Note            *string `json:"note"`
	ReceiptImageURL *string `json:"receipt_image_url"`
}

type UpdateExpenseRequest struct {
	JobID           *string `json:"job_id"`
	Date            *string `json:"date"`
	Amount          *string `json:"amount"`
	Vendor          *string `json:"vendor"`
	Category        *string `json:"category"`
	PaymentMethod   *string `json:"payment_method"`
	Note            *string `json:"note"`
	ReceiptImageURL *string `json:"receipt_image_url"`
}

type ExpenseFilter struct {
	JobID    string
	Category string
	From     string
	To       string
	Page     int
	Limit    int
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*model.Expense, error)
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
	UpdateExpense(ctx context.Context, id string, req UpdateExpenseRequest) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	jobRepo     repository.JobRepository
	hub         *ws.Hub
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, jobRepo repository.JobRepository, hub *ws.Hub) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, jobRepo: jobRepo, hub: hub}
}

func (s *expenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*model.Expense, error) {
	amount, err := parseMoney(req.Amount, "amount")
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	if !validCategory(req.Category) {
		return nil, fmt.Errorf("unknown category: %s", req.Category)
	}

	expense := model.Expense{
		Date:            date,
		Amount:          amount,
		Vendor:          req.Vendor,
		Category:        req.Category,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
		ReceiptImageURL: req.ReceiptImageURL,
	}
	if expense.PaymentMethod == "" {
		expense.PaymentMethod = model.MethodOther
	}
	if req.JobID != nil && *req.JobID != "" {
		jobID, parseErr := uuid.Parse(*req.JobID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid job_id: %w", parseErr)
		}
		if _, findErr := s.jobRepo.FindByID(ctx, jobID); findErr != nil {
			return nil, fmt.Errorf("referenced job not found: %w", findErr)
		}
		expense.JobID = &jobID
	}

	if err := s.expenseRepo.Create(ctx, &expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.hub.BroadcastEvent(ws.EventExpenseRecorded, map[string]interface{}{
		"expense_id": expense.ID.String(),
		"vendor":     expense.Vendor,
		"category":   expense.Category,
		"amount":     expense.Amount.StringFixed(2),
	})
	return &expense, nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid expense id: %w", err)
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("expense not found: %w", err)
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.ExpenseListFilter{
		Category: filter.Category,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if filter.JobID != "" {
		jobID, err := uuid.Parse(filter.JobID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid job_id: %w", err)
		}
		repoFilter.JobID = &jobID
	}
	var err error
	if repoFilter.From, err = parseOptionalDate(&filter.From, "from"); err != nil {
		return nil, 0, err
	}
	if repoFilter.To, err = parseOptionalDate(&filter.To, "to"); err != nil {
		return nil, 0, err
	}

	expenses, total, err := s.expenseRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	return expenses, total, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id string, req UpdateExpenseRequest) (*model.Expense, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid expense id: %w", err)
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("expense not found: %w", err)
	}

	if req.JobID != nil {
		if *req.JobID == "" {
			expense.JobID = nil
		} else {
			jobID, parseErr := uuid.Parse(*req.JobID)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid job_id: %w", parseErr)
			}
			if _, findErr := s.jobRepo.FindByID(ctx, jobID); findErr != nil {
				return nil, fmt.Errorf("referenced job not found: %w", findErr)
			}
			expense.JobID = &jobID
		}
	}
	if req.Date != nil {
		date, parseErr := time.Parse("2006-01-02", *req.Date)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date: %w", parseErr)
		}
		expense.Date = date
	}
	if req.Amount != nil {
		amount, parseErr := parseMoney(*req.Amount, "amount")
		if parseErr != nil {
			return nil, parseErr
		}
		expense.Amount = amount
	}
	if req.Vendor != nil {
		expense.Vendor = *req.Vendor
	}
	if req.Category != nil {
		if !validCategory(*req.Category) {
			return nil, fmt.Errorf("unknown category: %s", *req.Category)
		}
		expense.Category = *req.Category
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Note != nil {
		expense.Note = req.Note
	}
	if req.ReceiptImageURL != nil {
		expense.ReceiptImageURL = req.ReceiptImageURL
	}

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id string) error {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}
	if _, err := s.expenseRepo.FindByID(ctx, expenseID); err != nil {
		return fmt.Errorf("expense not found: %w", err)
	}
	return s.expenseRepo.Delete(ctx, expenseID)
}

func validCategory(category string) bool {
	switch category {
	case model.CategoryGlass, model.CategoryHardware, model.CategoryConsumables,
		model.CategorySubcontractor, model.CategoryGasFuel, model.CategoryVehicle,
		model.CategoryTools, model.CategoryOfficeAdmin, model.CategoryFoodMeals,
		model.CategoryOther, model.CategoryCRL, model.CategoryGlassFabrication,
		model.CategoryMrGlass:
		return true
	}
	return false
}

func parseMoney(s, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return amount, nil
}
