package repository

import (
	"context"
	"time"

	"glassops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentListFilter narrows the payment list query.
type PaymentListFilter struct {
	JobID     *uuid.UUID
	InvoiceID *uuid.UUID
	Method    string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Payment{})
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("date desc").Offset(offset).Limit(filter.Limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := GetDB(ctx, r.db).
		Preload("Job").
		Preload("Job.Client").
		Where("date >= ? AND date < ?", from, to).
		Order("date asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Payment{}, "id = ?", id).Error
}
