package repository

import (
	"context"

	"glassops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows the invoice list query.
type InvoiceListFilter struct {
	Status string
	JobID  *uuid.UUID
	Page   int
	Limit  int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithJob(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	UpdatePDFURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithJob(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Preload("Job").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Invoice{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("invoice_number desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

// UpdatePDFURL writes only the document reference. Last write wins;
// there is no version check (single-operator usage).
func (r *invoiceRepository) UpdatePDFURL(ctx context.Context, id uuid.UUID, url string) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("pdf_url", url).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Invoice{}, "id = ?", id).Error
}
