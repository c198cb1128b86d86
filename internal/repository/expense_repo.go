package repository

import (
	"context"
	"time"

	"glassops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseListFilter narrows the expense list query.
type ExpenseListFilter struct {
	JobID    *uuid.UUID
	Category string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseListFilter) ([]model.Expense, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseListFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Expense{})
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
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
	if err := query.Order("date desc").Offset(offset).Limit(filter.Limit).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Expense, error) {
	var expenses []model.Expense
	err := GetDB(ctx, r.db).
		Where("date >= ? AND date < ?", from, to).
		Order("date asc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Expense{}, "id = ?", id).Error
}
