package repository

import (
	"context"
	"time"

	"glassops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	List(ctx context.Context, includeDone bool, page, limit int) ([]model.Reminder, int64, error)
	ListDue(ctx context.Context, asOf time.Time) ([]model.Reminder, error)
	Update(ctx context.Context, reminder *model.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	return GetDB(ctx, r.db).Create(reminder).Error
}

func (r *reminderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := GetDB(ctx, r.db).First(&reminder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) List(ctx context.Context, includeDone bool, page, limit int) ([]model.Reminder, int64, error) {
	var reminders []model.Reminder
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Reminder{})
	if !includeDone {
		query = query.Where("done = false")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Job").Order("reminder_date asc").Offset(offset).Limit(limit).Find(&reminders).Error; err != nil {
		return nil, 0, err
	}

	return reminders, total, nil
}

// ListDue returns undone reminders dated on or before asOf.
func (r *reminderRepository) ListDue(ctx context.Context, asOf time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := GetDB(ctx, r.db).
		Preload("Job").
		Where("done = false AND reminder_date <= ?", asOf).
		Order("reminder_date asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	return GetDB(ctx, r.db).Save(reminder).Error
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Reminder{}, "id = ?", id).Error
}
