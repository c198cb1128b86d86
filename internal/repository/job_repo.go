package repository

import (
	"context"
	"time"

	"glassops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobListFilter narrows the job list query.
type JobListFilter struct {
	Status   string // empty for all
	ClientID *uuid.UUID
	Search   string // partial match on job_name or address
	Page     int
	Limit    int
}

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	FindByIDWithActivity(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter JobListFilter) ([]model.Job, int64, error)
	ListWithActivityByStatuses(ctx context.Context, statuses []string) ([]model.Job, error)
	ListInstallsBetween(ctx context.Context, from, to time.Time) ([]model.Job, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountClosedBetween(ctx context.Context, from, to time.Time) (int64, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := GetDB(ctx, r.db).Preload("Client").First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindByIDWithActivity(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date desc") }).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("date desc") }).
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, filter JobListFilter) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Job{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("job_name ILIKE ? OR address ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Client").Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepository) ListWithActivityByStatuses(ctx context.Context, statuses []string) ([]model.Job, error) {
	var jobs []model.Job
	err := GetDB(ctx, r.db).
		Preload("Payments").
		Preload("Expenses").
		Where("status IN ?", statuses).
		Order("created_at desc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) ListInstallsBetween(ctx context.Context, from, to time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := GetDB(ctx, r.db).
		Preload("Client").
		Where("install_date IS NOT NULL AND install_date >= ? AND install_date <= ?", from, to).
		Order("install_date asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Job{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *jobRepository) CountClosedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Job{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", model.JobStatusClosed, from, to).
		Count(&count).Error
	return count, err
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Job{}, "id = ?", id).Error
}
