package service

import (
	"context"
	"fmt"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/google/uuid"
)

type CreateReminderRequest struct {
	JobID        *string `json:"job_id"`
	Title        string  `json:"title" binding:"required"`
	ReminderDate string  `json:"reminder_date" binding:"required"` // YYYY-MM-DD
	Priority     string  `json:"priority" binding:"omitempty,oneof=high moderate low"`
}

type UpdateReminderRequest struct {
	Title        *string `json:"title"`
	ReminderDate *string `json:"reminder_date"`
	Priority     *string `json:"priority" binding:"omitempty,oneof=high moderate low"`
	Done         *bool   `json:"done"`
}

type ReminderService interface {
	CreateReminder(ctx context.Context, req CreateReminderRequest) (*model.Reminder, error)
	ListReminders(ctx context.Context, includeDone bool, page, limit int) ([]model.Reminder, int64, error)
	UpdateReminder(ctx context.Context, id string, req UpdateReminderRequest) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
}

type reminderService struct {
	reminderRepo repository.ReminderRepository
	jobRepo      repository.JobRepository
}

func NewReminderService(reminderRepo repository.ReminderRepository, jobRepo repository.JobRepository) ReminderService {
	return &reminderService{reminderRepo: reminderRepo, jobRepo: jobRepo}
}

func (s *reminderService) CreateReminder(ctx context.Context, req CreateReminderRequest) (*model.Reminder, error) {
	date, err := time.Parse("2006-01-02", req.ReminderDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder_date: %w", err)
	}

	reminder := model.Reminder{
		Title:        req.Title,
		ReminderDate: date,
		Priority:     req.Priority,
	}
	if reminder.Priority == "" {
		reminder.Priority = model.PriorityModerate
	}
	if req.JobID != nil && *req.JobID != "" {
		jobID, parseErr := uuid.Parse(*req.JobID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid job_id: %w", parseErr)
		}
		if _, findErr := s.jobRepo.FindByID(ctx, jobID); findErr != nil {
			return nil, fmt.Errorf("referenced job not found: %w", findErr)
		}
		reminder.JobID = &jobID
	}

	if err := s.reminderRepo.Create(ctx, &reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return &reminder, nil
}

func (s *reminderService) ListReminders(ctx context.Context, includeDone bool, page, limit int) ([]model.Reminder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	reminders, total, err := s.reminderRepo.List(ctx, includeDone, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	return reminders, total, nil
}

func (s *reminderService) UpdateReminder(ctx context.Context, id string, req UpdateReminderRequest) (*model.Reminder, error) {
	reminderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder id: %w", err)
	}
	reminder, err := s.reminderRepo.FindByID(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("reminder not found: %w", err)
	}

	if req.Title != nil {
		reminder.Title = *req.Title
	}
	if req.ReminderDate != nil {
		date, parseErr := time.Parse("2006-01-02", *req.ReminderDate)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid reminder_date: %w", parseErr)
		}
		reminder.ReminderDate = date
	}
	if req.Priority != nil {
		reminder.Priority = *req.Priority
	}
	if req.Done != nil {
		reminder.Done = *req.Done
	}

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *reminderService) DeleteReminder(ctx context.Context, id string) error {
	reminderID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid reminder id: %w", err)
	}
	if _, err := s.reminderRepo.FindByID(ctx, reminderID); err != nil {
		return fmt.Errorf("reminder not found: %w", err)
	}
	return s.reminderRepo.Delete(ctx, reminderID)
}
