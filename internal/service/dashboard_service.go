package service

import (
	"context"
	"fmt"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/shopspring/decimal"
)

// MonthStats is the money summary for the current calendar month.
type MonthStats struct {
	Revenue  string `json:"revenue"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// AttentionJob pairs a job with its derived attention flag.
type AttentionJob struct {
	Job       model.Job     `json:"job"`
	Attention AttentionInfo `json:"attention"`
}

// DashboardResponse is everything the Today screen shows at once.
type DashboardResponse struct {
	Month            string           `json:"month"` // YYYY-MM
	Stats            MonthStats       `json:"stats"`
	AttentionJobs    []AttentionJob   `json:"attention_jobs"`
	UpcomingInstalls []model.Job      `json:"upcoming_installs"`
	DueReminders     []model.Reminder `json:"due_reminders"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

type dashboardService struct {
	jobRepo      repository.JobRepository
	paymentRepo  repository.PaymentRepository
	expenseRepo  repository.ExpenseRepository
	reminderRepo repository.ReminderRepository
	now          func() time.Time
}

func NewDashboardService(
	jobRepo repository.JobRepository,
	paymentRepo repository.PaymentRepository,
	expenseRepo repository.ExpenseRepository,
	reminderRepo repository.ReminderRepository,
) DashboardService {
	return &dashboardService{
		jobRepo:      jobRepo,
		paymentRepo:  paymentRepo,
		expenseRepo:  expenseRepo,
		reminderRepo: reminderRepo,
		now:          time.Now,
	}
}

// Statuses that can carry an attention flag. Closed jobs and bare
// estimates never need one.
var attentionStatuses = []string{
	model.JobStatusDepositReceived,
	model.JobStatusMeasured,
	model.JobStatusOrdered,
	model.JobStatusInstalled,
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	payments, err := s.paymentRepo.ListBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month payments: %w", err)
	}
	expenses, err := s.expenseRepo.ListBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month expenses: %w", err)
	}

	revenue := decimal.Zero
	for _, p := range payments {
		revenue = revenue.Add(p.Amount)
	}
	costs := decimal.Zero
	for _, e := range expenses {
		costs = costs.Add(e.Amount)
	}

	candidates, err := s.jobRepo.ListWithActivityByStatuses(ctx, attentionStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active jobs: %w", err)
	}
	attentionJobs := make([]AttentionJob, 0)
	for i := range candidates {
		if info := DeriveAttention(&candidates[i]); info.NeedsAttention {
			attentionJobs = append(attentionJobs, AttentionJob{Job: candidates[i], Attention: info})
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	installs, err := s.jobRepo.ListInstallsBetween(ctx, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming installs: %w", err)
	}

	reminders, err := s.reminderRepo.ListDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	return &DashboardResponse{
		Month: monthStart.Format("2006-01"),
		Stats: MonthStats{
			Revenue:  revenue.StringFixed(2),
			Expenses: costs.StringFixed(2),
			Net:      revenue.Sub(costs).StringFixed(2),
		},
		AttentionJobs:    attentionJobs,
		UpcomingInstalls: installs,
		DueReminders:     reminders,
	}, nil
}
