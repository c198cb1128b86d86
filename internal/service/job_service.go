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
)

// Attention reasons, in priority order. A job carries at most one.
const (
	AttentionWaitingDeposit = "waiting_deposit"
	AttentionNeedGlassOrder = "need_glass_order"
	AttentionCollectFinal   = "collect_final"
)

type CreateJobRequest struct {
	ClientID       *string `json:"client_id"`
	JobName        string  `json:"job_name" binding:"required"`
	Address        string  `json:"address" binding:"required"`
	Area           *string `json:"area"`
	InstallDate    *string `json:"install_date"`     // YYYY-MM-DD
	InstallEndDate *string `json:"install_end_date"` // YYYY-MM-DD
	Notes          *string `json:"notes"`
	GlassType      *string `json:"glass_type"`
	GlassThickness *string `json:"glass_thickness"`
	HardwareFinish *string `json:"hardware_finish"`
	Configuration  *string `json:"configuration"`
	Dimensions     *string `json:"dimensions"`
}

type UpdateJobRequest struct {
	ClientID       *string `json:"client_id"`
	JobName        *string `json:"job_name"`
	Address        *string `json:"address"`
	Area           *string `json:"area"`
	InstallDate    *string `json:"install_date"`
	InstallEndDate *string `json:"install_end_date"`
	Notes          *string `json:"notes"`
	GlassType      *string `json:"glass_type"`
	GlassThickness *string `json:"glass_thickness"`
	HardwareFinish *string `json:"hardware_finish"`
	Configuration  *string `json:"configuration"`
	Dimensions     *string `json:"dimensions"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=estimate deposit_received measured ordered installed closed"`
}

type JobFilter struct {
	Status   string
	ClientID string
	Search   string
	Page     int
	Limit    int
}

// AttentionInfo is the derived to-do flag shown next to a job.
type AttentionInfo struct {
	NeedsAttention bool   `json:"needs_attention"`
	Reason         string `json:"reason,omitempty"`
	Message        string `json:"message,omitempty"`
}

// JobFinancials summarizes money in and out for one job.
type JobFinancials struct {
	Revenue string `json:"revenue"`
	Costs   string `json:"costs"`
	Net     string `json:"net"`
	Margin  string `json:"margin"` // percent, one decimal place
}

type JobDetailResponse struct {
	Job        *model.Job    `json:"job"`
	Attention  AttentionInfo `json:"attention"`
	Financials JobFinancials `json:"financials"`
}

type JobService interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*JobDetailResponse, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, int64, error)
	UpdateJob(ctx context.Context, id string, req UpdateJobRequest) (*model.Job, error)
	UpdateStatus(ctx context.Context, id string, req UpdateJobStatusRequest) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

type jobService struct {
	jobRepo    repository.JobRepository
	clientRepo repository.ClientRepository
	hub        *ws.Hub
}

func NewJobService(jobRepo repository.JobRepository, clientRepo repository.ClientRepository, hub *ws.Hub) JobService {
	return &jobService{jobRepo: jobRepo, clientRepo: clientRepo, hub: hub}
}

func (s *jobService) CreateJob(ctx context.Context, req CreateJobRequest) (*model.Job, error) {
	job := model.Job{
		JobName:        req.JobName,
		Address:        req.Address,
		Area:           req.Area,
		Status:         model.JobStatusEstimate,
		Notes:          req.Notes,
		GlassType:      req.GlassType,
		GlassThickness: req.GlassThickness,
		HardwareFinish: req.HardwareFinish,
		Configuration:  req.Configuration,
		Dimensions:     req.Dimensions,
	}

	if req.ClientID != nil && *req.ClientID != "" {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("invalid client_id: %w", err)
		}
		if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
			return nil, fmt.Errorf("referenced client not found: %w", err)
		}
		job.ClientID = &clientID
	}

	var err error
	if job.InstallDate, err = parseOptionalDate(req.InstallDate, "install_date"); err != nil {
		return nil, err
	}
	if job.InstallEndDate, err = parseOptionalDate(req.InstallEndDate, "install_end_date"); err != nil {
		return nil, err
	}

	if err := s.jobRepo.Create(ctx, &job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &job, nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*JobDetailResponse, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job id: %w", err)
	}
	job, err := s.jobRepo.FindByIDWithActivity(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	net := finance.ComputeJobNet(job.Payments, job.Expenses)
	return &JobDetailResponse{
		Job:       job,
		Attention: DeriveAttention(job),
		Financials: JobFinancials{
			Revenue: net.Revenue.StringFixed(2),
			Costs:   net.Costs.StringFixed(2),
			Net:     net.Net.StringFixed(2),
			Margin:  net.Margin.StringFixed(1),
		},
	}, nil
}

func (s *jobService) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.JobListFilter{
		Status: filter.Status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid client_id: %w", err)
		}
		repoFilter.ClientID = &clientID
	}

	jobs, total, err := s.jobRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch jobs: %w", err)
	}
	return jobs, total, nil
}

func (s *jobService) UpdateJob(ctx context.Context, id string, req UpdateJobRequest) (*model.Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job id: %w", err)
	}
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	if req.ClientID != nil {
		if *req.ClientID == "" {
			job.ClientID = nil
		} else {
			clientID, parseErr := uuid.Parse(*req.ClientID)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid client_id: %w", parseErr)
			}
			if _, findErr := s.clientRepo.FindByID(ctx, clientID); findErr != nil {
				return nil, fmt.Errorf("referenced client not found: %w", findErr)
			}
			job.ClientID = &clientID
		}
	}
	if req.JobName != nil {
		job.JobName = *req.JobName
	}
	if req.Address != nil {
		job.Address = *req.Address
	}
	if req.Area != nil {
		job.Area = req.Area
	}
	if req.Notes != nil {
		job.Notes = req.Notes
	}
	if req.GlassType != nil {
		job.GlassType = req.GlassType
	}
	if req.GlassThickness != nil {
		job.GlassThickness = req.GlassThickness
	}
	if req.HardwareFinish != nil {
		job.HardwareFinish = req.HardwareFinish
	}
	if req.Configuration != nil {
		job.Configuration = req.Configuration
	}
	if req.Dimensions != nil {
		job.Dimensions = req.Dimensions
	}
	if req.InstallDate != nil {
		if job.InstallDate, err = parseOptionalDate(req.InstallDate, "install_date"); err != nil {
			return nil, err
		}
	}
	if req.InstallEndDate != nil {
		if job.InstallEndDate, err = parseOptionalDate(req.InstallEndDate, "install_end_date"); err != nil {
			return nil, err
		}
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

func (s *jobService) UpdateStatus(ctx context.Context, id string, req UpdateJobStatusRequest) (*model.Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid job id: %w", err)
	}
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	previous := job.Status
	job.Status = req.Status
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	s.hub.BroadcastEvent(ws.EventJobStatusChanged, map[string]interface{}{
		"job_id":   job.ID.String(),
		"job_name": job.JobName,
		"from":     previous,
		"to":       job.Status,
	})
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, id string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}
	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		return fmt.Errorf("job not found: %w", err)
	}
	return s.jobRepo.Delete(ctx, jobID)
}

// DeriveAttention flags jobs whose status has moved ahead of the money
// or materials backing it. Checks run in priority order; the first hit
// wins. Requires Payments and Expenses to be loaded.
func DeriveAttention(job *model.Job) AttentionInfo {
	hasDeposit := false
	hasFinal := false
	for _, p := range job.Payments {
		switch p.PaymentType {
		case model.PaymentTypeDeposit:
			hasDeposit = true
		case model.PaymentTypeFinal:
			hasFinal = true
		}
	}
	hasGlassExpense := false
	for _, e := range job.Expenses {
		if model.IsGlassCategory(e.Category) {
			hasGlassExpense = true
			break
		}
	}

	switch job.Status {
	case model.JobStatusDepositReceived, model.JobStatusMeasured, model.JobStatusOrdered, model.JobStatusInstalled:
		if !hasDeposit {
			return AttentionInfo{NeedsAttention: true, Reason: AttentionWaitingDeposit, Message: "Waiting for deposit"}
		}
	}
	switch job.Status {
	case model.JobStatusMeasured, model.JobStatusOrdered:
		if !hasGlassExpense {
			return AttentionInfo{NeedsAttention: true, Reason: AttentionNeedGlassOrder, Message: "Need to order glass"}
		}
	}
	if job.Status == model.JobStatusInstalled && !hasFinal {
		return AttentionInfo{NeedsAttention: true, Reason: AttentionCollectFinal, Message: "Collect final payment"}
	}
	return AttentionInfo{}
}

func parseOptionalDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &t, nil
}
