package service

import (
	"context"
	"testing"

	"glassops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobWith(status string, payments []model.Payment, expenses []model.Expense) *model.Job {
	return &model.Job{Status: status, Payments: payments, Expenses: expenses}
}

func TestDeriveAttentionWaitingDeposit(t *testing.T) {
	job := jobWith(model.JobStatusDepositReceived, nil, nil)

	info := DeriveAttention(job)
	assert.True(t, info.NeedsAttention)
	assert.Equal(t, AttentionWaitingDeposit, info.Reason)
}

func TestDeriveAttentionDepositClearsFlag(t *testing.T) {
	job := jobWith(model.JobStatusDepositReceived,
		[]model.Payment{{PaymentType: model.PaymentTypeDeposit}}, nil)

	assert.False(t, DeriveAttention(job).NeedsAttention)
}

func TestDeriveAttentionNeedGlassOrder(t *testing.T) {
	job := jobWith(model.JobStatusMeasured,
		[]model.Payment{{PaymentType: model.PaymentTypeDeposit}}, nil)

	info := DeriveAttention(job)
	assert.True(t, info.NeedsAttention)
	assert.Equal(t, AttentionNeedGlassOrder, info.Reason)
}

func TestDeriveAttentionGlassExpenseClearsFlag(t *testing.T) {
	job := jobWith(model.JobStatusOrdered,
		[]model.Payment{{PaymentType: model.PaymentTypeDeposit}},
		[]model.Expense{{Category: model.CategoryGlass}})

	assert.False(t, DeriveAttention(job).NeedsAttention)
}

func TestDeriveAttentionLegacyGlassCategoryCounts(t *testing.T) {
	job := jobWith(model.JobStatusOrdered,
		[]model.Payment{{PaymentType: model.PaymentTypeDeposit}},
		[]model.Expense{{Category: model.CategoryMrGlass}})

	assert.False(t, DeriveAttention(job).NeedsAttention)
}

func TestDeriveAttentionCollectFinal(t *testing.T) {
	job := jobWith(model.JobStatusInstalled,
		[]model.Payment{{PaymentType: model.PaymentTypeDeposit}},
		[]model.Expense{{Category: model.CategoryGlass}})

	info := DeriveAttention(job)
	assert.True(t, info.NeedsAttention)
	assert.Equal(t, AttentionCollectFinal, info.Reason)
}

func TestDeriveAttentionMissingDepositWinsOverGlass(t *testing.T) {
	// Both conditions hold; the deposit check has priority.
	job := jobWith(model.JobStatusMeasured, nil, nil)

	info := DeriveAttention(job)
	assert.Equal(t, AttentionWaitingDeposit, info.Reason)
}

func TestDeriveAttentionQuietStatuses(t *testing.T) {
	assert.False(t, DeriveAttention(jobWith(model.JobStatusEstimate, nil, nil)).NeedsAttention)
	assert.False(t, DeriveAttention(jobWith(model.JobStatusClosed, nil, nil)).NeedsAttention)
}

func TestGetJobComputesFinancials(t *testing.T) {
	jobRepo := newFakeJobRepo()
	clientRepo := newFakeClientRepo()
	svc := NewJobService(jobRepo, clientRepo, nil)

	job := &model.Job{
		JobName: "Loft Partition",
		Address: "1 Main St",
		Status:  model.JobStatusInstalled,
		Payments: []model.Payment{
			{PaymentType: model.PaymentTypeDeposit, Amount: dec(t, "600")},
			{PaymentType: model.PaymentTypeFinal, Amount: dec(t, "400")},
		},
		Expenses: []model.Expense{
			{Category: model.CategoryGlass, Amount: dec(t, "400")},
		},
	}
	require.NoError(t, jobRepo.Create(context.Background(), job))

	detail, err := svc.GetJob(context.Background(), job.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "1000.00", detail.Financials.Revenue)
	assert.Equal(t, "400.00", detail.Financials.Costs)
	assert.Equal(t, "600.00", detail.Financials.Net)
	assert.Equal(t, "60.0", detail.Financials.Margin)
	assert.False(t, detail.Attention.NeedsAttention)
}

func TestCreateJobStartsAsEstimate(t *testing.T) {
	jobRepo := newFakeJobRepo()
	clientRepo := newFakeClientRepo()
	svc := NewJobService(jobRepo, clientRepo, nil)

	job, err := svc.CreateJob(context.Background(), CreateJobRequest{
		JobName: "Office Partition",
		Address: "200 5th Ave",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusEstimate, job.Status)
}

func TestCreateJobRejectsUnknownClient(t *testing.T) {
	jobRepo := newFakeJobRepo()
	clientRepo := newFakeClientRepo()
	svc := NewJobService(jobRepo, clientRepo, nil)

	missing := "2b1f0608-14a2-4652-bb4f-0af64f1b3b27"
	_, err := svc.CreateJob(context.Background(), CreateJobRequest{
		JobName:  "Office Partition",
		Address:  "200 5th Ave",
		ClientID: &missing,
	})
	assert.ErrorContains(t, err, "client not found")
}
