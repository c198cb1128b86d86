package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]*model.Payment{}}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (f *fakePaymentRepo) List(_ context.Context, _ repository.PaymentListFilter) ([]model.Payment, int64, error) {
	return nil, 0, nil
}

func (f *fakePaymentRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		if !p.Date.Before(from) && p.Date.Before(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Update(_ context.Context, payment *model.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.payments, id)
	return nil
}

type paymentFixture struct {
	svc         PaymentService
	paymentRepo *fakePaymentRepo
	job         *model.Job
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	jobRepo := newFakeJobRepo()
	job := &model.Job{JobName: "Mirror Wall", Address: "9 Orchard St", Status: model.JobStatusInstalled}
	require.NoError(t, jobRepo.Create(context.Background(), job))

	f := &paymentFixture{paymentRepo: newFakePaymentRepo(), job: job}
	f.svc = NewPaymentService(f.paymentRepo, jobRepo, newFakeInvoiceRepo(), nil)
	return f
}

func strPtr(s string) *string { return &s }

func TestCreatePaymentStripeFromGross(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       f.job.ID.String(),
		Date:        "2025-03-10",
		GrossAmount: strPtr("100"),
		PaymentType: model.PaymentTypeDeposit,
		Method:      model.MethodStripe,
	})
	require.NoError(t, err)

	assert.Equal(t, "3.20", payment.StripeFee.StringFixed(2))
	assert.Equal(t, "96.80", payment.Amount.StringFixed(2))
	require.NotNil(t, payment.GrossAmount)
	assert.Equal(t, "100.00", payment.GrossAmount.StringFixed(2))
}

func TestCreatePaymentStripeFromNet(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       f.job.ID.String(),
		Date:        "2025-03-10",
		Amount:      strPtr("96.80"),
		PaymentType: model.PaymentTypeFinal,
		Method:      model.MethodStripe,
	})
	require.NoError(t, err)

	require.NotNil(t, payment.GrossAmount)
	// Inverse is approximate; the round trip must land within a cent.
	diff := payment.GrossAmount.Sub(dec(t, "100")).Abs()
	assert.True(t, diff.LessThanOrEqual(dec(t, "0.01")), "gross %s too far from 100", payment.GrossAmount)
	assert.Equal(t, "96.80", payment.Amount.StringFixed(2))
}

func TestCreatePaymentStripeRequiresAnAmount(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       f.job.ID.String(),
		Date:        "2025-03-10",
		PaymentType: model.PaymentTypeDeposit,
		Method:      model.MethodStripe,
	})
	assert.ErrorContains(t, err, "amount or gross_amount")
}

func TestCreatePaymentNonStripeHasNoFee(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       f.job.ID.String(),
		Date:        "2025-03-10",
		Amount:      strPtr("500"),
		PaymentType: model.PaymentTypeDeposit,
		Method:      model.MethodZelle,
	})
	require.NoError(t, err)

	assert.True(t, payment.StripeFee.IsZero())
	assert.Nil(t, payment.GrossAmount)
	assert.Equal(t, "500.00", payment.Amount.StringFixed(2))
}

func TestUpdatePaymentMethodSwitchRederivesFee(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       f.job.ID.String(),
		Date:        "2025-03-10",
		Amount:      strPtr("500"),
		PaymentType: model.PaymentTypeDeposit,
		Method:      model.MethodCheck,
	})
	require.NoError(t, err)

	stripe := model.MethodStripe
	updated, err := f.svc.UpdatePayment(context.Background(), payment.ID.String(), UpdatePaymentRequest{
		Method:      &stripe,
		GrossAmount: strPtr("500"),
	})
	require.NoError(t, err)

	// 500*0.029+0.30 = 14.80
	assert.Equal(t, "14.80", updated.StripeFee.StringFixed(2))
	assert.Equal(t, "485.20", updated.Amount.StringFixed(2))
	require.NotNil(t, updated.GrossAmount)

	check := model.MethodCheck
	reverted, err := f.svc.UpdatePayment(context.Background(), payment.ID.String(), UpdatePaymentRequest{
		Method: &check,
	})
	require.NoError(t, err)
	assert.True(t, reverted.StripeFee.IsZero())
	assert.Nil(t, reverted.GrossAmount)
}

func TestCreatePaymentRejectsUnknownJob(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreatePayment(context.Background(), CreatePaymentRequest{
		JobID:       uuid.NewString(),
		Date:        "2025-03-10",
		Amount:      strPtr("500"),
		PaymentType: model.PaymentTypeDeposit,
		Method:      model.MethodCash,
	})
	assert.ErrorContains(t, err, "job not found")
}
