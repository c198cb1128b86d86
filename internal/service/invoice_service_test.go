package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	findErr  error
	pdfErr   error
	pdfURL   string
	pdfForID uuid.UUID
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[uuid.UUID]*model.Invoice{}}
}

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	inv, ok := f.invoices[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return inv, nil
}

func (f *fakeInvoiceRepo) FindByIDWithJob(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeInvoiceRepo) List(_ context.Context, _ repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	out := make([]model.Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, invoice *model.Invoice) error {
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) UpdatePDFURL(_ context.Context, id uuid.UUID, url string) error {
	if f.pdfErr != nil {
		return f.pdfErr
	}
	f.pdfForID = id
	f.pdfURL = url
	if inv, ok := f.invoices[id]; ok {
		inv.PDFURL = &url
	}
	return nil
}

func (f *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.invoices, id)
	return nil
}

type fakeJobRepo struct {
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]*model.Job{}}
}

func (f *fakeJobRepo) Create(_ context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return job, nil
}

func (f *fakeJobRepo) FindByIDWithActivity(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeJobRepo) List(_ context.Context, _ repository.JobListFilter) ([]model.Job, int64, error) {
	return nil, 0, nil
}

func (f *fakeJobRepo) ListWithActivityByStatuses(_ context.Context, statuses []string) ([]model.Job, error) {
	var out []model.Job
	for _, job := range f.jobs {
		for _, s := range statuses {
			if job.Status == s {
				out = append(out, *job)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeJobRepo) ListInstallsBetween(_ context.Context, from, to time.Time) ([]model.Job, error) {
	var out []model.Job
	for _, job := range f.jobs {
		if job.InstallDate != nil && !job.InstallDate.Before(from) && !job.InstallDate.After(to) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) CountCreatedBetween(_ context.Context, _, _ time.Time) (int64, error) {
	return int64(len(f.jobs)), nil
}

func (f *fakeJobRepo) CountClosedBetween(_ context.Context, _, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeJobRepo) Update(_ context.Context, job *model.Job) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.jobs, id)
	return nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[uuid.UUID]*model.Client{}}
}

func (f *fakeClientRepo) Create(_ context.Context, client *model.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return client, nil
}

func (f *fakeClientRepo) List(_ context.Context, _ string, _, _ int) ([]model.Client, int64, error) {
	return nil, 0, nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *model.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.clients, id)
	return nil
}

type fakeSequenceRepo struct {
	last int64
	err  error
}

func (f *fakeSequenceRepo) Next(_ context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.last++
	return f.last, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeRenderer struct {
	data []byte
	err  error
}

func (f *fakeRenderer) Render(_ *model.Invoice) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeStore struct {
	name        string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStore) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.name = name
	f.contentType = contentType
	f.data = data
	return "https://store.example.com/" + name, nil
}

// --- Harness ---

type invoiceFixture struct {
	svc         InvoiceService
	invoiceRepo *fakeInvoiceRepo
	jobRepo     *fakeJobRepo
	clientRepo  *fakeClientRepo
	seqRepo     *fakeSequenceRepo
	renderer    *fakeRenderer
	store       *fakeStore
	job         *model.Job
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	f := &invoiceFixture{
		invoiceRepo: newFakeInvoiceRepo(),
		jobRepo:     newFakeJobRepo(),
		clientRepo:  newFakeClientRepo(),
		seqRepo:     &fakeSequenceRepo{last: 1000},
		renderer:    &fakeRenderer{data: []byte("%PDF-1.3 test")},
		store:       &fakeStore{},
	}

	billing := "88 Bowery, New York, NY"
	client := &model.Client{Name: "Jane Smith", BillingAddress: &billing}
	require.NoError(t, f.clientRepo.Create(context.Background(), client))

	f.job = &model.Job{
		ClientID: &client.ID,
		JobName:  "Smith Residence Shower",
		Address:  "14 W 23rd St, New York, NY",
		Status:   model.JobStatusMeasured,
	}
	require.NoError(t, f.jobRepo.Create(context.Background(), f.job))

	f.svc = NewInvoiceService(
		f.invoiceRepo, f.jobRepo, f.clientRepo, f.seqRepo,
		fakeTxManager{}, f.renderer, f.store, nil,
	)
	return f
}

func validCreateRequest(f *invoiceFixture) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		JobID:       f.job.ID.String(),
		InvoiceDate: "2025-03-10",
		LineItems: []LineItemRequest{
			{Description: "Frameless shower door", Qty: "1", UnitPrice: "250"},
			{Description: "Hinge set", Qty: "2", UnitPrice: "25"},
		},
		DiscountApplied: true,
		DiscountPercent: "10",
		TaxApplied:      true,
		TaxRate:         "8.875",
	}
}

// --- Create ---

func TestCreateInvoiceComputesTotals(t *testing.T) {
	f := newInvoiceFixture(t)

	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, int64(1001), resp.InvoiceNumber)
	assert.Equal(t, "300.00", resp.Subtotal)
	assert.Equal(t, "30.00", resp.DiscountAmount)
	assert.Equal(t, "23.96", resp.Tax)
	assert.Equal(t, "293.96", resp.Total)
	assert.Equal(t, model.InvoiceStatusSent, resp.Status)
}

func TestCreateInvoiceSnapshotsCustomerFromClient(t *testing.T) {
	f := newInvoiceFixture(t)

	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", resp.CustomerName)
	require.NotNil(t, resp.CustomerAddress)
	assert.Equal(t, "88 Bowery, New York, NY", *resp.CustomerAddress)
}

func TestCreateInvoiceFallsBackToJobFields(t *testing.T) {
	f := newInvoiceFixture(t)
	f.job.ClientID = nil

	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, "Smith Residence Shower", resp.CustomerName)
	require.NotNil(t, resp.CustomerAddress)
	assert.Equal(t, "14 W 23rd St, New York, NY", *resp.CustomerAddress)
}

func TestCreateInvoiceDefaultsDueDate(t *testing.T) {
	f := newInvoiceFixture(t)

	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-24", resp.DueDate)
}

func TestCreateInvoiceRejectsNegativeQty(t *testing.T) {
	f := newInvoiceFixture(t)
	req := validCreateRequest(f)
	req.LineItems[0].Qty = "-1"

	_, err := f.svc.CreateInvoice(context.Background(), req)
	assert.ErrorContains(t, err, "must not be negative")
}

func TestCreateInvoiceSequenceFailureBurnsNoNumber(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seqRepo.err = errors.New("deadlock")

	_, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.Error(t, err)
	assert.Empty(t, f.invoiceRepo.invoices)
}

// --- Status transitions ---

func TestUpdateStatusForwardOnly(t *testing.T) {
	f := newInvoiceFixture(t)
	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), resp.ID, UpdateInvoiceStatusRequest{Status: model.InvoiceStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), resp.ID, UpdateInvoiceStatusRequest{Status: model.InvoiceStatusSent})
	assert.ErrorContains(t, err, "cannot transition")
}

// --- GeneratePDF pipeline ---

func TestGeneratePDFHappyPath(t *testing.T) {
	f := newInvoiceFixture(t)
	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)

	result, err := f.svc.GeneratePDF(context.Background(), resp.ID)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", f.store.contentType)
	assert.Contains(t, f.store.name, "invoice_1001_")
	assert.Equal(t, "https://store.example.com/"+f.store.name, result.PDFURL)

	stored := f.invoiceRepo.invoices[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored.PDFURL)
	assert.Equal(t, result.PDFURL, *stored.PDFURL)
}

func TestGeneratePDFInvoiceNotFound(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.GeneratePDF(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestGeneratePDFRenderFailureLeavesReferenceUntouched(t *testing.T) {
	f := newInvoiceFixture(t)
	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)
	f.renderer.err = errors.New("font missing")

	_, err = f.svc.GeneratePDF(context.Background(), resp.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReferenceWrite)
	assert.Nil(t, f.invoiceRepo.invoices[uuid.MustParse(resp.ID)].PDFURL)
	assert.Empty(t, f.store.name)
}

func TestGeneratePDFUploadFailureLeavesReferenceUntouched(t *testing.T) {
	f := newInvoiceFixture(t)
	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)
	f.store.err = errors.New("bucket unavailable")

	_, err = f.svc.GeneratePDF(context.Background(), resp.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReferenceWrite)
	assert.Nil(t, f.invoiceRepo.invoices[uuid.MustParse(resp.ID)].PDFURL)
}

func TestGeneratePDFReferenceWriteFailureIsReported(t *testing.T) {
	f := newInvoiceFixture(t)
	resp, err := f.svc.CreateInvoice(context.Background(), validCreateRequest(f))
	require.NoError(t, err)
	f.invoiceRepo.pdfErr = errors.New("connection reset")

	_, err = f.svc.GeneratePDF(context.Background(), resp.ID)
	// The object was stored but the record is stale; the caller must
	// see a failure.
	assert.ErrorIs(t, err, ErrReferenceWrite)
	assert.NotEmpty(t, f.store.name)
}
