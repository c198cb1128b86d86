package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	// GenerateMonthly recomputes the snapshot for month (YYYY-MM) and
	// replaces any previous one.
	GenerateMonthly(ctx context.Context, month string) (*model.MonthlyReport, error)
	GetMonthly(ctx context.Context, month string) (*model.MonthlyReport, error)
	ListMonthly(ctx context.Context, limit int) ([]model.MonthlyReport, error)
	// ExportMonthlyXLSX renders the snapshot as a spreadsheet.
	ExportMonthlyXLSX(ctx context.Context, month string) ([]byte, string, error)
}

type reportService struct {
	reportRepo  repository.ReportRepository
	paymentRepo repository.PaymentRepository
	expenseRepo repository.ExpenseRepository
	jobRepo     repository.JobRepository
}

func NewReportService(
	reportRepo repository.ReportRepository,
	paymentRepo repository.PaymentRepository,
	expenseRepo repository.ExpenseRepository,
	jobRepo repository.JobRepository,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		jobRepo:     jobRepo,
	}
}

func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month, want YYYY-MM: %w", err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

func (s *reportService) GenerateMonthly(ctx context.Context, month string) (*model.MonthlyReport, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	expenses, err := s.expenseRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	jobsCreated, err := s.jobRepo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count created jobs: %w", err)
	}
	jobsCompleted, err := s.jobRepo.CountClosedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count closed jobs: %w", err)
	}

	revenue := decimal.Zero
	byMethod := map[string]decimal.Decimal{}
	byClient := map[string]decimal.Decimal{}
	for _, p := range payments {
		revenue = revenue.Add(p.Amount)
		byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
		if p.Job != nil && p.Job.Client != nil {
			byClient[p.Job.Client.Name] = byClient[p.Job.Client.Name].Add(p.Amount)
		}
	}

	costs := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		costs = costs.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	report := &model.MonthlyReport{
		ReportMonth:        month,
		TotalRevenue:       revenue,
		TotalExpenses:      costs,
		NetProfit:          revenue.Sub(costs),
		JobsCompleted:      int(jobsCompleted),
		JobsCreated:        int(jobsCreated),
		ExpensesByCategory: decimalMapToJSON(byCategory),
		PaymentsByMethod:   decimalMapToJSON(byMethod),
		TopClients:         decimalMapToJSON(topN(byClient, 5)),
		GeneratedAt:        time.Now(),
	}

	if err := s.reportRepo.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

func (s *reportService) GetMonthly(ctx context.Context, month string) (*model.MonthlyReport, error) {
	if _, _, err := monthBounds(month); err != nil {
		return nil, err
	}
	report, err := s.reportRepo.FindByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("report not found for %s: %w", month, err)
	}
	return report, nil
}

func (s *reportService) ListMonthly(ctx context.Context, limit int) ([]model.MonthlyReport, error) {
	if limit <= 0 {
		limit = 12
	}
	reports, err := s.reportRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	return reports, nil
}

func (s *reportService) ExportMonthlyXLSX(ctx context.Context, month string) ([]byte, string, error) {
	report, err := s.GetMonthly(ctx, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to build workbook: %w", err)
	}

	rows := [][]interface{}{
		{"Monthly Report", report.ReportMonth},
		{},
		{"Total Revenue", report.TotalRevenue.StringFixed(2)},
		{"Total Expenses", report.TotalExpenses.StringFixed(2)},
		{"Net Profit", report.NetProfit.StringFixed(2)},
		{"Jobs Created", report.JobsCreated},
		{"Jobs Completed", report.JobsCompleted},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to build workbook: %w", err)
		}
	}

	if err := writeBreakdownSheet(f, "Expenses by Category", report.ExpensesByCategory); err != nil {
		return nil, "", err
	}
	if err := writeBreakdownSheet(f, "Payments by Method", report.PaymentsByMethod); err != nil {
		return nil, "", err
	}
	if err := writeBreakdownSheet(f, "Top Clients", report.TopClients); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("report_%s.xlsx", report.ReportMonth), nil
}

func writeBreakdownSheet(f *excelize.File, name string, data model.JSONMap) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := []interface{}{"Name", "Amount"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	for i, k := range keys {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{k, fmt.Sprintf("%v", data[k])}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to build workbook: %w", err)
		}
	}
	return nil
}

func decimalMapToJSON(m map[string]decimal.Decimal) model.JSONMap {
	out := model.JSONMap{}
	for k, v := range m {
		out[k] = v.StringFixed(2)
	}
	return out
}

func topN(m map[string]decimal.Decimal, n int) map[string]decimal.Decimal {
	type entry struct {
		name   string
		amount decimal.Decimal
	}
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, entry{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount.Equal(entries[j].amount) {
			return entries[i].name < entries[j].name
		}
		return entries[i].amount.GreaterThan(entries[j].amount)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		out[e.name] = e.amount
	}
	return out
}
