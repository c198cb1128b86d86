package repository

import (
	"context"

	"glassops/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	Upsert(ctx context.Context, report *model.MonthlyReport) error
	FindByMonth(ctx context.Context, month string) (*model.MonthlyReport, error)
	List(ctx context.Context, limit int) ([]model.MonthlyReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Upsert replaces any previous snapshot for the same month.
func (r *reportRepository) Upsert(ctx context.Context, report *model.MonthlyReport) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "report_month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_revenue", "total_expenses", "net_profit",
			"jobs_completed", "jobs_created",
			"expenses_by_category", "payments_by_method", "top_clients",
			"generated_at",
		}),
	}).Create(report).Error
}

func (r *reportRepository) FindByMonth(ctx context.Context, month string) (*model.MonthlyReport, error) {
	var report model.MonthlyReport
	if err := GetDB(ctx, r.db).First(&report, "report_month = ?", month).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, limit int) ([]model.MonthlyReport, error) {
	var reports []model.MonthlyReport
	if err := GetDB(ctx, r.db).Order("report_month desc").Limit(limit).Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
