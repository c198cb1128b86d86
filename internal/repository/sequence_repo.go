package repository

import (
	"context"

	"gorm.io/gorm"
)

// SequenceRepository hands out invoice numbers. Numbers are
// monotonically increasing and never reused; Next must run inside a
// transaction so the row lock holds until the invoice is committed.
type SequenceRepository interface {
	Next(ctx context.Context) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context) (int64, error) {
	db := GetDB(ctx, r.db)

	// Seed the row on first use
	if err := db.Exec(
		"INSERT INTO invoice_sequence (id, last_number) VALUES (1, 0) ON CONFLICT (id) DO NOTHING",
	).Error; err != nil {
		return 0, err
	}

	var next int64
	err := db.Raw(
		"UPDATE invoice_sequence SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number",
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}

	return next, nil
}
