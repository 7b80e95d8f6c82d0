package repository

import (
	"context"

	"github.com/smallbiznis/quotient/internal/quotation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// MaxQuotationNumber scans the block numerically. QuotationNumber is a text
// column in the legacy schema, so a plain MAX would compare lexically; the
// cast keeps 6202025999 above 620202500.
func (r *repo) MaxQuotationNumber(ctx context.Context, db *gorm.DB, pattern string) (int64, error) {
	var max *int64
	err := db.WithContext(ctx).
		Raw("SELECT MAX(CAST(QuotationNumber AS BIGINT)) FROM Quotations_tbl WHERE QuotationNumber LIKE ?", pattern).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repo) InsertQuotation(ctx context.Context, db *gorm.DB, header *domain.Quotation, details []domain.QuotationDetail) (int64, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(header).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].QuotationID = header.QuotationID
		}
		if len(details) == 0 {
			return nil
		}
		return tx.Create(&details).Error
	})
	if err != nil {
		return 0, err
	}
	return header.QuotationID, nil
}
