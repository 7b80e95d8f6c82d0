package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// MaxQuotationNumber returns the highest number matching the LIKE
	// pattern, compared numerically. Zero means no rows match yet.
	MaxQuotationNumber(ctx context.Context, db *gorm.DB, pattern string) (int64, error)

	// InsertQuotation writes the header and its detail rows in one
	// transaction and returns the identity the header received.
	InsertQuotation(ctx context.Context, db *gorm.DB, header *Quotation, details []QuotationDetail) (int64, error)
}
