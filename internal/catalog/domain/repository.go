package domain

import (
	"context"

	"gorm.io/gorm"
)

// Connector turns a catalog role into a live connection. Callers must invoke
// the release func once they are done; nothing is pooled between operations.
type Connector interface {
	Open(ctx context.Context, role string) (*gorm.DB, func(), error)
}

type Repository interface {
	ServerVersion(ctx context.Context, db *gorm.DB) (string, error)

	FindProductsByBarcodes(ctx context.Context, db *gorm.DB, barcodes []string) ([]*Product, error)
	InsertProduct(ctx context.Context, db *gorm.DB, product *Product) error
	UnitDescription(ctx context.Context, db *gorm.DB, unitID int64) (string, error)

	FindCustomerByID(ctx context.Context, db *gorm.DB, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, db *gorm.DB, limit int) ([]*Customer, error)
	SearchCustomersByAccount(ctx context.Context, db *gorm.DB, account string, limit int) ([]*Customer, error)
}
