package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListStoreFilter struct {
	ActiveOnly bool
}

type Repository interface {
	InsertStore(ctx context.Context, db *gorm.DB, store *Store) error
	UpdateStore(ctx context.Context, db *gorm.DB, store *Store) error
	DeleteStore(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindStoreByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	ListStores(ctx context.Context, db *gorm.DB, filter ListStoreFilter) ([]*Store, error)

	UpsertConnection(ctx context.Context, db *gorm.DB, conn *SQLConnection) error
	FindConnectionByRole(ctx context.Context, db *gorm.DB, role string) (*SQLConnection, error)
	ListConnections(ctx context.Context, db *gorm.DB) ([]*SQLConnection, error)

	UpsertCustomerMapping(ctx context.Context, db *gorm.DB, mapping *CustomerMapping) error
	FindCustomerMappingByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*CustomerMapping, error)
	DeleteCustomerMappingByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) error

	UpsertQuotationDefaults(ctx context.Context, db *gorm.DB, defaults *QuotationDefaults) error
	FindQuotationDefaultsByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*QuotationDefaults, error)
	DeleteQuotationDefaultsByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) error
}
