package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidRole       = errors.New("invalid_role")
	ErrInvalidQuery      = errors.New("invalid_query")
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrCustomerNotFound  = errors.New("customer_not_found")
)

type ListCustomersRequest struct {
	Limit int `form:"limit,default=100" validate:"gte=1,lte=500"`
}

type SearchCustomersRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit,default=50" validate:"gte=1,lte=500"`
}

// Service reads and writes the legacy catalogs. Every call opens its own
// connection and releases it before returning.
type Service interface {
	TestConnection(ctx context.Context, role string) (*ConnectionStatus, error)

	FindProductsByBarcodes(ctx context.Context, role string, barcodes []string) ([]*Product, error)
	CopyProduct(ctx context.Context, product *Product) error
	UnitDescription(ctx context.Context, unitID int64) (string, error)

	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, error)
	SearchCustomers(ctx context.Context, req SearchCustomersRequest) ([]Customer, error)
}
