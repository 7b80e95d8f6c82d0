package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidStoreID     = errors.New("invalid_store_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidShopURL     = errors.New("invalid_shop_url")
	ErrInvalidAPIToken    = errors.New("invalid_api_token")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidHost        = errors.New("invalid_host")
	ErrInvalidDatabase    = errors.New("invalid_database")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidCustomerID  = errors.New("invalid_customer_id")
	ErrStoreNotFound      = errors.New("store_not_found")
	ErrConnectionNotFound = errors.New("connection_not_found")
	ErrMappingNotFound    = errors.New("mapping_not_found")
	ErrDefaultsNotFound   = errors.New("defaults_not_found")
)

type CreateStoreRequest struct {
	Name     string `json:"name"`
	ShopURL  string `json:"shop_url"`
	APIToken string `json:"api_token"`
	IsActive *bool  `json:"is_active"`
}

type UpdateStoreRequest struct {
	StoreID  string `json:"-"`
	Name     string `json:"name"`
	ShopURL  string `json:"shop_url"`
	APIToken string `json:"api_token"`
	IsActive *bool  `json:"is_active"`
}

type GetStoreRequest struct {
	StoreID string `json:"-"`
}

type DeleteStoreRequest struct {
	StoreID string `json:"-"`
}

// SaveConnectionRequest carries the plaintext password exactly once, on the
// way in. Empty Password on an existing role keeps the sealed value already
// stored so operators can edit a host without re-entering credentials.
type SaveConnectionRequest struct {
	Role         string `json:"role"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	DatabaseName string `json:"database_name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

type SaveCustomerMappingRequest struct {
	StoreID      string `json:"-"`
	CustomerID   int64  `json:"customer_id"`
	BusinessName string `json:"business_name"`
}

type GetCustomerMappingRequest struct {
	StoreID string `json:"-"`
}

type SaveQuotationDefaultsRequest struct {
	StoreID        string `json:"-"`
	Status         *int   `json:"status"`
	ShipperID      *int64 `json:"shipper_id"`
	SalesRepID     *int64 `json:"sales_rep_id"`
	TermID         *int64 `json:"term_id"`
	TitlePrefix    string `json:"title_prefix"`
	ExpirationDays int    `json:"expiration_days"`
	DBID           string `json:"db_id"`
}

type GetQuotationDefaultsRequest struct {
	StoreID string `json:"-"`
}

type Service interface {
	ListStores(ctx context.Context) ([]Store, error)
	ListActiveStores(ctx context.Context) ([]Store, error)
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	UpdateStore(ctx context.Context, req UpdateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, req GetStoreRequest) (*Store, error)
	DeleteStore(ctx context.Context, req DeleteStoreRequest) error

	ListConnections(ctx context.Context) ([]SQLConnection, error)
	SaveConnection(ctx context.Context, req SaveConnectionRequest) (*SQLConnection, error)
	ConnectionConfig(ctx context.Context, role string) (*ConnectionConfig, error)

	GetCustomerMapping(ctx context.Context, req GetCustomerMappingRequest) (*CustomerMapping, error)
	SaveCustomerMapping(ctx context.Context, req SaveCustomerMappingRequest) (*CustomerMapping, error)

	GetQuotationDefaults(ctx context.Context, req GetQuotationDefaultsRequest) (*QuotationDefaults, error)
	SaveQuotationDefaults(ctx context.Context, req SaveQuotationDefaultsRequest) (*QuotationDefaults, error)
}
