package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidShopURL  = errors.New("invalid_shop_url")
	ErrInvalidAPIToken = errors.New("invalid_api_token")
	ErrInvalidOrderID  = errors.New("invalid_order_id")
	ErrOrderNotFound   = errors.New("order_not_found")
)

type ListOrdersRequest struct {
	// DaysBack bounds the created_at filter; zero falls back to 14.
	DaysBack int
	// Cursor resumes a previous page.
	Cursor string
	// Limit is per page, capped at Shopify's 250.
	Limit int
}

type Service interface {
	TestConnection(ctx context.Context, creds Credentials) (*ShopInfo, error)
	ListUnfulfilledOrders(ctx context.Context, creds Credentials, req ListOrdersRequest) (*OrdersPage, error)
	GetOrder(ctx context.Context, creds Credentials, orderID string) (*Order, error)
}
