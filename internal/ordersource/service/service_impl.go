package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/observability/tracing"
	"github.com/smallbiznis/quotient/internal/ordersource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type (
	Params struct {
		fx.In
		Config config.Config
		Log    *zap.Logger
	}

	Service struct {
		log    *zap.Logger
		client *shopifyClient
	}
)

func New(p Params) domain.Service {
	timeout := time.Duration(p.Config.ShopifyTimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		log:    p.Log.Named("ordersource.service"),
		client: newShopifyClient(p.Config.ShopifyAPIVersion, tracing.WrapHTTPClient(&http.Client{Timeout: timeout})),
	}
}

func (s *Service) TestConnection(ctx context.Context, creds domain.Credentials) (*domain.ShopInfo, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	return s.client.shop(ctx, creds)
}

func (s *Service) ListUnfulfilledOrders(ctx context.Context, creds domain.Credentials, req domain.ListOrdersRequest) (*domain.OrdersPage, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	daysBack := req.DaysBack
	if daysBack <= 0 {
		daysBack = 14
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	page, err := s.client.unfulfilledOrders(ctx, creds, daysBack, limit, strings.TrimSpace(req.Cursor))
	if err != nil {
		return nil, err
	}

	s.log.Debug("fetched unfulfilled orders",
		zap.String("shop_url", creds.ShopURL),
		zap.Int("count", page.TotalFetched),
		zap.Bool("has_next_page", page.HasNextPage),
	)
	return page, nil
}

func (s *Service) GetOrder(ctx context.Context, creds domain.Credentials, orderID string) (*domain.Order, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrderID
	}

	orderGID := orderID
	if !strings.HasPrefix(orderGID, "gid://") {
		orderGID = "gid://shopify/Order/" + orderGID
	}

	order, err := s.client.orderByGID(ctx, creds, orderGID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return order, nil
}

func validateCredentials(creds domain.Credentials) error {
	if strings.TrimSpace(creds.ShopURL) == "" {
		return domain.ErrInvalidShopURL
	}
	if strings.TrimSpace(creds.APIToken) == "" {
		return domain.ErrInvalidAPIToken
	}
	return nil
}
