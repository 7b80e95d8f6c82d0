package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/observability/metrics"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type (
	Params struct {
		fx.In
		Log       *zap.Logger
		Metrics   *metrics.Metrics
		Connector domain.Connector
		Repo      domain.Repository
	}

	Service struct {
		log     *zap.Logger
		metrics *metrics.Metrics
		conn    domain.Connector
		repo    domain.Repository
	}
)

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("catalog.service"),
		metrics: p.Metrics,
		conn:    p.Connector,
		repo:    p.Repo,
	}
}

func (s *Service) TestConnection(ctx context.Context, role string) (*domain.ConnectionStatus, error) {
	role, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}

	db, release, err := s.conn.Open(ctx, role)
	if err != nil {
		return nil, err
	}
	defer release()

	version, err := s.repo.ServerVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCatalogQuery(ctx, role, "test_connection")
	return &domain.ConnectionStatus{Role: role, ServerVersion: version}, nil
}

func (s *Service) FindProductsByBarcodes(ctx context.Context, role string, barcodes []string) ([]*domain.Product, error) {
	role, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}
	if len(barcodes) == 0 {
		return nil, nil
	}

	db, release, err := s.conn.Open(ctx, role)
	if err != nil {
		return nil, err
	}
	defer release()

	products, err := s.repo.FindProductsByBarcodes(ctx, db, barcodes)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCatalogQuery(ctx, role, "find_products")
	return products, nil
}

// CopyProduct inserts an inventory-sourced row into the backoffice catalog.
// The caller leaves ProductID zero; the identity column assigns it and gorm
// backfills the struct.
func (s *Service) CopyProduct(ctx context.Context, product *domain.Product) error {
	if product == nil || product.Barcode() == "" {
		return domain.ErrInvalidProduct
	}

	db, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.InsertProduct(ctx, db, product); err != nil {
		return err
	}

	s.metrics.RecordCatalogQuery(ctx, storedomain.RoleBackoffice, "insert_product")
	s.log.Info("product copied to backoffice",
		zap.Int64("product_id", product.ProductID),
		zap.String("barcode", product.Barcode()),
	)
	return nil
}

func (s *Service) UnitDescription(ctx context.Context, unitID int64) (string, error) {
	if unitID == 0 {
		return "", nil
	}

	db, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return "", err
	}
	defer release()

	desc, err := s.repo.UnitDescription(ctx, db, unitID)
	if err != nil {
		return "", err
	}

	s.metrics.RecordCatalogQuery(ctx, storedomain.RoleBackoffice, "unit_description")
	return desc, nil
}

func (s *Service) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	if customerID <= 0 {
		return nil, domain.ErrInvalidCustomerID
	}

	db, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return nil, err
	}
	defer release()

	customer, err := s.repo.FindCustomerByID(ctx, db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	s.metrics.RecordCatalogQuery(ctx, storedomain.RoleBackoffice, "get_customer")
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, req domain.ListCustomersRequest) ([]domain.Customer, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	db, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.repo.ListCustomers(ctx, db, limit)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCatalogQuery(ctx, storedomain.RoleBackoffice, "list_customers")
	return derefCustomers(rows), nil
}

func (s *Service) SearchCustomers(ctx context.Context, req domain.SearchCustomersRequest) ([]domain.Customer, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	db, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.repo.SearchCustomersByAccount(ctx, db, query, limit)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCatalogQuery(ctx, storedomain.RoleBackoffice, "search_customers")
	return derefCustomers(rows), nil
}

func derefCustomers(rows []*domain.Customer) []domain.Customer {
	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, *row)
	}
	return customers
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != storedomain.RoleBackoffice && role != storedomain.RoleInventory {
		return "", domain.ErrInvalidRole
	}
	return role, nil
}
