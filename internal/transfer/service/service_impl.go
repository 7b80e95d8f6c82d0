package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/clock"
	obscontext "github.com/smallbiznis/quotient/internal/observability/context"
	"github.com/smallbiznis/quotient/internal/observability/metrics"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	quotationdomain "github.com/smallbiznis/quotient/internal/quotation/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	"github.com/smallbiznis/quotient/internal/transfer/domain"
	"github.com/smallbiznis/quotient/pkg/db/option"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	Params struct {
		fx.In
		DB        *gorm.DB
		Log       *zap.Logger
		Clock     clock.Clock
		Metrics   *metrics.Metrics
		GenID     *snowflake.Node
		Repo      domain.Repository
		Store     storedomain.Service
		Orders    ordersourcedomain.Service
		Catalog   catalogdomain.Service
		Engine    reconciledomain.Engine
		Quotation quotationdomain.Service
	}

	Service struct {
		db        *gorm.DB
		log       *zap.Logger
		clock     clock.Clock
		metrics   *metrics.Metrics
		genID     *snowflake.Node
		repo      domain.Repository
		store     storedomain.Service
		orders    ordersourcedomain.Service
		catalog   catalogdomain.Service
		engine    reconciledomain.Engine
		quotation quotationdomain.Service
	}
)

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("transfer.service"),
		clock:     p.Clock,
		metrics:   p.Metrics,
		genID:     p.GenID,
		repo:      p.Repo,
		store:     p.Store,
		orders:    p.Orders,
		catalog:   p.Catalog,
		engine:    p.Engine,
		quotation: p.Quotation,
	}
}

func (s *Service) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResponse, error) {
	store, err := s.store.GetStore(ctx, storedomain.GetStoreRequest{StoreID: req.StoreID})
	if err != nil {
		return nil, err
	}
	if len(req.OrderIDs) == 0 {
		return nil, domain.ErrInvalidOrderIDs
	}

	ctx = obscontext.WithStoreID(ctx, store.ID.String())
	creds := ordersourcedomain.Credentials{ShopURL: store.ShopURL, APIToken: store.APIToken}

	mapping, err := s.store.GetCustomerMapping(ctx, storedomain.GetCustomerMappingRequest{StoreID: req.StoreID})
	if err != nil && !errors.Is(err, storedomain.ErrMappingNotFound) {
		return nil, err
	}

	defaults, err := s.store.GetQuotationDefaults(ctx, storedomain.GetQuotationDefaultsRequest{StoreID: req.StoreID})
	if errors.Is(err, storedomain.ErrDefaultsNotFound) {
		defaults = &storedomain.QuotationDefaults{StoreID: store.ID, ExpirationDays: 365, DBID: "1"}
	} else if err != nil {
		return nil, err
	}

	response := &domain.TransferResponse{
		Summary: domain.TransferSummary{Total: len(req.OrderIDs)},
		Results: make([]domain.TransferResultItem, 0, len(req.OrderIDs)),
	}
	for _, orderID := range req.OrderIDs {
		item := s.transferOrder(ctx, store, creds, mapping, *defaults, orderID, req.CustomCustomers[orderID])
		if item.Success {
			response.Summary.Success++
		} else {
			response.Summary.Failed++
		}
		response.Results = append(response.Results, item)
	}

	s.log.Info("transfer batch finished",
		zap.String("store_id", store.ID.String()),
		zap.Int("total", response.Summary.Total),
		zap.Int("success", response.Summary.Success),
		zap.Int("failed", response.Summary.Failed),
	)
	return response, nil
}

// transferOrder runs the whole pipeline for one order. Every exit path
// leaves a ledger row behind except the already-transferred short-circuit
// and a ledger that cannot be read at all.
func (s *Service) transferOrder(
	ctx context.Context,
	store *storedomain.Store,
	creds ordersourcedomain.Credentials,
	mapping *storedomain.CustomerMapping,
	defaults storedomain.QuotationDefaults,
	orderID string,
	customCustomerID int64,
) domain.TransferResultItem {
	item := domain.TransferResultItem{OrderID: orderID}

	existing, err := s.repo.FindSuccess(ctx, s.db, store.ID, orderID)
	if err != nil {
		item.Error = fmt.Sprintf("read ledger: %v", err)
		s.metrics.RecordTransfer(ctx, store.ID.String(), domain.StatusFailed)
		return item
	}
	if existing != nil {
		item.Success = true
		item.OrderName = existing.OrderName
		if existing.QuotationNumber != nil {
			item.QuotationNumber = *existing.QuotationNumber
		}
		s.metrics.RecordTransfer(ctx, store.ID.String(), "skipped")
		s.log.Info("order already transferred",
			zap.String("order_id", orderID),
			zap.Int64("quotation_number", item.QuotationNumber),
		)
		return item
	}

	order, err := s.orders.GetOrder(ctx, creds, orderID)
	if err != nil {
		return s.recordFailure(ctx, store, item, fmt.Sprintf("fetch order: %v", err))
	}
	item.OrderName = order.Name

	validation, err := s.engine.Resolve(ctx, order.ID, order.LineItems)
	if err != nil {
		return s.recordFailure(ctx, store, item, fmt.Sprintf("validate order: %v", err))
	}
	if !validation.Valid {
		return s.recordFailure(ctx, store, item, missingMessage(validation))
	}

	customerID := customCustomerID
	if customerID == 0 {
		if mapping == nil {
			return s.recordFailure(ctx, store, item, "no customer mapping configured")
		}
		customerID = mapping.CustomerID
	}
	customer, err := s.catalog.GetCustomer(ctx, customerID)
	if err != nil {
		return s.recordFailure(ctx, store, item, fmt.Sprintf("load customer %d: %v", customerID, err))
	}

	created, err := s.quotation.Create(ctx, quotationdomain.CreateQuotationRequest{
		Order:    *order,
		Resolved: validation.Products,
		Customer: *customer,
		Defaults: defaults,
	})
	if err != nil {
		return s.recordFailure(ctx, store, item, fmt.Sprintf("create quotation: %v", err))
	}

	inserted, err := s.repo.Append(ctx, s.db, &domain.TransferRecord{
		ID:              s.genID.Generate(),
		StoreID:         store.ID,
		OrderID:         orderID,
		OrderName:       order.Name,
		QuotationNumber: &created.QuotationNumber,
		Status:          domain.StatusSuccess,
		LineItemsCount:  created.LineCount,
		TotalAmount:     created.Total,
		TransferredAt:   s.clock.Now(),
	})
	if err != nil {
		// The quotation exists; losing the ledger row must not flip the
		// order back to untransferred in the response.
		s.log.Error("append success ledger row",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	} else if !inserted {
		s.log.Warn("success row already present, keeping the earlier record",
			zap.String("order_id", orderID),
		)
	}

	s.metrics.RecordTransfer(ctx, store.ID.String(), domain.StatusSuccess)
	item.Success = true
	item.QuotationNumber = created.QuotationNumber
	return item
}

func (s *Service) recordFailure(ctx context.Context, store *storedomain.Store, item domain.TransferResultItem, message string) domain.TransferResultItem {
	record := &domain.TransferRecord{
		ID:            s.genID.Generate(),
		StoreID:       store.ID,
		OrderID:       item.OrderID,
		OrderName:     item.OrderName,
		Status:        domain.StatusFailed,
		ErrorMessage:  message,
		TransferredAt: s.clock.Now(),
	}
	if _, err := s.repo.Append(ctx, s.db, record); err != nil {
		s.log.Error("append failed ledger row",
			zap.String("order_id", item.OrderID),
			zap.Error(err),
		)
	}

	s.metrics.RecordTransfer(ctx, store.ID.String(), domain.StatusFailed)
	s.log.Warn("order transfer failed",
		zap.String("store_id", store.ID.String()),
		zap.String("order_id", item.OrderID),
		zap.String("reason", message),
	)

	item.Success = false
	item.Error = message
	return item
}

func missingMessage(validation *reconciledomain.ValidationResult) string {
	parts := make([]string, 0, len(validation.Missing))
	for _, missing := range validation.Missing {
		part := missing.Barcode
		if part == "" {
			part = missing.Name
		}
		parts = append(parts, part)
	}
	return "Missing products: " + strings.Join(parts, ", ")
}

func (s *Service) TransferredSet(ctx context.Context, storeID string, orderIDs []string) (map[string]bool, error) {
	id, err := parseStoreID(storeID)
	if err != nil {
		return nil, err
	}
	return s.repo.TransferredSet(ctx, s.db, id, orderIDs)
}

func (s *Service) ListHistory(ctx context.Context, req domain.ListHistoryRequest) (*domain.HistoryPage, error) {
	filter := domain.ListFilter{Status: strings.TrimSpace(req.Status)}

	if v := strings.TrimSpace(req.StoreID); v != "" {
		id, err := parseStoreID(v)
		if err != nil {
			return nil, err
		}
		filter.StoreID = id
	}
	if v := strings.TrimSpace(req.DateFrom); v != "" {
		ts, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, domain.ErrInvalidDateFrom
		}
		filter.DateFrom = &ts
	}
	if v := strings.TrimSpace(req.DateTo); v != "" {
		ts, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, domain.ErrInvalidDateTo
		}
		// Inclusive end date: everything before the following midnight.
		end := ts.AddDate(0, 0, 1)
		filter.DateTo = &end
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	items, err := s.repo.List(ctx, s.db, filter,
		option.ApplyPaginationKeyed(req.Pagination, "h.transferred_at", "h.id"))
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *domain.HistoryItem) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.TransferredAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	return &domain.HistoryPage{Items: items, PageInfo: pageInfo}, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	recordID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || recordID == 0 {
		return domain.ErrInvalidRecordID
	}

	deleted, err := s.repo.Delete(ctx, s.db, recordID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrRecordNotFound
	}

	s.log.Info("transfer record deleted", zap.String("record_id", recordID.String()))
	return nil
}

func (s *Service) DeleteFailed(ctx context.Context, req domain.DeleteFailedRequest) (int64, error) {
	var storeID snowflake.ID
	if v := strings.TrimSpace(req.StoreID); v != "" {
		id, err := parseStoreID(v)
		if err != nil {
			return 0, err
		}
		storeID = id
	}

	count, err := s.repo.DeleteAllFailed(ctx, s.db, storeID)
	if err != nil {
		return 0, err
	}

	s.log.Info("failed transfer records deleted",
		zap.String("store_id", req.StoreID),
		zap.Int64("count", count),
	)
	return count, nil
}

func parseStoreID(v string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(v))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidStoreID
	}
	return id, nil
}
