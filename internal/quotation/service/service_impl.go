package service

import (
	"context"
	"fmt"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/clock"
	obscontext "github.com/smallbiznis/quotient/internal/observability/context"
	"github.com/smallbiznis/quotient/internal/observability/metrics"
	"github.com/smallbiznis/quotient/internal/quotation/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	"github.com/smallbiznis/quotient/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	Params struct {
		fx.In
		Log       *zap.Logger
		Clock     clock.Clock
		Metrics   *metrics.Metrics
		Connector catalogdomain.Connector
		Catalog   catalogdomain.Service
		Repo      domain.Repository
	}

	Service struct {
		log     *zap.Logger
		clock   clock.Clock
		metrics *metrics.Metrics
		conn    catalogdomain.Connector
		catalog catalogdomain.Service
		repo    domain.Repository
	}
)

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("quotation.service"),
		clock:   p.Clock,
		metrics: p.Metrics,
		conn:    p.Connector,
		catalog: p.Catalog,
		repo:    p.Repo,
	}
}

func (s *Service) NextNumber(ctx context.Context, defaults storedomain.QuotationDefaults, year int) (int64, error) {
	dbh, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return 0, err
	}
	defer release()

	return s.nextNumber(ctx, dbh, defaults, year)
}

func (s *Service) nextNumber(ctx context.Context, dbh *gorm.DB, defaults storedomain.QuotationDefaults, year int) (int64, error) {
	prefix, err := domain.ServicePrefix(defaults.DBID)
	if err != nil {
		return 0, err
	}

	floor := domain.NumberFloor(prefix, year)
	max, err := s.repo.MaxQuotationNumber(ctx, dbh, domain.NumberPattern(floor))
	if err != nil {
		return 0, fmt.Errorf("scan quotation numbers: %w", err)
	}

	next := max + 1
	if next < floor {
		next = floor
	}
	return next, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuotationRequest) (*domain.CreateQuotationResult, error) {
	if len(req.Resolved) == 0 {
		return nil, domain.ErrNoLineItems
	}

	unitDescs, err := s.unitDescriptions(ctx, req.Resolved)
	if err != nil {
		return nil, err
	}

	dbh, release, err := s.conn.Open(ctx, storedomain.RoleBackoffice)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock.Now()

	// The unique constraint on QuotationNumber is the backstop for two
	// batches allocating concurrently; a violation means someone consumed
	// the number between our MAX scan and the insert, so scan again, once.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		number, err := s.nextNumber(ctx, dbh, req.Defaults, now.Year())
		if err != nil {
			return nil, err
		}

		header, details := domain.Build(domain.BuildInput{
			Order:     req.Order,
			Resolved:  req.Resolved,
			Customer:  req.Customer,
			Defaults:  req.Defaults,
			Number:    number,
			UnitDescs: unitDescs,
			Now:       now,
		})

		id, err := s.repo.InsertQuotation(ctx, dbh, header, details)
		if err == nil {
			s.log.Info("quotation created",
				zap.Int64("quotation_id", id),
				zap.Int64("quotation_number", number),
				zap.String("order_name", req.Order.Name),
				zap.Int("line_count", len(details)),
				zap.Float64("total", header.QuotationTotal),
			)
			return &domain.CreateQuotationResult{
				QuotationID:     id,
				QuotationNumber: number,
				LineCount:       len(details),
				Total:           header.QuotationTotal,
			}, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("insert quotation: %w", err)
		}

		lastErr = err
		s.metrics.RecordNumberCollision(ctx, obscontext.StoreIDFromContext(ctx))
		s.log.Warn("quotation number collision, reallocating",
			zap.Int64("quotation_number", number),
			zap.String("order_name", req.Order.Name),
		)
	}

	return nil, fmt.Errorf("insert quotation: %w", lastErr)
}

// unitDescriptions resolves the unit reference of every distinct unit id in
// the batch. The description comes from the unit table, never from the order
// payload.
func (s *Service) unitDescriptions(ctx context.Context, resolved []reconciledomain.ResolvedProduct) (map[int64]string, error) {
	descs := make(map[int64]string)
	for _, item := range resolved {
		if item.UnitID == nil || *item.UnitID == 0 {
			continue
		}
		id := *item.UnitID
		if _, ok := descs[id]; ok {
			continue
		}

		desc, err := s.catalog.UnitDescription(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("unit description %d: %w", id, err)
		}
		descs[id] = desc
	}
	return descs, nil
}
