package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	transfers        metric.Int64Counter
	validations      metric.Int64Counter
	productCopies    metric.Int64Counter
	catalogQueries   metric.Int64Counter
	numberCollisions metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "quotient"
	}
	meter := provider.Meter(name)

	transfers, err := meter.Int64Counter("quotient_transfers_total")
	if err != nil {
		return nil, err
	}
	validations, err := meter.Int64Counter("quotient_validations_total")
	if err != nil {
		return nil, err
	}
	productCopies, err := meter.Int64Counter("quotient_product_copies_total")
	if err != nil {
		return nil, err
	}
	catalogQueries, err := meter.Int64Counter("quotient_catalog_queries_total")
	if err != nil {
		return nil, err
	}
	numberCollisions, err := meter.Int64Counter("quotient_number_collisions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		transfers:        transfers,
		validations:      validations,
		productCopies:    productCopies,
		catalogQueries:   catalogQueries,
		numberCollisions: numberCollisions,
	}, nil
}

// RecordTransfer increments transfer outcome counts.
func (m *Metrics) RecordTransfer(ctx context.Context, storeID, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("store_id", strings.TrimSpace(storeID)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.transfers.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordValidation increments order validation counts.
func (m *Metrics) RecordValidation(ctx context.Context, storeID, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("store_id", strings.TrimSpace(storeID)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.validations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProductCopy increments cross-catalog copy counts.
func (m *Metrics) RecordProductCopy(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.productCopies.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCatalogQuery increments catalog round-trip counts.
func (m *Metrics) RecordCatalogQuery(ctx context.Context, catalog, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("catalog", strings.TrimSpace(catalog)),
		attribute.String("operation", strings.TrimSpace(operation)),
	)
	m.catalogQueries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordNumberCollision increments quotation number collision counts.
func (m *Metrics) RecordNumberCollision(ctx context.Context, storeID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("store_id", strings.TrimSpace(storeID)))
	m.numberCollisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"store_id":    {},
	"status":      {},
	"outcome":     {},
	"result":      {},
	"catalog":     {},
	"operation":   {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
