package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	obscontext "github.com/smallbiznis/quotient/internal/observability/context"
	"github.com/smallbiznis/quotient/internal/observability/metrics"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	"github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

type (
	Params struct {
		fx.In

		Log     *zap.Logger
		Metrics *metrics.Metrics
		Catalog domain.Catalog
	}

	Engine struct {
		log     *zap.Logger
		metrics *metrics.Metrics
		catalog domain.Catalog
	}
)

func New(p Params) domain.Engine {
	return &Engine{
		log:     p.Log.Named("reconcile.engine"),
		metrics: p.Metrics,
		catalog: p.Catalog,
	}
}

// Resolve matches every line item of an order against the backoffice catalog,
// falls back to the inventory catalog for the remainder, and copies inventory
// rows into the backoffice so a later pass finds them in the first lookup.
// Each catalog is queried with a single batch membership predicate. A failed
// copy marks only its own line items missing; the rest of the order still
// resolves.
func (e *Engine) Resolve(ctx context.Context, orderID string, items []ordersourcedomain.LineItem) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{
		Valid:    true,
		Products: []domain.ResolvedProduct{},
		Copied:   []domain.CopiedProduct{},
		Missing:  []domain.MissingProduct{},
		Errors:   []string{},
	}

	// Deduplicate barcodes while keeping the order lines they came from.
	lines := make(map[string][]ordersourcedomain.LineItem)
	barcodes := make([]string, 0, len(items))
	for _, item := range items {
		barcode := strings.TrimSpace(item.Barcode)
		if barcode == "" {
			result.Valid = false
			result.Missing = append(result.Missing, domain.MissingProduct{
				Name:     item.Name,
				SKU:      item.SKU,
				Quantity: item.Quantity,
				Reason:   domain.ReasonNoBarcode,
			})
			result.Errors = append(result.Errors, fmt.Sprintf("product %q has no barcode", item.Name))
			continue
		}
		if _, seen := lines[barcode]; !seen {
			barcodes = append(barcodes, barcode)
		}
		lines[barcode] = append(lines[barcode], item)
	}

	result.Diagnostics.BarcodesSearched = len(barcodes)
	if len(barcodes) == 0 {
		e.recordOutcome(ctx, result)
		return result, nil
	}

	primary, err := e.catalog.FindProductsByBarcodes(ctx, storedomain.RoleBackoffice, barcodes)
	if err != nil {
		return nil, fmt.Errorf("primary catalog lookup: %w", err)
	}

	found := make(map[string]*catalogdomain.Product, len(primary))
	for _, product := range primary {
		if barcode := product.Barcode(); barcode != "" {
			found[barcode] = product
		}
	}
	result.Diagnostics.PrimaryFound = len(found)

	remainder := make([]string, 0, len(barcodes))
	for _, barcode := range barcodes {
		if _, ok := found[barcode]; !ok {
			remainder = append(remainder, barcode)
		}
	}

	copyFailed := make(map[string]bool)
	if len(remainder) > 0 {
		result.Diagnostics.SecondaryQueried = true

		secondary, err := e.catalog.FindProductsByBarcodes(ctx, storedomain.RoleInventory, remainder)
		if err != nil {
			return nil, fmt.Errorf("secondary catalog lookup: %w", err)
		}
		result.Diagnostics.SecondaryFound = len(secondary)

		for _, row := range secondary {
			barcode := row.Barcode()
			if barcode == "" {
				continue
			}

			copied := backofficeRow(row)
			if err := e.catalog.CopyProduct(ctx, copied); err != nil {
				e.metrics.RecordProductCopy(ctx, "failed")
				e.log.Error("product copy failed",
					zap.String("order_id", orderID),
					zap.String("barcode", barcode),
					zap.Error(err),
				)
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("copy product %s: %v", barcode, err))
				copyFailed[barcode] = true
				continue
			}

			e.metrics.RecordProductCopy(ctx, "copied")
			found[barcode] = copied
			result.Copied = append(result.Copied, domain.CopiedProduct{
				Barcode:   barcode,
				Name:      strValue(copied.ProductDescription),
				ProductID: copied.ProductID,
			})
		}
	}

	// Match the resolved rows back to the order lines they satisfy.
	for _, barcode := range barcodes {
		product, ok := found[barcode]
		if !ok {
			result.Valid = false
			reason := domain.ReasonNotFound
			if copyFailed[barcode] {
				reason = domain.ReasonCopyFailed
			}
			for _, item := range lines[barcode] {
				result.Missing = append(result.Missing, domain.MissingProduct{
					Barcode:  barcode,
					Name:     item.Name,
					SKU:      item.SKU,
					Quantity: item.Quantity,
					Reason:   reason,
				})
				if reason == domain.ReasonNotFound {
					result.Errors = append(result.Errors, fmt.Sprintf("product %q (barcode %s) not found in any catalog", item.Name, barcode))
				}
			}
			continue
		}

		for _, item := range lines[barcode] {
			result.Products = append(result.Products, domain.ResolvedProduct{
				Product:       *product,
				OrderQuantity: item.Quantity,
				OrderPrice:    item.Price,
			})
		}
	}

	e.recordOutcome(ctx, result)
	e.log.Info("order reconciled",
		zap.String("order_id", orderID),
		zap.Int("resolved", len(result.Products)),
		zap.Int("copied", len(result.Copied)),
		zap.Int("missing", len(result.Missing)),
		zap.Bool("valid", result.Valid),
	)
	return result, nil
}

func (e *Engine) recordOutcome(ctx context.Context, result *domain.ValidationResult) {
	outcome := "valid"
	if !result.Valid {
		outcome = "invalid"
	}
	e.metrics.RecordValidation(ctx, obscontext.StoreIDFromContext(ctx), outcome)
}

// backofficeRow builds the row to insert from an inventory hit. ProductID
// stays zero so the backoffice identity column assigns it, and SPPromoted is
// reset because the inventory catalog does not track promotions.
func backofficeRow(row *catalogdomain.Product) *catalogdomain.Product {
	zero := int64(0)
	return &catalogdomain.Product{
		CateID:             row.CateID,
		SubCateID:          row.SubCateID,
		ProductSKU:         row.ProductSKU,
		ProductUPC:         row.ProductUPC,
		ProductDescription: row.ProductDescription,
		UnitPrice:          row.UnitPrice,
		UnitCost:           row.UnitCost,
		ItemSize:           row.ItemSize,
		ItemWeight:         row.ItemWeight,
		UnitID:             row.UnitID,
		ItemTaxID:          row.ItemTaxID,
		SPPromoted:         &zero,
	}
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
