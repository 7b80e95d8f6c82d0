package domain

import (
	"context"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
)

// Catalog is the slice of the catalog service the engine needs: one batch
// membership lookup per catalog and the copy of a single row into the
// backoffice.
type Catalog interface {
	FindProductsByBarcodes(ctx context.Context, role string, barcodes []string) ([]*catalogdomain.Product, error)
	CopyProduct(ctx context.Context, product *catalogdomain.Product) error
}

// Engine resolves the line items of one order against the backoffice and
// inventory catalogs.
//
// A resolution pass issues exactly one batch lookup against the backoffice
// and, when some barcodes remain unresolved, exactly one batch lookup against
// the inventory. Rows found only in the inventory are copied into the
// backoffice so the next pass finds them there directly.
type Engine interface {
	Resolve(ctx context.Context, orderID string, items []ordersourcedomain.LineItem) (*ValidationResult, error)
}
