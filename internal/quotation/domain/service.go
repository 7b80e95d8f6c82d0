package domain

import (
	"context"
	"errors"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

var (
	ErrNoLineItems = errors.New("no_line_items")
)

// CreateQuotationRequest carries one validated order into the target store.
// Resolved must be non-empty; the caller settles mapping, defaults and the
// reconciliation outcome first.
type CreateQuotationRequest struct {
	Order    ordersourcedomain.Order
	Resolved []reconciledomain.ResolvedProduct
	Customer catalogdomain.Customer
	Defaults storedomain.QuotationDefaults
}

type CreateQuotationResult struct {
	QuotationID     int64   `json:"quotation_id"`
	QuotationNumber int64   `json:"quotation_number"`
	LineCount       int     `json:"line_count"`
	Total           float64 `json:"total"`
}

// Service allocates quotation numbers and writes quotations into the
// backoffice.
type Service interface {
	// NextNumber returns the next free number in the defaults' prefix
	// block for the given year: MAX of the block plus one, or the block
	// floor when the block is empty.
	NextNumber(ctx context.Context, defaults storedomain.QuotationDefaults, year int) (int64, error)

	// Create allocates a number, builds the header and detail rows and
	// inserts them in one transaction. A duplicate-number violation at
	// insert time triggers exactly one re-allocation; a second violation
	// fails the order.
	Create(ctx context.Context, req CreateQuotationRequest) (*CreateQuotationResult, error)
}
