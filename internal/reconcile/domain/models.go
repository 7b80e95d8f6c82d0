package domain

import (
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
)

// Reasons attached to missing line items.
const (
	ReasonNoBarcode  = "no barcode"
	ReasonNotFound   = "not found in any catalog"
	ReasonCopyFailed = "copy to primary catalog failed"
)

// ResolvedProduct pairs a backoffice catalog row with the order line it
// satisfies. A barcode ordered on several lines produces one entry per line,
// all sharing the same catalog row.
type ResolvedProduct struct {
	catalogdomain.Product

	OrderQuantity int     `json:"order_quantity"`
	OrderPrice    float64 `json:"order_price"`
}

// CopiedProduct records a row carried over from the inventory catalog into
// the backoffice during resolution. ProductID is the identity the backoffice
// assigned to the new row.
type CopiedProduct struct {
	Barcode   string `json:"barcode"`
	Name      string `json:"name"`
	ProductID int64  `json:"product_id"`
}

// MissingProduct describes an order line that could not be resolved.
type MissingProduct struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// Diagnostics summarises the catalog traffic of a single resolution pass.
type Diagnostics struct {
	BarcodesSearched int  `json:"barcodes_searched"`
	PrimaryFound     int  `json:"primary_found"`
	SecondaryQueried bool `json:"secondary_queried"`
	SecondaryFound   int  `json:"secondary_found"`
}

// ValidationResult is the outcome of resolving one order against the
// catalogs. Valid is true exactly when Missing is empty.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Products    []ResolvedProduct `json:"products"`
	Copied      []CopiedProduct   `json:"copied"`
	Missing     []MissingProduct  `json:"missing"`
	Errors      []string          `json:"errors"`
	Diagnostics Diagnostics       `json:"diagnostics"`
}
